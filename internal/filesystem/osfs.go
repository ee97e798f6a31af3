package filesystem

import (
	"context"
	"path/filepath"
	"unicode/utf8"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
)

// OSFS implements FS over local disk via afs.Service, with a current
// working directory CWD used to resolve relative paths (spec §6 "OS"
// filesystem implementation).
type OSFS struct {
	CWD     string
	service afs.Service
}

// NewOSFS creates an OSFS rooted at cwd.
func NewOSFS(cwd string) *OSFS {
	return &OSFS{CWD: cwd, service: afs.New()}
}

func (fsys *OSFS) absURL(path string) string {
	path = filepath.Clean(path)
	if !filepath.IsAbs(path) {
		path = filepath.Clean(filepath.Join(fsys.CWD, path))
	}
	return "file://" + filepath.ToSlash(path)
}

func (fsys *OSFS) ReadText(ctx context.Context, path string) (string, error) {
	data, err := fsys.service.DownloadWithURL(ctx, fsys.absURL(path))
	if err != nil {
		if isNotFound(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrNotText
	}
	return string(data), nil
}

func (fsys *OSFS) Metadata(ctx context.Context, path string) (Metadata, error) {
	obj, err := fsys.service.Object(ctx, fsys.absURL(path))
	if err != nil {
		if isNotFound(err) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, err
	}
	kind := KindFile
	if obj.IsDir() {
		kind = KindDir
	}
	return Metadata{Kind: kind, Size: obj.Size(), ModTime: obj.ModTime()}, nil
}

func (fsys *OSFS) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	objects, err := fsys.service.List(ctx, fsys.absURL(path))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	entries := make([]DirEntry, 0, len(objects))
	for _, obj := range objects {
		name := filepath.Base(obj.URL())
		if name == filepath.Base(path) || name == "." {
			continue // afs includes the directory itself as the first entry
		}
		kind := KindFile
		if obj.IsDir() {
			kind = KindDir
		}
		entries = append(entries, DirEntry{Name: name, Kind: kind})
	}
	return entries, nil
}

func isNotFound(err error) bool {
	return storage.IsNotExist(err)
}
