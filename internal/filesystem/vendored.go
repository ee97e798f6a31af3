package filesystem

import (
	"context"
	"path/filepath"
	"unicode/utf8"

	"github.com/viant/afs"
)

// VendoredFS serves the bundled typeshed stub tree (spec §4.E "bundled
// typeshed root") from a directory baked into the distribution, read-only,
// through the same afs.Service used by OSFS.
type VendoredFS struct {
	root    string
	service afs.Service
}

// NewVendoredFS creates a VendoredFS rooted at root (the typeshed checkout
// location, e.g. alongside the executable).
func NewVendoredFS(root string) *VendoredFS {
	return &VendoredFS{root: root, service: afs.New()}
}

func (v *VendoredFS) url(path string) string {
	return "file://" + filepath.ToSlash(filepath.Join(v.root, filepath.FromSlash(path)))
}

func (v *VendoredFS) ReadText(ctx context.Context, path string) (string, error) {
	data, err := v.service.DownloadWithURL(ctx, v.url(path))
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

func (v *VendoredFS) Metadata(ctx context.Context, path string) (Metadata, error) {
	obj, err := v.service.Object(ctx, v.url(path))
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

func (v *VendoredFS) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	objects, err := v.service.List(ctx, v.url(path))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	entries := make([]DirEntry, 0, len(objects))
	for _, obj := range objects {
		name := filepath.Base(obj.URL())
		if name == filepath.Base(path) {
			continue
		}
		kind := KindFile
		if obj.IsDir() {
			kind = KindDir
		}
		entries = append(entries, DirEntry{Name: name, Kind: kind})
	}
	return entries, nil
}
