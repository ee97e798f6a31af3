package resolver

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"pyglass.dev/pyglass/internal/filesystem"
)

// ManifestName is the workspace manifest filename discovery walks parent
// directories looking for (spec §4.E: "Discovery from an arbitrary
// starting directory walks parents looking for a project manifest").
const ManifestName = "pyglass.yaml"

// Config is the on-disk workspace/project manifest, decoded with
// gopkg.in/yaml.v3.
type Config struct {
	PythonVersion  string     `yaml:"python_version"`
	PythonPlatform string     `yaml:"python_platform"`
	SearchPaths    SearchPath `yaml:"search_paths"`
	Members        []string   `yaml:"members"`
	Exclude        []string   `yaml:"exclude"`
}

// Member is one resolved workspace member (a subproject).
type Member struct {
	Name string // directory base name, the member identity
	Root string
}

// Workspace is an ordered collection of roots plus optional members
// (spec §4.E "A 'workspace' is an ordered collection of roots plus
// optional workspace members (subprojects)").
type Workspace struct {
	Root    string
	Config  Config
	Members []Member
}

// DiscoverWorkspace walks parents of startDir looking for ManifestName,
// loads it, and resolves declared members (spec §4.E discovery + error
// conditions).
func DiscoverWorkspace(ctx context.Context, fs filesystem.FS, startDir string) (*Workspace, []*Error) {
	root, cfg, err := findManifest(ctx, fs, startDir)
	if err != nil {
		return nil, []*Error{newError(ErrMemberMissingManifest, startDir, "no workspace manifest found above %s", startDir)}
	}

	ws := &Workspace{Root: root, Config: cfg}
	var errs []*Error

	seen := map[string]bool{}
	for _, pattern := range cfg.Members {
		dirs, mErrs := matchMemberDirs(ctx, fs, root, pattern, cfg.Exclude)
		errs = append(errs, mErrs...)
		for _, dir := range dirs {
			name := path.Base(dir)
			if seen[name] {
				errs = append(errs, newError(ErrDuplicateMember, dir, "duplicate workspace member name %q", name))
				continue
			}
			if !strings.HasPrefix(dir, root+"/") && dir != root {
				errs = append(errs, newError(ErrMemberOutsideRoot, dir, "workspace member %q is outside workspace root %q", dir, root))
				continue
			}
			manifest := path.Join(dir, ManifestName)
			data, rerr := fs.ReadText(ctx, manifest)
			if rerr != nil {
				errs = append(errs, newError(ErrMemberMissingManifest, dir, "workspace member %q has no manifest", dir))
				continue
			}
			var memberCfg Config
			if yerr := yaml.Unmarshal([]byte(data), &memberCfg); yerr == nil && len(memberCfg.Members) > 0 {
				errs = append(errs, newError(ErrNestedWorkspace, dir, "workspace member %q declares its own members (nested workspace)", dir))
				continue
			}
			seen[name] = true
			ws.Members = append(ws.Members, Member{Name: name, Root: dir})
		}
	}
	sort.Slice(ws.Members, func(i, j int) bool { return ws.Members[i].Name < ws.Members[j].Name })

	return ws, errs
}

func findManifest(ctx context.Context, fs filesystem.FS, startDir string) (string, Config, error) {
	dir := startDir
	for {
		manifest := path.Join(dir, ManifestName)
		data, err := fs.ReadText(ctx, manifest)
		if err == nil {
			var cfg Config
			if yerr := yaml.Unmarshal([]byte(data), &cfg); yerr != nil {
				return "", Config{}, yerr
			}
			return dir, cfg, nil
		}
		parent := path.Dir(dir)
		if parent == dir {
			return "", Config{}, filesystem.ErrNotFound
		}
		dir = parent
	}
}

// matchMemberDirs expands pattern (a doublestar glob relative to root)
// into candidate member directories, honoring exclude patterns.
func matchMemberDirs(ctx context.Context, fsys filesystem.FS, root, pattern string, exclude []string) ([]string, []*Error) {
	var out []string
	var errs []*Error
	walkDirs(ctx, fsys, root, func(rel string) {
		if rel == "" {
			return
		}
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			errs = append(errs, newError(ErrMemberMissingManifest, rel, "invalid member pattern %q: %v", pattern, err))
			return
		}
		if !ok {
			return
		}
		for _, ex := range exclude {
			if exOK, _ := doublestar.Match(ex, rel); exOK {
				return
			}
		}
		out = append(out, path.Join(root, rel))
	})
	return out, errs
}

// walkDirs visits every directory under root (relative paths from root),
// depth-first, via the FS's ReadDir.
func walkDirs(ctx context.Context, fs filesystem.FS, root string, visit func(rel string)) {
	var walk func(dir, rel string)
	walk = func(dir, rel string) {
		entries, err := fs.ReadDir(ctx, dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			if e.Kind != filesystem.KindDir {
				continue
			}
			childRel := e.Name
			if rel != "" {
				childRel = rel + "/" + e.Name
			}
			visit(childRel)
			walk(path.Join(dir, e.Name), childRel)
		}
	}
	walk(root, "")
}
