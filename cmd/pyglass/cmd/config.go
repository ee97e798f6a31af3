package cmd

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"pyglass.dev/pyglass/internal/filesystem"
	"pyglass.dev/pyglass/internal/resolver"
)

// bundledTypeshedRoot is the in-process vendored typeshed root (spec
// §4.E "fall back to the bundled typeshed root"). No stub archive is
// vendored in this repository, so this is "": every lookup falls
// through to unresolved, a documented gap rather than a shipped
// typeshed snapshot.
const bundledTypeshedRoot = ""

// buildSearchPath assembles a resolver.SearchPath from either an
// explicit --config manifest (spec §6 Configuration, decoded the same
// way resolver.DiscoverWorkspace decodes a workspace member's manifest)
// or the individual --src-root/--extra-root/--site-packages/
// --custom-typeshed flags.
func buildSearchPath(ctx context.Context, fs filesystem.FS, cmd *Command) (resolver.SearchPath, error) {
	if path := flagConfig.String(cmd); path != "" {
		data, err := fs.ReadText(ctx, path)
		if err != nil {
			return resolver.SearchPath{}, fmt.Errorf("reading %s: %w", path, err)
		}
		var cfg resolver.Config
		if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
			return resolver.SearchPath{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		return cfg.SearchPaths, nil
	}
	return resolver.SearchPath{
		ExtraRoots:     flagExtraRoot.StringArray(cmd),
		SrcRoots:       flagSrcRoot.StringArray(cmd),
		SitePackages:   flagSitePackages.StringArray(cmd),
		CustomTypeshed: flagCustomTypeshed.String(cmd),
	}, nil
}
