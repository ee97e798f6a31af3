package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
)

// flagName is a typed flag identifier, following cue/cmd's flagName
// idiom (a single constant spelling used both to register a flag and
// to read it back, so a typo shows up as a panic rather than a
// silently-always-zero value).
type flagName string

const (
	flagSrcRoot        flagName = "src-root"
	flagExtraRoot      flagName = "extra-root"
	flagSitePackages   flagName = "site-packages"
	flagCustomTypeshed flagName = "custom-typeshed"
	flagConfig         flagName = "config"
)

func addGlobalFlags(f *pflag.FlagSet) {
	f.StringArray(string(flagSrcRoot), nil, "a root searched for first-party modules (repeatable)")
	f.StringArray(string(flagExtraRoot), nil, "a root searched before src-root, e.g. a stub-only overlay (repeatable)")
	f.StringArray(string(flagSitePackages), nil, "a root searched after src-root for installed packages (repeatable)")
	f.String(string(flagCustomTypeshed), "", "a typeshed root to use instead of the bundled default")
	f.String(string(flagConfig), "", "path to a pyglass.yaml workspace manifest (overrides the root flags above)")
}

func (f flagName) ensureAdded(cmd *Command) {
	if cmd.Flags().Lookup(string(f)) == nil {
		panic(fmt.Sprintf("pyglass %q uses flag %q without adding it", cmd.Name(), f))
	}
}

func (f flagName) String(cmd *Command) string {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetString(string(f))
	return v
}

func (f flagName) StringArray(cmd *Command) []string {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetStringArray(string(f))
	return v
}
