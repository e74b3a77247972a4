package config

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagNames holds the CLI flag names used by Flags, so callers embedding
// the dispatch engine can rename them without clashing.
type FlagNames struct {
	Config     string
	Strict     string
	DrainGrace string
}

// NewFlags returns flag values bound to the given names.
func (n FlagNames) NewFlags() *Flags {
	return &Flags{names: n}
}

// Flags holds CLI flag values for dispatch configuration.
//
// Register flags with RegisterFlags, then call Load after flag parsing to
// obtain the Document with flag overrides applied.
type Flags struct {
	// ConfigPath is the YAML document location.
	ConfigPath string
	// Strict overrides the document's strict_unhandled when set.
	Strict bool
	// DrainGrace overrides the document's drain_grace when set.
	DrainGrace time.Duration

	names   FlagNames
	flagSet *pflag.FlagSet
}

// NewFlags returns flag values with the default flag names.
func NewFlags() *Flags {
	return FlagNames{
		Config:     "log-config",
		Strict:     "log-strict",
		DrainGrace: "log-drain-grace",
	}.NewFlags()
}

// RegisterFlags adds the dispatch flags to the given flag set.
func (f *Flags) RegisterFlags(flags *pflag.FlagSet) {
	f.flagSet = flags
	flags.StringVar(&f.ConfigPath, f.names.Config, "",
		"path to the dispatch configuration file")
	flags.BoolVar(&f.Strict, f.names.Strict, false,
		"treat records matched by no binding as errors")
	flags.DurationVar(&f.DrainGrace, f.names.DrainGrace, 0,
		"how long to wait for queued records on shutdown")
}

// RegisterCompletions registers shell completions for the dispatch flags
// on cmd. RegisterFlags must have run against cmd's flag set first.
func (f *Flags) RegisterCompletions(cmd *cobra.Command) error {
	if err := cmd.MarkFlagFilename(f.names.Config, "yaml", "yml"); err != nil {
		return fmt.Errorf("registering %s completion: %w", f.names.Config, err)
	}
	return nil
}

// Load reads the configured document and applies the flag overrides.
// Without a config path it returns an empty document, overrides applied.
// An override applies only when its flag was passed on the command line,
// so an explicit --log-strict=false still overrides the document.
func (f *Flags) Load() (*Document, error) {
	doc := &Document{}
	if f.ConfigPath != "" {
		var err error
		doc, err = Load(f.ConfigPath)
		if err != nil {
			return nil, err
		}
	}

	if f.changed(f.names.Strict) {
		doc.StrictUnhandled = f.Strict
	}
	if f.changed(f.names.DrainGrace) {
		doc.DrainGrace = f.DrainGrace.String()
	}
	return doc, nil
}

func (f *Flags) changed(name string) bool {
	return f.flagSet != nil && f.flagSet.Changed(name)
}
