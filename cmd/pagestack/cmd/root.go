// Package cmd implements the pagestack command line tool, which inspects and
// manages the sessions suspended hosts leave in storage.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/config"
	"github.com/BrandonKowalski/pagestack/pkg/pagestack/storage"
)

type rootOpts struct {
	cfgFile string
	backend string
	path    string
	debug   bool
}

var longRootCmdDescription = `pagestack inspects the navigation sessions that suspended hosts keep in
session storage. The storage backend and location come from the pagestack
config file, PAGESTACK_* environment variables, or the flags below.
`

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOpts{}

	rootCmd := &cobra.Command{
		Use:           "pagestack",
		Short:         "Inspect and manage stored navigation sessions",
		Long:          longRootCmdDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				pagestack.SetRawLogLevel("debug")
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", fmt.Sprintf("config file (default is %s)", config.DefaultPath()))
	flags.StringVar(&opts.backend, "backend", "", "session backend: memory, file or sqlite (overrides config)")
	flags.StringVar(&opts.path, "path", "", "session directory or database file (overrides config)")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "turn on debug logging")

	rootCmd.AddCommand(
		NewListCmd(opts),
		NewInspectCmd(opts),
		NewClearCmd(opts),
	)
	rootCmd.DisableAutoGenTag = true
	return rootCmd
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		pagestack.GetLogger().Error("pagestack failed", "error", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStorage loads configuration and opens the session storage it names.
func (o *rootOpts) openStorage() (storage.Storage, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	backend, path := cfg.Session.Backend, cfg.Session.Path
	if o.backend != "" {
		backend = o.backend
	}
	if o.path != "" {
		path = o.path
	}
	pagestack.GetLogger().Debug("Opening session storage", "backend", backend, "path", path)
	return storage.Open(backend, path)
}
