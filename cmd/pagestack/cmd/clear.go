package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/storage"
)

var exampleForClearCmd = `
  pagestack clear 2f1c7a9e-6b7e-5d43-a0a4-9d8c0b2f7c11
  pagestack clear --all
`

// NewClearCmd deletes stored sessions.
func NewClearCmd(opts *rootOpts) *cobra.Command {
	var all bool

	clearCmd := &cobra.Command{
		Use:     "clear [HOST...]",
		Short:   "delete stored sessions",
		Example: exampleForClearCmd,
		Args: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("specify either host ids or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if all {
				records, err := store.List(ctx)
				if err != nil {
					return err
				}
				for _, r := range records {
					args = append(args, r.HostID)
				}
			}

			for _, host := range args {
				if err := store.Delete(ctx, host); err != nil {
					if errors.Is(err, storage.ErrNotFound) {
						return fmt.Errorf("no session stored for %s", host)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", host)
			}
			return nil
		},
	}

	clearCmd.Flags().BoolVarP(&all, "all", "a", false, "delete every stored session")
	return clearCmd
}
