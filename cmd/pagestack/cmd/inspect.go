package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/BrandonKowalski/pagestack/pkg/pagestack/navigation"
)

var exampleForInspectCmd = `
  pagestack inspect 2f1c7a9e-6b7e-5d43-a0a4-9d8c0b2f7c11
`

// NewInspectCmd prints the entries of one stored session.
func NewInspectCmd(opts *rootOpts) *cobra.Command {
	var showState bool

	inspectCmd := &cobra.Command{
		Use:     "inspect HOST",
		Short:   "show the history entries of a stored session",
		Args:    cobra.ExactArgs(1),
		Example: exampleForInspectCmd,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			blob, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			session, err := navigation.DecodeSession(blob)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Host: %s\nVersion: %d\nCursor: %d\n", args[0], session.Version, session.Cursor)

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"index", "", "page", "parameter", "state size"})
			for i, e := range session.Entries {
				marker := ""
				if i == session.Cursor {
					marker = "*"
				}
				param := string(e.Parameter)
				if param == "" {
					param = "-"
				}
				table.Append([]string{
					strconv.Itoa(i),
					marker,
					string(e.TypeKey),
					param,
					strconv.Itoa(len(session.States[navigation.PageKeyFor(i)])),
				})
			}
			table.Render()

			if showState {
				keys := make([]string, 0, len(session.States))
				for k := range session.States {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "%s: %v\n", k, session.States[k])
				}
			}
			return nil
		},
	}

	inspectCmd.Flags().BoolVar(&showState, "state", false, "print saved page state")
	return inspectCmd
}
