package cmd

import (
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var exampleForListCmd = `
  pagestack list
  pagestack list --backend sqlite --path ~/.local/share/pagestack/sessions.db
`

// NewListCmd lists every stored session.
func NewListCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "list stored sessions",
		Args:    cobra.NoArgs,
		Example: exampleForListCmd,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"host", "size", "updated"})
			for _, r := range records {
				table.Append([]string{r.HostID, strconv.Itoa(r.Size), r.UpdatedAt.Format(time.RFC3339)})
			}
			table.Render()
			return nil
		},
	}
}
