package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMigrateCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back schema migrations",
		Long:      `Apply all pending migrations, or roll back the most recent one.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Migrate == nil {
				return fmt.Errorf("database is not configured")
			}
			if err := deps.Migrate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", args[0])
			return nil
		},
	}
}

type outboxRow struct {
	PageID    string `json:"page_id" yaml:"page_id"`
	Entity    string `json:"entity" yaml:"entity"`
	Entries   int    `json:"entries" yaml:"entries"`
	Retries   int    `json:"retries" yaml:"retries"`
	LastError string `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	Queued    string `json:"queued" yaml:"queued"`
}

func newOutboxCommand(deps Deps) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "List reorder batches waiting to be replayed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			if deps.Outbox == nil {
				return fmt.Errorf("outbox is not configured")
			}
			store, err := deps.Outbox()
			if err != nil {
				return err
			}
			items, err := store.GetBatch(limit)
			if err != nil {
				return err
			}

			rows := make([]outboxRow, 0, len(items))
			for _, item := range items {
				rows = append(rows, outboxRow{
					PageID:    item.PageID,
					Entity:    item.Entity,
					Entries:   item.Entries(),
					Retries:   item.Retries,
					LastError: item.LastError,
					Queued:    item.Timestamp.UTC().Format("2006-01-02 15:04:05"),
				})
			}
			return writeResult(cmd.OutOrStdout(), format, rows, func(w io.Writer) error {
				if len(rows) == 0 {
					_, err := fmt.Fprintln(w, "outbox is empty")
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PAGE\tENTITY\tENTRIES\tRETRIES\tQUEUED\tLAST ERROR")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", r.PageID, r.Entity, r.Entries, r.Retries, r.Queued, r.LastError)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of items")
	return cmd
}
