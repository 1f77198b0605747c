package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fastygo/pagecomposer/repository"
)

type pageRow struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Slug       string `json:"slug" yaml:"slug"`
	IsHomepage bool   `json:"is_homepage" yaml:"is_homepage"`
	UpdatedAt  string `json:"updated_at" yaml:"updated_at"`
}

func newPagesCommand(deps Deps) *cobra.Command {
	var (
		search   string
		category string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List pages",
		Example: `  pagectl pages
  pagectl pages --search pricing -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			svc, err := openPages(cmd, deps)
			if err != nil {
				return err
			}
			pages, err := svc.List(cmd.Context(), repository.PageFilter{
				Search:     search,
				CategoryID: category,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			rows := make([]pageRow, 0, len(pages))
			for _, p := range pages {
				rows = append(rows, pageRow{
					ID:         p.ID,
					Name:       p.Name,
					Slug:       p.Slug,
					IsHomepage: p.IsHomepage,
					UpdatedAt:  p.UpdatedAt.UTC().Format("2006-01-02 15:04"),
				})
			}
			return writeResult(cmd.OutOrStdout(), format, rows, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSLUG\tHOME\tUPDATED")
				for _, r := range rows {
					home := ""
					if r.IsHomepage {
						home = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Slug, home, r.UpdatedAt)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Filter by name or slug")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category id")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of pages")
	return cmd
}
