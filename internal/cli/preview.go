package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newPreviewCommand(deps Deps) *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "preview [slug]",
		Short: "Render a published page to HTML",
		Long:  `Render the visible components of a page the way the public site does. Without a slug the homepage is rendered.`,
		Example: `  pagectl preview pricing
  pagectl preview --out home.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := ""
			if len(args) == 1 {
				slug = args[0]
			}
			svc, err := openPages(cmd, deps)
			if err != nil {
				return err
			}
			html, err := svc.RenderPublic(cmd.Context(), slug)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			_, err = io.WriteString(w, string(html))
			return err
		},
	}
	cmd.Flags().StringVar(&outFile, "out", "", "Write the document to a file instead of stdout")
	return cmd
}
