package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/usecase/editor"
)

func newFormCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "form <page-id> <component-id>",
		Short: "Show the edit form generated for a component",
		Example: `  pagectl form 6f1c... 9a2e...
  pagectl form 6f1c... 9a2e... -o yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			svc, err := openPages(cmd, deps)
			if err != nil {
				return err
			}
			page, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			idx := page.Find(args[1])
			if idx < 0 {
				return domain.ErrComponentNotFound
			}

			form := editor.BuildForm(page.Components[idx].Content)
			return writeResult(cmd.OutOrStdout(), format, form, func(w io.Writer) error {
				return writeFieldTree(w, form, 0)
			})
		},
	}
}

func writeFieldTree(w io.Writer, f editor.Field, depth int) error {
	line := fmt.Sprintf("%s%s [%s]", strings.Repeat("  ", depth), f.Label, f.Kind)
	if f.PathText != "" {
		line += " " + f.PathText
	}
	if f.Value != nil {
		line += fmt.Sprintf(" = %v", f.Value)
	}
	if f.Removable {
		line += " (removable)"
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, child := range f.Children {
		if err := writeFieldTree(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
