// Package cli implements pagectl, the operator command line for inspecting
// pages, rendering them offline and managing the schema and reorder outbox.
package cli

import (
	"context"
	"fmt"
	"html/template"

	"github.com/spf13/cobra"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/internal/infrastructure/buffer"
	"github.com/fastygo/pagecomposer/repository"
)

// PageService is the read side of the page use case.
type PageService interface {
	List(ctx context.Context, filter repository.PageFilter) ([]domain.Page, error)
	Get(ctx context.Context, id string) (*domain.Page, error)
	RenderPublic(ctx context.Context, slug string) (template.HTML, error)
}

// OutboxReader lists reorder batches awaiting replay.
type OutboxReader interface {
	GetBatch(limit int) ([]buffer.Item, error)
}

// Deps opens the backends a command needs. Each is only called by the
// commands that use it, so `pagectl outbox` works without a database.
type Deps struct {
	Pages   func(ctx context.Context) (PageService, error)
	Outbox  func() (OutboxReader, error)
	Migrate func(ctx context.Context, direction string) error
}

// NewRootCommand assembles pagectl.
func NewRootCommand(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "pagectl",
		Short:         "Operate the page composition service",
		Long:          `pagectl inspects pages and their component forms, renders pages to HTML without the HTTP server, applies schema migrations and shows reorder batches waiting in the outbox.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("output", "o", string(FormatText), "Output format (text, json, yaml)")

	root.AddCommand(
		newPagesCommand(deps),
		newPreviewCommand(deps),
		newFormCommand(deps),
		newMigrateCommand(deps),
		newOutboxCommand(deps),
	)
	return root
}

func outputFormat(cmd *cobra.Command) (OutputFormat, error) {
	value, _ := cmd.Flags().GetString("output")
	format := OutputFormat(value)
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

func openPages(cmd *cobra.Command, deps Deps) (PageService, error) {
	if deps.Pages == nil {
		return nil, fmt.Errorf("page store is not configured")
	}
	return deps.Pages(cmd.Context())
}
