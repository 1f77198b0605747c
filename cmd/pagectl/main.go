package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fastygo/pagecomposer/internal/cli"
	"github.com/fastygo/pagecomposer/internal/config"
	"github.com/fastygo/pagecomposer/internal/infrastructure/buffer"
	pgInfra "github.com/fastygo/pagecomposer/internal/infrastructure/postgres"
	"github.com/fastygo/pagecomposer/pkg/logger"
	"github.com/fastygo/pagecomposer/repository/postgres"
	pageUC "github.com/fastygo/pagecomposer/usecase/page"
	"github.com/fastygo/pagecomposer/usecase/preview"
)

// env opens backends on first use and closes whatever was opened.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	outbox *buffer.Store
}

func (e *env) pages(ctx context.Context) (cli.PageService, error) {
	if e.pool == nil {
		pool, err := pgInfra.NewPool(ctx, e.cfg.Database, e.logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		e.pool = pool
	}
	registry := preview.NewDefaultRegistry(e.logger)
	return pageUC.New(postgres.NewPageRepository(e.pool), registry, e.cfg.Editor.PreviewCSSURL, e.logger), nil
}

func (e *env) openOutbox() (cli.OutboxReader, error) {
	if e.outbox == nil {
		store, err := buffer.Open(e.cfg.Outbox.Path, e.cfg.Outbox.Bucket)
		if err != nil {
			return nil, fmt.Errorf("open outbox: %w", err)
		}
		e.outbox = store
	}
	return e.outbox, nil
}

func (e *env) migrate(_ context.Context, direction string) error {
	return pgInfra.Migrate(e.cfg.Database.URL, e.cfg.Migrations.Path, pgInfra.Direction(direction), e.logger)
}

func (e *env) close() {
	pgInfra.Close(e.pool, nil)
	if e.outbox != nil {
		_ = e.outbox.Close()
	}
	_ = e.logger.Sync()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: "console",
		Output:   os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	e := &env{cfg: cfg, logger: zapLogger}
	root := cli.NewRootCommand(cli.Deps{
		Pages:   e.pages,
		Outbox:  e.openOutbox,
		Migrate: e.migrate,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = root.ExecuteContext(ctx)
	stop()
	e.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
