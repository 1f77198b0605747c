package repository

import (
	"context"
	"time"

	"github.com/fastygo/pagecomposer/domain"
)

type DraftRepository interface {
	Get(ctx context.Context, id string) (*domain.Draft, error)
	Save(ctx context.Context, draft *domain.Draft) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttl time.Duration) error
}
