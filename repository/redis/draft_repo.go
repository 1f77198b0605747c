package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/repository"
)

type draftRepository struct {
	client redislib.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewDraftRepository creates a Redis-backed draft store. Drafts expire after
// ttl of inactivity; every Save pushes the expiry forward.
func NewDraftRepository(client redislib.UniversalClient, ttl time.Duration) repository.DraftRepository {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &draftRepository{
		client: client,
		prefix: "draft:",
		ttl:    ttl,
	}
}

func (r *draftRepository) Get(ctx context.Context, id string) (*domain.Draft, error) {
	result, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, err
	}

	var draft domain.Draft
	if err := json.Unmarshal(result, &draft); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt draft", err)
	}
	return &draft, nil
}

func (r *draftRepository) Save(ctx context.Context, draft *domain.Draft) error {
	if draft == nil || draft.ID == "" {
		return domain.ErrInvalidPayload
	}

	now := time.Now()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now
	draft.ExpiresAt = now.Add(r.ttl)

	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key(draft.ID), payload, r.ttl).Err()
}

func (r *draftRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *draftRepository) Extend(ctx context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	ok, err := r.client.Expire(ctx, r.key(id), ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrDraftNotFound
	}
	return nil
}

func (r *draftRepository) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
