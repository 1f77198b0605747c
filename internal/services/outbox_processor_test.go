package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/internal/infrastructure/buffer"
	"github.com/fastygo/pagecomposer/repository"
)

type stubHealth bool

func (s stubHealth) IsOnline() bool { return bool(s) }

type replayGateway struct {
	mu      sync.Mutex
	replays map[string][]repository.OrderEntry
	errs    map[string]error
	// after runs once a page's replay has been recorded.
	after func(pageID string)
}

func (g *replayGateway) SavePage(context.Context, string, []repository.ComponentPayload) error {
	return nil
}

func (g *replayGateway) ReorderComponents(_ context.Context, pageID string, order []repository.OrderEntry) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.errs[pageID]; err != nil {
		return err
	}
	if g.replays == nil {
		g.replays = make(map[string][]repository.OrderEntry)
	}
	g.replays[pageID] = order
	if g.after != nil {
		g.after(pageID)
	}
	return nil
}

func openStore(t *testing.T) *buffer.Store {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "outbox.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDrain_ReplaysAndRemoves(t *testing.T) {
	store := openStore(t)
	bridge := NewOutboxBridge(store)
	ctx := context.Background()
	order := []repository.OrderEntry{{ID: "c2", OrderIndex: 1}, {ID: "c1", OrderIndex: 2}}
	require.NoError(t, bridge.QueueReorder(ctx, "p1", order))

	gateway := &replayGateway{}
	op := NewOutboxProcessor(store, stubHealth(true), gateway, nil, ProcessorConfig{MaxRetries: 3})

	require.NoError(t, op.Drain(ctx))
	assert.Equal(t, order, gateway.replays["p1"])
	assert.Equal(t, 0, op.Size())
}

func TestDrain_SkipsWhileOffline(t *testing.T) {
	store := openStore(t)
	require.NoError(t, NewOutboxBridge(store).QueueReorder(context.Background(), "p1", []repository.OrderEntry{{ID: "c1", OrderIndex: 1}}))

	gateway := &replayGateway{}
	op := NewOutboxProcessor(store, stubHealth(false), gateway, nil, ProcessorConfig{})

	require.NoError(t, op.Drain(context.Background()))
	assert.Empty(t, gateway.replays)
	assert.Equal(t, 1, op.Size())
}

func TestDrain_RetriesThenDrops(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, NewOutboxBridge(store).QueueReorder(ctx, "p1", []repository.OrderEntry{{ID: "c1", OrderIndex: 1}}))

	gateway := &replayGateway{errs: map[string]error{"p1": errors.New("timeout")}}
	op := NewOutboxProcessor(store, nil, gateway, nil, ProcessorConfig{MaxRetries: 2})

	require.NoError(t, op.Drain(ctx))
	item, ok, err := store.Get(buffer.EntityReorder, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, item.Retries)
	assert.Equal(t, "timeout", item.LastError)

	require.NoError(t, op.Drain(ctx))
	assert.Equal(t, 0, op.Size(), "dropped after exhausting retries")
}

func TestDrain_DropsMissingPage(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, NewOutboxBridge(store).QueueReorder(ctx, "gone", []repository.OrderEntry{{ID: "c1", OrderIndex: 1}}))

	gateway := &replayGateway{errs: map[string]error{"gone": domain.ErrPageNotFound}}
	op := NewOutboxProcessor(store, nil, gateway, nil, ProcessorConfig{MaxRetries: 10})

	require.NoError(t, op.Drain(ctx))
	assert.Equal(t, 0, op.Size())
}

func TestBridge_SupersedeDropsPending(t *testing.T) {
	store := openStore(t)
	bridge := NewOutboxBridge(store)
	ctx := context.Background()

	require.NoError(t, bridge.QueueReorder(ctx, "p1", []repository.OrderEntry{{ID: "c1", OrderIndex: 1}}))
	require.NoError(t, bridge.QueueReorder(ctx, "p1", []repository.OrderEntry{{ID: "c1", OrderIndex: 2}}))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size, "newer batch replaces the pending one")

	require.NoError(t, bridge.Supersede(ctx, "p1"))
	size, err = store.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	assert.ErrorIs(t, bridge.QueueReorder(ctx, "", nil), domain.ErrInvalidPayload)
}

func TestDrain_SkipsBatchSupersededMidDrain(t *testing.T) {
	store := openStore(t)
	bridge := NewOutboxBridge(store)
	ctx := context.Background()
	require.NoError(t, bridge.QueueReorder(ctx, "p1", []repository.OrderEntry{{ID: "a", OrderIndex: 1}}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, bridge.QueueReorder(ctx, "p2", []repository.OrderEntry{{ID: "b", OrderIndex: 1}}))

	gateway := &replayGateway{}
	gateway.after = func(pageID string) {
		if pageID == "p1" {
			// A newer reorder of p2 committed while p1 was replaying.
			require.NoError(t, bridge.Supersede(ctx, "p2"))
		}
	}
	op := NewOutboxProcessor(store, nil, gateway, nil, ProcessorConfig{MaxRetries: 3})

	require.NoError(t, op.Drain(ctx))
	assert.Contains(t, gateway.replays, "p1")
	assert.NotContains(t, gateway.replays, "p2")
	assert.Equal(t, 0, op.Size())
}
