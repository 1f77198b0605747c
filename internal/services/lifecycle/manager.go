package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ShutdownFunc stops one component within the deadline carried by ctx.
type ShutdownFunc func(ctx context.Context) error

type component struct {
	name string
	stop ShutdownFunc
}

// Manager owns the process's background components. Components stop in the
// reverse order they were added; periodic jobs share one scheduler that
// stops first.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	components []component
	jobs       *cron.Cron
	stopped    bool
}

// New creates a manager whose Shutdown is bounded by timeout.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger}
}

// Register adds a shutdown hook for an already running component.
func (m *Manager) Register(name string, stop ShutdownFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, stop: stop})
}

// Start runs start and registers stop under the same name.
func (m *Manager) Start(name string, start func(), stop ShutdownFunc) {
	if start != nil {
		start()
	}
	m.logger.Info("component started", zap.String("component", name))
	m.Register(name, stop)
}

// Every runs job on a fixed interval until Shutdown. Runs never overlap; a
// run still going when the next tick fires is skipped.
func (m *Manager) Every(name string, interval time.Duration, job func(ctx context.Context)) error {
	if interval < time.Second {
		return fmt.Errorf("lifecycle: job %s: interval %s is below one second", name, interval)
	}
	if job == nil {
		return fmt.Errorf("lifecycle: job %s has no body", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return fmt.Errorf("lifecycle: job %s added after shutdown", name)
	}
	if m.jobs == nil {
		m.jobs = cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		m.jobs.Start()
	}

	logger := m.logger.With(zap.String("job", name))
	timeout := interval
	_, err := m.jobs.AddFunc(fmt.Sprintf("@every %ds", int(interval.Seconds())), func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		started := time.Now()
		job(ctx)
		logger.Debug("job finished", zap.Duration("took", time.Since(started)))
	})
	if err != nil {
		return fmt.Errorf("lifecycle: schedule %s: %w", name, err)
	}
	logger.Info("job scheduled", zap.Duration("interval", interval))
	return nil
}

// Shutdown stops scheduled jobs, then every registered component in reverse
// order. Failures are joined; later components still get their turn. Calls
// after the first are no-ops.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	jobs := m.jobs
	components := m.components
	m.components = nil
	m.mu.Unlock()

	var result error
	if jobs != nil {
		select {
		case <-jobs.Stop().Done():
		case <-ctx.Done():
			result = fmt.Errorf("lifecycle: scheduled jobs: %w", ctx.Err())
		}
	}

	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		started := time.Now()
		if err := c.stop(ctx); err != nil {
			m.logger.Error("component stop failed", zap.String("component", c.name), zap.Error(err))
			result = errors.Join(result, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		m.logger.Info("component stopped", zap.String("component", c.name), zap.Duration("took", time.Since(started)))
	}
	return result
}

// Listen calls cancel on the first SIGINT or SIGTERM.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
