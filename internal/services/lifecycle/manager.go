package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const defaultShutdownTimeout = 15 * time.Second

// ShutdownFunc stops one component. It must return once ctx is done.
type ShutdownFunc func(ctx context.Context) error

type component struct {
	name string
	stop ShutdownFunc
}

// Manager stops the components of the server, newest first, when the process
// is asked to terminate. Storage is registered before the schedulers and the
// HTTP server that use it, so it closes last.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	components []component
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger.Named("lifecycle")}
}

// Register adds a component; a nil stop func is ignored.
func (m *Manager) Register(name string, stop ShutdownFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	m.components = append(m.components, component{name: name, stop: stop})
	m.mu.Unlock()
}

// Shutdown stops every registered component within the timeout and joins
// their errors. Components are consumed, so a second call does nothing.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	pending := m.components
	m.components = nil
	m.mu.Unlock()

	var errs []error
	for i := len(pending) - 1; i >= 0; i-- {
		c := pending[i]
		started := time.Now()
		if err := c.stop(ctx); err != nil {
			m.logger.Error("component stop failed", zap.String("component", c.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		m.logger.Info("component stopped",
			zap.String("component", c.name),
			zap.Duration("took", time.Since(started)),
		)
	}
	return errors.Join(errs...)
}

// Listen derives a context that is cancelled on SIGINT or SIGTERM or when
// parent is done.
func (m *Manager) Listen(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
