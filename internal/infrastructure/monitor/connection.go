package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
)

// Check tests a single backend.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

// Monitor periodically checks whichever backends the server was configured
// with. With no checks registered the service is considered healthy.
type Monitor struct {
	checks []namedCheck

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		timeout:  3 * time.Second,
		stopCh:   make(chan struct{}),
		logger:   logger,
		status:   Status{Healthy: true, Backends: map[string]BackendStatus{}},
	}
}

// Register adds a check; call before Start.
func (m *Monitor) Register(name string, check Check) {
	if check == nil {
		return
	}
	m.checks = append(m.checks, namedCheck{name: name, check: check})
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	backends := make(map[string]BackendStatus, len(m.status.Backends))
	for k, v := range m.status.Backends {
		backends[k] = v
	}
	status := m.status
	status.Backends = backends
	return status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once and stores the result.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Healthy:   true,
		Backends:  make(map[string]BackendStatus, len(m.checks)),
		LastCheck: time.Now(),
	}
	for _, p := range m.checks {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := p.check(checkCtx)
		cancel()

		bs := BackendStatus{Online: err == nil}
		if err != nil {
			bs.Error = err.Error()
			status.Healthy = false
			m.logger.Warn("backend check failed", zap.String("backend", p.name), zap.Error(err))
		}
		status.Backends[p.name] = bs
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func PostgresCheck(pool *pgxpool.Pool) Check {
	if pool == nil {
		return nil
	}
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}

func RedisCheck(client *redislib.Client) Check {
	if client == nil {
		return nil
	}
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}

// BoltCheck counts the keys of bucket; it fails once the file is closed or
// the bucket is missing.
func BoltCheck(db *bolt.DB, bucket string) Check {
	if db == nil {
		return nil
	}
	return func(ctx context.Context) error {
		_, err := boltdb.Size(db, bucket)
		return err
	}
}
