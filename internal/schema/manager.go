package schema

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rickgao/tickstore/internal/fault"
	"github.com/rickgao/tickstore/internal/metrics"
	"github.com/rickgao/tickstore/internal/model"
	"github.com/rickgao/tickstore/internal/store"
)

// Manager creates destination tables on first use and remembers which ones
// exist.
type Manager struct {
	session store.Session
	logger  *slog.Logger
	metrics *metrics.Pipeline

	// Concurrent callers for the same table share one request.
	group singleflight.Group

	mu          sync.Mutex
	provisioned map[Table]struct{}
	requests    int64
	failures    int64
}

// ManagerStats contains provisioning statistics.
type ManagerStats struct {
	Provisioned int   // Tables known to exist
	Requests    int64 // CREATE TABLE statements issued
	Failures    int64 // Failed CREATE TABLE statements
}

// NewManager creates a schema Manager.
func NewManager(session store.Session, m *metrics.Pipeline, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		session:     session,
		logger:      logger,
		metrics:     m,
		provisioned: make(map[Table]struct{}),
	}
}

// EnsureKeyspace creates the keyspace if it does not exist.
func (m *Manager) EnsureKeyspace(ctx context.Context, keyspace string, replicationFactor int) error {
	keyspace = strings.ToLower(keyspace)
	if err := validateIdentifier(keyspace); err != nil {
		return fault.Storage("ensure keyspace", err)
	}
	if replicationFactor < 1 {
		return fault.Storage("ensure keyspace", fmt.Errorf("replication factor must be >= 1, got %d", replicationFactor))
	}

	if err := m.session.Exec(ctx, CreateKeyspaceCQL(keyspace, replicationFactor)); err != nil {
		return fault.Storage("create keyspace "+keyspace, err)
	}

	m.logger.Info("keyspace ready",
		"keyspace", keyspace,
		"replication_factor", replicationFactor,
	)
	return nil
}

// EnsureTable makes sure the table for (keyspace, topic, kind) exists.
// Only the first successful call issues a statement; a failed call leaves the
// table unmarked so the next call retries.
func (m *Manager) EnsureTable(ctx context.Context, keyspace, topic string, kind model.Kind) error {
	t, err := NewTable(keyspace, topic, kind)
	if err != nil {
		return fault.Storage("ensure table", err)
	}

	if m.isProvisioned(t) {
		return nil
	}

	_, err, _ = m.group.Do(t.Qualified(), func() (any, error) {
		if m.isProvisioned(t) {
			return nil, nil
		}
		return nil, m.create(ctx, t)
	})
	if err != nil {
		return fault.Storage("create table "+t.Qualified(), err)
	}
	return nil
}

// Provisioned reports whether the table for (keyspace, topic, kind) is known to exist.
func (m *Manager) Provisioned(keyspace, topic string, kind model.Kind) bool {
	t, err := NewTable(keyspace, topic, kind)
	if err != nil {
		return false
	}
	return m.isProvisioned(t)
}

// Stats returns provisioning statistics.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ManagerStats{
		Provisioned: len(m.provisioned),
		Requests:    m.requests,
		Failures:    m.failures,
	}
}

// create issues the CREATE TABLE statement and marks t on success.
func (m *Manager) create(ctx context.Context, t Table) error {
	m.mu.Lock()
	m.requests++
	m.mu.Unlock()

	err := m.session.Exec(ctx, CreateTableCQL(t))
	m.metrics.Provision(t.Kind, err)
	if err != nil {
		m.mu.Lock()
		m.failures++
		m.mu.Unlock()
		m.logger.Error("table provisioning failed",
			"table", t.Qualified(),
			"error", err,
		)
		return err
	}

	m.mu.Lock()
	m.provisioned[t] = struct{}{}
	m.mu.Unlock()

	m.logger.Info("table provisioned", "table", t.Qualified())
	return nil
}

func (m *Manager) isProvisioned(t Table) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.provisioned[t]
	return ok
}
