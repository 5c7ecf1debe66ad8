package store

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/rickgao/tickstore/internal/config"
)

// Session executes CQL statements. It is the only storage surface the
// pipeline depends on.
type Session interface {
	Exec(ctx context.Context, stmt string, args ...any) error
}

// CQLSession is a Session backed by a gocql session.
type CQLSession struct {
	session *gocql.Session
}

// Connect creates a session to the cluster and verifies it with a ping.
func Connect(ctx context.Context, cfg config.StorageConfig) (*CQLSession, error) {
	cluster, err := NewCluster(cfg)
	if err != nil {
		return nil, fmt.Errorf("build cluster config: %w", err)
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s := &CQLSession{session: session}
	if err := s.Ping(ctx); err != nil {
		session.Close()
		return nil, fmt.Errorf("ping cluster: %w", err)
	}

	return s, nil
}

// Exec runs a statement that returns no rows.
func (s *CQLSession) Exec(ctx context.Context, stmt string, args ...any) error {
	return s.session.Query(stmt, args...).WithContext(ctx).Exec()
}

// Ping verifies the cluster answers a trivial query.
func (s *CQLSession) Ping(ctx context.Context) error {
	if s.session.Closed() {
		return gocql.ErrSessionClosed
	}
	return s.session.Query("SELECT now() FROM system.local").WithContext(ctx).Exec()
}

// Close closes the underlying session.
func (s *CQLSession) Close() {
	if s.session != nil {
		s.session.Close()
	}
}
