package store

import (
	"fmt"

	"github.com/gocql/gocql"

	"github.com/rickgao/tickstore/internal/config"
)

// NewCluster builds a gocql cluster configuration from config.
// The keyspace is not bound: statements use fully qualified table names so
// the keyspace can be created after connecting.
func NewCluster(cfg config.StorageConfig) (*gocql.ClusterConfig, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("no storage hosts configured")
	}

	consistency, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
	if err != nil {
		return nil, fmt.Errorf("parse consistency: %w", err)
	}

	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Port = cfg.Port
	cluster.Consistency = consistency
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.ConnectTimeout
	cluster.ProtoVersion = cfg.ProtoVersion
	if cfg.NumConns > 0 {
		cluster.NumConns = cfg.NumConns
	}

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	if cfg.TLS.Enabled {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 cfg.TLS.CAPath,
			EnableHostVerification: !cfg.TLS.SkipVerify,
		}
	}

	return cluster, nil
}
