package store

import (
	"testing"
	"time"

	"github.com/gocql/gocql"

	"github.com/rickgao/tickstore/internal/config"
)

func TestNewCluster(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		check   func(t *testing.T, c *gocql.ClusterConfig)
		wantErr bool
	}{
		{
			name: "basic",
			cfg: config.StorageConfig{
				Hosts:          []string{"10.0.0.1", "10.0.0.2"},
				Port:           9042,
				Consistency:    "LOCAL_QUORUM",
				Timeout:        5 * time.Second,
				ConnectTimeout: 3 * time.Second,
				NumConns:       4,
			},
			check: func(t *testing.T, c *gocql.ClusterConfig) {
				if len(c.Hosts) != 2 || c.Hosts[0] != "10.0.0.1" {
					t.Errorf("Hosts = %v, want [10.0.0.1 10.0.0.2]", c.Hosts)
				}
				if c.Port != 9042 {
					t.Errorf("Port = %d, want 9042", c.Port)
				}
				if c.Consistency != gocql.LocalQuorum {
					t.Errorf("Consistency = %v, want LOCAL_QUORUM", c.Consistency)
				}
				if c.Timeout != 5*time.Second {
					t.Errorf("Timeout = %v, want 5s", c.Timeout)
				}
				if c.ConnectTimeout != 3*time.Second {
					t.Errorf("ConnectTimeout = %v, want 3s", c.ConnectTimeout)
				}
				if c.NumConns != 4 {
					t.Errorf("NumConns = %d, want 4", c.NumConns)
				}
				if c.Authenticator != nil {
					t.Errorf("Authenticator = %v, want nil without username", c.Authenticator)
				}
				if c.SslOpts != nil {
					t.Error("SslOpts set without tls.enabled")
				}
			},
		},
		{
			name: "password auth and tls",
			cfg: config.StorageConfig{
				Hosts:       []string{"cass.example.com"},
				Port:        9142,
				Username:    "ingest",
				Password:    "p@ss",
				Consistency: "ONE",
				TLS:         config.TLSConfig{Enabled: true, CAPath: "/etc/ssl/ca.pem"},
			},
			check: func(t *testing.T, c *gocql.ClusterConfig) {
				auth, ok := c.Authenticator.(gocql.PasswordAuthenticator)
				if !ok {
					t.Fatalf("Authenticator = %T, want PasswordAuthenticator", c.Authenticator)
				}
				if auth.Username != "ingest" || auth.Password != "p@ss" {
					t.Errorf("Authenticator = %+v, want ingest/p@ss", auth)
				}
				if c.Consistency != gocql.One {
					t.Errorf("Consistency = %v, want ONE", c.Consistency)
				}
				if c.SslOpts == nil || c.SslOpts.CaPath != "/etc/ssl/ca.pem" || !c.SslOpts.EnableHostVerification {
					t.Errorf("SslOpts = %+v, want CA path with host verification", c.SslOpts)
				}
			},
		},
		{
			name:    "no hosts",
			cfg:     config.StorageConfig{Consistency: "ONE"},
			wantErr: true,
		},
		{
			name:    "bad consistency",
			cfg:     config.StorageConfig{Hosts: []string{"localhost"}, Consistency: "MOST"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCluster(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCluster() error = %v", err)
			}
			tt.check(t, c)
		})
	}
}
