package config

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default values for optional configuration fields.
const (
	DefaultTopic             = "FEUR"
	DefaultPollInterval      = 250 * time.Millisecond
	DefaultReceiveHWM        = 100000
	DefaultCQLPort           = 9042
	DefaultKeyspace          = "forex"
	DefaultReplicationFactor = 1
	DefaultConsistency       = "LOCAL_QUORUM"
	DefaultStorageTimeout    = 10 * time.Second
	DefaultConnectTimeout    = 10 * time.Second
	DefaultNumConns          = 2
	DefaultDayReset          = "per_symbol"
	DefaultMetricsPort       = 9090
	DefaultMetricsPath       = "/metrics"
	DefaultLogLevel          = "info"
)

func (c *IngesterConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = "ingester-" + uuid.NewString()[:8]
	}

	// Transport defaults
	c.Transport.Address = normalizeAddress(c.Transport.Address)
	if c.Transport.Topics == nil {
		c.Transport.Topics = []string{DefaultTopic}
	}
	if c.Transport.PollInterval == 0 {
		c.Transport.PollInterval = DefaultPollInterval
	}
	if c.Transport.ReceiveHWM == 0 {
		c.Transport.ReceiveHWM = DefaultReceiveHWM
	}

	// Storage defaults
	if c.Storage.Port == 0 {
		c.Storage.Port = DefaultCQLPort
	}
	if c.Storage.Keyspace == "" {
		c.Storage.Keyspace = DefaultKeyspace
	}
	if c.Storage.ReplicationFactor == 0 {
		c.Storage.ReplicationFactor = DefaultReplicationFactor
	}
	if c.Storage.Consistency == "" {
		c.Storage.Consistency = DefaultConsistency
	}
	if c.Storage.Timeout == 0 {
		c.Storage.Timeout = DefaultStorageTimeout
	}
	if c.Storage.ConnectTimeout == 0 {
		c.Storage.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Storage.NumConns == 0 {
		c.Storage.NumConns = DefaultNumConns
	}

	if c.Aggregation.DayReset == "" {
		c.Aggregation.DayReset = DefaultDayReset
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// normalizeAddress prefixes tcp:// when no transport scheme is given.
func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.Contains(addr, "://") {
		return addr
	}
	return "tcp://" + addr
}
