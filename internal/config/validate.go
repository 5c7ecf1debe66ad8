package config

import (
	"errors"
	"fmt"

	"github.com/rickgao/tickstore/internal/aggregate"
)

// Validate checks that all required fields are set and values are valid.
func (c *IngesterConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if err := c.Transport.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}

	if _, err := aggregate.ParseResetPolicy(c.Aggregation.DayReset); err != nil {
		return fmt.Errorf("aggregation.day_reset: %w", err)
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	return nil
}

func (t *TransportConfig) validate() error {
	if t.Address == "" {
		return errors.New("transport.address is required")
	}
	if t.PublicKey == "" {
		return errors.New("transport.public_key is required")
	}
	if t.SecretKey == "" {
		return errors.New("transport.secret_key is required")
	}
	if t.ServerKey == "" {
		return errors.New("transport.server_key is required")
	}
	keys := []struct{ name, value string }{
		{"public_key", t.PublicKey},
		{"secret_key", t.SecretKey},
		{"server_key", t.ServerKey},
	}
	for _, k := range keys {
		if len(k.value) != 40 {
			return fmt.Errorf("transport.%s must be a 40-character Z85 key, got %d characters", k.name, len(k.value))
		}
	}
	if len(t.Topics) == 0 {
		return errors.New("transport.topics must list at least one prefix (use \"\" for all topics)")
	}
	if t.PollInterval <= 0 {
		return errors.New("transport.poll_interval must be > 0")
	}
	if t.ReceiveHWM < 0 {
		return errors.New("transport.receive_hwm must be >= 0")
	}
	return nil
}

func (s *StorageConfig) validate() error {
	if len(s.Hosts) == 0 {
		return errors.New("storage.hosts is required")
	}
	for i, h := range s.Hosts {
		if h == "" {
			return fmt.Errorf("storage.hosts[%d] is empty", i)
		}
	}
	if s.Keyspace == "" {
		return errors.New("storage.keyspace is required")
	}
	if s.Username != "" && s.Password == "" {
		return errors.New("storage.password is required when storage.username is set")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("storage.port must be between 1 and 65535, got %d", s.Port)
	}
	if s.ReplicationFactor < 1 {
		return errors.New("storage.replication_factor must be >= 1")
	}
	if s.NumConns < 1 {
		return errors.New("storage.num_conns must be >= 1")
	}
	return nil
}
