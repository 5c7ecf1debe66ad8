package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by FromEnv.
const (
	EnvCassandraHost     = "CASSANDRA_HOST"
	EnvCassandraUsername = "CASSANDRA_USERNAME"
	EnvCassandraPassword = "CASSANDRA_PASSWORD"
	EnvAPIAddress        = "API_ADDRESS"
	EnvSecretKey         = "SECRET_KEY"
	EnvPublicKey         = "PUBLIC_KEY"
	EnvServerKey         = "SERVER_KEY"
	EnvKeyspace          = "KEYSPACE"
	EnvTopic             = "TOPIC"
	EnvInstanceID        = "INSTANCE_ID"
	EnvDayReset          = "DAY_RESET"
	EnvMetricsPort       = "METRICS_PORT"
	EnvLogLevel          = "LOG_LEVEL"
)

// LoadEnvFile loads variables from a .env file into the process environment.
// Variables already set are not overridden. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*IngesterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg IngesterConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a config from environment variables only.
// CASSANDRA_HOST and TOPIC accept comma-separated lists.
func FromEnv() (*IngesterConfig, error) {
	cfg := &IngesterConfig{
		Instance: InstanceConfig{ID: os.Getenv(EnvInstanceID)},
		Transport: TransportConfig{
			Address:   os.Getenv(EnvAPIAddress),
			PublicKey: os.Getenv(EnvPublicKey),
			SecretKey: os.Getenv(EnvSecretKey),
			ServerKey: os.Getenv(EnvServerKey),
		},
		Storage: StorageConfig{
			Hosts:    splitList(os.Getenv(EnvCassandraHost)),
			Username: os.Getenv(EnvCassandraUsername),
			Password: os.Getenv(EnvCassandraPassword),
			Keyspace: os.Getenv(EnvKeyspace),
		},
		Aggregation: AggregationConfig{DayReset: os.Getenv(EnvDayReset)},
		Log:         LogConfig{Level: os.Getenv(EnvLogLevel)},
	}

	if topic, ok := os.LookupEnv(EnvTopic); ok {
		cfg.Transport.Topics = strings.Split(topic, ",")
	}

	if v := os.Getenv(EnvMetricsPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnvMetricsPort, err)
		}
		cfg.Metrics.Port = port
	}

	return cfg, nil
}

// LoadWithDefaults loads config and applies default values.
// An empty path reads the configuration from the environment.
func LoadWithDefaults(path string) (*IngesterConfig, error) {
	var (
		cfg *IngesterConfig
		err error
	)
	if path == "" {
		cfg, err = FromEnv()
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*IngesterConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
