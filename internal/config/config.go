package config

import "time"

// IngesterConfig is the root configuration for an ingester instance.
type IngesterConfig struct {
	Instance    InstanceConfig    `yaml:"instance"`
	Transport   TransportConfig   `yaml:"transport"`
	Storage     StorageConfig     `yaml:"storage"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Log         LogConfig         `yaml:"log"`
}

// InstanceConfig identifies this ingester.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// TransportConfig holds the secured subscribe channel settings.
type TransportConfig struct {
	Address      string        `yaml:"address"`    // e.g. tcp://feed.example.com:5563
	PublicKey    string        `yaml:"public_key"` // Client CURVE public key (Z85)
	SecretKey    string        `yaml:"secret_key"` // Client CURVE secret key (Z85)
	ServerKey    string        `yaml:"server_key"` // Publisher CURVE public key (Z85)
	Topics       []string      `yaml:"topics"`     // Subscription prefixes; "" subscribes to everything
	PollInterval time.Duration `yaml:"poll_interval"`
	ReceiveHWM   int           `yaml:"receive_hwm"`
}

// StorageConfig holds the Cassandra cluster connection.
type StorageConfig struct {
	Hosts             []string      `yaml:"hosts"`
	Port              int           `yaml:"port"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	Keyspace          string        `yaml:"keyspace"`
	ReplicationFactor int           `yaml:"replication_factor"`
	Consistency       string        `yaml:"consistency"`
	Timeout           time.Duration `yaml:"timeout"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	ProtoVersion      int           `yaml:"proto_version"` // 0 = negotiate
	NumConns          int           `yaml:"num_conns"`
	TLS               TLSConfig     `yaml:"tls"`
}

// TLSConfig enables client TLS to the storage cluster.
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CAPath     string `yaml:"ca_path"`
	SkipVerify bool   `yaml:"skip_verify"`
}

// AggregationConfig holds cumulative volume settings.
type AggregationConfig struct {
	DayReset string `yaml:"day_reset"` // "per_symbol" or "global"
}

// MetricsConfig holds the health and Prometheus endpoint settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
