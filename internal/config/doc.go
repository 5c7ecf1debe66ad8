// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file, when present, is loaded into the environment first. Without a
// config file the ingester is configured from the environment alone
// (CASSANDRA_HOST, API_ADDRESS, SECRET_KEY, ... see FromEnv).
package config
