// Package config loads service configuration from a YAML file and the
// environment.
//
// It uses Viper for file parsing and environment binding, and godotenv
// for .env files. Environment variables override file values using
// underscore-separated paths (e.g. SERVER_PORT, PIPELINE_CONCURRENCY).
package config
