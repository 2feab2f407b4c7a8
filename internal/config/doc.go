// Package config defines the application configuration structure and its
// loading logic. Configuration is read from environment variables with the
// CADENCE_ prefix (and optionally a config.yaml in the working directory),
// then validated with go-playground/validator struct tags.
package config
