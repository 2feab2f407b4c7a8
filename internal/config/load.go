package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config
// file. Environment variables take precedence over values from config
// files. Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults. Cron specs follow the standard five-field format used by
	// robfig/cron.
	v.SetDefault("server.ops_port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("scheduler.timezone", "Asia/Taipei")
	v.SetDefault("scheduler.weekly_cron", "5 0 * * 1")
	v.SetDefault("scheduler.daily_cron", "10 0 * * *")
	v.SetDefault("scheduler.sweep_cron", "0 * * * *")
	v.SetDefault("scheduler.weekly_lock_minutes", 10)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment variables may carry
		// everything required.
	}

	// Environment variables: CADENCE_ prefix, nested keys joined with
	// underscores (e.g. CADENCE_DATABASE_URL -> database.url).
	v.SetEnvPrefix("CADENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind the keys we read so AutomaticEnv sees them even
	// without a config file entry.
	for _, key := range []string{
		"server.ops_port",
		"server.log_level",
		"database.url",
		"database.max_open_conns",
		"database.max_idle_conns",
		"scheduler.timezone",
		"scheduler.weekly_cron",
		"scheduler.daily_cron",
		"scheduler.sweep_cron",
		"scheduler.weekly_lock_minutes",
		"scheduler.holder",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
