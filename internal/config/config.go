package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains process-level settings: logging and the ops
// endpoint the host daemon exposes for health checks.
type ServerConfig struct {
	OpsPort  int    `mapstructure:"ops_port"  validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// SchedulerConfig contains the cadence and locking settings for the
// background jobs.
type SchedulerConfig struct {
	// Timezone is the IANA zone the cron specs are evaluated in and the
	// zone used for week-boundary math in the weekly generator.
	Timezone string `mapstructure:"timezone" validate:"required"`

	// WeeklyCron fires the weekly plan-template generation.
	// Default: Monday 00:05.
	WeeklyCron string `mapstructure:"weekly_cron" validate:"required"`

	// DailyCron fires the daily long-task generation. Default: 00:10.
	DailyCron string `mapstructure:"daily_cron" validate:"required"`

	// SweepCron fires the hourly overdue sweep. Default: minute 0.
	SweepCron string `mapstructure:"sweep_cron" validate:"required"`

	// WeeklyLockMinutes is how long the weekly generation job lock is
	// held. The lock is never released early.
	WeeklyLockMinutes int `mapstructure:"weekly_lock_minutes" validate:"required,gt=0"`

	// Holder overrides the lock holder identity. When empty, hostname_pid
	// is used.
	Holder string `mapstructure:"holder"`
}
