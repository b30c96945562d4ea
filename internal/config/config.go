// Package config loads the application's layered configuration: defaults,
// optional .env file, then environment variables, via viper and godotenv.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Env       string
	Server    ServerConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Redis     RedisConfig
}

// ServerConfig holds all server related configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig holds all logging related configuration.
type LogConfig struct {
	Level string
}

// SchedulerConfig holds the solver's wall-clock budgets and the HTTP
// report-cache size. The timeout defaults (5s and 2s) match
// engine.DefaultConfig(); SCHEDULER_OPTIMIZE_TIMEOUT and
// SCHEDULER_FEASIBILITY_TIMEOUT override them for the API server.
type SchedulerConfig struct {
	OptimizeTimeout    time.Duration
	FeasibilityTimeout time.Duration
	ReportCacheSize    int
}

// RedisConfig configures the optional HTTP-layer concurrent-solve gate.
// When Addr is empty the gate is disabled and solves proceed unbounded.
type RedisConfig struct {
	Addr            string
	MaxConcurrent   int
}

// Load reads configuration from an optional .env file and the process
// environment, falling back to defaults for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("env", "development")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("scheduler.optimize_timeout", "5s")
	v.SetDefault("scheduler.feasibility_timeout", "2s")
	v.SetDefault("scheduler.report_cache_size", 64)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.max_concurrent", 0)

	bindEnv(v, "env", "ENV")
	bindEnv(v, "server.port", "SERVER_PORT")
	bindEnv(v, "server.read_timeout", "SERVER_READ_TIMEOUT")
	bindEnv(v, "server.write_timeout", "SERVER_WRITE_TIMEOUT")
	bindEnv(v, "log.level", "LOG_LEVEL")
	bindEnv(v, "scheduler.optimize_timeout", "SCHEDULER_OPTIMIZE_TIMEOUT")
	bindEnv(v, "scheduler.feasibility_timeout", "SCHEDULER_FEASIBILITY_TIMEOUT")
	bindEnv(v, "scheduler.report_cache_size", "SCHEDULER_REPORT_CACHE_SIZE")
	bindEnv(v, "redis.addr", "REDIS_ADDR")
	bindEnv(v, "redis.max_concurrent", "REDIS_MAX_CONCURRENT")

	cfg := &Config{
		Env: v.GetString("env"),
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Scheduler: SchedulerConfig{
			OptimizeTimeout:    v.GetDuration("scheduler.optimize_timeout"),
			FeasibilityTimeout: v.GetDuration("scheduler.feasibility_timeout"),
			ReportCacheSize:    v.GetInt("scheduler.report_cache_size"),
		},
		Redis: RedisConfig{
			Addr:          v.GetString("redis.addr"),
			MaxConcurrent: v.GetInt("redis.max_concurrent"),
		},
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key, env string) {
	_ = v.BindEnv(key, env)
}
