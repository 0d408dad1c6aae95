package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type config struct {
	Port         string
	AllowOrigins []string
	LogLevel     zapcore.Level
	LogFormat    string
	FleetScript  string
	PingInterval time.Duration
	SendBuffer   int
}

// loadConfig reads the environment. Bad values are reported in problems and
// replaced by their defaults.
func loadConfig() (cfg config, problems []string) {
	cfg.Port = getenv("PORT", "8080")
	cfg.AllowOrigins = strings.Split(getenv("ORIGIN_ALLOWLIST", "http://localhost:"+cfg.Port+",http://127.0.0.1:"+cfg.Port), ",")
	cfg.LogFormat = getenv("LOG_FORMAT", "json")
	cfg.FleetScript = os.Getenv("FLEET_SCRIPT")
	cfg.PingInterval = 15 * time.Second
	cfg.SendBuffer = 64

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		problems = append(problems, "invalid LOG_LEVEL: "+err.Error())
		cfg.LogLevel = zapcore.InfoLevel
	}
	if raw := os.Getenv("PING_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.PingInterval = d
		} else {
			problems = append(problems, "invalid PING_INTERVAL="+strconv.Quote(raw))
		}
	}
	if raw := os.Getenv("SEND_BUFFER"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.SendBuffer = n
		} else {
			problems = append(problems, "invalid SEND_BUFFER="+strconv.Quote(raw))
		}
	}
	return cfg, problems
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func newLogger(cfg config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	return zc.Build()
}
