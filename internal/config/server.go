package config

import (
	"fmt"
	"time"
)

// ServerConfig holds settings of the forum stand-in server
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Lag delays every write before the store shows it
	Lag time.Duration

	Log LogConfig
}

// LoadServer reads the stand-in server configuration. Unlike Load it needs
// no database settings
func LoadServer(env string) (*ServerConfig, error) {
	if _, err := loadDotenv(env); err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		Port:            getEnv("PORT", "8080"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		Lag:             getDurationEnv("STORE_LAG", 200*time.Millisecond),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	if cfg.Lag < 0 {
		return nil, fmt.Errorf("STORE_LAG must not be negative")
	}
	return cfg, nil
}
