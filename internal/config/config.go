package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environments maps a target environment to the dotenv file it loads
var Environments = map[string]string{
	"local":     ".env",
	"dev":       ".env.dev",
	"stg":       ".env.stg",
	"prod-test": ".env.prod-test",
}

// Config holds the whole suite configuration. It is built once by Load
// and handed to components by value
type Config struct {
	// Env is the target environment name (local, dev, stg, prod-test)
	Env string

	// App holds the application under test endpoints
	App AppConfig

	// Browser configuration
	Browser BrowserConfig

	// Database configuration
	Database DatabaseConfig

	// Poll holds reconciliation timing
	Poll PollConfig

	// Provision holds test-data defaults
	Provision ProvisionConfig

	// Report holds artifact locations
	Report ReportConfig

	// Logging configuration
	Log LogConfig
}

// AppConfig holds the web and API base URLs of the application under test
type AppConfig struct {
	BaseURL    string
	APIBaseURL string
	APITimeout time.Duration
}

// BrowserConfig holds browser driver settings
type BrowserConfig struct {
	Headless          bool
	DefaultTimeout    time.Duration
	NavigationTimeout time.Duration
	WindowWidth       int
	WindowHeight      int
	// TokenStorageKey is the localStorage key the web app reads its bearer token from
	TokenStorageKey string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver       string
	DSN          string // overrides the composed DSN when set
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	PingTimeout  time.Duration
}

// PollConfig holds intervals and default timeouts of the reconciliation layer
type PollConfig struct {
	DefaultInterval time.Duration
	FastInterval    time.Duration
	PostTimeout     time.Duration
	CommentTimeout  time.Duration
	BanTimeout      time.Duration
	CleanupTimeout  time.Duration
	ToastRecheck    time.Duration
}

// ProvisionConfig holds test-data defaults
type ProvisionConfig struct {
	BanDuration time.Duration
	AdminRole   string
}

// ReportConfig holds artifact settings
type ReportConfig struct {
	ResultsDir    string
	ScreenshotDir string
	BuildID       string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

var pollDefaults = PollConfig{
	DefaultInterval: 300 * time.Millisecond,
	FastInterval:    100 * time.Millisecond,
	PostTimeout:     5 * time.Second,
	CommentTimeout:  3 * time.Second,
	BanTimeout:      3 * time.Second,
	CleanupTimeout:  2 * time.Second,
	ToastRecheck:    100 * time.Millisecond,
}

var provisionDefaults = ProvisionConfig{
	BanDuration: time.Hour,
	AdminRole:   "ADMIN",
}

// DefaultPollConfig returns the reconciliation timing used when nothing is configured
func DefaultPollConfig() PollConfig {
	return pollDefaults
}

// DefaultProvisionConfig returns the test-data defaults
func DefaultProvisionConfig() ProvisionConfig {
	return provisionDefaults
}

// Load selects the dotenv file for env, loads it into the process
// environment and reads the configuration from environment variables.
// A missing dotenv file is not an error
func Load(env string) (*Config, error) {
	env, err := loadDotenv(env)
	if err != nil {
		return nil, err
	}
	return FromEnv(env)
}

func loadDotenv(env string) (string, error) {
	if env == "" {
		env = "local"
	}
	file, ok := Environments[env]
	if !ok {
		return "", fmt.Errorf("unknown environment %q", env)
	}
	if err := godotenv.Overload(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to load %s: %w", file, err)
	}
	return env, nil
}

// FromEnv reads the configuration from the current environment variables
func FromEnv(env string) (*Config, error) {
	cfg := &Config{
		Env: env,
		App: AppConfig{
			BaseURL:    strings.TrimRight(getEnv("BASE_URL", "http://localhost"), "/"),
			APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
			APITimeout: getDurationEnv("API_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:          getBoolEnv("HEADLESS", false),
			DefaultTimeout:    getDurationEnv("DEFAULT_TIMEOUT", 10*time.Second),
			NavigationTimeout: getDurationEnv("NAVIGATION_TIMEOUT", 15*time.Second),
			WindowWidth:       getIntEnv("WINDOW_WIDTH", 1920),
			WindowHeight:      getIntEnv("WINDOW_HEIGHT", 1080),
			TokenStorageKey:   getEnv("TOKEN_STORAGE_KEY", "token"),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			DSN:          getEnv("DB_DSN", ""),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", ""),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", ""),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 4),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 30*time.Minute),
			PingTimeout:  getDurationEnv("DB_PING_TIMEOUT", 5*time.Second),
		},
		Poll: PollConfig{
			DefaultInterval: getDurationEnv("POLL_INTERVAL", pollDefaults.DefaultInterval),
			FastInterval:    getDurationEnv("POLL_FAST_INTERVAL", pollDefaults.FastInterval),
			PostTimeout:     getDurationEnv("POLL_POST_TIMEOUT", pollDefaults.PostTimeout),
			CommentTimeout:  getDurationEnv("POLL_COMMENT_TIMEOUT", pollDefaults.CommentTimeout),
			BanTimeout:      getDurationEnv("POLL_BAN_TIMEOUT", pollDefaults.BanTimeout),
			CleanupTimeout:  getDurationEnv("POLL_CLEANUP_TIMEOUT", pollDefaults.CleanupTimeout),
			ToastRecheck:    getDurationEnv("TOAST_RECHECK_TIMEOUT", pollDefaults.ToastRecheck),
		},
		Provision: ProvisionConfig{
			BanDuration: getDurationEnv("BAN_DURATION", provisionDefaults.BanDuration),
			AdminRole:   getEnv("ADMIN_ROLE", provisionDefaults.AdminRole),
		},
		Report: ReportConfig{
			ResultsDir:    getEnv("RESULTS_DIR", "reports"),
			ScreenshotDir: getEnv("SCREENSHOT_DIR", "reports/screenshots"),
			BuildID:       getEnv("CI_PIPELINE_ID", "manual"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	}
	for name, raw := range map[string]string{"BASE_URL": c.App.BaseURL, "API_BASE_URL": c.App.APIBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.Poll.DefaultInterval <= 0 || c.Poll.FastInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// MigrationURL returns the postgres:// URL golang-migrate expects
func (c *DatabaseConfig) MigrationURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
