package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Dashboard  DashboardConfig
	Snapshot   SnapshotConfig
	Irrigation IrrigationConfig
	Sheets     SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for the document store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the cache and session store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig contains token signing and sign-in throttling options.
type AuthConfig struct {
	JWTSecret        string
	TokenTTL         time.Duration
	MaxLoginAttempts int
	LoginWindow      time.Duration
}

// DashboardConfig bounds the dashboard query and aggregation behaviour.
type DashboardConfig struct {
	PageSize            int
	FetchTimeout        time.Duration
	KPICacheTTL         time.Duration
	ReportMaxActivities int
}

// SnapshotConfig holds scheduler-related settings for KPI snapshots.
type SnapshotConfig struct {
	CronSchedule string
	Timezone     string
}

// IrrigationConfig configures the optional telemetry client. Snapshots record
// an unavailable sentinel when BaseURL is empty.
type IrrigationConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SheetsConfig configures the optional spreadsheet report sink.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the spreadsheet sink is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "organia"),
		},
		Redis: RedisConfig{
			Addr:     getenvWithDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvIntWithDefault("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			TokenTTL:         getenvDurationWithDefault("JWT_TOKEN_TTL", 12*time.Hour),
			MaxLoginAttempts: getenvIntWithDefault("AUTH_MAX_LOGIN_ATTEMPTS", 5),
			LoginWindow:      getenvDurationWithDefault("AUTH_LOGIN_WINDOW", 15*time.Minute),
		},
		Dashboard: DashboardConfig{
			PageSize:            getenvIntWithDefault("DASHBOARD_PAGE_SIZE", 50),
			FetchTimeout:        getenvDurationWithDefault("DASHBOARD_FETCH_TIMEOUT", 10*time.Second),
			KPICacheTTL:         getenvDurationWithDefault("DASHBOARD_KPI_CACHE_TTL", time.Minute),
			ReportMaxActivities: getenvIntWithDefault("REPORT_MAX_ACTIVITIES", 10),
		},
		Snapshot: SnapshotConfig{
			CronSchedule: getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 2 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Sao_Paulo"),
		},
		Irrigation: IrrigationConfig{
			BaseURL: os.Getenv("IRRIGATION_API_URL"),
			APIKey:  os.Getenv("IRRIGATION_API_KEY"),
			Timeout: getenvDurationWithDefault("IRRIGATION_API_TIMEOUT", 10*time.Second),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TOKEN_TTL must be positive")
	}

	if c.Dashboard.PageSize <= 0 {
		return errors.New("DASHBOARD_PAGE_SIZE must be positive")
	}

	if c.Dashboard.FetchTimeout <= 0 {
		return errors.New("DASHBOARD_FETCH_TIMEOUT must be positive")
	}

	if c.Dashboard.ReportMaxActivities <= 0 {
		return errors.New("REPORT_MAX_ACTIVITIES must be positive")
	}

	if c.Snapshot.CronSchedule == "" {
		return errors.New("SNAPSHOT_CRON_SCHEDULE must be provided")
	}

	if c.Snapshot.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID == "" {
		return errors.New("GOOGLE_SHEET_EXPORT_ID must be provided when sheets credentials are set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntWithDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDurationWithDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
