package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SerpAPIKey   string
	DepartureID  string
	ArrivalID    string
	OutboundDate string
	ReturnDate   string
	Currency     string
	Lang         string

	SnapshotDir    string
	SnapshotPrefix string
	MergedDir      string
	ChartPath      string
	ChartPNGPath   string
	ChromeBin      string

	MaxConcurrency int
	MaxRetries     int
	HTTPTimeout    time.Duration
	CollectAt      string
	DashboardPort  string

	LogLevel string
	LogFile  string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PathStyle       bool
}

// searchFile is the optional YAML overlay for the search parameters.
type searchFile struct {
	Search struct {
		DepartureID  string `yaml:"departure_id"`
		ArrivalID    string `yaml:"arrival_id"`
		OutboundDate string `yaml:"outbound_date"`
		ReturnDate   string `yaml:"return_date"`
		Currency     string `yaml:"currency"`
		Lang         string `yaml:"lang"`
	} `yaml:"search"`
	Storage struct {
		SnapshotDir    string `yaml:"snapshot_dir"`
		SnapshotPrefix string `yaml:"snapshot_prefix"`
		MergedDir      string `yaml:"merged_dir"`
	} `yaml:"storage"`
}

// Load reads the .env file, applies the YAML file named by CONFIG_FILE if any,
// and returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		SerpAPIKey:   getEnv("API_KEY_SERPAPI", ""),
		DepartureID:  getEnv("DEPARTURE_ID", "CDG"),
		ArrivalID:    getEnv("ARRIVAL_ID", "ABJ"),
		OutboundDate: getEnv("OUTBOUND_DATE", "2025-12-22"),
		ReturnDate:   getEnv("RETURN_DATE", "2026-01-14"),
		Currency:     getEnv("CURRENCY", "EUR"),
		Lang:         getEnv("SEARCH_LANG", "fr"),

		SnapshotDir:    getEnv("SNAPSHOT_DIR", "./output"),
		SnapshotPrefix: getEnv("SNAPSHOT_PREFIX", "vols_paris_abidjan"),
		MergedDir:      getEnv("MERGED_DIR", "./merged"),
		ChartPath:      getEnv("CHART_PATH", "./output/prix_compagnies.html"),
		ChartPNGPath:   getEnv("CHART_PNG", ""),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		HTTPTimeout:    time.Duration(getEnvInt("HTTP_TIMEOUT_SEC", 30)) * time.Second,
		CollectAt:      getEnv("COLLECT_AT", "08:00"),
		DashboardPort:  getEnv("DASHBOARD_PORT", "8501"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "flights"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "flights123"),
		PostgresDB:       getEnv("POSTGRES_DB", "flights_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "eu-west-3"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3PathStyle:       getEnvBool("S3_PATH_STYLE", false),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}

	var f searchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}

	overlay(&c.DepartureID, f.Search.DepartureID)
	overlay(&c.ArrivalID, f.Search.ArrivalID)
	overlay(&c.OutboundDate, f.Search.OutboundDate)
	overlay(&c.ReturnDate, f.Search.ReturnDate)
	overlay(&c.Currency, f.Search.Currency)
	overlay(&c.Lang, f.Search.Lang)
	overlay(&c.SnapshotDir, f.Storage.SnapshotDir)
	overlay(&c.SnapshotPrefix, f.Storage.SnapshotPrefix)
	overlay(&c.MergedDir, f.Storage.MergedDir)
	return nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	for name, v := range map[string]string{"OUTBOUND_DATE": c.OutboundDate, "RETURN_DATE": c.ReturnDate} {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", name, v, err)
		}
	}
	if _, err := time.Parse("15:04", c.CollectAt); err != nil {
		return fmt.Errorf("config: invalid COLLECT_AT %q: %w", c.CollectAt, err)
	}
	if strings.ContainsAny(c.SnapshotPrefix, `/\`) {
		return fmt.Errorf("config: SNAPSHOT_PREFIX %q must not contain path separators", c.SnapshotPrefix)
	}
	if c.MaxConcurrency < 1 {
		c.MaxConcurrency = 1
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// SnapshotFileName returns the snapshot path for a collection day.
func (c *Config) SnapshotFileName(day time.Time) string {
	return filepath.Join(c.SnapshotDir, fmt.Sprintf("%s_%s.csv", c.SnapshotPrefix, day.Format("2006-01-02")))
}

// MergedFileName returns the merged output path for a run day, with the given extension.
func (c *Config) MergedFileName(day time.Time, ext string) string {
	return filepath.Join(c.MergedDir, fmt.Sprintf("%s_all_%s.%s", c.SnapshotPrefix, day.Format("2006-01-02"), ext))
}

// Route is the human-readable origin/destination pair.
func (c *Config) Route() string {
	return c.DepartureID + " → " + c.ArrivalID
}

// S3Enabled reports whether merged artifacts should be uploaded.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
