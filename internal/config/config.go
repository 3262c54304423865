// Package config loads the service configuration from command-line flags,
// environment variables and an optional .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App          AppConfig
	Logger       LoggerConfig
	Data         DataConfig
	Server       ServerConfig
	Import       ImportConfig
	Normalize    NormalizeConfig
	Admin        AdminConfig
	Registration RegistrationConfig
	Metrics      MetricsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates everything the service persists.
type DataConfig struct {
	BasePath string
}

// DatabasePath is the SQLite database holding tournaments, players, games
// and registrations.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.BasePath, "academy.db")
}

// LedgerPath is the Badger directory recording imported files.
func (d DataConfig) LedgerPath() string {
	return filepath.Join(d.BasePath, "ledger")
}

// SearchIndexPath is the Bleve player index directory.
func (d DataConfig) SearchIndexPath() string {
	return filepath.Join(d.BasePath, "search")
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// ImportConfig controls the import drop directory.
type ImportConfig struct {
	WatchDir     string
	WatchEnabled bool
	Concurrency  int
	SettleDelay  time.Duration
}

// NormalizeConfig holds normalization overrides.
type NormalizeConfig struct {
	// TieBreakRulesPath replaces the built-in tie-break rule table when set.
	TieBreakRulesPath string
}

// AdminConfig guards the admin endpoints. An empty key disables them.
type AdminConfig struct {
	APIKey string
}

// RegistrationConfig limits registration submissions per client.
type RegistrationConfig struct {
	RatePerSecond float64
	Burst         int
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("lca", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database, ledger and search index")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins")

	watchDir := fs.String("import-dir", "", "Directory watched for import files")
	watchEnabled := fs.String("import-watch", "", "Watch the import directory (default: true when a directory is set)")
	concurrency := fs.String("import-concurrency", "", "Files imported in parallel (default: 4)")
	settle := fs.String("import-settle", "", "Quiet period before a dropped file is imported (default: 2s)")

	tieBreakRules := fs.String("tiebreak-rules", "", "YAML file replacing the built-in tie-break rules")
	adminKey := fs.String("admin-key", "", "Key required by admin endpoints")
	regRate := fs.String("registration-rate", "", "Registrations per second per client (default: 0.2)")
	regBurst := fs.String("registration-burst", "", "Registration burst per client (default: 3)")
	metrics := fs.String("metrics", "", "Expose /metrics (default: true)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env files are fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Import: ImportConfig{
			WatchDir:    getConfigValue(*watchDir, "IMPORT_WATCH_DIR", ""),
			Concurrency: getIntConfigValue(*concurrency, "IMPORT_CONCURRENCY", 4),
		},
		Normalize: NormalizeConfig{
			TieBreakRulesPath: getConfigValue(*tieBreakRules, "TIEBREAK_RULES_PATH", ""),
		},
		Admin: AdminConfig{
			APIKey: getConfigValue(*adminKey, "ADMIN_API_KEY", ""),
		},
		Registration: RegistrationConfig{
			RatePerSecond: getFloatConfigValue(*regRate, "REGISTRATION_RATE", 0.2),
			Burst:         getIntConfigValue(*regBurst, "REGISTRATION_BURST", 3),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolConfigValue(*metrics, "METRICS_ENABLED", true),
		},
	}
	cfg.Import.WatchEnabled = getBoolConfigValue(*watchEnabled, "IMPORT_WATCH_ENABLED", cfg.Import.WatchDir != "")

	durations := []struct {
		name   string
		flag   string
		envKey string
		def    string
		dst    *time.Duration
	}{
		{"read timeout", *readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{"write timeout", *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{"idle timeout", *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"import settle delay", *settle, "IMPORT_SETTLE_DELAY", "2s", &cfg.Import.SettleDelay},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.def)
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.dst = v
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.Import.WatchEnabled && c.Import.WatchDir == "" {
		return errors.New("import watching needs IMPORT_WATCH_DIR")
	}
	if c.Import.Concurrency < 1 {
		return fmt.Errorf("import concurrency must be at least 1, got %d", c.Import.Concurrency)
	}
	if c.Registration.RatePerSecond <= 0 || c.Registration.Burst < 1 {
		return fmt.Errorf("invalid registration limit: rate %v, burst %d", c.Registration.RatePerSecond, c.Registration.Burst)
	}
	if c.App.Environment == "production" && c.Admin.APIKey != "" && len(c.Admin.APIKey) < 16 {
		return errors.New("ADMIN_API_KEY must be at least 16 characters in production")
	}
	return nil
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Data.BasePath, err = expandPath(c.Data.BasePath, filepath.Join(homeDir, ".lca", "data")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Import.WatchDir, err = expandPath(c.Import.WatchDir, ""); err != nil {
		return fmt.Errorf("invalid import directory: %w", err)
	}
	if c.Normalize.TieBreakRulesPath, err = expandPath(c.Normalize.TieBreakRulesPath, ""); err != nil {
		return fmt.Errorf("invalid tie-break rules path: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes"
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments). Variables already set
// in the environment win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- config file path is operator supplied
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}
