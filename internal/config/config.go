package config // package config loads application configuration from environment variables

import (
	"errors"  // errors joins every configuration problem into one report
	"fmt"     // fmt formats validation messages
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings normalizes enum-like values
	"time"    // time parses token lifetimes

	"github.com/joho/godotenv" // godotenv loads a local .env file into the process env
)

// Storage drivers understood by the server.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values of the API server. Each
// field corresponds to an environment variable.
type Config struct {
	Env      string // application environment (e.g. "dev", "prod")
	Port     string // HTTP port to listen on
	BasePath string // prefix every route is mounted under, e.g. "/jobportal/backend"

	DBDriver string // "mysql" or "sqlite"
	DBUser   string // database username
	DBPass   string // database password (optional)
	DBHost   string // database host address
	DBPort   string // database port number
	DBName   string // database name
	DBPath   string // sqlite file, ":memory:" when empty

	JWTSecret  string        // secret used to sign JWTs
	TokenTTL   time.Duration // bearer token lifetime
	BcryptCost int           // bcrypt cost for password hashing

	LogLevel       string // debug|info|warn|error
	EventsEnabled  bool   // publish domain events to RabbitMQ
	RabbitURL      string // AMQP connection URL
	MetricsEnabled bool   // expose /metrics
}

// LoadEnvFile reads .env from the working directory. Variables already set
// in the process win; a missing file is ignored.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Load reads configuration from the environment and exits the program on
// any error.
func Load() Config {
	LoadEnvFile()
	cfg, err := LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// LoadFromEnv reads and validates the server configuration without exiting.
func LoadFromEnv() (Config, error) {
	var errs []error
	cfg := Config{
		Env:      getDefault("APP_ENV", "dev"),              // environment (dev/test/prod)
		Port:     getDefault("APP_PORT", "8080"),            // port to bind the HTTP server
		BasePath: normalizeBase(os.Getenv("API_BASE_PATH")), // route prefix
		DBDriver: strings.ToLower(getDefault("DB_DRIVER", DriverMySQL)),
		DBUser:   os.Getenv("DB_USER"),
		DBPass:   os.Getenv("DB_PASS"), // empty allowed
		DBHost:   os.Getenv("DB_HOST"),
		DBPort:   getDefault("DB_PORT", "3306"),
		DBName:   os.Getenv("DB_NAME"),
		DBPath:   os.Getenv("DB_PATH"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		LogLevel:  getDefault("LOG_LEVEL", "info"),
		RabbitURL: firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, missing("JWT_SECRET"))
	}

	switch cfg.DBDriver {
	case DriverMySQL:
		for _, k := range []string{"DB_USER", "DB_HOST", "DB_NAME"} {
			if os.Getenv(k) == "" {
				errs = append(errs, missing(k))
			}
		}
	case DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("invalid DB_DRIVER %q (want mysql or sqlite)", cfg.DBDriver))
	}

	var err error
	if cfg.TokenTTL, err = durationDefault("TOKEN_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.BcryptCost, err = intDefault("BCRYPT_COST", 10); err != nil {
		errs = append(errs, err)
	}
	if cfg.EventsEnabled, err = boolDefault("EVENTS_ENABLED", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.MetricsEnabled, err = boolDefault("METRICS_ENABLED", true); err != nil {
		errs = append(errs, err)
	}
	if cfg.EventsEnabled && cfg.RabbitURL == "" {
		errs = append(errs, missing("RABBITMQ_URL"))
	}

	return cfg, errors.Join(errs...)
}

// Backends selectable by the CLI.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"

	SnapshotFile  = "file"
	SnapshotRedis = "redis"
)

// ClientConfig configures the jobportal CLI.
type ClientConfig struct {
	Backend     string // "remote" talks to the API, "local" uses the embedded store
	APIURL      string // API base URL including any base path
	SessionPath string // where the session JSON is kept
	Snapshot    string // "file" or "redis", local backend only
	DataPath    string // snapshot file for the local backend
	SnapshotKey string // redis key for the local backend
	TokenSecret string // signing secret for locally issued tokens
	TokenTTL    time.Duration
	LogLevel    string
}

// LoadClient reads the CLI configuration. Paths default to files under the
// user's config directory.
func LoadClient() (ClientConfig, error) {
	LoadEnvFile()

	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	dir += string(os.PathSeparator) + "jobportal"

	cfg := ClientConfig{
		Backend:     strings.ToLower(getDefault("JOBPORTAL_BACKEND", BackendRemote)),
		APIURL:      strings.TrimRight(getDefault("JOBPORTAL_API_URL", "http://localhost:8080"), "/"),
		SessionPath: getDefault("JOBPORTAL_SESSION", dir+string(os.PathSeparator)+"session.json"),
		Snapshot:    strings.ToLower(getDefault("JOBPORTAL_SNAPSHOT", SnapshotFile)),
		DataPath:    getDefault("JOBPORTAL_DATA", dir+string(os.PathSeparator)+"jobportal.db"),
		SnapshotKey: os.Getenv("JOBPORTAL_SNAPSHOT_KEY"),
		TokenSecret: firstNonEmpty(os.Getenv("LOCAL_TOKEN_SECRET"), os.Getenv("JWT_SECRET")),
		LogLevel:    getDefault("LOG_LEVEL", "warn"),
	}

	var errs []error
	switch cfg.Backend {
	case BackendRemote:
	case BackendLocal:
		if cfg.TokenSecret == "" {
			errs = append(errs, missing("LOCAL_TOKEN_SECRET"))
		}
		if cfg.Snapshot != SnapshotFile && cfg.Snapshot != SnapshotRedis {
			errs = append(errs, fmt.Errorf("invalid JOBPORTAL_SNAPSHOT %q (want file or redis)", cfg.Snapshot))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid JOBPORTAL_BACKEND %q (want remote or local)", cfg.Backend))
	}
	if cfg.TokenTTL, err = durationDefault("TOKEN_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	return cfg, errors.Join(errs...)
}

func missing(key string) error {
	return fmt.Errorf("missing required env var: %s", key)
}

// getDefault returns the value of key, or def when it is unset or empty.
func getDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intDefault(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", key, s)
	}
	return n, nil
}

func boolDefault(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q", key, s)
	}
	return b, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, s)
	}
	return d, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeBase turns "jobportal/backend/" into "/jobportal/backend".
func normalizeBase(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
