package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is read when CONFIG_PATH is not set.
	DefaultConfigPath = "config.json"
	// DefaultPort is used when PORT is absent or not a valid port number.
	DefaultPort = 5000

	defaultAuditDBPath    = "./data/audit.db"
	defaultRequestTimeout = 20 * time.Second
	defaultLogFormat      = "json"

	envConfigPath     = "CONFIG_PATH"
	envMongoURI       = "MONGODB_URI"
	envDBName         = "MONGODB_DB_NAME"
	envDBAlias        = "MONGODB_DB"
	envCollectionName = "MONGODB_COLLECTION_NAME"
	envCollectionAlt  = "MONGODB_COLLECTION"
	envPort           = "PORT"

	// AuditDisabled turns the audit log off when used as AUDIT_DB_PATH.
	AuditDisabled = "off"
)

// MongoSettings identifies the collection holding device records.
type MongoSettings struct {
	URI        string
	Database   string
	Collection string
}

// Config is the process-wide configuration resolved once at startup.
type Config struct {
	Mongo MongoSettings
	Port  int
	// Source describes where Mongo settings came from: "file:<path>" or "env".
	Source string

	LogLevel           slog.Level
	LogFormat          string
	AuditDBPath        string
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
}

// Addr returns the HTTP listen address for Port.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// AuditEnabled reports whether device history should be recorded.
func (c Config) AuditEnabled() bool {
	return c.AuditDBPath != "" && !strings.EqualFold(c.AuditDBPath, AuditDisabled)
}

// Error is a startup failure: the process must not serve traffic after it.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve configuration (%s): %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Resolver resolves configuration from a JSON file and environment variables.
type Resolver struct {
	DefaultPath string
	LookupEnv   func(key string) (string, bool)
	ReadFile    func(path string) ([]byte, error)
}

// NewResolver returns a Resolver bound to the process environment.
func NewResolver() Resolver {
	return Resolver{DefaultPath: DefaultConfigPath, LookupEnv: os.LookupEnv, ReadFile: os.ReadFile}
}

// Resolve resolves configuration from the process environment.
func Resolve() (Config, error) {
	return NewResolver().Resolve()
}

// Resolve applies the precedence: explicit CONFIG_PATH (no fallback), then the
// default file, then environment variables. Mongo settings are validated in
// every branch; ambient settings never fail.
func (r Resolver) Resolve() (Config, error) {
	mongo, source, err := r.resolveMongo()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Mongo:              mongo,
		Port:               parsePort(r.getenv(envPort, "")),
		Source:             source,
		LogLevel:           parseLogLevel(r.getenv("LOG_LEVEL", "info")),
		LogFormat:          parseLogFormat(r.getenv("LOG_FORMAT", defaultLogFormat)),
		AuditDBPath:        r.getenv("AUDIT_DB_PATH", defaultAuditDBPath),
		CORSAllowedOrigins: parseList(r.getenv("CORS_ALLOWED_ORIGINS", "*")),
		RequestTimeout:     parseDuration(r.getenv("HTTP_REQUEST_TIMEOUT", ""), defaultRequestTimeout),
	}, nil
}

func (r Resolver) resolveMongo() (MongoSettings, string, error) {
	if override := r.getenv(envConfigPath, ""); override != "" {
		source := "file:" + override
		settings, err := r.loadFile(override)
		if err != nil {
			return MongoSettings{}, source, &Error{Source: source, Err: fmt.Errorf("%s=%q: %w", envConfigPath, override, err)}
		}
		return settings, source, nil
	}

	if r.DefaultPath != "" {
		// An unusable default file falls back to the environment so that
		// env-only deployments keep working.
		if settings, err := r.loadFile(r.DefaultPath); err == nil {
			return settings, "file:" + r.DefaultPath, nil
		}
	}

	settings, err := r.fromEnv()
	if err != nil {
		return MongoSettings{}, "env", &Error{Source: "env", Err: err}
	}
	return settings, "env", nil
}

type fileConfig struct {
	MongoDB *struct {
		URI        string `json:"uri"`
		Database   string `json:"database"`
		Collection string `json:"collection"`
	} `json:"mongodb"`
}

func (r Resolver) loadFile(path string) (MongoSettings, error) {
	readFile := r.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return MongoSettings{}, fmt.Errorf("config file %q does not exist", path)
	}
	if err != nil {
		return MongoSettings{}, fmt.Errorf("reading config file: %w", err)
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return MongoSettings{}, fmt.Errorf("invalid JSON in config file %q: %w", path, err)
	}
	if raw.MongoDB == nil {
		return MongoSettings{}, errors.New("config missing required section \"mongodb\"")
	}
	settings := MongoSettings{
		URI:        strings.TrimSpace(raw.MongoDB.URI),
		Database:   strings.TrimSpace(raw.MongoDB.Database),
		Collection: strings.TrimSpace(raw.MongoDB.Collection),
	}
	if err := settings.Validate(); err != nil {
		return MongoSettings{}, fmt.Errorf("validating config file %q: %w", path, err)
	}
	return settings, nil
}

func (r Resolver) fromEnv() (MongoSettings, error) {
	settings := MongoSettings{
		URI:        r.getenv(envMongoURI, ""),
		Database:   r.getenv(envDBName, r.getenv(envDBAlias, "")),
		Collection: r.getenv(envCollectionName, r.getenv(envCollectionAlt, "")),
	}
	if settings.URI == "" && settings.Database == "" && settings.Collection == "" {
		return MongoSettings{}, fmt.Errorf(
			"MongoDB settings not found: provide %s, set %s, or set %s, %s (or %s) and %s (or %s)",
			DefaultConfigPath, envConfigPath, envMongoURI, envDBName, envDBAlias, envCollectionName, envCollectionAlt,
		)
	}
	if err := settings.Validate(); err != nil {
		return MongoSettings{}, err
	}
	return settings, nil
}

// Validate checks the URI scheme and that database and collection are set.
func (m MongoSettings) Validate() error {
	var problems []string
	if m.URI == "" {
		problems = append(problems, "MongoDB URI must be a non-empty string")
	} else {
		lowered := strings.ToLower(m.URI)
		if !strings.HasPrefix(lowered, "mongodb://") && !strings.HasPrefix(lowered, "mongodb+srv://") {
			problems = append(problems, "MongoDB URI must start with 'mongodb://' or 'mongodb+srv://'")
		}
	}
	if m.Database == "" {
		problems = append(problems, "database name must be a non-empty string")
	}
	if m.Collection == "" {
		problems = append(problems, "collection name must be a non-empty string")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// RedactedURI returns URI with any password replaced, for logs and CLI output.
func (m MongoSettings) RedactedURI() string {
	scheme, rest, ok := strings.Cut(m.URI, "://")
	if !ok {
		return m.URI
	}
	authorityEnd := strings.IndexAny(rest, "/?")
	if authorityEnd < 0 {
		authorityEnd = len(rest)
	}
	authority := rest[:authorityEnd]
	at := strings.LastIndex(authority, "@")
	if at < 0 {
		return m.URI
	}
	user, _, hasPassword := strings.Cut(authority[:at], ":")
	if !hasPassword {
		return m.URI
	}
	return scheme + "://" + user + ":xxxxx" + authority[at:] + rest[authorityEnd:]
}

func (r Resolver) getenv(key string, fallback string) string {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if value, ok := lookup(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func parsePort(raw string) int {
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return DefaultPort
	}
	return port
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseLogFormat(raw string) string {
	if strings.EqualFold(raw, "text") {
		return "text"
	}
	return defaultLogFormat
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
