// Package config loads and validates application configuration from
// environment variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // report timezones must resolve on hosts without zoneinfo

	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds all configuration values for the API server and the CLI.
// Values are populated by Load.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `mapstructure:"port"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `mapstructure:"cors_origins"`

	// StoreDriver selects the storage backend: sqlite (default), postgres,
	// mongo or memory.
	StoreDriver string `mapstructure:"store_driver"`

	// DatabaseURL is the Postgres connection string. Required for postgres.
	DatabaseURL string `mapstructure:"database_url"`

	// SQLitePath is the SQLite database file. Defaults to "shuttle.db".
	SQLitePath string `mapstructure:"sqlite_path"`

	// MongoURI is the MongoDB connection string. Required for mongo.
	MongoURI string `mapstructure:"mongo_uri"`

	// MongoDatabase defaults to "shuttle".
	MongoDatabase string `mapstructure:"mongo_database"`

	// JWTSecret signs session tokens. Required.
	JWTSecret string `mapstructure:"jwt_secret"`

	// TokenTTL is how long a session token stays valid. Defaults to 12h.
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	// RootUsername and RootPassword are the super administrator's login.
	// Root login is disabled while RootPassword is empty.
	RootUsername string `mapstructure:"root_username"`
	RootPassword string `mapstructure:"root_password"`

	// Timezone is the IANA zone report periods are computed in.
	// Defaults to "America/Caracas".
	Timezone string `mapstructure:"timezone"`

	// CompanyName and CompanyRIF are printed on report letterheads.
	CompanyName string `mapstructure:"company_name"`
	CompanyRIF  string `mapstructure:"company_rif"`

	// SeedDefaults writes the default admin, passengers and conductors into
	// empty storage at startup. Defaults to true.
	SeedDefaults bool `mapstructure:"seed_defaults"`

	// MaxBodyBytes caps request bodies. Defaults to 8 MiB, enough for a
	// photographed QR code.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	// ReportBucket, when set, receives a copy of every generated report file.
	ReportBucket string `mapstructure:"report_bucket"`
	ReportRegion string `mapstructure:"report_region"`
	ReportPrefix string `mapstructure:"report_prefix"`

	// ReportEndpoint points the archive at an S3-compatible service such as
	// MinIO. Empty uses AWS.
	ReportEndpoint string `mapstructure:"report_endpoint"`

	// ReportAccessKeyID and ReportSecretAccessKey are static archive
	// credentials. When empty the default AWS credential chain is used.
	ReportAccessKeyID     string `mapstructure:"report_access_key_id"`
	ReportSecretAccessKey string `mapstructure:"report_secret_access_key"`
}

// defaults lists every key with its default value. Every key is also bound
// to the upper-case environment variable of the same name.
var defaults = map[string]any{
	"port":           "8080",
	"log_level":      "info",
	"cors_origins":   "http://localhost:5173",
	"store_driver":   DriverSQLite,
	"database_url":   "",
	"sqlite_path":    "shuttle.db",
	"mongo_uri":      "",
	"mongo_database": "shuttle",
	"jwt_secret":     "",
	"token_ttl":      "12h",
	"root_username":  "Petroboscan",
	"root_password":  "",
	"timezone":       "America/Caracas",
	"company_name":   "CORPORACIÓN JF C.A.",
	"company_rif":    "J-00000000-0",
	"seed_defaults":  true,
	"max_body_bytes": int64(8 << 20),
	"report_bucket":  "",
	"report_region":  "us-east-1",
	"report_prefix":  "reports/",

	"report_endpoint":          "",
	"report_access_key_id":     "",
	"report_secret_access_key": "",
}

// Load reads configuration from environment variables and, when
// SHUTTLE_CONFIG names one, a YAML file. Environment variables win over the
// file. Returns one error listing every required variable that is not set
// and every value that does not parse.
func Load() (Config, error) {
	v := viper.New()
	for key, def := range defaults {
		v.SetDefault(key, def)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, fmt.Errorf("config.Load: bind %s: %w", key, err)
		}
	}

	if err := v.BindEnv("config_file", "SHUTTLE_CONFIG"); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	cfg := Config{
		Port:          v.GetString("port"),
		LogLevel:      v.GetString("log_level"),
		CORSOrigins:   splitCSV(v.GetString("cors_origins")),
		StoreDriver:   strings.ToLower(v.GetString("store_driver")),
		DatabaseURL:   v.GetString("database_url"),
		SQLitePath:    v.GetString("sqlite_path"),
		MongoURI:      v.GetString("mongo_uri"),
		MongoDatabase: v.GetString("mongo_database"),
		JWTSecret:     v.GetString("jwt_secret"),
		TokenTTL:      v.GetDuration("token_ttl"),
		RootUsername:  v.GetString("root_username"),
		RootPassword:  v.GetString("root_password"),
		Timezone:      v.GetString("timezone"),
		CompanyName:   v.GetString("company_name"),
		CompanyRIF:    v.GetString("company_rif"),
		SeedDefaults:  v.GetBool("seed_defaults"),
		MaxBodyBytes:  v.GetInt64("max_body_bytes"),
		ReportBucket:  v.GetString("report_bucket"),
		ReportRegion:  v.GetString("report_region"),
		ReportPrefix:  v.GetString("report_prefix"),

		ReportEndpoint:        v.GetString("report_endpoint"),
		ReportAccessKeyID:     v.GetString("report_access_key_id"),
		ReportSecretAccessKey: v.GetString("report_secret_access_key"),
	}

	var (
		missing []string
		invalid []error
	)
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
	case DriverSQLite, DriverMemory:
	default:
		invalid = append(invalid, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver))
	}
	if cfg.TokenTTL <= 0 {
		invalid = append(invalid, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL))
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		invalid = append(invalid, fmt.Errorf("TIMEZONE: %w", err))
	}

	if len(missing) > 0 {
		invalid = append([]error{
			fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", ")),
		}, invalid...)
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("config.Load: %w", errors.Join(invalid...))
	}

	return cfg, nil
}

// Location returns the configured report timezone. Load has already
// validated it, so the UTC fallback only applies to hand-built configs.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
