// Package config provides functionality for managing configuration options
// for the server using command-line flags, a JSON config file and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN is the PostgreSQL connection string. Takes precedence over MongoURI.
	DatabaseDSN string `json:"database_dsn"`

	// MongoURI is the MongoDB connection string.
	MongoURI string `json:"mongo_uri"`

	// MongoDatabase is the MongoDB database name.
	MongoDatabase string `json:"mongo_database"`

	// TokenSecret signs store session tokens.
	TokenSecret string `json:"token_secret"`

	// TokenTTL is the lifetime of a store session token.
	TokenTTL time.Duration `json:"-"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// fileOptions is the JSON shape of the config file; durations are strings there.
type fileOptions struct {
	*Options
	TokenTTL string `json:"token_ttl"`
}

// Default values.
const (
	DefaultAddress       = "localhost:3000"
	DefaultMongoDatabase = "rede_lojas_db"
	DefaultTokenSecret   = "gophstore-dev-secret-change-me"
	DefaultTokenTTL      = 12 * time.Hour
	DefaultLogLevel      = "Info"
)

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", DefaultAddress, "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "postgres dsn")
	flag.StringVar(&options.MongoURI, "m", "", "mongodb uri")
	flag.StringVar(&options.MongoDatabase, "db-name", DefaultMongoDatabase, "mongodb database name")
	flag.StringVar(&options.TokenSecret, "secret", DefaultTokenSecret, "store session token secret")
	flag.DurationVar(&options.TokenTTL, "token-ttl", DefaultTokenTTL, "store session token lifetime")
	flag.StringVar(&options.LogLevel, "l", DefaultLogLevel, "log level")
	flag.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	flag.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the config file and environment variables
// and returns the resulting Options.
func Parse() (*Options, error) {
	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if err := options.loadFile(); err != nil {
		return nil, err
	}
	if err := options.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return options, nil
}

// loadFile overlays the JSON config file, when it exists.
func (o *Options) loadFile() error {
	if o.Config == "" {
		return nil
	}
	if _, err := os.Stat(o.Config); err != nil {
		return nil
	}
	data, err := os.ReadFile(o.Config)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fo := fileOptions{Options: o}
	if err := json.Unmarshal(data, &fo); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if fo.TokenTTL != "" {
		ttl, err := time.ParseDuration(fo.TokenTTL)
		if err != nil {
			return fmt.Errorf("parse token_ttl: %w", err)
		}
		o.TokenTTL = ttl
	}
	return nil
}

// applyEnv overrides options with environment variables.
func (o *Options) applyEnv(lookup func(string) (string, bool)) error {
	if port, ok := lookup("PORT"); ok && port != "" {
		o.Port = ":" + port
	}
	if addr, ok := lookup("SERVER_ADDRESS"); ok && addr != "" {
		o.Port = addr
	}
	if dsn, ok := lookup("DATABASE_DSN"); ok && dsn != "" {
		o.DatabaseDSN = dsn
	}
	if uri, ok := lookup("MONGO_PUBLIC_URL"); ok && uri != "" {
		o.MongoURI = uri
	}
	if uri, ok := lookup("MONGO_URL"); ok && uri != "" {
		o.MongoURI = uri
	}
	if name, ok := lookup("MONGO_DB"); ok && name != "" {
		o.MongoDatabase = name
	}
	if secret, ok := lookup("TOKEN_SECRET"); ok && secret != "" {
		o.TokenSecret = secret
	}
	if ttl, ok := lookup("TOKEN_TTL"); ok && ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("parse TOKEN_TTL: %w", err)
		}
		o.TokenTTL = d
	}
	if lvl, ok := lookup("LOG_LEVEL"); ok && lvl != "" {
		o.LogLevel = lvl
	}
	return nil
}

// TLSEnabled reports whether the server should listen with TLS.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}
