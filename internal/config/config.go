// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"addr"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the config file.
	Config string `json:"-"`

	// JWTSecret signs access tokens issued at login.
	JWTSecret string `json:"jwt_secret"`

	// JWTExpireMinutes is the lifetime of issued access tokens.
	JWTExpireMinutes int `json:"jwt_expire_minutes"`

	// GoogleClientID is the OAuth client id for the calendar integration.
	GoogleClientID string `json:"google_client_id"`

	// GoogleClientSecret is the OAuth client secret.
	GoogleClientSecret string `json:"google_client_secret"`

	// GoogleRedirectURI is the OAuth callback URL registered with Google.
	GoogleRedirectURI string `json:"google_redirect_uri"`

	// EncryptionKey protects stored refresh tokens at rest.
	EncryptionKey string `json:"encryption_key"`

	// GeminiAPIKey authorizes chat requests against the Gemini API.
	GeminiAPIKey string `json:"gemini_api_key"`

	// FrontendURL is where OAuth callbacks redirect after completion.
	FrontendURL string `json:"frontend_url"`

	// CORSOrigins is a comma-separated list of allowed origins.
	CORSOrigins string `json:"cors_origins"`

	// FeedURL is the RSS feed polled by the article worker.
	FeedURL string `json:"feed_url"`

	// LogLevel sets the zap log level.
	LogLevel string `json:"log_level"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.LogLevel, "l", "Info", "log level")

	options.JWTExpireMinutes = 10080
	options.FrontendURL = "http://localhost:3000"
	options.CORSOrigins = "http://localhost:3000"
	options.FeedURL = "https://www.sciencedaily.com/rss/health_medicine/menopause.xml"
}

// envOverrides maps environment variable names to the option fields they
// override when set.
func envOverrides(o *Options) {
	for env, dst := range map[string]*string{
		"SERVER_ADDRESS":       &o.Addr,
		"DATABASE_DSN":         &o.DatabaseDSN,
		"JWT_SECRET":           &o.JWTSecret,
		"GOOGLE_CLIENT_ID":     &o.GoogleClientID,
		"GOOGLE_CLIENT_SECRET": &o.GoogleClientSecret,
		"GOOGLE_REDIRECT_URI":  &o.GoogleRedirectURI,
		"ENCRYPTION_KEY":       &o.EncryptionKey,
		"GEMINI_API_KEY":       &o.GeminiAPIKey,
		"FRONTEND_URL":         &o.FrontendURL,
		"CORS_ORIGINS":         &o.CORSOrigins,
		"FEED_URL":             &o.FeedURL,
		"LOG_LEVEL":            &o.LogLevel,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("JWT_EXPIRE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			o.JWTExpireMinutes = n
		}
	}
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	envOverrides(options)

	return options
}

// CORSOriginsList splits the configured origins into a slice.
func (o *Options) CORSOriginsList() []string {
	parts := strings.Split(o.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
