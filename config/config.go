package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultPort          = "8080"
	defaultTokenExpiryMs = 1800000 // 30 minutes
	defaultFolderLimit   = 20
	defaultPageSize      = 20
)

type Config struct {
	Port string
	Env  string

	DatabaseURL string

	JWTSecret   string
	TokenExpiry time.Duration

	AuthorizedRedirectURIs []string
	DefaultRedirectURL     string

	FolderLimit     int
	DefaultPageSize int

	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string
}

// Validate checks the parts of the configuration the server cannot run
// without. A missing signing key or database URL is fatal at startup.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.TokenExpiry, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.FolderLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.DefaultPageSize, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.DefaultRedirectURL, validation.Required),
	)
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:                 envOr("PORT", defaultPort),
		Env:                  envOr("ENV", "dev"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		TokenExpiry:          time.Duration(envInt("TOKEN_EXPIRY_MS", defaultTokenExpiryMs)) * time.Millisecond,
		DefaultRedirectURL:   envOr("DEFAULT_REDIRECT_URL", "http://localhost:3000/oauth/redirect"),
		FolderLimit:          envInt("FOLDER_LIMIT", defaultFolderLimit),
		DefaultPageSize:      envInt("DEFAULT_PAGE_SIZE", defaultPageSize),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectBaseURL: envOr("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),
	}

	if uris := os.Getenv("AUTHORIZED_REDIRECT_URIS"); uris != "" {
		for _, uri := range strings.Split(uris, ",") {
			if uri = strings.TrimSpace(uri); uri != "" {
				cfg.AuthorizedRedirectURIs = append(cfg.AuthorizedRedirectURIs, uri)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer in environment, using default")
		return fallback
	}
	return n
}
