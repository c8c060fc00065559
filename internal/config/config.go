// Package config loads service configuration from the environment, with an
// optional YAML file overlay and support for sealed ("enc:") values.
//
// Precedence, lowest to highest: built-in defaults, the YAML file named by
// NEXTLIVE_CONFIG, environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"nextlive/internal/crypto"
)

// Config holds everything the service needs at startup.
type Config struct {
	Port string `yaml:"port"`

	DatabaseURL       string `yaml:"database_url"`
	DatabaseAuthToken string `yaml:"database_auth_token"`

	// RefreshSecret is the bearer token the scheduled caller must present.
	RefreshSecret string `yaml:"refresh_secret"`

	TicketDiveBaseURL string        `yaml:"ticketdive_base_url"`
	HTTPTimeout       time.Duration `yaml:"http_timeout"`

	BatchSize  int           `yaml:"batch_size"`
	BatchDelay time.Duration `yaml:"batch_delay"`

	LogLevel string `yaml:"log_level"`

	Twitter Twitter `yaml:"twitter"`
}

// Twitter holds the OAuth1 credentials for the announcement notifier. All
// four must be set for the notifier to be enabled.
type Twitter struct {
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	AccessToken  string `yaml:"access_token"`
	AccessSecret string `yaml:"access_secret"`
}

// Load builds the configuration. Sealed values are unsealed with the
// passphrase in NEXTLIVE_SECRET_KEY.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        "8080",
		BatchSize:   50,
		BatchDelay:  700 * time.Millisecond,
		HTTPTimeout: 30 * time.Second,
		LogLevel:    "info",
	}

	if path := os.Getenv("NEXTLIVE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.DatabaseAuthToken = getEnv("DATABASE_AUTH_TOKEN", cfg.DatabaseAuthToken)
	cfg.RefreshSecret = getEnv("REFRESH_SECRET", cfg.RefreshSecret)
	cfg.TicketDiveBaseURL = getEnv("TICKETDIVE_BASE_URL", cfg.TicketDiveBaseURL)
	cfg.HTTPTimeout = getEnvAsDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.BatchSize = getEnvAsInt("BATCH_SIZE", cfg.BatchSize)
	cfg.BatchDelay = getEnvAsDuration("BATCH_DELAY", cfg.BatchDelay)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Twitter.APIKey = getEnv("TWITTER_API_KEY", cfg.Twitter.APIKey)
	cfg.Twitter.APISecret = getEnv("TWITTER_API_SECRET", cfg.Twitter.APISecret)
	cfg.Twitter.AccessToken = getEnv("TWITTER_ACCESS_TOKEN", cfg.Twitter.AccessToken)
	cfg.Twitter.AccessSecret = getEnv("TWITTER_ACCESS_SECRET", cfg.Twitter.AccessSecret)

	if err := cfg.unseal(crypto.NewSealer(os.Getenv("NEXTLIVE_SECRET_KEY"))); err != nil {
		return nil, err
	}

	return cfg, nil
}

// unseal decrypts any sealed values in place.
func (c *Config) unseal(sealer *crypto.Sealer) error {
	fields := []*string{
		&c.DatabaseAuthToken,
		&c.RefreshSecret,
		&c.Twitter.APIKey,
		&c.Twitter.APISecret,
		&c.Twitter.AccessToken,
		&c.Twitter.AccessSecret,
	}
	for _, f := range fields {
		v, err := sealer.Unseal(*f)
		if err != nil {
			return fmt.Errorf("unsealing config value: %w", err)
		}
		*f = v
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
