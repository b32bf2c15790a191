package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token          string
	DatabaseURL    string
	MigrationsPath string
	CommandPrefix  string
	Locale         string
	Timezone       string
	SweepInterval  time.Duration
	ReloadInterval time.Duration
}

const (
	defaultDatabaseURL    = "postgres://localhost:5432/eventboard?sslmode=disable"
	defaultMigrationsPath = "migrations"
	defaultPrefix         = "!"
	defaultLocale         = "en"
	defaultSweep          = 60 * time.Second
	defaultReload         = 15 * time.Minute
)

// Load charge la configuration depuis .env puis l'environnement et la valide.
func Load() (*Config, error) {
	// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Token:          getenv("TOKEN"),
		DatabaseURL:    getenv("DATABASE_URL"),
		MigrationsPath: getenv("MIGRATIONS_PATH"),
		CommandPrefix:  getenv("COMMAND_PREFIX"),
		Locale:         getenv("DEFAULT_LOCALE"),
		Timezone:       getenv("TIMEZONE"),
	}

	var err error
	if cfg.SweepInterval, err = duration(getenv, "SWEEP_INTERVAL", defaultSweep); err != nil {
		return nil, err
	}
	if cfg.ReloadInterval, err = duration(getenv, "RELOAD_INTERVAL", defaultReload); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate applique les valeurs par défaut puis les règles sur la configuration chargée.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: TOKEN est requis et ne peut pas être vide")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		c.DatabaseURL = defaultDatabaseURL
	}
	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
	}

	if c.MigrationsPath == "" {
		c.MigrationsPath = defaultMigrationsPath
	}
	if c.CommandPrefix == "" {
		c.CommandPrefix = defaultPrefix
	}
	if strings.ContainsAny(c.CommandPrefix, " \t\n") {
		return fmt.Errorf("config: COMMAND_PREFIX ne doit pas contenir d'espace")
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}

	if c.SweepInterval < time.Second {
		return fmt.Errorf("config: SWEEP_INTERVAL doit être d'au moins 1s (reçu %s)", c.SweepInterval)
	}
	if c.ReloadInterval < time.Second {
		return fmt.Errorf("config: RELOAD_INTERVAL doit être d'au moins 1s (reçu %s)", c.ReloadInterval)
	}
	return nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s invalide (%q): %w", key, raw, err)
	}
	return d, nil
}
