package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"visitor-registration/internal/email"
)

const DEFAULT_SUPPORT_URL = "https://github.com/tielbeke/visitor-registration"
const QR_IMAGE_SIZE = 512

type Config struct {
	// Secret key for signing badge tokens. Must be set in production.
	Secret string `mapstructure:"secret"`
	// TTL for self-checkout badge tokens in seconds.
	BadgeTTL uint `mapstructure:"badge_ttl"`
	// Nonce expiry skew in seconds. Nonces outlive their badge token by this much.
	BadgeTTLSkew uint   `mapstructure:"badge_ttl_skew"`
	NonceStore   string `mapstructure:"nonce_store"`
	LogLevel     string `mapstructure:"log_level"`

	// Comma separated list of allowed CIDR networks. Empty means allow all.
	AllowedNetworks string `mapstructure:"allowed_networks"`

	// Path to the YAML host directory (host name -> email address).
	HostsFile string `mapstructure:"hosts_file"`

	BaseURL    string `mapstructure:"base_url"` // Base URL for the application. May be relative, e.g. /visitors/, or absolute, e.g. https://example.com/visitors/
	SupportURL string `mapstructure:"support_url"`

	Storage Storage `mapstructure:"storage"`

	// Host notification email configuration
	Email email.Config `mapstructure:",squash"`
}

var Cfg *Config

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig reads configuration from environment variables and returns a Config struct.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvPrefix("")

	if len(configFile) > 0 {
		for _, path := range configFile {
			v.SetConfigFile(path)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	// Load configuration from environment variables
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if len(configFile) > 0 || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
		// No config file present, run on defaults and environment
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	// Verify skew is sensible, at max x0.5 of the badge TTL
	if cfg.BadgeTTLSkew > cfg.BadgeTTL/2 {
		maxSkew := cfg.BadgeTTL / 2
		slog.Warn("BADGE_TTL_SKEW must be at most 0.5 * BADGE_TTL", slog.Int("actual", int(cfg.BadgeTTLSkew)), slog.Int("max", int(maxSkew)))
		cfg.BadgeTTLSkew = maxSkew
	}

	// Convert relative sqlite path to absolute instance folder
	if cfg.Storage.SQLite != nil && cfg.Storage.SQLite.Path != "" {
		if cfg.Storage.SQLite.Path == ":memory:" {
			// In-memory database, do nothing
		} else if !os.IsPathSeparator(cfg.Storage.SQLite.Path[0]) {
			cfg.Storage.SQLite.Path = fmt.Sprintf("%s/%s", getConfigPath(), cfg.Storage.SQLite.Path)
		}
	}

	// Warn if secret is missing - this is a critical security setting for production
	if cfg.Secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("SECRET configuration variable is required in production")
		} else {
			slog.Warn("Secret is not set. Do not use in production.")
		}
	}

	return &cfg, nil
}
