// Package config loads server settings from an optional YAML or TOML file
// and the environment. Environment variables win over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Development credentials used when none are configured. They are refused
// in release mode.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

type Config struct {
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Database   DatabaseConfig   `yaml:"database" toml:"database"`
	Admin      AdminConfig      `yaml:"admin" toml:"admin"`
	SMTP       SMTPConfig       `yaml:"smtp" toml:"smtp"`
	Contact    ContactConfig    `yaml:"contact" toml:"contact"`
	Visitors   VisitorsConfig   `yaml:"visitors" toml:"visitors"`
	Migrations MigrationsConfig `yaml:"migrations" toml:"migrations"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
	// Mode is the gin mode: debug, release or test.
	Mode string `yaml:"mode" toml:"mode"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type AdminConfig struct {
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	// PasswordHash is a bcrypt hash; it takes precedence over Password.
	PasswordHash string `yaml:"password_hash" toml:"password_hash"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     string `yaml:"port" toml:"port"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	To       string `yaml:"to" toml:"to"`
}

type ContactConfig struct {
	SimulatedDelay    time.Duration `yaml:"-" toml:"-"`
	SimulatedDelayRaw string        `yaml:"simulated_delay" toml:"simulated_delay"`
}

type VisitorsConfig struct {
	Enabled      bool          `yaml:"enabled" toml:"enabled"`
	Retention    time.Duration `yaml:"-" toml:"-"`
	RetentionRaw string        `yaml:"retention" toml:"retention"`
}

type MigrationsConfig struct {
	// ResetExperience discards stored experience entries on every start and
	// re-seeds the bootstrap entry.
	ResetExperience bool `yaml:"reset_experience" toml:"reset_experience"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Addr: ":8080", Mode: "debug"},
		Database:   DatabaseConfig{Path: filepath.Join("data", "portfolio.db")},
		SMTP:       SMTPConfig{Host: "smtp.gmail.com", Port: "587"},
		Contact:    ContactConfig{SimulatedDelayRaw: "1s"},
		Visitors:   VisitorsConfig{Enabled: true, RetentionRaw: "8760h"},
		Migrations: MigrationsConfig{ResetExperience: true},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, the file at path (skipped
// when path is empty) and the environment. ${VAR} references in the file are
// expanded.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded := expandEnvVars(string(data))

		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			err = yaml.Unmarshal([]byte(expanded), cfg)
		case ".toml":
			_, err = toml.Decode(expanded, cfg)
		default:
			return nil, fmt.Errorf("unsupported config format %q", ext)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or the empty
// string when it is unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	set(&cfg.Server.Mode, "GIN_MODE")
	set(&cfg.Database.Path, "DATABASE_PATH")
	set(&cfg.Admin.Username, "ADMIN_USERNAME")
	set(&cfg.Admin.Password, "ADMIN_PASSWORD")
	set(&cfg.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	set(&cfg.SMTP.Host, "SMTP_HOST")
	set(&cfg.SMTP.Port, "SMTP_PORT")
	set(&cfg.SMTP.User, "SMTP_USER")
	set(&cfg.SMTP.Password, "SMTP_PASS")
	set(&cfg.SMTP.To, "TO_EMAIL")
	set(&cfg.Logging.Level, "LOG_LEVEL")
}

func parseDurations(cfg *Config) error {
	var err error
	if cfg.Contact.SimulatedDelayRaw != "" {
		cfg.Contact.SimulatedDelay, err = time.ParseDuration(cfg.Contact.SimulatedDelayRaw)
		if err != nil {
			return fmt.Errorf("parsing contact.simulated_delay %q: %w", cfg.Contact.SimulatedDelayRaw, err)
		}
	}
	if cfg.Visitors.RetentionRaw != "" {
		cfg.Visitors.Retention, err = time.ParseDuration(cfg.Visitors.RetentionRaw)
		if err != nil {
			return fmt.Errorf("parsing visitors.retention %q: %w", cfg.Visitors.RetentionRaw, err)
		}
	}
	return nil
}

// Validate reports the first problem found.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Contact.SimulatedDelay < 0 {
		return fmt.Errorf("contact.simulated_delay must not be negative")
	}
	if c.Server.Mode == "release" && c.Admin.PasswordHash == "" && c.Admin.Password == "" {
		return fmt.Errorf("admin password is required in release mode (set ADMIN_PASSWORD or ADMIN_PASSWORD_HASH)")
	}
	return nil
}

// AdminUsername returns the configured username or the development default.
func (c *Config) AdminUsername() string {
	if c.Admin.Username == "" {
		return DefaultAdminUsername
	}
	return c.Admin.Username
}

// DevDefaults lists the development fallbacks in effect, for startup
// warnings.
func (c *Config) DevDefaults() []string {
	var out []string
	if c.Admin.Username == "" {
		out = append(out, "Using default admin username. Set ADMIN_USERNAME environment variable.")
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		out = append(out, "Using default admin password. Set ADMIN_PASSWORD environment variable.")
	}
	if c.SMTP.User == "" || c.SMTP.Password == "" {
		out = append(out, "SMTP credentials not configured; contact form submissions are simulated.")
	}
	return out
}
