package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const sqliteScheme = "sqlite://"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	CORS     CORSConfig     `yaml:"cors"`
	Logging  LoggingConfig  `yaml:"logging"`
	Invoice  InvoiceConfig  `yaml:"invoice"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// SQLitePath returns the file path of a sqlite:// URL.
func (d DatabaseConfig) SQLitePath() (string, bool) {
	if !strings.HasPrefix(d.URL, sqliteScheme) {
		return "", false
	}
	return strings.TrimPrefix(d.URL, sqliteScheme), true
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"-"`
	RawTTL     string        `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type InvoiceConfig struct {
	CompanyName    string `yaml:"company_name"`
	CompanyTagline string `yaml:"company_tagline"`
	ThankYou       string `yaml:"thank_you"`
	Currency       string `yaml:"currency"`
	DateLayout     string `yaml:"date_layout"`
	FontDir        string `yaml:"font_dir"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "5000"},
		Auth: AuthConfig{
			RawTTL:     "6h",
			BcryptCost: 10,
		},
		CORS:    CORSConfig{AllowedOrigins: []string{"*"}},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Invoice: InvoiceConfig{
			CompanyName:    "Mumtaz Associates",
			CompanyTagline: "Civil, Architecture & Interior Consultancy",
			ThankYou:       "Thank you for choosing us!",
			Currency:       "Rs. ",
			DateLayout:     "1/2/2006",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE and the environment, in that order of precedence.
func Load() (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(cfg.Auth.RawTTL)
	if err != nil {
		return nil, fmt.Errorf("parsing token_ttl: %w", err)
	}
	cfg.Auth.TokenTTL = ttl

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Port, "SERVER_PORT")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.RawTTL, "TOKEN_TTL")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.Invoice.CompanyName, "INVOICE_COMPANY_NAME")
	setString(&c.Invoice.CompanyTagline, "INVOICE_COMPANY_TAGLINE")
	setString(&c.Invoice.ThankYou, "INVOICE_THANK_YOU")
	setString(&c.Invoice.Currency, "INVOICE_CURRENCY")
	setString(&c.Invoice.DateLayout, "INVOICE_DATE_LAYOUT")
	setString(&c.Invoice.FontDir, "INVOICE_FONT_DIR")

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST must be an integer: %w", err)
		}
		c.Auth.BcryptCost = cost
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(re.FindStringSubmatch(match)[1])
	})
}

// Validate returns the first problem found.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if path, ok := c.Database.SQLitePath(); ok && path == "" {
		return errors.New("DATABASE_URL sqlite:// needs a file path")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost %d out of range 4..31", c.Auth.BcryptCost)
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("cors.allowed_origins must not be empty")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}
