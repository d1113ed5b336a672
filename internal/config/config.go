// Package config handles resolving configuration.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/labstack/gommon/bytes"
	"golang.org/x/crypto/bcrypt"
)

// DevelopmentEnv is the default environment name.
const DevelopmentEnv = "development"

type HTTPConfig struct {
	Address       string `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	MaxUploadSize string `yaml:"max_upload_size" env:"HTTP_MAX_UPLOAD_SIZE" env-default:"32M"`
}

type AuthConfig struct {
	SecretKey   string        `yaml:"secret_key" env:"SECRET_KEY"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"0s"`
	TokenHeader string        `yaml:"token_header" env:"TOKEN_HEADER" env-default:"x-access-tokens"`
	BcryptCost  int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`

	// GeneratedKey is set when SecretKey was empty and a random key was
	// generated. Tokens then do not survive a restart.
	GeneratedKey bool `yaml:"-"`
}

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Env          string     `yaml:"env" env:"APP_ENV" env-default:"development"`
	LogLevel     string     `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
	DBPath       string     `yaml:"db_path" env:"DB_PATH"`
	Notification string     `yaml:"notification" env:"NOTIFICATION" env-default:"Happy New Year!"`
	HTTP         HTTPConfig `yaml:"http"`
	Auth         AuthConfig `yaml:"auth"`
}

// DevMode reports whether the service runs in the development environment.
func (c Config) DevMode() bool {
	return c.Env == DevelopmentEnv
}

// Load reads the YAML file at path with environment overrides, fills in
// derived defaults and validates the result. An empty path or a missing file
// reads the environment only.
func Load(path string) (Config, error) {
	var cfg Config
	if err := read(path, &cfg); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(xdg.DataHome, "todolist", "task_"+cfg.Env+".db")
	}
	if cfg.Auth.SecretKey == "" {
		key, err := randomKey()
		if err != nil {
			return Config{}, err
		}
		cfg.Auth.SecretKey = key
		cfg.Auth.GeneratedKey = true
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func read(path string, cfg *Config) error {
	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("failed to read env: %w", err)
		}
		return nil
	}
	err := cleanenv.ReadConfig(path, cfg)
	if errors.Is(err, os.ErrNotExist) {
		*cfg = Config{}
		if err = cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("failed to read env: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config %q: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	var errs []error
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if c.Env == "" {
		errs = append(errs, errors.New("env must not be empty"))
	}
	if c.HTTP.Address == "" {
		errs = append(errs, errors.New("http.address must not be empty"))
	}
	if size, err := bytes.Parse(c.HTTP.MaxUploadSize); err != nil || size <= 0 {
		errs = append(errs, fmt.Errorf("invalid http.max_upload_size %q", c.HTTP.MaxUploadSize))
	}
	if c.Auth.TokenHeader == "" {
		errs = append(errs, errors.New("auth.token_header must not be empty"))
	}
	if c.Auth.TokenTTL < 0 {
		errs = append(errs, errors.New("auth.token_ttl must not be negative"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	return errors.Join(errs...)
}

func randomKey() (string, error) {
	const keyLen = 32
	key := make([]byte, keyLen)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
