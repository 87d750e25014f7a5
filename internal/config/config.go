package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	minTokenSecretLength = 16
)

type Config struct {
	App   AppConfig
	HTTP  HTTPConfig
	DB    DBConfig
	Token TokenConfig
	CORS  CORSConfig
}

type AppConfig struct {
	// Env is "release" in production; anything else runs gin and zap in development mode.
	Env string `env:"APP_ENV" env-default:"dev"`
}

type HTTPConfig struct {
	Port         string        `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type DBConfig struct {
	Driver   string `env:"DB_DRIVER" env-default:"mysql"`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"3306"`
	User     string `env:"DB_USER" env-default:"taskuser"`
	Password string `env:"DB_PASSWORD" env-default:"taskpassword"`
	Name     string `env:"DB_NAME" env-default:"task_tracker"`
}

type TokenConfig struct {
	Secret     string        `env:"TOKEN_SECRET" env-required:"true"`
	TTL        time.Duration `env:"TOKEN_TTL" env-default:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" env-default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot express through tags.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if len(c.Token.Secret) < minTokenSecretLength {
		return fmt.Errorf("TOKEN_SECRET must be at least %d bytes", minTokenSecretLength)
	}
	if c.Token.TTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.App.Env, "release")
}

func (c *Config) Addr() string {
	return ":" + c.HTTP.Port
}
