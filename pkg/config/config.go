package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const appID = "autoshop"

type Config struct {
	HTTPAddr       string        `envconfig:"http_addr" default:":8080"`
	DBDSN          string        `envconfig:"db_dsn" required:"true"`
	DBMaxOpenConns int           `envconfig:"db_max_open_conns" default:"10"`
	BackendURL     string        `envconfig:"backend_url" required:"true"`
	BackendAPIKey  string        `envconfig:"backend_api_key" required:"true"`
	BackendTimeout time.Duration `envconfig:"backend_timeout" default:"10s"`
	LogLevel       string        `envconfig:"log_level" default:"info"`
}

// Load reads AUTOSHOP_* environment variables.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}
	if c.DBMaxOpenConns < 1 {
		return nil, errors.Errorf("db_max_open_conns must be positive, got %d", c.DBMaxOpenConns)
	}
	return c, nil
}
