// Package config holds the runtime settings of the catalog service.
package config

import (
	"fmt"

	"github.com/alecthomas/kong"
)

type Config struct {
	Port           int    `help:"Port to listen on." env:"PORT" default:"3000"`
	APIKey         string `help:"Shared secret expected in the x-api-key header." env:"API_KEY" default:"secret123"`
	LogLevel       string `help:"Log level (debug, info, warn, error)." env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	DatabaseURL    string `help:"Postgres connection string. The in-memory store is used when empty." env:"DATABASE_URL"`
	MetricsEnabled bool   `help:"Serve Prometheus metrics on /metrics." env:"METRICS_ENABLED"`
	MetricsToken   string `help:"Bearer token required to scrape /metrics." env:"METRICS_TOKEN"`
	WriteRateLimit int    `help:"Mutating requests allowed per minute per client IP (0 disables)." env:"WRITE_RATE_LIMIT" default:"0"`
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key must not be empty")
	}
	if c.WriteRateLimit < 0 {
		return fmt.Errorf("write rate limit must be >= 0")
	}
	return nil
}

// Load parses args (without the program name) and the environment.
func Load(args []string, options ...kong.Option) (Config, error) {
	var cfg Config

	options = append([]kong.Option{
		kong.Name("catalog"),
		kong.Description("Product catalog HTTP service."),
	}, options...)

	parser, err := kong.New(&cfg, options...)
	if err != nil {
		return Config{}, err
	}
	if _, err := parser.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
