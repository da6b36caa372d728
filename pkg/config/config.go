package config

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Config holds the server settings read from the environment
type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	DefaultSizes []int         `env:"DEFAULT_SIZES" envSeparator:"," envDefault:"16,32,48"`
	MaxSVGBytes  int64         `env:"MAX_SVG_BYTES" envDefault:"1048576"`
	Supersample  int           `env:"SUPERSAMPLE" envDefault:"1"`
	AllowRemote  bool          `env:"ALLOW_REMOTE" envDefault:"false"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Load parses the environment into a Config and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that env tags cannot express
func (c Config) Validate() error {
	if len(c.DefaultSizes) == 0 {
		return fmt.Errorf("DEFAULT_SIZES must not be empty")
	}
	for _, s := range c.DefaultSizes {
		if s < 1 || s > 256 {
			return fmt.Errorf("DEFAULT_SIZES: %d outside [1,256]", s)
		}
	}
	if c.MaxSVGBytes <= 0 {
		return fmt.Errorf("MAX_SVG_BYTES must be positive")
	}
	if c.Supersample < 1 || c.Supersample > 8 {
		return fmt.Errorf("SUPERSAMPLE: %d outside [1,8]", c.Supersample)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Level returns the configured logrus level, defaulting to info
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// ParseSizes parses a comma separated size list such as "16,32,48".
// Range checks are left to the packager.
func ParseSizes(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty size list")
	}
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid size %q", p)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// GetUpgrader returns the WebSocket upgrader
func GetUpgrader() websocket.Upgrader {
	return upgrader
}
