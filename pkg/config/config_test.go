package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected Port '8080', got '%s'", cfg.Port)
	}
	if fmt.Sprint(cfg.DefaultSizes) != "[16 32 48]" {
		t.Errorf("Expected default sizes [16 32 48], got %v", cfg.DefaultSizes)
	}
	if cfg.MaxSVGBytes != 1<<20 {
		t.Errorf("Expected MaxSVGBytes 1 MiB, got %d", cfg.MaxSVGBytes)
	}
	if cfg.AllowRemote {
		t.Error("Remote fetching should be disabled by default")
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("Expected FetchTimeout 10s, got %s", cfg.FetchTimeout)
	}
	if cfg.Level() != logrus.InfoLevel {
		t.Errorf("Expected info level, got %s", cfg.Level())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_SIZES", "16,256")
	t.Setenv("SUPERSAMPLE", "2")
	t.Setenv("ALLOW_REMOTE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected Port '9090', got '%s'", cfg.Port)
	}
	if fmt.Sprint(cfg.DefaultSizes) != "[16 256]" {
		t.Errorf("Expected sizes [16 256], got %v", cfg.DefaultSizes)
	}
	if cfg.Supersample != 2 || !cfg.AllowRemote {
		t.Errorf("Unexpected overrides: %+v", cfg)
	}
	if cfg.Level() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %s", cfg.Level())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"DEFAULT_SIZES": "16,300",
		"SUPERSAMPLE":   "9",
		"LOG_LEVEL":     "loud",
		"MAX_SVG_BYTES": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", key, value)
			}
		})
	}
}

func TestParseSizes(t *testing.T) {
	sizes, err := ParseSizes(" 16, 32 ,48")
	if err != nil {
		t.Fatalf("ParseSizes failed: %v", err)
	}
	if fmt.Sprint(sizes) != "[16 32 48]" {
		t.Errorf("Expected [16 32 48], got %v", sizes)
	}

	for _, bad := range []string{"", "16,,32", "sixteen"} {
		if _, err := ParseSizes(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestGetUpgrader(t *testing.T) {
	u := GetUpgrader()
	if u.CheckOrigin == nil || !u.CheckOrigin(nil) {
		t.Error("Expected permissive CheckOrigin")
	}
}
