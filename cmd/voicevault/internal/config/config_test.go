package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("expected default listen :8080, got %q", cfg.Listen)
	}
	if cfg.STT.Backend != "google" {
		t.Errorf("expected default backend google, got %q", cfg.STT.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicevault.yaml")
	data := `
listen: ":9090"
data_dir: /tmp/vv
stt:
  backend: google
  language: es-ES
jwt:
  secret: 0123456789abcdef0123456789abcdef
  ttl: 2h
policy:
  biometric_threshold: 0.95
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.STT.Language != "es-ES" {
		t.Errorf("language = %q", cfg.STT.Language)
	}
	if cfg.JWT.TTL != 2*time.Hour {
		t.Errorf("ttl = %v", cfg.JWT.TTL)
	}
	if cfg.Policy.BiometricThreshold != 0.95 {
		t.Errorf("threshold = %v", cfg.Policy.BiometricThreshold)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvListen, ":7070")
	t.Setenv(EnvSTTBackend, "openai")
	t.Setenv(EnvSTTAPIKey, "sk-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":7070" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.STT.Backend != "openai" || cfg.STT.APIKey != "sk-test" {
		t.Errorf("stt = %+v", cfg.STT)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.STT.Backend = "whisperx" }},
		{"openai without key", func(c *Config) { c.STT.Backend = "openai" }},
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }},
		{"empty listen", func(c *Config) { c.Listen = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
