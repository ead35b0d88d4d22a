// Package config loads the voicevault server configuration.
//
// Configuration comes from an optional YAML file plus environment
// variables; the environment wins for secrets so they never have to
// live on disk. A .env file in the working directory is honored for
// development setups.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Environment variable names. These override the corresponding file
// fields when set.
const (
	EnvListen     = "VOICEVAULT_LISTEN"
	EnvDataDir    = "VOICEVAULT_DATA_DIR"
	EnvJWTSecret  = "VOICEVAULT_JWT_SECRET"
	EnvSTTAPIKey  = "VOICEVAULT_STT_API_KEY"
	EnvSTTBackend = "VOICEVAULT_STT_BACKEND"
)

// STT selects and parameterizes the transcription backend.
type STT struct {
	// Backend is the registered transcriber name: "google" or
	// "openai".
	Backend string `yaml:"backend"`

	// Language is the BCP-47 recognition language tag.
	Language string `yaml:"language"`

	// APIKey authenticates to the backend. Prefer EnvSTTAPIKey.
	APIKey string `yaml:"api_key"`
}

// JWT configures session token issuance. Empty secret disables it.
type JWT struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// Policy mirrors the authentication thresholds; zero fields keep the
// production defaults.
type Policy struct {
	MinPhraseLen       int           `yaml:"min_phrase_len"`
	MinWordRatio       float64       `yaml:"min_word_ratio"`
	EnrollContentScore float64       `yaml:"enroll_content_score"`
	VerifyContentScore float64       `yaml:"verify_content_score"`
	BiometricThreshold float64       `yaml:"biometric_threshold"`
	STTTimeout         time.Duration `yaml:"stt_timeout"`
}

// Config is the full server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DataDir is the BadgerDB directory. Empty means in-memory,
	// which loses all enrollments on restart.
	DataDir string `yaml:"data_dir"`

	// FFmpeg is the ffmpeg binary used for non-WAV uploads.
	FFmpeg string `yaml:"ffmpeg"`

	STT    STT    `yaml:"stt"`
	JWT    JWT    `yaml:"jwt"`
	Policy Policy `yaml:"policy"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		FFmpeg: "ffmpeg",
		STT: STT{
			Backend:  "google",
			Language: "en-US",
		},
		JWT: JWT{TTL: 24 * time.Hour},
	}
}

// Load reads path (may be empty) and applies environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvListen); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv(EnvSTTAPIKey); v != "" {
		cfg.STT.APIKey = v
	}
	if v := os.Getenv(EnvSTTBackend); v != "" {
		cfg.STT.Backend = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen address is empty")
	}
	switch c.STT.Backend {
	case "google", "openai":
	default:
		return fmt.Errorf("config: unknown stt backend %q", c.STT.Backend)
	}
	if c.STT.Backend == "openai" && c.STT.APIKey == "" {
		return fmt.Errorf("config: openai backend requires an api key (%s)", EnvSTTAPIKey)
	}
	if c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("config: jwt secret must be at least 32 bytes")
	}
	return nil
}
