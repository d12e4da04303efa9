package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// StorePath is the bbolt database holding the saved state.
	// Empty keeps state in memory only.
	StorePath string `koanf:"store_path"`

	// StoreKey is the well-known key the state document is saved under.
	StoreKey string `koanf:"store_key" validate:"required"`

	// SeedFile optionally replaces the built-in first-run state (yaml, json or toml).
	SeedFile string `koanf:"seed_file" validate:"omitempty,seed_ext"`

	// CacheSize is the number of verdicts kept in the LRU. Zero disables it.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	// BloomFPRate is the target false-positive rate of the number prefilter.
	BloomFPRate float64 `koanf:"bloom_fp_rate" validate:"fp_rate"`
}

// DEFAULT_APP_CONFIG defines the default application configuration.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:         "prod",
	LogLevel:    "info",
	StorePath:   "",
	StoreKey:    "guardia_m3_state_v2",
	SeedFile:    "",
	CacheSize:   1024,
	BloomFPRate: 0.01,
}

// validFPRate accepts a probability strictly between 0 and 1.
func validFPRate(fl validator.FieldLevel) bool {
	p := fl.Field().Float()
	return p > 0 && p < 1
}

// validSeedExt accepts the file extensions the seed loader can parse.
func validSeedExt(fl validator.FieldLevel) bool {
	name := strings.ToLower(fl.Field().String())
	for _, ext := range []string{".yaml", ".yml", ".json", ".toml"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// envLoader loads environment variables with the prefix "GUARD_".
// Keys are lowercased with the prefix removed. Replaceable in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "GUARD_",
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, "GUARD_")), strings.TrimSpace(value)
		},
	}), nil)
}

var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

var registerValidation = func(v *validator.Validate) error {
	if err := v.RegisterValidation("fp_rate", validFPRate); err != nil {
		return err
	}
	return v.RegisterValidation("seed_ext", validSeedExt)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
