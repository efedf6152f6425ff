package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the application configuration from config.yml,
// then applies environment overrides. The .env file is optional.
func Load(paths ...string) (*AppConfig, error) {
	_ = godotenv.Load()

	if len(paths) == 0 {
		paths = []string{"config.yml", "./deploy/config.yml"}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BILBOBUS_BASE_URL"); v != "" {
		cfg.Sources.Bilbobus.BaseURL = v
	}
	if v := os.Getenv("EUSKADI_BASE_URL"); v != "" {
		cfg.Sources.Euskadi.BaseURL = v
	}
	if v := os.Getenv("EUSKOTREN_BASE_URL"); v != "" {
		cfg.Sources.Euskotren.BaseURL = v
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 16180
	}
	if cfg.Cache.ArrivalsTTLMS == 0 {
		cfg.Cache.ArrivalsTTLMS = 15000
	}
	if cfg.Euskotren.WindowSec == 0 {
		cfg.Euskotren.WindowSec = 60
	}
}
