package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config carries the engine server settings, decoded from the environment.
type Config struct {
	ListenAddr  string `env:"ENGINE_LISTEN_ADDR,default=:8080"`
	PackDir     string `env:"ENGINE_PACK_DIR,default=data/packs"`
	PackVersion string `env:"ENGINE_PACK_VERSION,default=v1.0"`
	CatalogPath string `env:"ENGINE_CATALOG_PATH,default="`
	LogLevel    string `env:"ENGINE_LOG_LEVEL,default=info"`
}

// Load reads an optional .env file, then decodes the environment. A missing
// .env is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode environment: %w", err)
	}
	return cfg, nil
}
