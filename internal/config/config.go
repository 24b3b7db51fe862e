// Package config loads the server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"./git_dungeon.db"`

	// FontManifest is a TOML file listing the fonts handed to the renderer.
	FontManifest    string `env:"FONT_MANIFEST" envDefault:"./fonts/fonts.toml"`
	SpriteUploadDir string `env:"SPRITE_UPLOAD_DIR" envDefault:"./data/sprites"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	FrontendDistPath   string   `env:"FRONTEND_DIST_PATH" envDefault:"../frontend/dist"`

	LogFile      string `env:"LOG_FILE"`
	LogMaxSizeMB int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`

	EmbedCacheSize int     `env:"EMBED_CACHE_SIZE" envDefault:"512"`
	EmbedRateLimit float64 `env:"EMBED_RATE_LIMIT" envDefault:"5"`
	EmbedRateBurst int     `env:"EMBED_RATE_BURST" envDefault:"20"`

	// DevMode enables consistency checks that are too noisy for production,
	// such as comparing client-supplied equipment bonuses.
	DevMode bool `env:"DEV_MODE" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.EmbedCacheSize <= 0 {
		return nil, fmt.Errorf("EMBED_CACHE_SIZE must be positive, got %d", cfg.EmbedCacheSize)
	}
	if cfg.EmbedRateLimit <= 0 || cfg.EmbedRateBurst <= 0 {
		return nil, fmt.Errorf("EMBED_RATE_LIMIT and EMBED_RATE_BURST must be positive")
	}
	return &cfg, nil
}
