// Package config loads bot configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	DownloadDir  string `env:"DOWNLOAD_DIR" envDefault:"music-cache"`
	LyricsURL    string `env:"LYRICS_URL"`
	GuildID      string `env:"GUILD_ID"` // empty = register commands globally
}

func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
