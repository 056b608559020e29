package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"dragontiger/models"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken    string
	DiscordGuildID  string
	GameChannelID   string
	AdminDiscordIDs []int64 // Discord IDs allowed to use /grant

	// Database configuration
	DatabaseURL string

	// Game configuration
	StartingBalance   int64
	BettingWindow     time.Duration // length of the betting phase
	RevealDelay       time.Duration // pause between close and reveal
	TickInterval      time.Duration
	PayoutMultipliers map[models.Choice]float64
	PayoutPolicy      models.PayoutPolicy

	// Metrics configuration
	MetricsPort string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// IsAdmin checks whether a Discord ID may use administrative commands
func (c *Config) IsAdmin(discordID int64) bool {
	for _, id := range c.AdminDiscordIDs {
		if id == discordID {
			return true
		}
	}
	return false
}

// load loads configuration from environment variables, reading a .env file
// first if one is present
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),
		GameChannelID:  os.Getenv("GAME_CHANNEL_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Game settings with defaults
		StartingBalance: 200000,
		BettingWindow:   45 * time.Second,
		RevealDelay:     3 * time.Second,
		TickInterval:    1 * time.Second,
		PayoutMultipliers: map[models.Choice]float64{
			models.ChoiceDragon: 2.0,
			models.ChoiceTiger:  2.0,
			models.ChoiceTie:    9.0,
		},
		PayoutPolicy: models.PayoutTruncate,

		// Metrics
		MetricsPort: "9090",

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}
	if seconds := os.Getenv("ROUND_SECONDS"); seconds != "" {
		if parsed, err := strconv.Atoi(seconds); err == nil && parsed > 0 {
			config.BettingWindow = time.Duration(parsed) * time.Second
		}
	}
	if seconds := os.Getenv("REVEAL_DELAY_SECONDS"); seconds != "" {
		if parsed, err := strconv.Atoi(seconds); err == nil && parsed > 0 {
			config.RevealDelay = time.Duration(parsed) * time.Second
		}
	}
	if policy := os.Getenv("PAYOUT_POLICY"); policy != "" {
		parsed := models.PayoutPolicy(policy)
		if !parsed.IsValid() {
			return nil, fmt.Errorf("PAYOUT_POLICY must be %q or %q, got %q",
				models.PayoutTruncate, models.PayoutNearest, policy)
		}
		config.PayoutPolicy = parsed
	}
	if port := os.Getenv("METRICS_PORT"); port != "" {
		config.MetricsPort = port
	}

	// Parse admin Discord IDs
	if adminIDs := os.Getenv("ADMIN_DISCORD_IDS"); adminIDs != "" {
		idStrings := strings.Split(adminIDs, ",")
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.AdminDiscordIDs = append(config.AdminDiscordIDs, id)
				}
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
