package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

var ErrInvalidFallbackMode = errors.New(
	"error getting PC_ON_ALL_SOURCES_FAILED: must be \"null\" or \"demo-fallback\"")

type Config struct {
	Env         string // Env is the current environment: local, dev, prod.
	HTTPAddr    string
	StoragePath string
	Check       Check
	Scraper     Scraper
	Shopping    Shopping
	Tg          Telegram
}

type Check struct {
	Interval     time.Duration // Interval between scheduled sweeps.
	StartupDelay time.Duration // Delay before the first sweep after start.
	// OnAllSourcesFailed is "null" (report not-found) or "demo-fallback"
	// (synthesize a placeholder price).
	OnAllSourcesFailed string
}

type Scraper struct {
	SourceTimeout time.Duration // Budget per retailer search request.
	DirectTimeout time.Duration // Budget for a direct product-page request.
}

type Shopping struct {
	Host    string
	APIKey  string // Empty disables the API source.
	Timeout time.Duration
}

type Telegram struct {
	Token   string        // Empty disables Telegram notifications.
	ChatID  int64         // Target chat for alerts.
	Timeout time.Duration // Poller timeout duration.
}

// MustLoad loads the configuration from environment variables and returns a
// Config struct.
func MustLoad() *Config {
	// Automatically binds environment variables to config keys
	viper.SetEnvPrefix("PC")
	viper.AutomaticEnv()

	// optional args
	viper.SetDefault("ENV", "production")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("STORAGE_PATH", "./price-checker.db")
	viper.SetDefault("CHECK_INTERVAL", "1h")
	viper.SetDefault("STARTUP_DELAY", "2s")
	viper.SetDefault("ON_ALL_SOURCES_FAILED", "null")
	viper.SetDefault("SOURCE_TIMEOUT", "8s")
	viper.SetDefault("DIRECT_TIMEOUT", "15s")
	viper.SetDefault("SHOPPING_API_HOST", "google-shopping-data.p.rapidapi.com")
	viper.SetDefault("SHOPPING_API_TIMEOUT", "5s")
	viper.SetDefault("TELEGRAM_TIMEOUT", "15s")

	fallbackMode := viper.GetString("ON_ALL_SOURCES_FAILED")
	if fallbackMode != "null" && fallbackMode != "demo-fallback" {
		panic(ErrInvalidFallbackMode)
	}

	return &Config{
		Env:         viper.GetString("ENV"),
		HTTPAddr:    viper.GetString("HTTP_ADDR"),
		StoragePath: viper.GetString("STORAGE_PATH"),
		Check: Check{
			Interval:           viper.GetDuration("CHECK_INTERVAL"),
			StartupDelay:       viper.GetDuration("STARTUP_DELAY"),
			OnAllSourcesFailed: fallbackMode,
		},
		Scraper: Scraper{
			SourceTimeout: viper.GetDuration("SOURCE_TIMEOUT"),
			DirectTimeout: viper.GetDuration("DIRECT_TIMEOUT"),
		},
		Shopping: Shopping{
			Host:    viper.GetString("SHOPPING_API_HOST"),
			APIKey:  viper.GetString("SHOPPING_API_KEY"),
			Timeout: viper.GetDuration("SHOPPING_API_TIMEOUT"),
		},
		Tg: Telegram{
			Token:   viper.GetString("TELEGRAM_TOKEN"),
			ChatID:  viper.GetInt64("TELEGRAM_CHAT_ID"),
			Timeout: viper.GetDuration("TELEGRAM_TIMEOUT"),
		},
	}
}
