package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Playlist    PlaylistConfig    `toml:"playlist"`
	Bot         BotConfig         `toml:"bot"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Gemini   GeminiConfig   `toml:"gemini"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	Telegram TelegramConfig `toml:"telegram"`
}

// GeminiConfig contains Gemini API credentials and model selection.
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// YouTubeConfig contains YouTube Data API OAuth2 credentials.
type YouTubeConfig struct {
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	RefreshToken      string  `toml:"refresh_token"`
	Endpoint          string  `toml:"endpoint"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// TelegramConfig contains the Telegram bot token.
type TelegramConfig struct {
	Token string `toml:"token"`
}

// PlaylistConfig controls how created playlists look on the catalog.
type PlaylistConfig struct {
	PrivacyStatus string `toml:"privacy_status"`
}

// BotConfig contains chat adapter settings.
type BotConfig struct {
	Command         string `toml:"command"`
	CooldownSeconds int    `toml:"cooldown_seconds"`
	Workers         int    `toml:"workers"`
	QueueSize       int    `toml:"queue_size"`
	GroupsOnly      bool   `toml:"groups_only"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings. An empty File logs to stderr.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// HasGemini reports whether the language model credentials are present.
func (c *Config) HasGemini() bool {
	return c.Credentials.Gemini.APIKey != ""
}

// HasYouTube reports whether all three YouTube OAuth values are present.
func (c *Config) HasYouTube() bool {
	yt := c.Credentials.YouTube
	return yt.ClientID != "" && yt.ClientSecret != "" && yt.RefreshToken != ""
}
