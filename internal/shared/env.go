package shared

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envSearchPaths lists where a .env file is looked for, nearest first.
var envSearchPaths = []string{".env", "../.env", "../../.env"}

// LoadEnv loads the first .env file found in the working directory or its parents.
//
// Returns the absolute path of the loaded file, or "" when none exists. Variables
// already present in the environment are never overwritten.
func LoadEnv() (string, error) {
	for _, p := range envSearchPaths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", err
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return p, nil
		}
		return abs, nil
	}
	return "", nil
}

// ApplyEnv overrides credentials with values from the environment when set.
func (c *Config) ApplyEnv() {
	overrides := []struct {
		key    string
		target *string
	}{
		{"GEMINI_API_KEY", &c.Credentials.Gemini.APIKey},
		{"YOUTUBE_CLIENT_ID", &c.Credentials.YouTube.ClientID},
		{"YOUTUBE_CLIENT_SECRET", &c.Credentials.YouTube.ClientSecret},
		{"YOUTUBE_REFRESH_TOKEN", &c.Credentials.YouTube.RefreshToken},
		{"TELEGRAM_BOT_TOKEN", &c.Credentials.Telegram.Token},
	}

	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.target = v
		}
	}
}
