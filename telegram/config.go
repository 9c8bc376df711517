package telegram

import (
	"encoding/json"
	"os"
)

type Config struct {
	BotToken     string  `json:"bot_token"`
	AdminUserIDs []int64 `json:"admin_user_ids"`
	Enabled      bool    `json:"enabled"`
}

// LoadConfig reads the bot configuration file. A missing file means
// the bot is disabled, not an error.
func LoadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}
	return &config, nil
}
