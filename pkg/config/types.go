package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent redtutor configuration stored as
// config.toml in the .redtutor/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Chat    ChatConfig   `toml:"chat"`
}

// ClientConfig holds settings for the upstream completion API the tutor
// streams answers from. BaseURL is a full URL (scheme + host).
type ClientConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	APIKey  string `toml:"api_key,omitempty"`
	Model   string `toml:"model,omitempty"`
}

// ChatConfig holds settings for interactive chat and ask sessions.
type ChatConfig struct {
	MaxTokens       uint    `toml:"max_tokens,omitempty"`
	Temperature     float64 `toml:"temperature,omitempty"`
	ShowThinking    bool    `toml:"show_thinking,omitempty"`
	StartInThinking bool    `toml:"start_in_thinking,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.base_url": {
		get: func(c *Config) string { return c.Client.BaseURL },
		set: func(c *Config, v string) error { c.Client.BaseURL = v; return nil },
	},
	"client.api_key": {
		get: func(c *Config) string { return c.Client.APIKey },
		set: func(c *Config, v string) error { c.Client.APIKey = v; return nil },
	},
	"client.model": {
		get: func(c *Config) string { return c.Client.Model },
		set: func(c *Config, v string) error { c.Client.Model = v; return nil },
	},
	"chat.max_tokens": {
		get: func(c *Config) string {
			if c.Chat.MaxTokens == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Chat.MaxTokens), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for chat.max_tokens: %w", err)
			}
			c.Chat.MaxTokens = uint(n)
			return nil
		},
	},
	"chat.temperature": {
		get: func(c *Config) string {
			if c.Chat.Temperature == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Chat.Temperature, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for chat.temperature: %w", err)
			}
			c.Chat.Temperature = f
			return nil
		},
	},
	"chat.show_thinking": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.ShowThinking) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.show_thinking: %w", err)
			}
			c.Chat.ShowThinking = b
			return nil
		},
	},
	"chat.start_in_thinking": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.StartInThinking) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.start_in_thinking: %w", err)
			}
			c.Chat.StartInThinking = b
			return nil
		},
	},
}
