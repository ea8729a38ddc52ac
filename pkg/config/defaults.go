package config

const (
	defaultBaseURL = "https://api.perplexity.ai"
	defaultModel   = "sonar-reasoning-pro"

	defaultMaxTokens   = 2048
	defaultTemperature = 0.2
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			BaseURL: defaultBaseURL,
			Model:   defaultModel,
		},
		Chat: ChatConfig{
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		},
	}
}
