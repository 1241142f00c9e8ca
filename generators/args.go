package generators

import "time"

type GeneratorArgs struct {
	BaseURL           string         `json:"base_url"`
	APIKey            string         `json:"api_key"`
	Model             string         `json:"model"`
	MaxGenerateTokens *int           `json:"max_generate_tokens"`
	Temperature       *float32       `json:"temperature"`
	TimeoutSeconds    int            `json:"timeout_seconds"`
	ExtraArguments    map[string]any `json:"extra_arguments"`
	IsOpenRouter      bool           `json:"is_open_router"`
}

const DefaultTimeout = 180 * time.Second

func (g GeneratorArgs) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}
