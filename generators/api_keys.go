package generators

import (
	"os"

	"github.com/reusee/metaloop/configs"
)

type (
	DeepseekAPIKey   string
	OpenRouterAPIKey string
)

// lookupKey returns the first non-empty value among the config keys, then
// the environment variables.
func lookupKey(loader configs.Loader, keys []string, envs []string) string {
	for _, key := range keys {
		if v := configs.First[string](loader, key); v != "" {
			return v
		}
	}
	for _, env := range envs {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

func (Module) DeepseekAPIKey(
	loader configs.Loader,
) DeepseekAPIKey {
	return DeepseekAPIKey(lookupKey(
		loader,
		[]string{"deepseek_api_key"},
		[]string{"DEEPSEEK_API_KEY"},
	))
}

func (Module) OpenRouterAPIKey(
	loader configs.Loader,
) OpenRouterAPIKey {
	return OpenRouterAPIKey(lookupKey(
		loader,
		[]string{"openrouter_api_key", "open_router_api_key"},
		[]string{"OPENROUTER_API_KEY", "OPEN_ROUTER_API_KEY"},
	))
}
