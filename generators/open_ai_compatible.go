package generators

import (
	"os"

	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/vars"
)

const (
	openRouterEndpoint = "https://openrouter.ai/api/v1"
	deepseekEndpoint   = "https://api.deepseek.com"
	ollamaEndpoint     = "http://127.0.0.1:11434/v1"
)

// endpoint resolves a base url: the generator args, then the config key, then the
// environment variable, then the public default.
func endpoint(args GeneratorArgs, loader configs.Loader, key, env, def string) string {
	return vars.FirstNonZero(
		args.BaseURL,
		configs.First[string](loader, key),
		os.Getenv(env),
		def,
	)
}

type NewOpenRouter func(args GeneratorArgs) *OpenAI

func (Module) NewOpenRouter(
	newOpenAI NewOpenAI,
	apiKey OpenRouterAPIKey,
	loader configs.Loader,
) NewOpenRouter {
	return func(args GeneratorArgs) *OpenAI {
		args.BaseURL = endpoint(args, loader, "openrouter_endpoint", "OPENROUTER_BASE_URL", openRouterEndpoint)
		args.IsOpenRouter = true
		return newOpenAI(args, vars.FirstNonZero(args.APIKey, string(apiKey)))
	}
}

type NewDeepseek func(args GeneratorArgs) *OpenAI

func (Module) NewDeepseek(
	newOpenAI NewOpenAI,
	apiKey DeepseekAPIKey,
	loader configs.Loader,
) NewDeepseek {
	return func(args GeneratorArgs) *OpenAI {
		args.BaseURL = endpoint(args, loader, "deepseek_endpoint", "DEEPSEEK_BASE_URL", deepseekEndpoint)
		return newOpenAI(args, vars.FirstNonZero(args.APIKey, string(apiKey)))
	}
}

type NewOllama func(args GeneratorArgs) *OpenAI

// NewOllama targets a local server; no key is sent.
func (Module) NewOllama(
	newOpenAI NewOpenAI,
	loader configs.Loader,
) NewOllama {
	return func(args GeneratorArgs) *OpenAI {
		args.BaseURL = endpoint(args, loader, "ollama_endpoint", "OLLAMA_BASE_URL", ollamaEndpoint)
		return newOpenAI(args, "")
	}
}
