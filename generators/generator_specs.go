package generators

import (
	"fmt"
	"strings"
	"sync"

	"github.com/reusee/metaloop/configs"
)

const (
	TypeOpenRouter = "openrouter"
	TypeDeepseek   = "deepseek"
	TypeOpenAI     = "openai"
	TypeOllama     = "ollama"
)

// GeneratorSpec is a named generator declared in a config file:
//
//	generators: [{name: "coder", type: "ollama", model: "qwen2.5-coder"}]
type GeneratorSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
	GeneratorArgs
}

func normalizeType(t string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "openrouter", "open-router", "open_router":
		return TypeOpenRouter, nil
	case "deepseek":
		return TypeDeepseek, nil
	case "openai", "open-ai", "open_ai":
		return TypeOpenAI, nil
	case "ollama":
		return TypeOllama, nil
	}
	return "", fmt.Errorf("unknown generator type: %q", t)
}

// GetGeneratorSpecs returns specs from all config files. A name defined in
// more than one file resolves to the file loaded first.
type GetGeneratorSpecs func() ([]GeneratorSpec, error)

func (Module) GetGeneratorSpecs(
	loader configs.Loader,
) GetGeneratorSpecs {
	return sync.OnceValues(func() (ret []GeneratorSpec, err error) {
		seen := make(map[string]bool)
		for value, err := range loader.IterCueValues("generators") {
			if err != nil {
				return nil, err
			}
			var specs []GeneratorSpec
			if err := value.Decode(&specs); err != nil {
				return nil, err
			}
			for _, spec := range specs {
				if spec.Name == "" {
					return nil, fmt.Errorf("generator spec without name, type %q", spec.Type)
				}
				spec.Type, err = normalizeType(spec.Type)
				if err != nil {
					return nil, fmt.Errorf("generator %s: %w", spec.Name, err)
				}
				if seen[spec.Name] {
					continue
				}
				seen[spec.Name] = true
				ret = append(ret, spec)
			}
		}
		return
	})
}
