package generators

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces one completion for a chat transcript.
type Generator interface {
	Args() GeneratorArgs
	Generate(ctx context.Context, messages []Message) (string, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, messages []Message) (string, error)

var _ Generator = Func(nil)

func (f Func) Args() GeneratorArgs {
	return GeneratorArgs{
		Model: "func",
	}
}

func (f Func) Generate(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

type GetGenerator func(name string, options ...ArgsOption) (Generator, error)

// ArgsOption adjusts arguments after configured defaults are applied.
type ArgsOption func(*GeneratorArgs)

// DefaultTemperature sets the temperature unless one is configured.
func DefaultTemperature(t float32) ArgsOption {
	return func(args *GeneratorArgs) {
		if args.Temperature == nil {
			args.Temperature = &t
		}
	}
}

func (Module) GetGenerator(
	newDeepseek NewDeepseek,
	newOpenRouter NewOpenRouter,
	newOpenAI NewOpenAI,
	newOllama NewOllama,
	getSpecs GetGeneratorSpecs,
	defaults GenerationDefaults,
) GetGenerator {
	return func(name string, options ...ArgsOption) (Generator, error) {
		build := func(args GeneratorArgs) GeneratorArgs {
			args = defaults.apply(args)
			for _, opt := range options {
				opt(&args)
			}
			return args
		}

		// user-defined first
		specs, err := getSpecs()
		if err != nil {
			return nil, err
		}
		for _, spec := range specs {
			if spec.Name != name {
				continue
			}
			args := build(spec.GeneratorArgs)
			switch spec.Type {
			case TypeOpenRouter:
				return newOpenRouter(args), nil
			case TypeDeepseek:
				return newDeepseek(args), nil
			case TypeOpenAI:
				return newOpenAI(args, args.APIKey), nil
			case TypeOllama:
				return newOllama(args), nil
			}
		}

		// provider:model
		provider, modelName, ok := strings.Cut(name, ":")
		if ok {
			args := build(GeneratorArgs{
				Model: modelName,
			})
			switch t, _ := normalizeType(provider); t {
			case TypeOpenRouter:
				return newOpenRouter(args), nil
			case TypeDeepseek:
				return newDeepseek(args), nil
			case TypeOllama:
				return newOllama(args), nil
			}
		}

		// built-ins
		switch name {
		case "deepseek-reasoner", "deepseek-chat":
			return newDeepseek(build(GeneratorArgs{
				Model: name,
			})), nil
		case "qwen-coder":
			return newOpenRouter(build(GeneratorArgs{
				Model: "qwen/qwen-2.5-coder-32b-instruct",
			})), nil
		}

		return nil, fmt.Errorf("invalid model: %s", name)
	}
}
