package generators

import (
	"os"
	"strconv"
	"time"

	"github.com/reusee/metaloop/cmds"
	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/vars"
)

var (
	taskModelName = cmds.Var[string]("-task-model", "model that writes task prompts")
	codeModelName = cmds.Var[string]("-code-model", "model that writes policy code")
	maxTokensFlag = cmds.Var[int]("-max-tokens", "max generated tokens per call")
	timeoutFlag   = cmds.Var[time.Duration]("-timeout", "per request timeout, like 3m")
)

// TaskModelName names the generator that writes task descriptions.
type TaskModelName string

func (Module) TaskModelName(
	loader configs.Loader,
	logger logs.Logger,
) (ret TaskModelName) {
	defer func() {
		logger.Info("task model", "name", ret)
	}()
	return vars.FirstNonZero(
		TaskModelName(*taskModelName),
		configs.First[TaskModelName](loader, "task_model"),
		TaskModelName(os.Getenv("MODEL_DEEPSEEK")),
		"deepseek-reasoner",
	)
}

// CodeModelName names the generator that writes policy programs.
type CodeModelName string

func (Module) CodeModelName(
	loader configs.Loader,
	logger logs.Logger,
) (ret CodeModelName) {
	defer func() {
		logger.Info("code model", "name", ret)
	}()
	return vars.FirstNonZero(
		CodeModelName(*codeModelName),
		configs.First[CodeModelName](loader, "code_model"),
		CodeModelName(os.Getenv("MODEL_QWEN")),
		"qwen-coder",
	)
}

// GenerationDefaults fill unset generator arguments.
type GenerationDefaults struct {
	MaxGenerateTokens int
	TimeoutSeconds    int
	TaskTemperature   float32
	CodeTemperature   float32
}

func (Module) GenerationDefaults(
	loader configs.Loader,
) GenerationDefaults {
	return GenerationDefaults{
		MaxGenerateTokens: vars.FirstNonZero(
			*maxTokensFlag,
			configs.First[int](loader, "max_tokens"),
			getenvInt("MAX_TOKENS"),
			512,
		),
		TimeoutSeconds: vars.FirstNonZero(
			int(timeoutFlag.Seconds()),
			configs.First[int](loader, "timeout_seconds"),
			getenvInt("OPENROUTER_TIMEOUT"),
			getenvInt("TIMEOUT_SECONDS"),
			int(DefaultTimeout.Seconds()),
		),
		TaskTemperature: vars.FirstNonZero(
			configs.First[float32](loader, "task_temperature"),
			0.3,
		),
		CodeTemperature: vars.FirstNonZero(
			configs.First[float32](loader, "code_temperature"),
			0.2,
		),
	}
}

func getenvInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

func (g GenerationDefaults) apply(args GeneratorArgs) GeneratorArgs {
	if args.MaxGenerateTokens == nil && g.MaxGenerateTokens > 0 {
		args.MaxGenerateTokens = vars.PtrTo(g.MaxGenerateTokens)
	}
	if args.TimeoutSeconds == 0 {
		args.TimeoutSeconds = g.TimeoutSeconds
	}
	return args
}

type GetTaskGenerator func() (Generator, error)

func (Module) GetTaskGenerator(
	name TaskModelName,
	get GetGenerator,
	defaults GenerationDefaults,
) GetTaskGenerator {
	return func() (Generator, error) {
		return get(string(name), DefaultTemperature(defaults.TaskTemperature))
	}
}

type GetCodeGenerator func() (Generator, error)

func (Module) GetCodeGenerator(
	name CodeModelName,
	get GetGenerator,
	defaults GenerationDefaults,
) GetCodeGenerator {
	return func() (Generator, error) {
		return get(string(name), DefaultTemperature(defaults.CodeTemperature))
	}
}
