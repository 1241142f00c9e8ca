package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/generators"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/policies"
)

// TaskRequest is the context for one task description.
type TaskRequest struct {
	LastCode     string
	History      battery.History
	Params       policies.Params
	ErrorContext string
}

const DefaultHistoryWindow = 24

// RenderTask builds the user message for the task generator. Only the last
// window steps of history are listed.
func RenderTask(req TaskRequest, window int) string {
	b := new(strings.Builder)

	fmt.Fprintf(b, "## Current policy implementation ##\n```python\n%s\n```\n\n", strings.TrimSpace(req.LastCode))

	b.WriteString("## Meta-history ##\n")
	writeHistory(b, req.History, window)
	b.WriteString("\n")

	fmt.Fprintf(b, "## Meta-parameters ##\n%s\n\n", req.Params)

	b.WriteString("----\n")
	b.WriteString("Craft a concise task description asking the code-generation model to emit\n")
	b.WriteString("exactly one policy constructor whose parameters are only the meta-parameter\n")
	fmt.Fprintf(b, "keys above (%s), each with a default literal value.\n", strings.Join(req.Params.Keys(), ", "))
	b.WriteString("Include these rules verbatim in the task description:\n")
	b.WriteString(Grammar)

	if req.ErrorContext != "" {
		fmt.Fprintf(b, "\n---\nPrevious attempt failed with:\n```\n%s\n```\n", strings.TrimSpace(req.ErrorContext))
		b.WriteString("Refine your instructions so the next program passes all safety and signature checks.\n")
	}

	return b.String()
}

func writeHistory(b *strings.Builder, h battery.History, window int) {
	steps := h.Steps()
	if steps == 0 {
		b.WriteString("(no steps yet)\n")
		return
	}
	fmt.Fprintf(b, "steps: %d, total cost: %.4f, final soc: %.4f\n",
		steps, h.TotalCosts[len(h.TotalCosts)-1], h.BatteryLevels[len(h.BatteryLevels)-1])
	tail := h.Tail(window)
	offset := steps - tail.Steps()
	b.WriteString("step | action | soc | step cost | total cost\n")
	for i := range tail.Actions {
		fmt.Fprintf(b, "%d | %.4f | %.4f | %.4f | %.4f\n",
			offset+i+1,
			tail.Actions[i],
			tail.BatteryLevels[i+1],
			tail.StepCosts[i],
			tail.TotalCosts[i+1],
		)
	}
}

// StubTask is the task description used when the task generator is unavailable.
func StubTask(req TaskRequest) string {
	b := new(strings.Builder)
	b.WriteString("Write a battery arbitrage policy that improves on the current one:\n")
	fmt.Fprintf(b, "```python\n%s\n```\n", strings.TrimSpace(req.LastCode))
	fmt.Fprintf(b, "Constructor parameters must be exactly: %s.\n", strings.Join(req.Params.Keys(), ", "))
	fmt.Fprintf(b, "Use these defaults: %s.\n", req.Params)
	b.WriteString(Grammar)
	if req.ErrorContext != "" {
		fmt.Fprintf(b, "\nThe previous program was rejected with:\n%s\n", strings.TrimSpace(req.ErrorContext))
	}
	return b.String()
}

// Tasks writes task descriptions with a generator, falling back to StubTask
// on transport failures.
type Tasks struct {
	generator generators.Generator
	logger    logs.Logger
	window    int
}

func NewTasks(generator generators.Generator, logger logs.Logger, window int) *Tasks {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &Tasks{
		generator: generator,
		logger:    logger,
		window:    window,
	}
}

func (t *Tasks) TaskPrompt(ctx context.Context, req TaskRequest) (string, error) {
	text, err := t.generator.Generate(ctx, []generators.Message{
		generators.System(TaskSystem),
		generators.User(RenderTask(req, t.window)),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		t.logger.WarnContext(ctx, "task generator failed, using stub task",
			"error", err,
		)
		return StubTask(req), nil
	}
	return strings.TrimSpace(text), nil
}
