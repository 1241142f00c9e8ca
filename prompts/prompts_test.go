package prompts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/generators"
	"github.com/reusee/metaloop/logs"
	"github.com/reusee/metaloop/policies"
)

func testRequest() TaskRequest {
	h := battery.NewHistory(battery.State{SoC: 5})
	for i := range 30 {
		h.Append(battery.State{SoC: 5, Cost: float64(i + 1)}, 0.5)
	}
	return TaskRequest{
		LastCode: policies.Hold{}.Source(),
		History:  *h,
		Params:   policies.DefaultParams(),
	}
}

func TestRenderTask(t *testing.T) {
	req := testRequest()
	text := RenderTask(req, 5)
	for _, want := range []string{
		"def HoldPolicy",
		"learning_rate=0.01, window_size=24",
		"steps: 30, total cost: 30.0000",
		"26 | 0.5000",
		"30 | 0.5000",
		"take_action(state)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "\n25 | ") {
		t.Fatal("history not windowed")
	}
	if strings.Contains(text, "Previous attempt failed") {
		t.Fatal("unexpected error context")
	}

	req.ErrorContext = "parameter 'x' in constructor must have a default value"
	text = RenderTask(req, 5)
	if !strings.Contains(text, req.ErrorContext) {
		t.Fatal("error context missing")
	}
}

func TestRenderTaskEmptyHistory(t *testing.T) {
	req := testRequest()
	req.History = *battery.NewHistory(battery.State{})
	if !strings.Contains(RenderTask(req, 5), "(no steps yet)") {
		t.Fatal("bad empty history")
	}
}

func TestTasksFallback(t *testing.T) {
	tasks := NewTasks(generators.Func(func(ctx context.Context, _ []generators.Message) (string, error) {
		return "", errors.New("down")
	}), logs.Discard(), 0)
	req := testRequest()
	req.ErrorContext = "boom"
	text, err := tasks.TaskPrompt(t.Context(), req)
	if err != nil {
		t.Fatal(err)
	}
	if text != StubTask(req) {
		t.Fatalf("got %s", text)
	}
	if !strings.Contains(text, "boom") || !strings.Contains(text, "learning_rate, window_size") {
		t.Fatalf("bad stub: %s", text)
	}
}

func TestTasksCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	tasks := NewTasks(generators.Func(func(ctx context.Context, _ []generators.Message) (string, error) {
		return "", ctx.Err()
	}), logs.Discard(), 0)
	if _, err := tasks.TaskPrompt(ctx, testRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}

func TestTasksMessages(t *testing.T) {
	tasks := NewTasks(generators.Func(func(ctx context.Context, messages []generators.Message) (string, error) {
		if len(messages) != 2 || messages[0].Role != generators.RoleSystem || messages[1].Role != generators.RoleUser {
			t.Errorf("bad messages %+v", messages)
		}
		return "  do the thing  ", nil
	}), logs.Discard(), 0)
	text, err := tasks.TaskPrompt(t.Context(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if text != "do the thing" {
		t.Fatalf("got %q", text)
	}
}

func TestStripCodeFences(t *testing.T) {
	for _, c := range [][2]string{
		{"```python\ndef P():\n    pass\n```", "def P():\n    pass"},
		{"  ```\nx = 1\n  ```  \n", "x = 1"},
		{"no fences", "no fences"},
		{"Here:\n```starlark\na\n```\nand\n```\nb\n```", "Here:\na\nand\nb"},
	} {
		if got := StripCodeFences(c[0]); got != c[1] {
			t.Fatalf("got %q, want %q", got, c[1])
		}
	}
}

func TestCodes(t *testing.T) {
	codes := NewCodes(generators.Func(func(ctx context.Context, messages []generators.Message) (string, error) {
		if messages[1].Content != "task" {
			t.Errorf("got %q", messages[1].Content)
		}
		return "```python\ndef P(x = 1):\n    pass\n```", nil
	}), logs.Discard())
	code, err := codes.WriteCode(t.Context(), "task")
	if err != nil {
		t.Fatal(err)
	}
	if code != "def P(x = 1):\n    pass" {
		t.Fatalf("got %q", code)
	}
}
