package cmds

import (
	"errors"
	"strings"
	"testing"
)

func TestExecutor(t *testing.T) {
	executor := NewExecutor()

	var command string
	var path string
	var metaSteps int
	executor.Define("run", Func(func() {
		command = "run"
	}))
	executor.Define("check", Func(func(p string) {
		command = "check"
		path = p
	}))
	executor.Define("-meta-steps", Func(func(n int) {
		metaSteps = n
	}))

	if err := executor.Execute([]string{
		"-meta-steps", "3",
		"check", "policy.star",
	}); err != nil {
		t.Fatal(err)
	}
	if command != "check" || path != "policy.star" || metaSteps != 3 {
		t.Fatalf("got %q %q %d", command, path, metaSteps)
	}

	if err := executor.Execute([]string{"run"}); err != nil {
		t.Fatal(err)
	}
	if command != "run" {
		t.Fatalf("got %q", command)
	}

	err := executor.Execute([]string{"plot"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: plot") {
		t.Fatalf("got %v", err)
	}

	err = executor.Execute([]string{"-meta-steps", "three"})
	if err == nil || !strings.Contains(err.Error(), "convert three to int") {
		t.Fatalf("got %v", err)
	}

	err = executor.Execute([]string{"check"})
	if err == nil || !strings.Contains(err.Error(), "expecting argument") {
		t.Fatalf("got %v", err)
	}
}

func TestCommandError(t *testing.T) {
	executor := NewExecutor()
	bad := errors.New("bad file")
	executor.Define("check", Func(func(string) error {
		return bad
	}))
	if err := executor.Execute([]string{"check", "x"}); !errors.Is(err, bad) {
		t.Fatalf("got %v", err)
	}
}

func TestSubCommands(t *testing.T) {
	executor := NewExecutor()
	var listed bool
	var shown string
	executor.Define("ledger", Sub(map[string]*Command{
		"runs": Func(func() {
			listed = true
		}),
		"show": Func(func(id string) {
			shown = id
		}),
	}))

	if err := executor.Execute([]string{
		"ledger",
		"runs",
		"show", "abc",
	}); err != nil {
		t.Fatal(err)
	}
	if !listed || shown != "abc" {
		t.Fatalf("got %v %q", listed, shown)
	}

	// subs are only visible after their parent
	if err := executor.Execute([]string{"runs"}); err == nil {
		t.Fatal("should error")
	}
}

func TestDuplicatedSubCommand(t *testing.T) {
	executor := NewExecutor()
	executor.Define("foo", Sub(map[string]*Command{
		"a": nil,
	}))
	executor.Define("bar", Sub(map[string]*Command{
		"a": nil,
	}))
	err := executor.Execute([]string{"foo", "bar"})
	if err == nil || !strings.Contains(err.Error(), "duplicated sub command: bar a") {
		t.Fatalf("got %v", err)
	}
}

func TestDuplicatedCommand(t *testing.T) {
	executor := NewExecutor()
	executor.Define("run", Func(func() {}))
	defer func() {
		if recover() == nil {
			t.Fatal("should panic")
		}
	}()
	executor.Define("run", Func(func() {}))
}

func TestOptionalArgument(t *testing.T) {
	executor := NewExecutor()
	var seed uint64
	var out string
	executor.Define("replay", Func(func(s *uint64, o *string) {
		seed = *s
		out = *o
	}))

	if err := executor.Execute([]string{"replay", "42", "out.json"}); err != nil {
		t.Fatal(err)
	}
	if seed != 42 || out != "out.json" {
		t.Fatalf("got %d %q", seed, out)
	}

	if err := executor.Execute([]string{"replay", "7"}); err != nil {
		t.Fatal(err)
	}
	if seed != 7 || out != "" {
		t.Fatalf("got %d %q", seed, out)
	}

	if err := executor.Execute([]string{"replay"}); err != nil {
		t.Fatal(err)
	}
	if seed != 0 || out != "" {
		t.Fatalf("got %d %q", seed, out)
	}
}

func TestFuncMustReturnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("should panic")
		}
	}()
	Func(func() int { return 1 })
}
