package cmds

import (
	"testing"
	"time"
)

func TestVar(t *testing.T) {
	horizon := Var[int]("TestVar-horizon")
	prices := Var[string]("TestVar-prices")
	GlobalExecutor.MustExecute([]string{
		"TestVar-horizon", "150",
		"TestVar-prices", "GENERATE",
	})
	if *horizon != 150 {
		t.Fatalf("got %d", *horizon)
	}
	if *prices != "GENERATE" {
		t.Fatalf("got %q", *prices)
	}

	GlobalExecutor.MustExecute([]string{"TestVar-horizon."})
	if *horizon != 0 {
		t.Fatalf("got %d", *horizon)
	}
}

func TestPointerVar(t *testing.T) {
	soc := Var[*float64]("TestPointerVar")
	if *soc != nil {
		t.Fatal("should be unset")
	}
	GlobalExecutor.MustExecute([]string{
		"TestPointerVar", "0",
	})
	if *soc == nil || **soc != 0 {
		t.Fatalf("got %v", *soc)
	}
	GlobalExecutor.MustExecute([]string{
		"TestPointerVar", "12.5",
	})
	if **soc != 12.5 {
		t.Fatalf("got %v", **soc)
	}
	GlobalExecutor.MustExecute([]string{"TestPointerVar."})
	if *soc != nil {
		t.Fatal("should be reset")
	}
}

func TestSwitch(t *testing.T) {
	debug := Switch("TestSwitch")
	GlobalExecutor.MustExecute([]string{
		"TestSwitch",
	})
	if !*debug {
		t.Fatal()
	}
	GlobalExecutor.MustExecute([]string{
		"!TestSwitch",
	})
	if *debug {
		t.Fatal()
	}
}

func TestTypedVar(t *testing.T) {
	type ModelName string
	v := Var[ModelName]("TestTypedVar")
	GlobalExecutor.MustExecute([]string{
		"TestTypedVar", "qwen-coder",
	})
	if *v != "qwen-coder" {
		t.Fatalf("got %q", *v)
	}
}

func TestDurationVar(t *testing.T) {
	timeout := Var[time.Duration]("TestDurationVar")
	GlobalExecutor.MustExecute([]string{
		"TestDurationVar", "3m",
	})
	if *timeout != 3*time.Minute {
		t.Fatalf("got %v", *timeout)
	}
	if err := GlobalExecutor.Execute([]string{"TestDurationVar", "soon"}); err == nil {
		t.Fatal("expected error")
	}
}
