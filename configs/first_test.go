package configs

import (
	"testing"
)

func TestFirst(t *testing.T) {
	loader := NewLoader([]string{"test.cue", "test2.cue"}, testSchema)

	if str := First[string](loader, "str"); str != "bar" {
		t.Fatalf("got %v", str)
	}

	horizon := First[*int](loader, "horizon")
	if horizon == nil || *horizon != 150 {
		t.Fatalf("got %v", horizon)
	}
	if missing := First[*float64](loader, "capacity_kwh"); missing != nil {
		t.Fatalf("got %v", *missing)
	}
}

func TestFirstPanicsOnMismatch(t *testing.T) {
	loader := NewLoader([]string{"test.cue"}, testSchema)
	defer func() {
		if recover() == nil {
			t.Fatal("should panic")
		}
	}()
	First[int](loader, "str")
}
