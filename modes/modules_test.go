package modes

import (
	"testing"

	"github.com/reusee/dscope"
)

func TestModules(t *testing.T) {
	dscope.New(ForProduction()).Call(func(
		got *testing.T,
		mode Mode,
	) {
		if got != nil || mode != ModeProduction {
			t.Fatalf("got %v %v", got, mode)
		}
	})

	dscope.New(ForTest(t)).Call(func(
		got *testing.T,
		mode Mode,
	) {
		if got != t || mode != ModeDevelopment {
			t.Fatalf("got %v %v", got, mode)
		}
	})

	if s := Mode(0).String(); s != "unknown" {
		t.Fatalf("got %s", s)
	}
}
