package vars

import "testing"

func TestFirstNonZero(t *testing.T) {
	if n := FirstNonZero(0, 0, 3, 4); n != 3 {
		t.Fatalf("got %v", n)
	}
	if s := FirstNonZero("", ""); s != "" {
		t.Fatalf("got %q", s)
	}
}

func TestFirstNonZeroPointers(t *testing.T) {
	var flag *float64
	fromFile := PtrTo(0.0)
	got := FirstNonZero(flag, fromFile, PtrTo(50.0))
	if got != fromFile || *got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := FirstNonZero[*float64](nil, nil); got != nil {
		t.Fatalf("got %v", got)
	}
}

func TestStrToBool(t *testing.T) {
	for _, s := range []string{"true", "T", "yes", " Y", "1", "on"} {
		if !StrToBool(s) {
			t.Fatalf("%s should be true", s)
		}
	}
	for _, s := range []string{"false", "no", "", "0", "whatever"} {
		if StrToBool(s) {
			t.Fatalf("%s should be false", s)
		}
	}
}

func TestDerefOrZero(t *testing.T) {
	if DerefOrZero[int](nil) != 0 {
		t.Fatal()
	}
	if DerefOrZero(PtrTo(512)) != 512 {
		t.Fatal()
	}
}
