package policies

import (
	"strings"
	"testing"

	"github.com/reusee/metaloop/battery"
)

func TestMovingAverageWarmup(t *testing.T) {
	p, err := NewMovingAverage(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, price := range []float64{0.5, 0.4} {
		a, err := p.TakeAction(battery.State{SoC: 5, Price: price})
		if err != nil {
			t.Fatal(err)
		}
		if a != 0 {
			t.Fatalf("call %d: expected hold, got %v", i, a)
		}
	}
	a, err := p.TakeAction(battery.State{SoC: 5, Price: 0.3})
	if err != nil {
		t.Fatal(err)
	}
	if a != 1 {
		t.Fatalf("expected charge, got %v", a)
	}
}

func TestMovingAverageDischargeBoundedBySoC(t *testing.T) {
	p, err := NewMovingAverage(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	soc := 1.5
	var actions []float64
	for _, price := range []float64{0.1, 0.2, 0.3, 0.4} {
		a, err := p.TakeAction(battery.State{SoC: soc, Price: price})
		if err != nil {
			t.Fatal(err)
		}
		actions = append(actions, a)
		if a < 0 {
			soc += a
		}
	}
	want := []float64{0, -1, -0.5, 0}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("actions %v, want %v", actions, want)
		}
	}
}

func TestMovingAverageWindowSlides(t *testing.T) {
	p, err := NewMovingAverage(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, price := range []float64{10, 10, 1} {
		if _, err := p.TakeAction(battery.State{Price: price}); err != nil {
			t.Fatal(err)
		}
	}
	if len(p.prices) != 2 {
		t.Fatalf("got %v", p.prices)
	}
	if p.prices[0] != 10 || p.prices[1] != 1 {
		t.Fatalf("got %v", p.prices)
	}
}

func TestNewMovingAverageInvalid(t *testing.T) {
	if _, err := NewMovingAverage(0, 1); err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewMovingAverage(2, -1); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewBaseline(t *testing.T) {
	p, err := NewBaseline(DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if p.Window != 24 || p.MaxRate != 1 {
		t.Fatalf("got %+v", p)
	}
	p, err = NewBaseline(Params{ParamWindowSize: 0})
	if err != nil {
		t.Fatal(err)
	}
	if p.Window != 24 {
		t.Fatalf("got %d", p.Window)
	}
}

func TestThreshold(t *testing.T) {
	p := Threshold{Threshold: 0.5, MaxRate: 2}
	for _, c := range []struct {
		price, soc, want float64
	}{
		{0.4, 5, 2},
		{0.6, 5, -2},
		{0.6, 1, -1},
		{0.5, 5, 0},
	} {
		got, err := p.TakeAction(battery.State{SoC: c.soc, Price: c.price})
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Fatalf("price %v soc %v: got %v, want %v", c.price, c.soc, got, c.want)
		}
	}
}

func TestSources(t *testing.T) {
	ma, err := NewMovingAverage(12, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	src := ma.Source()
	if !strings.Contains(src, "def MovingAveragePolicy(window = 12, max_rate = 1.5):") {
		t.Fatalf("got %s", src)
	}
	src = Threshold{Threshold: 0.25, MaxRate: 1}.Source()
	if !strings.Contains(src, "threshold = 0.25, max_rate = 1") {
		t.Fatalf("got %s", src)
	}
	if !strings.Contains(Hold{}.Source(), "def take_action(state):") {
		t.Fatal("bad hold source")
	}
}

func TestParams(t *testing.T) {
	p := DefaultParams()
	c := p.Clone()
	c[ParamLearningRate] = 1
	if p[ParamLearningRate] != 0.01 {
		t.Fatal("clone aliases")
	}
	if got := p.String(); got != "learning_rate=0.01, window_size=24" {
		t.Fatalf("got %s", got)
	}
	if p.Window(1) != 24 {
		t.Fatal("bad window")
	}
}
