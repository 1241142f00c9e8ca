package series

import (
	"slices"
	"testing"
)

func TestGeneratePrices(t *testing.T) {
	a := GeneratePrices(150, DefaultSeed)
	if len(a) != 151 {
		t.Fatalf("got %d", len(a))
	}
	for i, p := range a {
		if p < PriceFloor || p > PriceCeil {
			t.Fatalf("price %d out of range: %v", i, p)
		}
	}
	b := GeneratePrices(150, DefaultSeed)
	if !slices.Equal(a, b) {
		t.Fatal("not deterministic")
	}
	c := GeneratePrices(150, DefaultSeed+1)
	if slices.Equal(a, c) {
		t.Fatal("seed ignored")
	}
}

func TestGeneratePricesTrend(t *testing.T) {
	prices := GeneratePrices(1000, 7)
	var head, tail float64
	for _, p := range prices[:200] {
		head += p
	}
	for _, p := range prices[len(prices)-200:] {
		tail += p
	}
	if tail <= head {
		t.Fatalf("expected rising trend, head=%v tail=%v", head/200, tail/200)
	}
}

func TestParse(t *testing.T) {
	gen := func() []float64 { return []float64{9} }

	got, err := Parse("GENERATE", 3, gen)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []float64{9}) {
		t.Fatalf("got %v", got)
	}

	got, err = Parse("constant:2.5", 3, gen)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []float64{2.5, 2.5, 2.5, 2.5}) {
		t.Fatalf("got %v", got)
	}

	got, err = Parse("CONSTANT", 1, gen)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []float64{DefaultDemandLevel, DefaultDemandLevel}) {
		t.Fatalf("got %v", got)
	}

	got, err = Parse(" 0.1, 0.2 ,0.3,", 3, gen)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []float64{0.1, 0.2, 0.3}) {
		t.Fatalf("got %v", got)
	}

	if _, err := Parse("0.1,foo", 3, gen); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Parse("", 3, gen); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Parse("CONSTANT:x", 3, gen); err == nil {
		t.Fatal("expected error")
	}
}
