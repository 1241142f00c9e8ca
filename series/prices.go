package series

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	DefaultSeed        = 42
	DefaultDemandLevel = 5.0
	PriceFloor         = 0.05
	PriceCeil          = 1.0
)

// GeneratePrices returns horizon+1 prices on a slowly rising trend with
// growing noise, clipped to [PriceFloor, PriceCeil]. Output depends only on
// horizon and seed.
func GeneratePrices(horizon int, seed uint64) []float64 {
	src := rand.NewPCG(seed, seed)
	prices := make([]float64, horizon+1)
	for t := range prices {
		frac := 0.0
		if horizon > 0 {
			frac = float64(t) / float64(horizon)
		}
		noise := distuv.Normal{
			Mu:    0,
			Sigma: 0.15 + 0.10*frac,
			Src:   src,
		}.Rand()
		prices[t] = math.Max(PriceFloor, math.Min(PriceCeil, 0.45+0.30*frac+noise))
	}
	return prices
}

// ConstantDemand returns horizon+1 copies of level.
func ConstantDemand(horizon int, level float64) []float64 {
	demand := make([]float64, horizon+1)
	for i := range demand {
		demand[i] = level
	}
	return demand
}
