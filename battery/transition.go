package battery

import "math"

// Flow is the energy and money moved by one transition.
type Flow struct {
	Action        float64 // after rate clamp
	Stored        float64 // energy added to the battery by charging
	Drawn         float64 // energy removed from the battery for export
	Delivered     float64 // energy exported to the grid
	Served        float64 // demand served from the battery
	Import        float64 // charging draw plus unmet demand
	ExportRevenue float64
	CostDelta     float64
}

// Transition advances s by one step. soc stays inside [0, Capacity] because
// every energy movement is bounded by min(...) against what is available.
func Transition(p Params, s State, action, nextPrice, nextDemand float64) (State, Flow) {
	var flow Flow
	action = p.Clamp(action)
	flow.Action = action
	soc := s.SoC

	var chargeDraw float64
	if action > 0 {
		stored := math.Min(action*p.EffCharge, math.Max(0, p.Capacity-soc))
		chargeDraw = stored / p.EffCharge
		soc += stored
		flow.Stored = stored
	} else if action < 0 {
		drawn := math.Min(-action/p.EffDischarge, soc)
		delivered := drawn * p.EffDischarge
		soc -= drawn
		flow.Drawn = drawn
		flow.Delivered = delivered
		flow.ExportRevenue = delivered * nextPrice
	}

	served := math.Min(soc, nextDemand)
	soc -= served
	unmet := nextDemand - served
	flow.Served = served

	flow.Import = chargeDraw + unmet
	flow.CostDelta = flow.Import*nextPrice - flow.ExportRevenue

	return State{
		SoC:      soc,
		Imported: s.Imported + flow.Import,
		Price:    nextPrice,
		Cost:     s.Cost + flow.CostDelta,
		Demand:   nextDemand,
	}, flow
}
