package battery

// History is the append-only trajectory of a run, indexed by absolute step.
// BatteryLevels and TotalCosts carry one extra leading entry for the reset state.
type History struct {
	BatteryLevels []float64 `json:"battery_level_record"`
	Actions       []float64 `json:"action_record"`
	StepCosts     []float64 `json:"cost_per_time_record"`
	TotalCosts    []float64 `json:"total_cost_record"`
}

func NewHistory(initial State) *History {
	return &History{
		BatteryLevels: []float64{initial.SoC},
		TotalCosts:    []float64{initial.Cost},
	}
}

func (h *History) Append(s State, action float64) {
	delta := s.Cost - h.TotalCosts[len(h.TotalCosts)-1]
	h.BatteryLevels = append(h.BatteryLevels, s.SoC)
	h.Actions = append(h.Actions, action)
	h.StepCosts = append(h.StepCosts, delta)
	h.TotalCosts = append(h.TotalCosts, s.Cost)
}

// Steps is the number of recorded steps.
func (h *History) Steps() int {
	return len(h.Actions)
}

// CostSince sums step costs from step index from (inclusive) to the end.
func (h *History) CostSince(from int) (sum float64) {
	for _, c := range h.StepCosts[min(from, len(h.StepCosts)):] {
		sum += c
	}
	return
}

// Tail returns a view of the last n steps. The slices alias h and must not be modified.
func (h History) Tail(n int) History {
	if n <= 0 || n >= len(h.Actions) {
		return h
	}
	cut := len(h.Actions) - n
	return History{
		BatteryLevels: h.BatteryLevels[cut:],
		Actions:       h.Actions[cut:],
		StepCosts:     h.StepCosts[cut:],
		TotalCosts:    h.TotalCosts[cut:],
	}
}
