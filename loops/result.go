package loops

import (
	"github.com/reusee/metaloop/battery"
	"github.com/reusee/metaloop/policies"
)

type SegmentResult struct {
	Index       int             `json:"meta_step" msgpack:"meta_step"`
	Steps       int             `json:"steps" msgpack:"steps"`
	EndState    battery.State   `json:"end_state" msgpack:"end_state"`
	MetaParams  policies.Params `json:"meta_params" msgpack:"meta_params"`
	PolicyName  string          `json:"policy_name" msgpack:"policy_name"`
	SegmentCost float64         `json:"segment_cost" msgpack:"segment_cost"`
}

type Result struct {
	FinalState      battery.State    `json:"final_state"`
	History         *battery.History `json:"history"`
	MetaParams      policies.Params  `json:"meta_params"`
	FinalPolicy     policies.Policy  `json:"-"`
	Segments        []SegmentResult  `json:"per_segment"`
	ActionFallbacks int              `json:"action_fallbacks"`
	Skipped         int              `json:"skipped_steps"`
}

func (r *Result) TotalCost() float64 {
	return r.FinalState.Cost
}
