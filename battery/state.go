package battery

import "fmt"

// State is the 5-field simulation state. Field order is fixed:
// soc, imported, price, cost, demand.
type State struct {
	SoC      float64 `json:"soc" msgpack:"soc"`
	Imported float64 `json:"imported" msgpack:"imported"`
	Price    float64 `json:"price" msgpack:"price"`
	Cost     float64 `json:"cost" msgpack:"cost"`
	Demand   float64 `json:"demand" msgpack:"demand"`
}

var StateFields = [5]string{"soc", "imported", "price", "cost", "demand"}

func (s State) Vector() [5]float64 {
	return [5]float64{s.SoC, s.Imported, s.Price, s.Cost, s.Demand}
}

func (s State) String() string {
	return fmt.Sprintf("soc=%.4f imported=%.4f price=%.4f cost=%.4f demand=%.4f",
		s.SoC, s.Imported, s.Price, s.Cost, s.Demand)
}
