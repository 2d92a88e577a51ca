package roi

// Allocation splits annual generation between on-site use and grid export.
type Allocation struct {
	SelfConsumption float64
	ExportedEnergy  float64
}

// Allocate consumes generated energy on site first and exports the surplus.
// Negative generation is treated as a system that produces nothing.
func Allocate(generation, consumption float64) Allocation {
	if generation <= 0 {
		return Allocation{}
	}
	if consumption < 0 {
		consumption = 0
	}
	if generation <= consumption {
		return Allocation{SelfConsumption: generation}
	}
	return Allocation{
		SelfConsumption: consumption,
		ExportedEnergy:  generation - consumption,
	}
}
