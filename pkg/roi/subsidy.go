package roi

// Subsidy returns the government rebate for a system of the given capacity.
// The rule has a cliff: 2 kW earns 60,000 while anything above earns the flat 78,000.
func Subsidy(capacityKw float64) float64 {
	if capacityKw <= 0 {
		return 0
	}
	if capacityKw <= SubsidyLinearLimitKw {
		return capacityKw * SubsidyPerKw
	}
	return SubsidyFlatAmount
}
