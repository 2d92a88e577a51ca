package roi

// PM Surya Ghar rooftop subsidy approximation.
const (
	SubsidyPerKw         = 30000.0 // ₹ per kW up to the cap
	SubsidyLinearLimitKw = 2.0     // kW; capacity at or below uses the per-kW rate
	SubsidyFlatAmount    = 78000.0 // ₹ for any capacity above the limit
)

const (
	DefaultExportRate = 3.0 // ₹/kWh paid for energy exported to the grid
	ProjectionYears   = 25
)
