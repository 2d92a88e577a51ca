// Package roi computes the return on investment of a rooftop solar installation
// from its modeled annual generation and the household's financial parameters.
package roi

import (
	"fmt"
	"math"

	apperrors "solar-roi-workers/internal/common/errors"
	"solar-roi-workers/internal/models"
)

// Engine holds the tariff settings that are not user inputs.
type Engine struct {
	ExportRate float64
}

// NewEngine returns an engine paying exportRate per exported kWh. A negative or
// non-finite rate is rejected.
func NewEngine(exportRate float64) (*Engine, error) {
	if math.IsNaN(exportRate) || math.IsInf(exportRate, 0) || exportRate < 0 {
		return nil, fmt.Errorf("export rate must be a non-negative number, got %v", exportRate)
	}
	return &Engine{ExportRate: exportRate}, nil
}

// DefaultEngine pays DefaultExportRate for exported energy.
func DefaultEngine() *Engine {
	return &Engine{ExportRate: DefaultExportRate}
}

// Analyze produces the investment analysis. It performs no I/O and holds no state,
// so identical inputs always give identical results. A zero annual benefit yields
// an analysis whose breakeven is explicitly undefined.
func (e *Engine) Analyze(capacityKw float64, estimate models.GenerationEstimate, fin models.FinancialParameters) (models.InvestmentAnalysis, error) {
	if err := fin.Validate(); err != nil {
		return models.InvestmentAnalysis{}, err
	}

	generation := estimate.ACAnnual
	if math.IsNaN(generation) || math.IsInf(generation, 0) {
		return models.InvestmentAnalysis{}, apperrors.NewValidationError("annual_generation", generation, "must be a finite number")
	}
	if generation < 0 {
		generation = 0
	}

	alloc := Allocate(generation, fin.AnnualConsumption)
	savings := alloc.SelfConsumption * fin.ElectricityRate
	earnings := alloc.ExportedEnergy * e.ExportRate
	benefit := savings + earnings

	subsidy := Subsidy(capacityKw)
	netCost := fin.UpfrontCost - subsidy

	return models.InvestmentAnalysis{
		AnnualGeneration:   generation,
		SelfConsumption:    alloc.SelfConsumption,
		ExportedEnergy:     alloc.ExportedEnergy,
		SavingsFromSelfUse: savings,
		EarningsFromExport: earnings,
		TotalAnnualBenefit: benefit,
		UpfrontCost:        fin.UpfrontCost,
		Subsidy:            subsidy,
		NetCost:            netCost,
		Breakeven:          breakeven(netCost, benefit),
		Profit25Years:      benefit*ProjectionYears - netCost,
		ExportRate:         e.ExportRate,
	}, nil
}

func breakeven(netCost, benefit float64) models.Breakeven {
	if benefit == 0 {
		return models.UndefinedBreakeven
	}
	// a vanishing benefit overflows the quotient
	years := netCost / benefit
	if math.IsInf(years, 0) || math.IsNaN(years) {
		return models.UndefinedBreakeven
	}
	return models.Breakeven{Years: years, Defined: true}
}
