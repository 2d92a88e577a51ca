// internal/models/solar.go
package models

import (
	"encoding/json"
	"math"
	"strconv"

	apperrors "solar-roi-workers/internal/common/errors"
)

// PVWatts module_type codes.
const (
	ModuleStandard = 0
	ModulePremium  = 1
	ModuleThinFilm = 2
)

// PVWatts array_type codes.
const (
	ArrayFixedOpenRack       = 0
	ArrayFixedRoofMount      = 1
	ArrayOneAxis             = 2
	ArrayOneAxisBacktracking = 3
	ArrayTwoAxis             = 4
)

// SiteParameters describes the installation submitted for a generation lookup.
type SiteParameters struct {
	SystemCapacity float64 `json:"system_capacity"`
	ModuleType     int     `json:"module_type"`
	Losses         float64 `json:"losses"`
	ArrayType      int     `json:"array_type"`
	Tilt           float64 `json:"tilt"`
	Azimuth        float64 `json:"azimuth"`
	Latitude       float64 `json:"lat"`
	Longitude      float64 `json:"lon"`
}

// DefaultSiteParameters mirrors the calculator form defaults (a 4 kW roof-mounted
// system at the geographic centre of India).
func DefaultSiteParameters() SiteParameters {
	return SiteParameters{
		SystemCapacity: 4,
		ModuleType:     ModuleStandard,
		Losses:         14,
		ArrayType:      ArrayFixedRoofMount,
		Tilt:           20,
		Azimuth:        180,
		Latitude:       20.5937,
		Longitude:      78.9629,
	}
}

// Validate checks every range constraint without any I/O. Coordinates are checked
// first so an out-of-range location is always the reported field.
func (s SiteParameters) Validate() error {
	if err := inRange("lat", s.Latitude, -90, 90); err != nil {
		return err
	}
	if err := inRange("lon", s.Longitude, -180, 180); err != nil {
		return err
	}
	if !finite(s.SystemCapacity) || s.SystemCapacity <= 0 {
		return apperrors.NewValidationError("system_capacity", s.SystemCapacity, "must be greater than 0")
	}
	if s.ModuleType < ModuleStandard || s.ModuleType > ModuleThinFilm {
		return apperrors.NewValidationError("module_type", s.ModuleType, "must be 0, 1 or 2")
	}
	if err := inRange("losses", s.Losses, 0, 100); err != nil {
		return err
	}
	if s.ArrayType < ArrayFixedOpenRack || s.ArrayType > ArrayTwoAxis {
		return apperrors.NewValidationError("array_type", s.ArrayType, "must be between 0 and 4")
	}
	if err := inRange("tilt", s.Tilt, 0, 90); err != nil {
		return err
	}
	return inRange("azimuth", s.Azimuth, 0, 360)
}

// GenerationEstimate is the collaborator's modeled annual output for a site.
type GenerationEstimate struct {
	ACAnnual     float64 `json:"ac_annual"`
	SolradAnnual float64 `json:"solrad_annual"`
}

// FinancialParameters are the household inputs to the ROI calculation.
type FinancialParameters struct {
	UpfrontCost       float64 `json:"upfront_cost"`
	AnnualConsumption float64 `json:"annual_consumption"`
	ElectricityRate   float64 `json:"electricity_rate"`
}

// Validate checks that every financial input is finite and within range.
func (f FinancialParameters) Validate() error {
	if !finite(f.UpfrontCost) || f.UpfrontCost <= 0 {
		return apperrors.NewValidationError("upfront_cost", f.UpfrontCost, "must be a number greater than 0")
	}
	if !finite(f.AnnualConsumption) || f.AnnualConsumption < 0 {
		return apperrors.NewValidationError("annual_consumption", f.AnnualConsumption, "must be a non-negative number")
	}
	if !finite(f.ElectricityRate) || f.ElectricityRate <= 0 {
		return apperrors.NewValidationError("electricity_rate", f.ElectricityRate, "must be a number greater than 0")
	}
	return nil
}

// Breakeven is the payback period. Defined is false when the installation yields no
// annual benefit, in which case Years carries no meaning.
type Breakeven struct {
	Years   float64 `json:"years"`
	Defined bool    `json:"defined"`
}

type breakevenJSON struct {
	Years   *float64 `json:"years"`
	Defined bool     `json:"defined"`
}

// MarshalJSON writes null years when the breakeven is undefined.
func (b Breakeven) MarshalJSON() ([]byte, error) {
	out := breakevenJSON{Defined: b.Defined}
	if b.Defined {
		years := b.Years
		out.Years = &years
	}
	return json.Marshal(out)
}

func (b *Breakeven) UnmarshalJSON(data []byte) error {
	var in breakevenJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*b = UndefinedBreakeven
	if in.Defined && in.Years != nil {
		*b = Breakeven{Years: *in.Years, Defined: true}
	}
	return nil
}

// UndefinedBreakeven is returned when total annual benefit is zero or too small to divide by.
var UndefinedBreakeven = Breakeven{}

// Value returns the payback period or a ComputationError when it is undefined.
func (b Breakeven) Value() (float64, error) {
	if !b.Defined {
		return 0, apperrors.NewBreakevenUndefinedError("total annual benefit is zero")
	}
	return b.Years, nil
}

// InvestmentAnalysis is the full derived result of one ROI computation.
type InvestmentAnalysis struct {
	AnnualGeneration   float64   `json:"annualGeneration"`
	SelfConsumption    float64   `json:"selfConsumption"`
	ExportedEnergy     float64   `json:"exportedEnergy"`
	SavingsFromSelfUse float64   `json:"savingsFromSelfUse"`
	EarningsFromExport float64   `json:"earningsFromExport"`
	TotalAnnualBenefit float64   `json:"totalAnnualBenefit"`
	UpfrontCost        float64   `json:"upfrontCost"`
	Subsidy            float64   `json:"subsidy"`
	NetCost            float64   `json:"netCost"`
	Breakeven          Breakeven `json:"breakeven"`
	Profit25Years      float64   `json:"profit25Years"`
	ExportRate         float64   `json:"exportRate"`
}

// ToMap flattens the analysis into job variables. Breakeven years are nil when undefined.
func (a InvestmentAnalysis) ToMap() map[string]interface{} {
	var years interface{}
	if a.Breakeven.Defined {
		years = a.Breakeven.Years
	}
	return map[string]interface{}{
		"annualGeneration":   a.AnnualGeneration,
		"selfConsumption":    a.SelfConsumption,
		"exportedEnergy":     a.ExportedEnergy,
		"savingsFromSelfUse": a.SavingsFromSelfUse,
		"earningsFromExport": a.EarningsFromExport,
		"totalAnnualBenefit": a.TotalAnnualBenefit,
		"upfrontCost":        a.UpfrontCost,
		"subsidy":            a.Subsidy,
		"netCost":            a.NetCost,
		"breakevenYears":     years,
		"breakevenDefined":   a.Breakeven.Defined,
		"profit25Years":      a.Profit25Years,
		"exportRate":         a.ExportRate,
	}
}

func inRange(field string, v, lo, hi float64) error {
	if !finite(v) || v < lo || v > hi {
		return apperrors.NewValidationError(field, v, rangeReason(lo, hi))
	}
	return nil
}

func rangeReason(lo, hi float64) string {
	return "must be between " + strconv.FormatFloat(lo, 'f', -1, 64) + " and " + strconv.FormatFloat(hi, 'f', -1, 64)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
