package roicalculate

import "solar-roi-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"upfront_cost", "annual_consumption", "electricity_rate"},
		Properties: map[string]validation.Property{
			"sessionId":          {Type: "string", MinLength: intPtr(1)},
			"system_capacity":    {Type: "number", Description: "Used with annual_generation when no session is given"},
			"annual_generation":  {Type: "number", Description: "kWh per year"},
			"upfront_cost":       {Type: "number", Description: "Installation cost in ₹"},
			"annual_consumption": {Type: "number", Description: "Household consumption in kWh per year"},
			"electricity_rate":   {Type: "number", Description: "Tariff in ₹/kWh"},
		},
	}
}

// analysisSchema is the contract of the analysis variable consumed by the process.
const analysisSchema = `{
  "type": "object",
  "required": ["annualGeneration", "selfConsumption", "exportedEnergy", "savingsFromSelfUse",
    "earningsFromExport", "totalAnnualBenefit", "upfrontCost", "subsidy", "netCost",
    "breakevenYears", "breakevenDefined", "profit25Years", "exportRate"],
  "properties": {
    "annualGeneration":   {"type": "number", "minimum": 0},
    "selfConsumption":    {"type": "number", "minimum": 0},
    "exportedEnergy":     {"type": "number", "minimum": 0},
    "savingsFromSelfUse": {"type": "number", "minimum": 0},
    "earningsFromExport": {"type": "number", "minimum": 0},
    "totalAnnualBenefit": {"type": "number", "minimum": 0},
    "upfrontCost":        {"type": "number", "minimum": 0},
    "subsidy":            {"type": "number", "minimum": 0, "maximum": 78000},
    "netCost":            {"type": "number"},
    "breakevenYears":     {"type": ["number", "null"]},
    "breakevenDefined":   {"type": "boolean"},
    "profit25Years":      {"type": "number"},
    "exportRate":         {"type": "number", "minimum": 0}
  },
  "if":   {"properties": {"breakevenDefined": {"const": false}}},
  "then": {"properties": {"breakevenYears": {"type": "null"}}},
  "else": {"properties": {"breakevenYears": {"type": "number"}}}
}`

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"analysis", "breakevenDefined"},
		Properties: map[string]validation.Property{
			"analysis":         {Type: "object"},
			"breakevenDefined": {Type: "boolean"},
			"sessionId":        {Type: "string"},
			"sessionState":     {Type: "string", Enum: []interface{}{"AnalysisReady"}},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
