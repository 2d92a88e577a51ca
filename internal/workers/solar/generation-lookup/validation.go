package generationlookup

import "solar-roi-workers/internal/common/validation"

// GetInputSchema checks variable types only. Ranges belong to the site model so the
// offending field is reported the same way with or without the process engine.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"system_capacity", "lat", "lon"},
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:        "string",
				Description: "Existing calculator session; a new one is started when absent",
				MinLength:   intPtr(1),
			},
			"system_capacity": {Type: "number", Description: "DC system size in kW"},
			"module_type":     {Type: "integer", Description: "0 standard, 1 premium, 2 thin film"},
			"losses":          {Type: "number", Description: "System losses in percent"},
			"array_type":      {Type: "integer", Description: "PVWatts array type code 0-4"},
			"tilt":            {Type: "number", Description: "Tilt angle in degrees"},
			"azimuth":         {Type: "number", Description: "Azimuth angle in degrees"},
			"lat":             {Type: "number", Description: "Latitude"},
			"lon":             {Type: "number", Description: "Longitude"},
		},
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId", "requestId", "acAnnual", "sessionState"},
		Properties: map[string]validation.Property{
			"sessionId":    {Type: "string"},
			"requestId":    {Type: "string"},
			"acAnnual":     {Type: "number", Minimum: validation.Float(0)},
			"solradAnnual": {Type: "number"},
			"sessionState": {Type: "string", Enum: []interface{}{"AwaitingFinancials"}},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
