package sessionreset

import "solar-roi-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"sessionId"},
		Properties: map[string]validation.Property{
			"sessionId": {Type: "string", MinLength: intPtr(1)},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
