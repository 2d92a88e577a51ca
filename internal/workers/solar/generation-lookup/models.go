package generationlookup

import "solar-roi-workers/internal/models"

type Input struct {
	SessionID string
	Site      models.SiteParameters
}

type Output struct {
	SessionID    string  `json:"sessionId"`
	RequestID    string  `json:"requestId"`
	ACAnnual     float64 `json:"acAnnual"`
	SolradAnnual float64 `json:"solradAnnual"`
	SessionState string  `json:"sessionState"`
}

func (o *Output) ToVariables() map[string]interface{} {
	return map[string]interface{}{
		"sessionId":    o.SessionID,
		"requestId":    o.RequestID,
		"acAnnual":     o.ACAnnual,
		"solradAnnual": o.SolradAnnual,
		"sessionState": o.SessionState,
	}
}
