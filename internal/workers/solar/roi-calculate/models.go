package roicalculate

import "solar-roi-workers/internal/models"

// Input carries either a session whose estimate is reused, or a standalone
// capacity and generation pair.
type Input struct {
	SessionID        string
	SystemCapacity   float64
	AnnualGeneration float64
	Financials       models.FinancialParameters
}

func (i *Input) standalone() bool {
	return i.SessionID == ""
}

type Output struct {
	SessionID    string
	SessionState string
	Analysis     models.InvestmentAnalysis
}

func (o *Output) ToVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"analysis":         o.Analysis.ToMap(),
		"breakevenDefined": o.Analysis.Breakeven.Defined,
	}
	if o.SessionID != "" {
		vars["sessionId"] = o.SessionID
		vars["sessionState"] = o.SessionState
	}
	return vars
}
