package sessionreset

type Input struct {
	SessionID string `json:"sessionId"`
}

type Output struct {
	SessionID    string `json:"sessionId"`
	SessionState string `json:"sessionState"`
	Version      int64  `json:"version"`
}

func (o *Output) ToVariables() map[string]interface{} {
	return map[string]interface{}{
		"sessionId":    o.SessionID,
		"sessionState": o.SessionState,
	}
}
