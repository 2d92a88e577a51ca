package pvwatts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "solar-roi-workers/internal/common/errors"
	"solar-roi-workers/internal/models"
)

// Number accepts a JSON number or a JSON string holding a finite number.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		// ParseFloat accepts "NaN" and "Inf"
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("not a finite number: %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

type Outputs struct {
	ACAnnual     *Number `json:"ac_annual"`
	SolradAnnual *Number `json:"solrad_annual"`
}

// Response is the normalized collaborator payload. Values may sit under "outputs"
// (PVWatts v8) or at the top level.
type Response struct {
	Outputs  *Outputs `json:"outputs"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	topLevel Outputs
}

// Decode turns a response body into a Response. A body that is a JSON string is
// decoded a second time; anything still not an object is a malformed response.
func Decode(body []byte) (*Response, error) {
	payload := bytes.TrimSpace(body)
	if len(payload) == 0 {
		return nil, malformed(fmt.Errorf("empty response body"))
	}

	if payload[0] == '"' {
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return nil, malformed(fmt.Errorf("decode string envelope: %w", err))
		}
		payload = bytes.TrimSpace([]byte(inner))
	}

	if len(payload) == 0 || payload[0] != '{' {
		return nil, malformed(fmt.Errorf("response is not a JSON object"))
	}

	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, malformed(fmt.Errorf("decode response: %w", err))
	}
	if err := json.Unmarshal(payload, &resp.topLevel); err != nil {
		return nil, malformed(fmt.Errorf("decode top-level outputs: %w", err))
	}
	return &resp, nil
}

// Estimate extracts the generation figures, surfacing upstream errors as one
// aggregated CollaboratorError.
func (r *Response) Estimate() (models.GenerationEstimate, error) {
	if len(r.Errors) > 0 {
		return models.GenerationEstimate{}, &apperrors.CollaboratorError{
			Reason:   apperrors.ReasonUpstreamValidation,
			Messages: r.Errors,
		}
	}

	ac, solrad := r.topLevel.ACAnnual, r.topLevel.SolradAnnual
	if r.Outputs != nil {
		if r.Outputs.ACAnnual != nil {
			ac = r.Outputs.ACAnnual
		}
		if r.Outputs.SolradAnnual != nil {
			solrad = r.Outputs.SolradAnnual
		}
	}
	if ac == nil {
		return models.GenerationEstimate{}, malformed(fmt.Errorf("response has no ac_annual"))
	}

	est := models.GenerationEstimate{ACAnnual: float64(*ac)}
	if est.ACAnnual < 0 {
		est.ACAnnual = 0
	}
	if solrad != nil {
		est.SolradAnnual = float64(*solrad)
	}
	return est, nil
}

func malformed(err error) error {
	return &apperrors.CollaboratorError{Reason: apperrors.ReasonMalformedResponse, Err: err}
}
