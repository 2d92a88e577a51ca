// Package session holds the calculator flow as an explicit state machine. Snapshots
// are values: every transition returns a new Snapshot and leaves the receiver as it was.
package session

import (
	"encoding/json"
	"time"

	"solar-roi-workers/internal/models"

	"github.com/google/uuid"
)

type State string

const (
	AwaitingSiteData   State = "AwaitingSiteData"
	AwaitingFinancials State = "AwaitingFinancials"
	AnalysisReady      State = "AnalysisReady"
)

// Analyzer computes an investment analysis. *roi.Engine satisfies it.
type Analyzer interface {
	Analyze(capacityKw float64, estimate models.GenerationEstimate, fin models.FinancialParameters) (models.InvestmentAnalysis, error)
}

type Snapshot struct {
	id               string
	state            State
	version          int64
	site             *models.SiteParameters
	pendingRequestID string
	estimate         *models.GenerationEstimate
	financials       *models.FinancialParameters
	analysis         *models.InvestmentAnalysis
	updatedAt        time.Time
}

// New returns the initial snapshot of a session at version 1.
func New(id string) Snapshot {
	return Snapshot{
		id:        id,
		state:     AwaitingSiteData,
		version:   1,
		updatedAt: time.Now().UTC(),
	}
}

func (s Snapshot) ID() string               { return s.id }
func (s Snapshot) State() State             { return s.state }
func (s Snapshot) Version() int64           { return s.version }
func (s Snapshot) PendingRequestID() string { return s.pendingRequestID }
func (s Snapshot) UpdatedAt() time.Time     { return s.updatedAt }

// LookupPending reports whether a generation lookup is in flight.
func (s Snapshot) LookupPending() bool { return s.pendingRequestID != "" }

func (s Snapshot) Site() (models.SiteParameters, bool) {
	if s.site == nil {
		return models.SiteParameters{}, false
	}
	return *s.site, true
}

func (s Snapshot) Estimate() (models.GenerationEstimate, bool) {
	if s.estimate == nil {
		return models.GenerationEstimate{}, false
	}
	return *s.estimate, true
}

func (s Snapshot) Financials() (models.FinancialParameters, bool) {
	if s.financials == nil {
		return models.FinancialParameters{}, false
	}
	return *s.financials, true
}

func (s Snapshot) Analysis() (models.InvestmentAnalysis, bool) {
	if s.analysis == nil {
		return models.InvestmentAnalysis{}, false
	}
	return *s.analysis, true
}

// BeginLookup records the site and a fresh request id. A lookup already pending is
// superseded, so its response will be rejected as stale.
func (s Snapshot) BeginLookup(site models.SiteParameters) (Snapshot, error) {
	if s.state != AwaitingSiteData {
		return s, invalidTransition(s, "beginLookup")
	}
	if err := site.Validate(); err != nil {
		return s, err
	}
	next := s.advance()
	next.site = &site
	next.pendingRequestID = uuid.New().String()
	return next, nil
}

// CompleteLookup applies a generation estimate if requestID is the active request.
func (s Snapshot) CompleteLookup(requestID string, estimate models.GenerationEstimate) (Snapshot, error) {
	if s.state != AwaitingSiteData || s.pendingRequestID == "" || s.pendingRequestID != requestID {
		return s, staleResponse(s.id, requestID)
	}
	next := s.advance()
	next.state = AwaitingFinancials
	next.pendingRequestID = ""
	next.estimate = &estimate
	return next, nil
}

// FailLookup clears the active request after a failed lookup. The state is unchanged.
func (s Snapshot) FailLookup(requestID string) (Snapshot, error) {
	if s.state != AwaitingSiteData || s.pendingRequestID == "" || s.pendingRequestID != requestID {
		return s, staleResponse(s.id, requestID)
	}
	next := s.advance()
	next.pendingRequestID = ""
	return next, nil
}

// Back returns to AwaitingSiteData. The generation estimate is discarded so
// financials cannot be recomputed without a fresh lookup.
func (s Snapshot) Back() Snapshot {
	next := s.advance()
	next.state = AwaitingSiteData
	next.site = nil
	next.pendingRequestID = ""
	next.estimate = nil
	next.financials = nil
	next.analysis = nil
	return next
}

// Compute runs the analysis for the stored estimate. It may be repeated from
// AnalysisReady with edited financials.
func (s Snapshot) Compute(fin models.FinancialParameters, analyzer Analyzer) (Snapshot, error) {
	if s.state != AwaitingFinancials && s.state != AnalysisReady {
		return s, invalidTransition(s, "compute")
	}
	if s.estimate == nil || s.site == nil {
		return s, invalidTransition(s, "compute")
	}
	analysis, err := analyzer.Analyze(s.site.SystemCapacity, *s.estimate, fin)
	if err != nil {
		return s, err
	}
	next := s.advance()
	next.state = AnalysisReady
	next.financials = &fin
	next.analysis = &analysis
	return next, nil
}

func (s Snapshot) advance() Snapshot {
	next := s
	next.version++
	next.updatedAt = time.Now().UTC()
	return next
}

type snapshotRecord struct {
	ID               string                      `json:"id"`
	State            State                       `json:"state"`
	Version          int64                       `json:"version"`
	Site             *models.SiteParameters      `json:"site,omitempty"`
	PendingRequestID string                      `json:"pendingRequestId,omitempty"`
	Estimate         *models.GenerationEstimate  `json:"estimate,omitempty"`
	Financials       *models.FinancialParameters `json:"financials,omitempty"`
	Analysis         *models.InvestmentAnalysis  `json:"analysis,omitempty"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotRecord{
		ID:               s.id,
		State:            s.state,
		Version:          s.version,
		Site:             s.site,
		PendingRequestID: s.pendingRequestID,
		Estimate:         s.estimate,
		Financials:       s.financials,
		Analysis:         s.analysis,
		UpdatedAt:        s.updatedAt,
	})
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*s = Snapshot{
		id:               rec.ID,
		state:            rec.State,
		version:          rec.Version,
		site:             rec.Site,
		pendingRequestID: rec.PendingRequestID,
		estimate:         rec.Estimate,
		financials:       rec.Financials,
		analysis:         rec.Analysis,
		updatedAt:        rec.UpdatedAt,
	}
	return nil
}
