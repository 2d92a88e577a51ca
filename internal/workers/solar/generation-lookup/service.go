package generationlookup

import (
	"context"
	"errors"
	"time"

	apperrors "solar-roi-workers/internal/common/errors"
	"solar-roi-workers/internal/common/logger"
	"solar-roi-workers/internal/common/metrics"
	"solar-roi-workers/internal/models"
	"solar-roi-workers/internal/session"
)

// GenerationLookup fetches modeled annual generation for a site.
type GenerationLookup interface {
	Lookup(ctx context.Context, site models.SiteParameters) (models.GenerationEstimate, error)
}

type ServiceDependencies struct {
	Lookup   GenerationLookup
	Sessions *session.Manager
	Logger   logger.Logger
}

type Service struct {
	lookup   GenerationLookup
	sessions *session.Manager
	logger   logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		lookup:   deps.Lookup,
		sessions: deps.Sessions,
		logger:   deps.Logger,
	}
}

// Execute records the lookup as the session's active request, calls the
// collaborator and applies the estimate only if that request is still active.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	snap, err := s.sessions.BeginLookup(ctx, input.SessionID, input.Site)
	if err != nil {
		return nil, err
	}
	sessionID, requestID := snap.ID(), snap.PendingRequestID()

	log := s.logger.WithFields(map[string]interface{}{
		"sessionId": sessionID,
		"requestId": requestID,
	})

	start := time.Now()
	estimate, err := s.lookup.Lookup(ctx, input.Site)
	metrics.GenerationLookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GenerationLookups.WithLabelValues(lookupOutcome(err)).Inc()
		log.Warn("generation lookup failed", map[string]interface{}{"error": err.Error()})

		// the job context may be spent already
		clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, clearErr := s.sessions.FailLookup(clearCtx, sessionID, requestID); clearErr != nil && !errors.Is(clearErr, session.ErrStaleResponse) {
			log.Warn("failed to clear pending lookup", map[string]interface{}{"error": clearErr.Error()})
		}
		return nil, err
	}
	metrics.GenerationLookups.WithLabelValues("ok").Inc()

	snap, err = s.sessions.CompleteLookup(ctx, sessionID, requestID, estimate)
	if err != nil {
		if errors.Is(err, session.ErrStaleResponse) {
			metrics.StaleResponsesDiscarded.Inc()
			log.Info("discarding stale generation estimate", nil)
		}
		return nil, err
	}

	log.Info("generation estimate applied", map[string]interface{}{
		"acAnnual": estimate.ACAnnual,
		"version":  snap.Version(),
	})

	return &Output{
		SessionID:    sessionID,
		RequestID:    requestID,
		ACAnnual:     estimate.ACAnnual,
		SolradAnnual: estimate.SolradAnnual,
		SessionState: string(snap.State()),
	}, nil
}

func lookupOutcome(err error) string {
	var collabErr *apperrors.CollaboratorError
	if errors.As(err, &collabErr) {
		return string(collabErr.Reason)
	}
	if apperrors.IsValidation(err) {
		return "validation"
	}
	return "error"
}
