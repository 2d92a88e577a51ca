package sessionreset

import (
	"context"

	"solar-roi-workers/internal/common/logger"
	"solar-roi-workers/internal/session"
)

type ServiceDependencies struct {
	Sessions *session.Manager
	Logger   logger.Logger
}

type Service struct {
	sessions *session.Manager
	logger   logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{sessions: deps.Sessions, logger: deps.Logger}
}

// Execute returns the session to site entry. Any lookup still in flight for it
// becomes stale.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	snap, err := s.sessions.Back(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session reset", map[string]interface{}{
		"sessionId": snap.ID(),
		"version":   snap.Version(),
	})

	return &Output{
		SessionID:    snap.ID(),
		SessionState: string(snap.State()),
		Version:      snap.Version(),
	}, nil
}
