package roicalculate

import (
	"context"
	"fmt"

	apperrors "solar-roi-workers/internal/common/errors"
	"solar-roi-workers/internal/common/logger"
	"solar-roi-workers/internal/common/metrics"
	"solar-roi-workers/internal/common/validation"
	"solar-roi-workers/internal/models"
	"solar-roi-workers/internal/session"
)

type ServiceDependencies struct {
	Analyzer session.Analyzer
	Sessions *session.Manager
	Logger   logger.Logger
}

type Service struct {
	analyzer session.Analyzer
	sessions *session.Manager
	logger   logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		analyzer: deps.Analyzer,
		sessions: deps.Sessions,
		logger:   deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	var output *Output
	var err error
	if input.standalone() {
		output, err = s.analyzeStandalone(input)
	} else {
		output, err = s.computeForSession(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	if err := checkAnalysis(output.Analysis); err != nil {
		return nil, err
	}

	metrics.AnalysesComputed.Inc()
	if !output.Analysis.Breakeven.Defined {
		metrics.BreakevenUndefined.Inc()
	}

	s.logger.Info("investment analysis computed", map[string]interface{}{
		"sessionId":        output.SessionID,
		"netCost":          output.Analysis.NetCost,
		"totalBenefit":     output.Analysis.TotalAnnualBenefit,
		"breakevenDefined": output.Analysis.Breakeven.Defined,
	})
	return output, nil
}

func (s *Service) analyzeStandalone(input *Input) (*Output, error) {
	if input.SystemCapacity <= 0 {
		return nil, apperrors.NewValidationError("system_capacity", input.SystemCapacity, "must be greater than 0")
	}
	if input.AnnualGeneration < 0 {
		return nil, apperrors.NewValidationError("annual_generation", input.AnnualGeneration, "must be a non-negative number")
	}

	estimate := models.GenerationEstimate{ACAnnual: input.AnnualGeneration}
	analysis, err := s.analyzer.Analyze(input.SystemCapacity, estimate, input.Financials)
	if err != nil {
		return nil, err
	}
	return &Output{Analysis: analysis}, nil
}

func (s *Service) computeForSession(ctx context.Context, input *Input) (*Output, error) {
	snap, err := s.sessions.Compute(ctx, input.SessionID, input.Financials)
	if err != nil {
		return nil, err
	}
	analysis, ok := snap.Analysis()
	if !ok {
		return nil, fmt.Errorf("session %s has no analysis after compute", snap.ID())
	}
	return &Output{
		SessionID:    snap.ID(),
		SessionState: string(snap.State()),
		Analysis:     analysis,
	}, nil
}

// checkAnalysis guards the analysis variable contract before it reaches the process.
func checkAnalysis(analysis models.InvestmentAnalysis) error {
	result, err := validation.ValidateDocument(analysis.ToMap(), analysisSchema)
	if err != nil {
		return fmt.Errorf("analysis schema: %w", err)
	}
	if !result.Valid {
		return fmt.Errorf("analysis violates output contract: %v", result.GetErrorMessages())
	}
	return nil
}
