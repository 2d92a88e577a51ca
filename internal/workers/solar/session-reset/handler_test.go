package sessionreset

import (
	"context"
	"testing"
	"time"

	"solar-roi-workers/internal/common/config"
	apperrors "solar-roi-workers/internal/common/errors"
	"solar-roi-workers/internal/common/logger"
	"solar-roi-workers/internal/models"
	"solar-roi-workers/internal/session"
	"solar-roi-workers/pkg/roi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Handler, *session.Manager) {
	sessions := session.NewManager(session.NewMemoryStore(time.Hour), roi.DefaultEngine(), logger.NewTestLogger(t))
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Logger:       logger.NewTestLogger(t),
		Sessions:     sessions,
	})
	require.NoError(t, err)
	return h, sessions
}

func TestNewHandler_ConfigFromApp(t *testing.T) {
	sessions := session.NewManager(session.NewMemoryStore(0), roi.DefaultEngine(), logger.NewNoOpLogger())
	appConfig := &config.Config{Workers: map[string]config.WorkerConfig{
		WorkerName: {Enabled: false, MaxJobsActive: 3, Timeout: 2000},
	}}

	h, err := NewHandler(HandlerOptions{AppConfig: appConfig, Sessions: sessions, Logger: logger.NewNoOpLogger()})
	require.NoError(t, err)
	assert.False(t, h.IsEnabled())
	assert.Equal(t, 3, h.GetConfig().MaxJobsActive)
	assert.Equal(t, 2*time.Second, h.GetConfig().Timeout)

	_, err = NewHandler(HandlerOptions{Logger: logger.NewNoOpLogger()})
	assert.Error(t, err)
}

func TestParseVariables(t *testing.T) {
	input, err := parseVariables(map[string]interface{}{"sessionId": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", input.SessionID)

	_, err = parseVariables(map[string]interface{}{})
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.ToStandardError(err).Code)

	_, err = parseVariables(map[string]interface{}{"sessionId": 42.0})
	assert.Error(t, err)
}

func TestExecute_ResetsAnalysedSession(t *testing.T) {
	h, sessions := setup(t)
	ctx := context.Background()

	snap, err := sessions.BeginLookup(ctx, "", models.DefaultSiteParameters())
	require.NoError(t, err)
	snap, err = sessions.CompleteLookup(ctx, snap.ID(), snap.PendingRequestID(), models.GenerationEstimate{ACAnnual: 5000})
	require.NoError(t, err)
	_, err = sessions.Compute(ctx, snap.ID(), models.FinancialParameters{UpfrontCost: 200000, AnnualConsumption: 3000, ElectricityRate: 7})
	require.NoError(t, err)

	output, err := h.Execute(ctx, &Input{SessionID: snap.ID()})
	require.NoError(t, err)
	assert.Equal(t, "AwaitingSiteData", output.SessionState)
	assert.Equal(t, snap.ID(), output.ToVariables()["sessionId"])

	reset, err := sessions.Get(ctx, snap.ID())
	require.NoError(t, err)
	_, hasEstimate := reset.Estimate()
	_, hasAnalysis := reset.Analysis()
	_, hasSite := reset.Site()
	assert.False(t, hasEstimate)
	assert.False(t, hasAnalysis)
	assert.False(t, hasSite)
}

func TestExecute_CancelsPendingLookup(t *testing.T) {
	h, sessions := setup(t)
	ctx := context.Background()

	snap, err := sessions.BeginLookup(ctx, "", models.DefaultSiteParameters())
	require.NoError(t, err)

	_, err = h.Execute(ctx, &Input{SessionID: snap.ID()})
	require.NoError(t, err)

	_, err = sessions.CompleteLookup(ctx, snap.ID(), snap.PendingRequestID(), models.GenerationEstimate{ACAnnual: 1})
	assert.ErrorIs(t, err, session.ErrStaleResponse)
}

func TestExecute_UnknownSession(t *testing.T) {
	h, _ := setup(t)

	_, err := h.Execute(context.Background(), &Input{SessionID: "missing"})

	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.ToStandardError(err).Code)
}
