package session

import (
	"encoding/json"
	"testing"

	apperrors "solar-roi-workers/internal/common/errors"
	"solar-roi-workers/internal/models"
	"solar-roi-workers/pkg/roi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSite() models.SiteParameters {
	site := models.DefaultSiteParameters()
	site.SystemCapacity = 3
	return site
}

func testFinancials() models.FinancialParameters {
	return models.FinancialParameters{UpfrontCost: 180000, AnnualConsumption: 3600, ElectricityRate: 8}
}

func lookedUp(t *testing.T) Snapshot {
	t.Helper()
	s, err := New("s-1").BeginLookup(testSite())
	require.NoError(t, err)
	s, err = s.CompleteLookup(s.PendingRequestID(), models.GenerationEstimate{ACAnnual: 4500, SolradAnnual: 5.5})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	s := New("s-1")
	assert.Equal(t, "s-1", s.ID())
	assert.Equal(t, AwaitingSiteData, s.State())
	assert.Equal(t, int64(1), s.Version())
	assert.False(t, s.LookupPending())

	_, ok := s.Estimate()
	assert.False(t, ok)
}

func TestBeginLookup(t *testing.T) {
	s := New("s-1")

	next, err := s.BeginLookup(testSite())
	require.NoError(t, err)

	assert.True(t, next.LookupPending())
	assert.Len(t, next.PendingRequestID(), 36)
	assert.Equal(t, AwaitingSiteData, next.State())
	assert.Equal(t, int64(2), next.Version())

	site, ok := next.Site()
	require.True(t, ok)
	assert.Equal(t, 3.0, site.SystemCapacity)

	// receiver untouched
	assert.False(t, s.LookupPending())
	assert.Equal(t, int64(1), s.Version())
}

func TestBeginLookup_InvalidSite(t *testing.T) {
	site := testSite()
	site.Latitude = 120

	_, err := New("s-1").BeginLookup(site)

	var valErr *apperrors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "lat", valErr.Field)
}

func TestBeginLookup_OnlyFromAwaitingSiteData(t *testing.T) {
	_, err := lookedUp(t).BeginLookup(testSite())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stdErr := apperrors.ToStandardError(err)
	assert.Equal(t, apperrors.ErrCodeInvalidTransition, stdErr.Code)
}

func TestCompleteLookup(t *testing.T) {
	s := lookedUp(t)

	assert.Equal(t, AwaitingFinancials, s.State())
	assert.False(t, s.LookupPending())
	est, ok := s.Estimate()
	require.True(t, ok)
	assert.Equal(t, 4500.0, est.ACAnnual)
}

func TestCompleteLookup_StaleResponseDiscarded(t *testing.T) {
	first, err := New("s-1").BeginLookup(testSite())
	require.NoError(t, err)
	staleID := first.PendingRequestID()

	second, err := first.BeginLookup(testSite())
	require.NoError(t, err)
	require.NotEqual(t, staleID, second.PendingRequestID())

	after, err := second.CompleteLookup(staleID, models.GenerationEstimate{ACAnnual: 1})
	require.ErrorIs(t, err, ErrStaleResponse)
	assert.Equal(t, second, after)

	stdErr := apperrors.ToStandardError(err)
	assert.Equal(t, apperrors.ErrCodeStaleResponse, stdErr.Code)
}

func TestCompleteLookup_AfterBackIsStale(t *testing.T) {
	s, err := New("s-1").BeginLookup(testSite())
	require.NoError(t, err)
	requestID := s.PendingRequestID()

	_, err = s.Back().CompleteLookup(requestID, models.GenerationEstimate{ACAnnual: 4500})
	assert.ErrorIs(t, err, ErrStaleResponse)
}

func TestCompleteLookup_NoPendingRequest(t *testing.T) {
	_, err := New("s-1").CompleteLookup("", models.GenerationEstimate{})
	assert.ErrorIs(t, err, ErrStaleResponse)

	_, err = lookedUp(t).CompleteLookup("anything", models.GenerationEstimate{})
	assert.ErrorIs(t, err, ErrStaleResponse)
}

func TestFailLookup(t *testing.T) {
	s, err := New("s-1").BeginLookup(testSite())
	require.NoError(t, err)

	failed, err := s.FailLookup(s.PendingRequestID())
	require.NoError(t, err)
	assert.Equal(t, AwaitingSiteData, failed.State())
	assert.False(t, failed.LookupPending())

	_, err = failed.FailLookup(s.PendingRequestID())
	assert.ErrorIs(t, err, ErrStaleResponse)
}

func TestBack_DiscardsEstimate(t *testing.T) {
	s, err := lookedUp(t).Compute(testFinancials(), roi.DefaultEngine())
	require.NoError(t, err)

	back := s.Back()

	assert.Equal(t, AwaitingSiteData, back.State())
	_, hasEstimate := back.Estimate()
	_, hasAnalysis := back.Analysis()
	_, hasSite := back.Site()
	assert.False(t, hasEstimate)
	assert.False(t, hasAnalysis)
	assert.False(t, hasSite)

	_, err = back.Compute(testFinancials(), roi.DefaultEngine())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBack_FromAwaitingSiteDataCancelsLookup(t *testing.T) {
	s, err := New("s-1").BeginLookup(testSite())
	require.NoError(t, err)

	back := s.Back()
	assert.Equal(t, AwaitingSiteData, back.State())
	assert.False(t, back.LookupPending())
}

func TestCompute(t *testing.T) {
	s, err := lookedUp(t).Compute(testFinancials(), roi.DefaultEngine())
	require.NoError(t, err)

	assert.Equal(t, AnalysisReady, s.State())
	analysis, ok := s.Analysis()
	require.True(t, ok)
	assert.Equal(t, 685500.0, analysis.Profit25Years)
	assert.True(t, analysis.Breakeven.Defined)
}

func TestCompute_RepeatableWithEditedFinancials(t *testing.T) {
	engine := roi.DefaultEngine()
	ready, err := lookedUp(t).Compute(testFinancials(), engine)
	require.NoError(t, err)

	edited := testFinancials()
	edited.ElectricityRate = 10
	again, err := ready.Compute(edited, engine)
	require.NoError(t, err)

	assert.Equal(t, AnalysisReady, again.State())
	first, _ := ready.Analysis()
	second, _ := again.Analysis()
	assert.Greater(t, second.SavingsFromSelfUse, first.SavingsFromSelfUse)
	assert.Equal(t, first.AnnualGeneration, second.AnnualGeneration)
}

func TestCompute_ZeroGenerationKeepsBreakevenUndefined(t *testing.T) {
	s, err := New("s-1").BeginLookup(testSite())
	require.NoError(t, err)
	s, err = s.CompleteLookup(s.PendingRequestID(), models.GenerationEstimate{})
	require.NoError(t, err)

	s, err = s.Compute(testFinancials(), roi.DefaultEngine())
	require.NoError(t, err)

	analysis, _ := s.Analysis()
	assert.False(t, analysis.Breakeven.Defined)
}

func TestCompute_InvalidFinancialsLeaveStateUnchanged(t *testing.T) {
	s := lookedUp(t)
	fin := testFinancials()
	fin.UpfrontCost = 0

	after, err := s.Compute(fin, roi.DefaultEngine())
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, s, after)
}

func TestCompute_FromAwaitingSiteData(t *testing.T) {
	_, err := New("s-1").Compute(testFinancials(), roi.DefaultEngine())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	s, err := lookedUp(t).Compute(testFinancials(), roi.DefaultEngine())
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"AnalysisReady"`)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, s.ID(), decoded.ID())
	assert.Equal(t, s.State(), decoded.State())
	assert.Equal(t, s.Version(), decoded.Version())
	a1, _ := s.Analysis()
	a2, _ := decoded.Analysis()
	assert.Equal(t, a1, a2)
}
