package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryPath = "../../configs/activity-registry.json"

func TestLoadRegistry_Shipped(t *testing.T) {
	reg, err := LoadRegistry(registryPath)
	require.NoError(t, err)

	require.NoError(t, reg.Validate())
	assert.NoError(t, reg.RequireTaskTypes("solar.generation.lookup", "solar.roi.calculate", "solar.session.reset"))

	activity, ok := reg.Find("solar.roi.calculate")
	require.True(t, ok)
	assert.Equal(t, "roi-calculate", activity.ID)
	assert.Contains(t, activity.ErrorCodes, "VALIDATION_FAILED")
}

func TestRequireTaskTypes_Missing(t *testing.T) {
	reg, err := LoadRegistry(registryPath)
	require.NoError(t, err)

	err = reg.RequireTaskTypes("solar.roi.calculate", "solar.tariff.lookup")
	assert.EqualError(t, err, "task types missing from registry: solar.tariff.lookup")
}

func TestCheckOutput(t *testing.T) {
	reg, err := LoadRegistry(registryPath)
	require.NoError(t, err)
	activity, ok := reg.Find("solar.session.reset")
	require.True(t, ok)

	result, err := activity.CheckOutput(map[string]interface{}{
		"sessionId":    "abc",
		"sessionState": "AwaitingSiteData",
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = activity.CheckOutput(map[string]interface{}{
		"sessionId":    "abc",
		"sessionState": "AnalysisReady",
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "sessionState", result.Errors[0].Field)
}

func TestValidate_Invalid(t *testing.T) {
	valid := func() Activity {
		return Activity{ID: "roi-calculate", DisplayName: "ROI Calculate", TaskType: "solar.roi.calculate"}
	}

	tests := []struct {
		name       string
		activities []Activity
		wantErr    string
	}{
		{"empty", nil, "no activities"},
		{"missing id", []Activity{{DisplayName: "x", TaskType: "solar.roi.calculate"}}, "id"},
		{"duplicate id", []Activity{valid(), valid()}, "duplicate activity id"},
		{"bad task type", []Activity{{ID: "a", DisplayName: "A", TaskType: "roi-calculate"}}, "activity a"},
		{"broken schema", []Activity{{ID: "a", DisplayName: "A", TaskType: "solar.roi.calculate",
			InputSchema: map[string]interface{}{"type": 12}}}, "inputSchema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: tt.activities}
			assert.ErrorContains(t, reg.Validate(), tt.wantErr)
		})
	}
}

func TestSaveRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	reg := &ActivityRegistry{Version: "1.0.0", Activities: []Activity{
		{ID: "session-reset", DisplayName: "Session Reset", TaskType: "solar.session.reset"},
	}}

	require.NoError(t, SaveRegistry(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.Activities[0].TaskType, loaded.Activities[0].TaskType)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
