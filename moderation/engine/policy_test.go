package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDefaults(t *testing.T) {
	assert := assert.New(t)

	pol := DefaultPolicy()

	fixtures := []struct {
		score  int
		risk   RiskLevel
		action string
	}{
		{0, RiskClean, "allow"},
		{1, RiskMild, "warning"},
		{2, RiskMild, "warning"},
		{3, RiskModerate, "temporary_suspension"},
		{4, RiskModerate, "temporary_suspension"},
		{5, RiskSevere, "permanent_ban"},
		{100, RiskSevere, "permanent_ban"},
	}
	for _, fix := range fixtures {
		risk, action := pol.Classify(fix.score)
		assert.Equal(fix.risk, risk, "score: %d", fix.score)
		assert.Equal(fix.action, action, "score: %d", fix.score)
	}
}

func TestValidateThresholds(t *testing.T) {
	assert := assert.New(t)

	pol := DefaultPolicy()
	assert.NoError(pol.Validate())

	pol.Thresholds = Thresholds{Mild: 3, Moderate: 3, Severe: 5}
	assert.Error(pol.Validate())

	pol.Thresholds = Thresholds{Mild: 1, Moderate: 5, Severe: 3}
	assert.Error(pol.Validate())

	pol.Thresholds = Thresholds{Mild: 0, Moderate: 3, Severe: 5}
	assert.Error(pol.Validate())
}

func TestLoadPolicyNoPath(t *testing.T) {
	assert := assert.New(t)

	pol, src, err := LoadPolicy("")
	assert.NoError(err)
	assert.True(src.Defaulted)
	assert.Equal("no policy file configured", src.Reason)
	assert.Equal(DefaultPolicy(), pol)
}

func TestLoadPolicyMissingFileDefaults(t *testing.T) {
	assert := assert.New(t)

	pol, src, err := LoadPolicy("/does/not/exist.json")
	assert.NoError(err)
	assert.True(src.Defaulted)
	assert.NotEmpty(src.Reason)
	assert.Equal(DefaultPolicy(), pol)
}

func TestLoadPolicyMalformedDefaults(t *testing.T) {
	assert := assert.New(t)

	p := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0644))

	pol, src, err := LoadPolicy(p)
	assert.NoError(err)
	assert.True(src.Defaulted)
	assert.NotEmpty(src.Reason)
	assert.Equal(DefaultPolicy(), pol)
}

func TestLoadPolicyFromFile(t *testing.T) {
	assert := assert.New(t)

	p := filepath.Join(t.TempDir(), "policy.json")
	blob := `{
		"severity_thresholds": {"mild": 2, "moderate": 6, "severe": 10},
		"response_actions": {"severe": "shadow_ban"}
	}`
	require.NoError(t, os.WriteFile(p, []byte(blob), 0644))

	pol, src, err := LoadPolicy(p)
	require.NoError(t, err)
	assert.False(src.Defaulted)
	assert.Equal(2, pol.Thresholds.Mild)
	assert.Equal(10, pol.Thresholds.Severe)
	// configured action wins, unconfigured ones keep defaults
	assert.Equal("shadow_ban", pol.Actions.Severe)
	assert.Equal("warning", pol.Actions.Mild)
}

func TestLoadPolicyInvalidThresholdsIsStartupError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "policy.json")
	blob := `{"severity_thresholds": {"mild": 5, "moderate": 3, "severe": 1}}`
	require.NoError(t, os.WriteFile(p, []byte(blob), 0644))

	_, _, err := LoadPolicy(p)
	assert.Error(t, err)
}
