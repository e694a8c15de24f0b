package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckd-screening-server/internal/inference"
)

func TestFormat_NormalUnderZeroIsDisease(t *testing.T) {
	f, err := Format(inference.ZeroIsDisease, 1, [2]float64{0.1, 0.9})
	require.NoError(t, err)

	assert.Equal(t, ResultNormal, f.Result)
	assert.Equal(t, 10.0, f.ProbCKD)
	assert.Equal(t, 90.0, f.ProbNormal)
}

func TestFormat_DiseaseUnderZeroIsDisease(t *testing.T) {
	f, err := Format(inference.ZeroIsDisease, 0, [2]float64{0.731, 0.269})
	require.NoError(t, err)

	assert.Equal(t, ResultDisease, f.Result)
	assert.Equal(t, 73.1, f.ProbCKD)
	assert.Equal(t, 26.9, f.ProbNormal)
}

func TestFormat_PolicyInversion(t *testing.T) {
	// Same raw output, opposite policies: the policy decides meaning,
	// never label position.
	proba := [2]float64{0.2, 0.8}

	f0, err := Format(inference.ZeroIsDisease, 1, proba)
	require.NoError(t, err)
	assert.Equal(t, ResultNormal, f0.Result)
	assert.Equal(t, 20.0, f0.ProbCKD)

	f1, err := Format(inference.OneIsDisease, 1, proba)
	require.NoError(t, err)
	assert.Equal(t, ResultDisease, f1.Result)
	assert.Equal(t, 80.0, f1.ProbCKD)
}

func TestFormat_Idempotent(t *testing.T) {
	first, err := Format(inference.ZeroIsDisease, 0, [2]float64{0.66666, 0.33334})
	require.NoError(t, err)
	second, err := Format(inference.ZeroIsDisease, 0, [2]float64{0.66666, 0.33334})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFormat_Rounding(t *testing.T) {
	f, err := Format(inference.ZeroIsDisease, 0, [2]float64{0.123456, 0.876544})
	require.NoError(t, err)

	assert.Equal(t, 12.35, f.ProbCKD)
	assert.Equal(t, 87.65, f.ProbNormal)
}

func TestFormat_MalformedInput(t *testing.T) {
	_, err := Format(inference.ZeroIsDisease, 2, [2]float64{0.5, 0.5})
	assert.Error(t, err)

	_, err = Format(inference.ZeroIsDisease, 0, [2]float64{0.7, 0.4})
	assert.Error(t, err)

	_, err = Format(inference.ZeroIsDisease, 0, [2]float64{-0.1, 1.1})
	assert.Error(t, err)

	// Drift inside the tolerance is accepted
	_, err = Format(inference.ZeroIsDisease, 0, [2]float64{0.5, 0.5 + 1e-9})
	assert.NoError(t, err)
}
