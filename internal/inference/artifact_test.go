package inference

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckd-screening-server/internal/schema"
)

func writeArtifact(t *testing.T, af artifactFile) string {
	t.Helper()
	data, err := json.Marshal(af)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func coreArtifact() artifactFile {
	return artifactFile{
		ModelName:    "adaboost_kidney_model",
		ModelVersion: "1.0.0",
		Schema:       "ckd-core-v1",
		FeatureNames: schema.CoreV1.FieldNames(),
		LabelPolicy:  ZeroIsDisease,
		Stumps: []Stump{
			{Feature: "serum_creatinine", Threshold: 1.3, Polarity: -1, Weight: 0.9},
			{Feature: "haemoglobin", Threshold: 11.0, Polarity: 1, Weight: 0.7},
			{Feature: "albumin", Threshold: 0.5, Polarity: -1, Weight: 0.5},
		},
		Importances: map[string]float64{
			"serum_creatinine": 0.41,
			"haemoglobin":      0.33,
			"albumin":          0.26,
		},
	}
}

func coreRecord(t *testing.T, overrides map[string]float64) *schema.Record {
	t.Helper()
	input := map[string]float64{}
	for _, f := range schema.CoreV1.Fields() {
		input[f.Name] = f.Default
	}
	input["specific_gravity"] = 1.020
	for k, v := range overrides {
		input[k] = v
	}
	rec, err := schema.FromValues(schema.CoreV1, input)
	require.NoError(t, err)
	return rec
}

func TestLoadModel(t *testing.T) {
	path := writeArtifact(t, coreArtifact())
	m, err := LoadModel(path)
	require.NoError(t, err)

	assert.Equal(t, "ckd-core-v1", m.Schema().Name)
	assert.Equal(t, ZeroIsDisease, m.Policy())
	assert.Equal(t, "1.0.0", m.ModelVersion())
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadModel_FeatureOrderMismatch(t *testing.T) {
	af := coreArtifact()
	af.FeatureNames[0], af.FeatureNames[1] = af.FeatureNames[1], af.FeatureNames[0]
	_, err := LoadModel(writeArtifact(t, af))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature 0")
}

func TestLoadModel_InvalidPolicy(t *testing.T) {
	af := coreArtifact()
	af.LabelPolicy = "disease_is_zero"
	_, err := LoadModel(writeArtifact(t, af))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label_policy")
}

func TestLoadModel_UnknownSchema(t *testing.T) {
	af := coreArtifact()
	af.Schema = "ckd-core-v9"
	_, err := LoadModel(writeArtifact(t, af))
	assert.Error(t, err)
}

func TestModel_PredictProbaSumsToOne(t *testing.T) {
	m, err := LoadModel(writeArtifact(t, coreArtifact()))
	require.NoError(t, err)

	cases := []map[string]float64{
		nil,
		{"serum_creatinine": 8.5, "haemoglobin": 7.2, "albumin": 4},
		{"serum_creatinine": 0.8, "haemoglobin": 15.1},
	}
	for _, overrides := range cases {
		rec := coreRecord(t, overrides)
		proba, err := m.PredictProba(rec)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, proba[0]+proba[1], 1e-6)
		assert.GreaterOrEqual(t, proba[0], 0.0)
		assert.GreaterOrEqual(t, proba[1], 0.0)

		label, err := m.Predict(rec)
		require.NoError(t, err)
		if proba[1] >= 0.5 {
			assert.Equal(t, 1, label)
		} else {
			assert.Equal(t, 0, label)
		}
	}
}

func TestModel_SickVersusHealthy(t *testing.T) {
	m, err := LoadModel(writeArtifact(t, coreArtifact()))
	require.NoError(t, err)

	sick := coreRecord(t, map[string]float64{
		"serum_creatinine": 9.0, "haemoglobin": 6.5, "albumin": 5,
	})
	healthy := coreRecord(t, map[string]float64{
		"serum_creatinine": 0.9, "haemoglobin": 15.0, "albumin": 0,
	})

	sickLabel, err := m.Predict(sick)
	require.NoError(t, err)
	healthyLabel, err := m.Predict(healthy)
	require.NoError(t, err)

	// zero_is_disease: the high-creatinine low-haemoglobin record lands
	// on the disease side
	assert.Equal(t, 0, sickLabel)
	assert.Equal(t, 1, healthyLabel)
}

func TestModel_RejectsWrongSchema(t *testing.T) {
	m, err := LoadModel(writeArtifact(t, coreArtifact()))
	require.NoError(t, err)

	input := map[string]float64{}
	for _, f := range schema.ExtendedV1.Fields() {
		input[f.Name] = f.Default
	}
	input["specific_gravity"] = 1.020
	rec, err := schema.FromValues(schema.ExtendedV1, input)
	require.NoError(t, err)

	_, err = m.Predict(rec)
	var ierr *InferenceError
	require.ErrorAs(t, err, &ierr)

	_, err = m.PredictProba(rec)
	require.ErrorAs(t, err, &ierr)
}

func TestModel_Importances(t *testing.T) {
	m, err := LoadModel(writeArtifact(t, coreArtifact()))
	require.NoError(t, err)

	imps := m.Importances()
	require.Len(t, imps, 3)
	assert.Equal(t, "serum_creatinine", imps[0].Feature)
	assert.Equal(t, "haemoglobin", imps[1].Feature)
	assert.Equal(t, 0.41, imps[0].Value)

	af := coreArtifact()
	af.Importances = nil
	m2, err := LoadModel(writeArtifact(t, af))
	require.NoError(t, err)
	assert.Nil(t, m2.Importances())
}
