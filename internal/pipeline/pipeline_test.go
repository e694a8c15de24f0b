package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ckd-screening-server/internal/inference"
	"ckd-screening-server/internal/models"
	"ckd-screening-server/internal/schema"
)

// stubClassifier returns canned outputs without touching a real artifact.
type stubClassifier struct {
	label  int
	proba  [2]float64
	policy inference.LabelPolicy
	err    error
}

func (s *stubClassifier) Schema() *schema.Schema          { return schema.CoreV1 }
func (s *stubClassifier) Policy() inference.LabelPolicy   { return s.policy }
func (s *stubClassifier) ModelVersion() string            { return "stub-1" }
func (s *stubClassifier) Predict(*schema.Record) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.label, nil
}
func (s *stubClassifier) PredictProba(*schema.Record) ([2]float64, error) {
	if s.err != nil {
		return [2]float64{}, s.err
	}
	return s.proba, nil
}

// memorySaver captures the saved row, assigning IDs in insertion order.
type memorySaver struct {
	rows []*models.ScreeningResult
	err  error
}

func (m *memorySaver) Save(userID string, rec *schema.Record, prediction string, probCKD, probNormal float64, modelVersion string) (*models.ScreeningResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	age, _ := rec.Value("age")
	sc, _ := rec.Value("serum_creatinine")
	row := &models.ScreeningResult{
		ID:              uint(len(m.rows) + 1),
		UserID:          userID,
		Age:             age,
		SerumCreatinine: sc,
		Prediction:      prediction,
		ProbCKD:         probCKD,
		ProbNormal:      probNormal,
		ModelVersion:    modelVersion,
	}
	m.rows = append(m.rows, row)
	return row, nil
}

func validRawInput() map[string]string {
	return map[string]string{
		"age":                  "50",
		"blood_pressure":       "80",
		"specific_gravity":     "1.02",
		"albumin":              "1",
		"sugar":                "0",
		"red_blood_cells":      "0",
		"pus_cell":             "0",
		"blood_glucose_random": "120",
		"blood_urea":           "30",
		"serum_creatinine":     "1.1",
		"haemoglobin":          "13.5",
		"packed_cell_volume":   "42",
		"red_blood_cell_count": "5.0",
		"hypertension":         "0",
		"diabetes_mellitus":    "0",
	}
}

func TestPipeline_Run(t *testing.T) {
	clf := &stubClassifier{label: 1, proba: [2]float64{0.1, 0.9}, policy: inference.ZeroIsDisease}
	saver := &memorySaver{}
	p := New(clf, saver, zap.NewNop())

	row, perr := p.Run("user-1", validRawInput())
	require.Nil(t, perr)

	assert.Equal(t, ResultNormal, row.Prediction)
	assert.Equal(t, 10.0, row.ProbCKD)
	assert.Equal(t, 90.0, row.ProbNormal)
	assert.Equal(t, "user-1", row.UserID)
	assert.Equal(t, 50.0, row.Age)
	assert.Equal(t, 1.1, row.SerumCreatinine)
	assert.Equal(t, "stub-1", row.ModelVersion)

	// The returned row is the persisted one
	require.Len(t, saver.rows, 1)
	assert.Same(t, saver.rows[0], row)
}

func TestPipeline_ValidationFailureSavesNothing(t *testing.T) {
	clf := &stubClassifier{label: 1, proba: [2]float64{0.1, 0.9}, policy: inference.ZeroIsDisease}
	saver := &memorySaver{}
	p := New(clf, saver, zap.NewNop())

	raw := validRawInput()
	raw["age"] = "fifty"

	row, perr := p.Run("user-1", raw)
	assert.Nil(t, row)
	require.NotNil(t, perr)
	assert.Equal(t, KindValidation, perr.Kind)
	assert.Empty(t, saver.rows)

	var verr *schema.ValidationError
	assert.ErrorAs(t, perr, &verr)
}

func TestPipeline_InferenceFailure(t *testing.T) {
	clf := &stubClassifier{
		policy: inference.ZeroIsDisease,
		err:    &inference.InferenceError{Err: errors.New("ensemble blew up")},
	}
	saver := &memorySaver{}
	p := New(clf, saver, zap.NewNop())

	row, perr := p.Run("user-1", validRawInput())
	assert.Nil(t, row)
	require.NotNil(t, perr)
	assert.Equal(t, KindInference, perr.Kind)
	assert.Empty(t, saver.rows)
}

func TestPipeline_StorageFailure(t *testing.T) {
	clf := &stubClassifier{label: 1, proba: [2]float64{0.1, 0.9}, policy: inference.ZeroIsDisease}
	saver := &memorySaver{err: errors.New("connection reset")}
	p := New(clf, saver, zap.NewNop())

	row, perr := p.Run("user-1", validRawInput())
	assert.Nil(t, row)
	require.NotNil(t, perr)
	assert.Equal(t, KindStorage, perr.Kind)
}

func TestPipeline_MalformedProbabilities(t *testing.T) {
	clf := &stubClassifier{label: 1, proba: [2]float64{0.7, 0.7}, policy: inference.ZeroIsDisease}
	saver := &memorySaver{}
	p := New(clf, saver, zap.NewNop())

	row, perr := p.Run("user-1", validRawInput())
	assert.Nil(t, row)
	require.NotNil(t, perr)
	assert.Equal(t, KindValidation, perr.Kind)
	assert.Empty(t, saver.rows)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(validationError(errors.New("x"))))
	assert.False(t, IsValidation(storageError(errors.New("x"))))
	assert.False(t, IsValidation(errors.New("x")))
}
