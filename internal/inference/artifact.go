package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"ckd-screening-server/internal/schema"
)

// artifactFile is the serialized form of a trained model: a boosted
// ensemble of decision stumps exported by the offline training job,
// together with the metadata the server needs to use it safely.
type artifactFile struct {
	ModelName    string             `json:"model_name"`
	ModelVersion string             `json:"model_version"`
	Schema       string             `json:"schema"`
	FeatureNames []string           `json:"feature_names"`
	LabelPolicy  LabelPolicy        `json:"label_policy"`
	Intercept    float64            `json:"intercept"`
	Stumps       []Stump            `json:"stumps"`
	Importances  map[string]float64 `json:"feature_importances,omitempty"`
}

// Stump is one weighted weak learner: votes +polarity when the feature
// exceeds the threshold, -polarity otherwise.
type Stump struct {
	Feature   string  `json:"feature"`
	Threshold float64 `json:"threshold"`
	Polarity  float64 `json:"polarity"`
	Weight    float64 `json:"weight"`
}

// Model is a classifier backed by a local serialized artifact. Loaded once
// at process start and read-only thereafter.
type Model struct {
	name        string
	version     string
	schema      *schema.Schema
	policy      LabelPolicy
	intercept   float64
	stumps      []Stump
	importances map[string]float64
}

// Importance pairs a feature name with its relative importance.
type Importance struct {
	Feature string
	Value   float64
}

// LoadModel reads and validates a model artifact. The caller is expected
// to treat any error as fatal: the process must not start without a
// usable model.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}

	var af artifactFile
	if err := json.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}

	s, ok := schema.ByName(af.Schema)
	if !ok {
		return nil, fmt.Errorf("model artifact %s: unknown schema %q", path, af.Schema)
	}

	// The artifact must name the exact columns, in the exact order, the
	// model was trained on. A mismatch here would produce silently wrong
	// predictions, so it is refused at load time.
	names := s.FieldNames()
	if len(af.FeatureNames) != len(names) {
		return nil, fmt.Errorf("model artifact %s: %d feature names, schema %s has %d",
			path, len(af.FeatureNames), s.Name, len(names))
	}
	for i, n := range af.FeatureNames {
		if n != names[i] {
			return nil, fmt.Errorf("model artifact %s: feature %d is %q, schema %s expects %q",
				path, i, n, s.Name, names[i])
		}
	}

	if !af.LabelPolicy.Valid() {
		return nil, fmt.Errorf("model artifact %s: invalid label_policy %q", path, af.LabelPolicy)
	}

	if len(af.Stumps) == 0 {
		return nil, fmt.Errorf("model artifact %s: empty ensemble", path)
	}
	for _, st := range af.Stumps {
		if _, ok := s.Field(st.Feature); !ok {
			return nil, fmt.Errorf("model artifact %s: stump references unknown feature %q",
				path, st.Feature)
		}
		if st.Polarity != 1 && st.Polarity != -1 {
			return nil, fmt.Errorf("model artifact %s: stump polarity must be +1 or -1", path)
		}
	}

	return &Model{
		name:        af.ModelName,
		version:     af.ModelVersion,
		schema:      s,
		policy:      af.LabelPolicy,
		intercept:   af.Intercept,
		stumps:      af.Stumps,
		importances: af.Importances,
	}, nil
}

// Schema returns the schema version the model was trained on.
func (m *Model) Schema() *schema.Schema {
	return m.schema
}

// Policy returns the label interpretation policy of this artifact.
func (m *Model) Policy() LabelPolicy {
	return m.policy
}

// ModelVersion identifies the loaded artifact.
func (m *Model) ModelVersion() string {
	return m.version
}

// margin is the signed ensemble score; positive favors raw label 1.
func (m *Model) margin(rec *schema.Record) float64 {
	score := m.intercept
	for _, st := range m.stumps {
		v, _ := rec.Value(st.Feature)
		if v > st.Threshold {
			score += st.Weight * st.Polarity
		} else {
			score -= st.Weight * st.Polarity
		}
	}
	return score
}

// Predict returns the raw class label for a record.
func (m *Model) Predict(rec *schema.Record) (int, error) {
	if err := checkRecord(m.schema, rec); err != nil {
		return 0, err
	}
	if m.margin(rec) >= 0 {
		return 1, nil
	}
	return 0, nil
}

// PredictProba returns the class probability pair. The pair is derived
// from the ensemble margin through a logistic link, so it sums to 1
// exactly.
func (m *Model) PredictProba(rec *schema.Record) ([2]float64, error) {
	if err := checkRecord(m.schema, rec); err != nil {
		return [2]float64{}, err
	}
	p1 := 1.0 / (1.0 + math.Exp(-2.0*m.margin(rec)))
	return [2]float64{1.0 - p1, p1}, nil
}

// Importances returns per-feature importances ranked high to low, or nil
// when the artifact does not carry them.
func (m *Model) Importances() []Importance {
	if len(m.importances) == 0 {
		return nil
	}
	out := make([]Importance, 0, len(m.importances))
	for f, v := range m.importances {
		out = append(out, Importance{Feature: f, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}
