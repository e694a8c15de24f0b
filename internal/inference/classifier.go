package inference

import (
	"fmt"

	"ckd-screening-server/internal/schema"
)

// LabelPolicy states which raw class label means "disease present". The
// two model lineages disagree on this, so every artifact names its policy
// explicitly instead of the caller inferring it from label position.
type LabelPolicy string

const (
	ZeroIsDisease LabelPolicy = "zero_is_disease"
	OneIsDisease  LabelPolicy = "one_is_disease"
)

// Valid reports whether the policy is one of the known values.
func (p LabelPolicy) Valid() bool {
	return p == ZeroIsDisease || p == OneIsDisease
}

// DiseaseLabel returns the raw label that means disease under this policy.
func (p LabelPolicy) DiseaseLabel() int {
	if p == OneIsDisease {
		return 1
	}
	return 0
}

// Classifier is the trained-model contract: a binary label plus a
// class-probability pair indexed by raw label. Implementations are
// immutable after construction and safe for concurrent use.
type Classifier interface {
	// Schema is the schema version the model was trained on.
	Schema() *schema.Schema
	// Policy maps raw labels to clinical meaning.
	Policy() LabelPolicy
	// ModelVersion identifies the loaded artifact.
	ModelVersion() string
	// Predict returns the raw class label for a record.
	Predict(rec *schema.Record) (int, error)
	// PredictProba returns (p0, p1) with p0+p1 = 1.
	PredictProba(rec *schema.Record) ([2]float64, error)
}

// InferenceError wraps any failure inside the classifier. It is never
// retried; the pipeline surfaces it as a distinct error kind.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// checkRecord enforces the schema precondition shared by all classifier
// implementations: a record assembled against any other schema version
// would silently misalign columns, so it is rejected up front.
func checkRecord(want *schema.Schema, rec *schema.Record) error {
	if rec == nil {
		return &InferenceError{Err: fmt.Errorf("nil feature record")}
	}
	if rec.Schema().Name != want.Name {
		return &InferenceError{Err: fmt.Errorf(
			"feature record schema %q does not match model schema %q",
			rec.Schema().Name, want.Name)}
	}
	return nil
}
