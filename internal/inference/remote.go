package inference

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ckd-screening-server/internal/schema"
)

// RemoteClassifier scores through an external model service instead of a
// local artifact. The service owns the trained model; this client only
// carries the feature vector over and enforces the same schema
// precondition as the local path.
type RemoteClassifier struct {
	client  *resty.Client
	schema  *schema.Schema
	policy  LabelPolicy
	version string
}

// remoteMetadata is the model descriptor the scoring service publishes.
type remoteMetadata struct {
	ModelVersion string      `json:"model_version"`
	Schema       string      `json:"schema"`
	FeatureNames []string    `json:"feature_names"`
	LabelPolicy  LabelPolicy `json:"label_policy"`
}

type scoreRequest struct {
	Schema       string    `json:"schema"`
	FeatureNames []string  `json:"feature_names"`
	Features     []float64 `json:"features"`
}

type scoreResponse struct {
	Label         int        `json:"label"`
	Probabilities [2]float64 `json:"probabilities"`
}

// NewRemoteClassifier connects to a scoring service and fetches its model
// descriptor. Construction fails if the service is unreachable or declares
// an unknown schema or label policy, mirroring the fail-at-startup
// behavior of the local artifact loader.
func NewRemoteClassifier(baseURL string, timeout time.Duration) (*RemoteClassifier, error) {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	var meta remoteMetadata
	resp, err := client.R().SetResult(&meta).Get("/model")
	if err != nil {
		return nil, fmt.Errorf("model service %s: %w", baseURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("model service %s: status %d", baseURL, resp.StatusCode())
	}

	s, ok := schema.ByName(meta.Schema)
	if !ok {
		return nil, fmt.Errorf("model service %s: unknown schema %q", baseURL, meta.Schema)
	}
	names := s.FieldNames()
	if len(meta.FeatureNames) != len(names) {
		return nil, fmt.Errorf("model service %s: %d feature names, schema %s has %d",
			baseURL, len(meta.FeatureNames), s.Name, len(names))
	}
	for i, n := range meta.FeatureNames {
		if n != names[i] {
			return nil, fmt.Errorf("model service %s: feature %d is %q, schema %s expects %q",
				baseURL, i, n, s.Name, names[i])
		}
	}
	if !meta.LabelPolicy.Valid() {
		return nil, fmt.Errorf("model service %s: invalid label_policy %q", baseURL, meta.LabelPolicy)
	}

	return &RemoteClassifier{
		client:  client,
		schema:  s,
		policy:  meta.LabelPolicy,
		version: meta.ModelVersion,
	}, nil
}

// Schema returns the schema version the remote model was trained on.
func (r *RemoteClassifier) Schema() *schema.Schema {
	return r.schema
}

// Policy returns the label interpretation policy of the remote model.
func (r *RemoteClassifier) Policy() LabelPolicy {
	return r.policy
}

// ModelVersion identifies the remote model.
func (r *RemoteClassifier) ModelVersion() string {
	return r.version
}

func (r *RemoteClassifier) score(rec *schema.Record) (scoreResponse, error) {
	var out scoreResponse
	if err := checkRecord(r.schema, rec); err != nil {
		return out, err
	}

	req := scoreRequest{
		Schema:       r.schema.Name,
		FeatureNames: r.schema.FieldNames(),
		Features:     rec.Vector(),
	}
	resp, err := r.client.R().SetBody(req).SetResult(&out).Post("/predict")
	if err != nil {
		return out, &InferenceError{Err: err}
	}
	if resp.IsError() {
		return out, &InferenceError{Err: fmt.Errorf(
			"model service returned %d: %s", resp.StatusCode(), resp.String())}
	}
	if out.Label != 0 && out.Label != 1 {
		return out, &InferenceError{Err: fmt.Errorf("model service returned label %d", out.Label)}
	}
	return out, nil
}

// Predict returns the raw class label for a record.
func (r *RemoteClassifier) Predict(rec *schema.Record) (int, error) {
	out, err := r.score(rec)
	if err != nil {
		return 0, err
	}
	return out.Label, nil
}

// PredictProba returns the class probability pair.
func (r *RemoteClassifier) PredictProba(rec *schema.Record) ([2]float64, error) {
	out, err := r.score(rec)
	if err != nil {
		return [2]float64{}, err
	}
	return out.Probabilities, nil
}
