package pipeline

import (
	"errors"

	"go.uber.org/zap"

	"ckd-screening-server/internal/inference"
	"ckd-screening-server/internal/models"
	"ckd-screening-server/internal/schema"
)

// ResultSaver persists one prediction row. Implemented by the screening
// store; an interface here so the pipeline tests run without a database.
type ResultSaver interface {
	Save(userID string, rec *schema.Record, prediction string, probCKD, probNormal float64, modelVersion string) (*models.ScreeningResult, error)
}

// Pipeline is the request-to-prediction flow: assemble the feature
// record, score it, format the outcome, persist it. One linear pass, no
// retries, no intermediate state. The classifier handle is shared
// read-only across concurrent requests.
type Pipeline struct {
	classifier inference.Classifier
	saver      ResultSaver
	log        *zap.Logger
}

// New builds a pipeline around a loaded classifier and a result saver.
func New(classifier inference.Classifier, saver ResultSaver, log *zap.Logger) *Pipeline {
	return &Pipeline{classifier: classifier, saver: saver, log: log}
}

// Schema exposes the classifier's schema so callers can describe the
// intake form.
func (p *Pipeline) Schema() *schema.Schema {
	return p.classifier.Schema()
}

// Run executes one screening for a resolved user. The caller must have
// authenticated the user already; an empty userID is a programming error
// upstream, not a pipeline state.
//
// The returned row is the persisted record: the response is rendered from
// what was stored, so a storage failure never shows the user a prediction
// that was silently dropped.
func (p *Pipeline) Run(userID string, raw map[string]string) (*models.ScreeningResult, *Error) {
	rec, err := schema.Assemble(p.classifier.Schema(), raw)
	if err != nil {
		return nil, validationError(err)
	}

	label, err := p.classifier.Predict(rec)
	if err != nil {
		return nil, inferenceError(err)
	}
	proba, err := p.classifier.PredictProba(rec)
	if err != nil {
		return nil, inferenceError(err)
	}

	formatted, err := Format(p.classifier.Policy(), label, proba)
	if err != nil {
		return nil, validationError(err)
	}

	row, err := p.saver.Save(userID, rec, formatted.Result,
		formatted.ProbCKD, formatted.ProbNormal, p.classifier.ModelVersion())
	if err != nil {
		p.log.Error("failed to persist screening result",
			zap.String("user_id", userID), zap.Error(err))
		return nil, storageError(err)
	}

	p.log.Info("screening completed",
		zap.String("user_id", userID),
		zap.Uint("result_id", row.ID),
		zap.String("prediction", formatted.Result),
		zap.Float64("prob_ckd", formatted.ProbCKD))

	return row, nil
}

// IsValidation reports whether err is a validation-kind pipeline error.
func IsValidation(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindValidation
}
