package pipeline

import "fmt"

// Kind tags a pipeline failure so the rendering layer can map it to the
// right response without string matching.
type Kind int

const (
	// KindValidation covers malformed or missing input, including a
	// malformed probability pair out of the classifier.
	KindValidation Kind = iota
	// KindInference covers any failure inside the classifier. Never
	// retried.
	KindInference
	// KindStorage covers a failed persist. The prediction is not shown
	// to the user in that case: the persisted row is the source of
	// truth.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInference:
		return "inference"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Error is the tagged failure type returned by the pipeline.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(err error) *Error {
	return &Error{Kind: KindValidation, Err: err}
}

func inferenceError(err error) *Error {
	return &Error{Kind: KindInference, Err: err}
}

func storageError(err error) *Error {
	return &Error{Kind: KindStorage, Err: err}
}
