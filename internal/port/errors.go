package port

import "errors"

// Stage identifies which external backend a failure came from.
type Stage string

const (
	StageEmbed    Stage = "embedding"
	StageGenerate Stage = "generation"
	StageIndex    Stage = "index"
)

// Sentinel errors for caller mistakes. The HTTP boundary maps these to the
// client-error class.
var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNoText        = errors.New("no recoverable text in document")
)

// BackendError marks a failure of an external backend. The HTTP boundary
// maps it to the server-error class, exposing only the stage category.
type BackendError struct {
	Stage Stage
	Err   error
}

func (e *BackendError) Error() string {
	return string(e.Stage) + " backend: " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError wraps err with a stage. An error that already carries a
// BackendError is returned unchanged so the original stage survives.
func NewBackendError(stage Stage, err error) error {
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Stage: stage, Err: err}
}
