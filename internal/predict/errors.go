package predict

import (
	"fmt"

	"github.com/rupamthxt/symptomrank/internal/symptom"
)

// InvalidInputError is returned when the request cannot be mapped to any
// known symptom. Unmatched lists the offending names for the caller.
type InvalidInputError = symptom.InvalidInputError

// ClassifierUnavailableError is returned until a classifier has been loaded.
type ClassifierUnavailableError struct{}

func (*ClassifierUnavailableError) Error() string { return "model not loaded" }

// InferenceError wraps a failure raised by the classifier after a valid
// feature vector was built.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("prediction error: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
