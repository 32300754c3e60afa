package classifier

import "context"

// Classifier is a trained multi-class model. PredictProba returns one score
// per entry of Classes, in the same order. Implementations must be safe for
// concurrent use or be wrapped with Serialized.
type Classifier interface {
	Predict(ctx context.Context, features []float64) (string, error)
	PredictProba(ctx context.Context, features []float64) ([]float64, error)
	Classes() []string
}

// FeatureCounter is implemented by classifiers that know their input width.
type FeatureCounter interface {
	NumFeatures() int
}

// Scorer is implemented by classifiers that can return the label and the
// distribution from a single call, such as remote backends.
type Scorer interface {
	Score(ctx context.Context, features []float64) (string, []float64, error)
}
