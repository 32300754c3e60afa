package predict

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeClassifier reports a fixed label and distribution and remembers the
// last vector it was given.
type fakeClassifier struct {
	classes []string
	label   string
	proba   []float64
	err     error

	calls atomic.Int32
	mu    sync.Mutex
	last  []float64
}

func (f *fakeClassifier) Predict(_ context.Context, features []float64) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = append([]float64(nil), features...)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.label, nil
}

func (f *fakeClassifier) PredictProba(_ context.Context, features []float64) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.proba, nil
}

func (f *fakeClassifier) Classes() []string { return f.classes }

// widthClassifier declares a feature width.
type widthClassifier struct {
	*fakeClassifier
	width int
}

func (w widthClassifier) NumFeatures() int { return w.width }
