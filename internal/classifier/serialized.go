package classifier

import (
	"context"
	"sync"
)

// Serialized funnels every call to the wrapped classifier through a mutex.
type Serialized struct {
	mu    sync.Mutex
	inner Classifier
}

func NewSerialized(c Classifier) *Serialized {
	return &Serialized{inner: c}
}

func (s *Serialized) Predict(ctx context.Context, features []float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Predict(ctx, features)
}

func (s *Serialized) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.PredictProba(ctx, features)
}

func (s *Serialized) Classes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Classes()
}

func (s *Serialized) NumFeatures() int {
	if fc, ok := s.inner.(FeatureCounter); ok {
		return fc.NumFeatures()
	}
	return 0
}

// Score holds the lock across both calls so the label and distribution come
// from the same critical section.
func (s *Serialized) Score(ctx context.Context, features []float64) (string, []float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sc, ok := s.inner.(Scorer); ok {
		return sc.Score(ctx, features)
	}
	label, err := s.inner.Predict(ctx, features)
	if err != nil {
		return "", nil, err
	}
	proba, err := s.inner.PredictProba(ctx, features)
	if err != nil {
		return "", nil, err
	}
	return label, proba, nil
}
