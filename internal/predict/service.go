package predict

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rupamthxt/symptomrank/internal/classifier"
	"github.com/rupamthxt/symptomrank/internal/metrics"
	"github.com/rupamthxt/symptomrank/internal/symptom"
)

type loadedModel struct {
	classifier classifier.Classifier
	classes    []string
	version    string
	loadedAt   time.Time
}

// Service turns symptom names into ranked predictions. The vocabulary is
// fixed at construction; the classifier is installed with Load and may be
// replaced while requests are in flight.
type Service struct {
	vocab  *symptom.Vocabulary
	model  atomic.Pointer[loadedModel]
	logger logrus.FieldLogger
}

// Status describes the readiness of a Service.
type Status struct {
	ModelLoaded   bool
	ModelVersion  string
	LoadedAt      time.Time
	SymptomCount  int
	CategoryCount int
}

func New(vocab *symptom.Vocabulary, logger logrus.FieldLogger) *Service {
	if dups := vocab.Duplicates(); len(dups) > 0 {
		logger.WithField("symptoms", dups).Warn("vocabulary repeats identifiers, only the first position is used")
	}
	return &Service{vocab: vocab, logger: logger}
}

// Load installs c as the serving classifier. A classifier that declares a
// feature width different from the vocabulary length is rejected.
func (s *Service) Load(c classifier.Classifier, version string) error {
	if c == nil {
		return errors.New("classifier is nil")
	}
	if fc, ok := c.(classifier.FeatureCounter); ok && fc.NumFeatures() != 0 && fc.NumFeatures() != s.vocab.Len() {
		return fmt.Errorf("classifier expects %d features, vocabulary has %d", fc.NumFeatures(), s.vocab.Len())
	}
	classes := c.Classes()
	if len(classes) == 0 {
		return errors.New("classifier has no categories")
	}

	s.model.Store(&loadedModel{
		classifier: c,
		classes:    classes,
		version:    version,
		loadedAt:   time.Now().UTC(),
	})
	metrics.ModelLoaded.Set(1)
	metrics.KnownCategories.Set(float64(len(classes)))

	s.logger.WithFields(logrus.Fields{
		"version":    version,
		"symptoms":   s.vocab.Len(),
		"categories": len(classes),
	}).Info("classifier loaded")
	return nil
}

func (s *Service) Ready() bool { return s.model.Load() != nil }

// Predict encodes names, runs the classifier and ranks its output. Errors are
// *ClassifierUnavailableError, *InvalidInputError or *InferenceError.
func (s *Service) Predict(ctx context.Context, names []string) (*RankedResponse, error) {
	start := time.Now()
	resp, err := s.predict(ctx, names)
	metrics.PredictDuration.Observe(time.Since(start).Seconds())
	metrics.PredictRequests.WithLabelValues(outcome(err)).Inc()
	return resp, err
}

func (s *Service) predict(ctx context.Context, names []string) (*RankedResponse, error) {
	m := s.model.Load()
	if m == nil {
		return nil, &ClassifierUnavailableError{}
	}

	enc, err := s.vocab.Encode(names)
	if err != nil {
		var invalid *InvalidInputError
		if errors.As(err, &invalid) {
			metrics.UnmatchedSymptoms.Add(float64(len(invalid.Unmatched)))
		}
		s.logger.WithField("unmatched", names).Debug("no symptoms matched")
		return nil, err
	}
	metrics.UnmatchedSymptoms.Add(float64(len(enc.Unmatched)))

	log := s.logger.WithFields(logrus.Fields{
		"matched":   len(enc.Matched),
		"requested": len(names),
	})
	if len(enc.Unmatched) > 0 {
		log = log.WithField("unmatched", enc.Unmatched)
	}
	log.Debug("symptoms encoded")

	resp, err := Rank(ctx, enc.Vector, m.classifier)
	if err != nil {
		s.logger.WithError(err).WithField("version", m.version).Error("prediction failed")
		return nil, err
	}
	resp.Matched = enc.Matched
	resp.Unmatched = enc.Unmatched
	resp.ModelVersion = m.version
	return resp, nil
}

// ListKnownSymptoms returns the vocabulary in feature order. It does not
// depend on a classifier being loaded.
func (s *Service) ListKnownSymptoms() []string {
	return s.vocab.Symptoms()
}

func (s *Service) ListKnownCategories() ([]string, error) {
	m := s.model.Load()
	if m == nil {
		return nil, &ClassifierUnavailableError{}
	}
	return append([]string(nil), m.classes...), nil
}

func (s *Service) Status() Status {
	st := Status{SymptomCount: s.vocab.Len()}
	if m := s.model.Load(); m != nil {
		st.ModelLoaded = true
		st.ModelVersion = m.version
		st.LoadedAt = m.loadedAt
		st.CategoryCount = len(m.classes)
	}
	return st
}

func outcome(err error) string {
	var (
		invalid     *InvalidInputError
		unavailable *ClassifierUnavailableError
	)
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &invalid):
		return metrics.OutcomeInvalid
	case errors.As(err, &unavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeInference
	}
}
