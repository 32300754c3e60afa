package classifier

import (
	"context"
	"fmt"
	"math"
)

// NaiveBayes is a multinomial naive Bayes model restored from exported
// parameters. It holds no mutable state and is safe for concurrent use.
type NaiveBayes struct {
	classes        []string
	classLogPrior  []float64
	featureLogProb [][]float64 // [class][feature]
}

func NewNaiveBayes(classes []string, classLogPrior []float64, featureLogProb [][]float64) (*NaiveBayes, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("model has no classes")
	}
	if len(classLogPrior) != len(classes) {
		return nil, fmt.Errorf("class_log_prior has %d entries for %d classes", len(classLogPrior), len(classes))
	}
	if len(featureLogProb) != len(classes) {
		return nil, fmt.Errorf("feature_log_prob has %d rows for %d classes", len(featureLogProb), len(classes))
	}
	width := len(featureLogProb[0])
	if width == 0 {
		return nil, fmt.Errorf("feature_log_prob rows are empty")
	}
	for c, row := range featureLogProb {
		if len(row) != width {
			return nil, fmt.Errorf("feature_log_prob row %d has %d features, expected %d", c, len(row), width)
		}
	}

	return &NaiveBayes{
		classes:        append([]string(nil), classes...),
		classLogPrior:  append([]float64(nil), classLogPrior...),
		featureLogProb: featureLogProb,
	}, nil
}

func (m *NaiveBayes) Classes() []string {
	return append([]string(nil), m.classes...)
}

func (m *NaiveBayes) NumFeatures() int { return len(m.featureLogProb[0]) }

func (m *NaiveBayes) Predict(_ context.Context, features []float64) (string, error) {
	jll, err := m.jointLogLikelihood(features)
	if err != nil {
		return "", err
	}
	return m.classes[argmax(jll)], nil
}

func (m *NaiveBayes) PredictProba(_ context.Context, features []float64) ([]float64, error) {
	jll, err := m.jointLogLikelihood(features)
	if err != nil {
		return nil, err
	}
	norm := logSumExp(jll)
	if math.IsInf(norm, 0) || math.IsNaN(norm) {
		return nil, fmt.Errorf("input has zero likelihood under every class")
	}
	proba := make([]float64, len(jll))
	for c, x := range jll {
		proba[c] = math.Exp(x - norm)
	}
	return proba, nil
}

func (m *NaiveBayes) jointLogLikelihood(features []float64) ([]float64, error) {
	if len(features) != m.NumFeatures() {
		return nil, fmt.Errorf("feature vector has %d entries, model expects %d", len(features), m.NumFeatures())
	}

	jll := make([]float64, len(m.classes))
	for c, row := range m.featureLogProb {
		score := m.classLogPrior[c]
		for i, x := range features {
			if x != 0 {
				score += x * row[i]
			}
		}
		jll[c] = score
	}
	return jll, nil
}
