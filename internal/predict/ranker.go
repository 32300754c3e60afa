package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rupamthxt/symptomrank/internal/classifier"
	"github.com/rupamthxt/symptomrank/internal/symptom"
)

// TopK is the number of categories returned in a ranked response.
const TopK = 5

// CategoryScore is one entry of the ranked list, Probability in percent.
type CategoryScore struct {
	Category    string
	Probability float64
}

// RankedResponse is the outcome of a successful prediction.
//
// Predicted is the classifier's own decision and is reported as is. It is
// not derived from Top and the two may disagree on ties or when the
// classifier's decision rule is not argmax of its distribution.
type RankedResponse struct {
	Success    bool
	Predicted  string
	Confidence float64
	Top        []CategoryScore

	Matched      []string
	Unmatched    []string
	ModelVersion string
}

// Rank runs the classifier on vec and shapes its output. A nil classifier is
// *ClassifierUnavailableError; classifier failures and malformed
// distributions are returned as *InferenceError.
func Rank(ctx context.Context, vec symptom.FeatureVector, c classifier.Classifier) (*RankedResponse, error) {
	if c == nil {
		return nil, &ClassifierUnavailableError{}
	}
	classes := c.Classes()

	label, proba, err := score(ctx, c, vec)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}
	if len(proba) == 0 {
		return nil, &InferenceError{Err: errors.New("classifier returned an empty distribution")}
	}
	if len(proba) != len(classes) {
		return nil, &InferenceError{Err: fmt.Errorf("distribution has %d scores for %d categories", len(proba), len(classes))}
	}
	for i, p := range proba {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, &InferenceError{Err: fmt.Errorf("invalid score %v for category %q", p, classes[i])}
		}
	}

	return &RankedResponse{
		Success:    true,
		Predicted:  label,
		Confidence: proba[maxIndex(proba)] * 100,
		Top:        topCategories(classes, proba, TopK),
	}, nil
}

func score(ctx context.Context, c classifier.Classifier, vec []float64) (string, []float64, error) {
	if sc, ok := c.(classifier.Scorer); ok {
		return sc.Score(ctx, vec)
	}
	label, err := c.Predict(ctx, vec)
	if err != nil {
		return "", nil, err
	}
	proba, err := c.PredictProba(ctx, vec)
	if err != nil {
		return "", nil, err
	}
	return label, proba, nil
}

func maxIndex(a []float64) int {
	best := 0
	for i := 1; i < len(a); i++ {
		if a[i] > a[best] {
			best = i
		}
	}
	return best
}

// topCategories returns the k best scores, descending, ties in category order.
func topCategories(classes []string, proba []float64, k int) []CategoryScore {
	heap := make(minHeap, 0, k)
	for i, p := range proba {
		m := match{Index: i, Score: p}
		if len(heap) < k {
			heap.Push(m)
		} else if worse(heap[0], m) {
			heap.Replace(m)
		}
	}

	sort.Slice(heap, func(i, j int) bool {
		return worse(heap[j], heap[i])
	})

	out := make([]CategoryScore, 0, len(heap))
	for _, m := range heap {
		out = append(out, CategoryScore{
			Category:    classes[m.Index],
			Probability: m.Score * 100,
		})
	}
	return out
}
