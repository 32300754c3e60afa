package predict

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	c := &fakeClassifier{
		classes: []string{"a", "b", "c", "d", "e", "f", "g"},
		label:   "c",
		proba:   []float64{0.05, 0.10, 0.40, 0.05, 0.20, 0.15, 0.05},
	}

	resp, err := Rank(context.Background(), []float64{1, 0}, c)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "c", resp.Predicted)
	assert.InDelta(t, 40.0, resp.Confidence, 1e-9)

	require.Len(t, resp.Top, TopK)
	wantOrder := []string{"c", "e", "f", "b", "a"}
	wantProb := []float64{40, 20, 15, 10, 5}
	for i := range wantOrder {
		assert.Equal(t, wantOrder[i], resp.Top[i].Category)
		assert.InDelta(t, wantProb[i], resp.Top[i].Probability, 1e-9)
	}
}

func TestRank_TiesKeepCategoryOrder(t *testing.T) {
	c := &fakeClassifier{
		classes: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		label:   "a",
		proba:   []float64{0.1, 0.1, 0.2, 0.1, 0.1, 0.2, 0.1, 0.1},
	}

	resp, err := Rank(context.Background(), nil, c)
	require.NoError(t, err)

	var got []string
	for _, s := range resp.Top {
		got = append(got, s.Category)
	}
	assert.Equal(t, []string{"c", "f", "a", "b", "d"}, got)
}

func TestRank_FewerCategoriesThanK(t *testing.T) {
	c := &fakeClassifier{
		classes: []string{"x", "y"},
		label:   "x",
		proba:   []float64{0.3, 0.7},
	}

	resp, err := Rank(context.Background(), nil, c)
	require.NoError(t, err)

	require.Len(t, resp.Top, 2)
	assert.Equal(t, "y", resp.Top[0].Category)
	assert.Equal(t, "x", resp.Top[1].Category)
}

func TestRank_LabelIndependentOfDistribution(t *testing.T) {
	c := &fakeClassifier{
		classes: []string{"x", "y", "z"},
		label:   "x",
		proba:   []float64{0.2, 0.5, 0.6},
	}

	resp, err := Rank(context.Background(), nil, c)
	require.NoError(t, err)

	assert.Equal(t, "x", resp.Predicted)
	assert.Equal(t, "z", resp.Top[0].Category)
	// no renormalization: scores sum to 1.3
	assert.InDelta(t, 60.0, resp.Confidence, 1e-9)
}

func TestRank_InferenceErrors(t *testing.T) {
	cause := errors.New("model exploded")

	tests := []struct {
		name string
		c    *fakeClassifier
	}{
		{"classifier failure", &fakeClassifier{classes: []string{"a"}, err: cause}},
		{"empty distribution", &fakeClassifier{classes: []string{"a"}, label: "a"}},
		{"misaligned distribution", &fakeClassifier{classes: []string{"a", "b"}, label: "a", proba: []float64{1}}},
		{"nan score", &fakeClassifier{classes: []string{"a", "b"}, label: "b", proba: []float64{math.NaN(), 0.5}}},
		{"infinite score", &fakeClassifier{classes: []string{"a", "b"}, label: "a", proba: []float64{math.Inf(1), 0}}},
		{"negative score", &fakeClassifier{classes: []string{"a", "b"}, label: "b", proba: []float64{-0.2, 1.2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rank(context.Background(), nil, tt.c)

			var inference *InferenceError
			require.True(t, errors.As(err, &inference))
			require.Error(t, inference.Unwrap())
		})
	}

	_, err := Rank(context.Background(), nil, tests[0].c)
	assert.ErrorIs(t, err, cause)
}

func TestRank_NilClassifier(t *testing.T) {
	resp, err := Rank(context.Background(), make([]float64, 132), nil)
	assert.Nil(t, resp)

	var unavailable *ClassifierUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestMinHeap_KeepsBest(t *testing.T) {
	scores := []float64{0.3, 0.9, 0.1, 0.9, 0.5, 0.7}
	got := topCategories([]string{"0", "1", "2", "3", "4", "5"}, scores, 3)

	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].Category)
	assert.Equal(t, "3", got[1].Category)
	assert.Equal(t, "5", got[2].Category)
}
