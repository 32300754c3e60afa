package predict

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupamthxt/symptomrank/internal/symptom"
)

func diseaseClassifier() *fakeClassifier {
	return &fakeClassifier{
		classes: []string{"Fungal infection", "Allergy", "GERD", "Chronic cholestasis", "Drug Reaction", "Peptic ulcer diseae"},
		label:   "Fungal infection",
		proba:   []float64{0.62, 0.11, 0.02, 0.15, 0.07, 0.03},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return New(symptom.DefaultVocabulary(), logger)
}

func TestService_Predict(t *testing.T) {
	s := newTestService(t)
	c := diseaseClassifier()
	require.NoError(t, s.Load(c, "v1"))

	resp, err := s.Predict(context.Background(), []string{"itching", "Skin_Rash", " vomiting "})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "Fungal infection", resp.Predicted)
	assert.InDelta(t, 62.0, resp.Confidence, 1e-9)
	assert.Len(t, resp.Top, TopK)
	assert.Equal(t, []string{"itching", "skin_rash", "vomiting"}, resp.Matched)
	assert.Empty(t, resp.Unmatched)

	require.Len(t, c.last, 132)
	assert.Equal(t, []int{0, 1, 11}, symptom.FeatureVector(c.last).Ones())
}

func TestService_Predict_PartialMatch(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.Load(diseaseClassifier(), "v1"))

	resp, err := s.Predict(context.Background(), []string{"headache", "made_up"})
	require.NoError(t, err)
	assert.Equal(t, []string{"made_up"}, resp.Unmatched)
}

func TestService_Predict_NonFiniteDistribution(t *testing.T) {
	s := newTestService(t)
	c := diseaseClassifier()
	c.proba = []float64{math.NaN(), 0.11, 0.02, 0.15, 0.07, 0.03}
	require.NoError(t, s.Load(c, "v1"))

	resp, err := s.Predict(context.Background(), []string{"itching"})
	assert.Nil(t, resp)

	var inference *InferenceError
	assert.True(t, errors.As(err, &inference))
}

func TestService_Predict_InvalidInput(t *testing.T) {
	s := newTestService(t)
	c := diseaseClassifier()
	require.NoError(t, s.Load(c, "v1"))

	t.Run("empty input never reaches the classifier", func(t *testing.T) {
		_, err := s.Predict(context.Background(), []string{})

		var invalid *InvalidInputError
		require.True(t, errors.As(err, &invalid))
		assert.Zero(t, c.calls.Load())
	})

	t.Run("unknown symptom", func(t *testing.T) {
		_, err := s.Predict(context.Background(), []string{"not_a_real_symptom"})

		var invalid *InvalidInputError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, []string{"not_a_real_symptom"}, invalid.Unmatched)
		assert.Zero(t, c.calls.Load())
	})
}

func TestService_Unavailable(t *testing.T) {
	s := newTestService(t)

	_, err := s.Predict(context.Background(), []string{"itching"})
	var unavailable *ClassifierUnavailableError
	assert.True(t, errors.As(err, &unavailable))

	// checked before the input is looked at
	_, err = s.Predict(context.Background(), nil)
	assert.True(t, errors.As(err, &unavailable))

	_, err = s.ListKnownCategories()
	assert.True(t, errors.As(err, &unavailable))

	assert.Len(t, s.ListKnownSymptoms(), 132)
	assert.False(t, s.Ready())
	assert.False(t, s.Status().ModelLoaded)

	require.NoError(t, s.Load(diseaseClassifier(), "v1"))
	assert.True(t, s.Ready())

	cats, err := s.ListKnownCategories()
	require.NoError(t, err)
	assert.Len(t, cats, 6)
}

func TestService_InferenceError(t *testing.T) {
	s := newTestService(t)
	cause := errors.New("out of memory")
	require.NoError(t, s.Load(&fakeClassifier{classes: []string{"a"}, err: cause}, "v1"))

	_, err := s.Predict(context.Background(), []string{"itching"})

	var inference *InferenceError
	require.True(t, errors.As(err, &inference))
	assert.ErrorIs(t, err, cause)
}

func TestService_Load(t *testing.T) {
	s := newTestService(t)

	assert.Error(t, s.Load(nil, "v0"))
	assert.Error(t, s.Load(&fakeClassifier{}, "v0"))
	assert.Error(t, s.Load(widthClassifier{diseaseClassifier(), 10}, "v0"))
	assert.False(t, s.Ready())

	require.NoError(t, s.Load(widthClassifier{diseaseClassifier(), 132}, "v2"))

	st := s.Status()
	assert.True(t, st.ModelLoaded)
	assert.Equal(t, "v2", st.ModelVersion)
	assert.Equal(t, 132, st.SymptomCount)
	assert.Equal(t, 6, st.CategoryCount)
	assert.False(t, st.LoadedAt.IsZero())
}

func TestService_WarnsOnDuplicateVocabulary(t *testing.T) {
	logger, hook := test.NewNullLogger()
	New(symptom.DefaultVocabulary(), logger)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestService_ConcurrentPredict(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.Load(&fakeClassifier{
		classes: []string{"a", "b"},
		label:   "a",
		proba:   []float64{0.8, 0.2},
	}, "v1"))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.Predict(context.Background(), []string{"cough"})
			assert.NoError(t, err)
			assert.Equal(t, "a", resp.Predicted)
		}()
	}
	wg.Wait()
}
