package symptom

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()

	assert.Equal(t, 132, v.Len())
	assert.Equal(t, []string{"fluid_overload"}, v.Duplicates())

	symptoms := v.Symptoms()
	assert.Equal(t, "itching", symptoms[0])
	assert.Equal(t, "yellow_crust_ooze", symptoms[131])

	idx, ok := v.Index("fluid_overload")
	require.True(t, ok)
	assert.Equal(t, 45, idx)
	assert.Equal(t, "fluid_overload", symptoms[117])
}

func TestEncode(t *testing.T) {
	v := DefaultVocabulary()

	tests := []struct {
		name          string
		input         []string
		wantOnes      []int
		wantMatched   []string
		wantUnmatched []string
	}{
		{
			name:        "case and whitespace normalized",
			input:       []string{"itching", "Skin_Rash", " vomiting "},
			wantOnes:    []int{0, 1, 11},
			wantMatched: []string{"itching", "skin_rash", "vomiting"},
		},
		{
			name:          "unmatched names recorded verbatim",
			input:         []string{"headache", "Not A Symptom"},
			wantOnes:      []int{31},
			wantMatched:   []string{"headache"},
			wantUnmatched: []string{"Not A Symptom"},
		},
		{
			name:        "internal spaces are part of the identifier",
			input:       []string{"SPOTTING_ URINATION"},
			wantOnes:    []int{13},
			wantMatched: []string{"spotting_ urination"},
		},
		{
			name:        "repeated names set one position",
			input:       []string{"cough", "COUGH"},
			wantOnes:    []int{24},
			wantMatched: []string{"cough", "cough"},
		},
		{
			name:        "duplicate vocabulary entry uses first position",
			input:       []string{"fluid_overload"},
			wantOnes:    []int{45},
			wantMatched: []string{"fluid_overload"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := v.Encode(tt.input)
			require.NoError(t, err)

			assert.Len(t, enc.Vector, v.Len())
			assert.Equal(t, tt.wantOnes, enc.Vector.Ones())
			assert.Equal(t, tt.wantMatched, enc.Matched)
			assert.Equal(t, tt.wantUnmatched, enc.Unmatched)
		})
	}
}

func TestEncode_InvalidInput(t *testing.T) {
	v := DefaultVocabulary()

	t.Run("empty", func(t *testing.T) {
		_, err := v.Encode(nil)

		var invalid *InvalidInputError
		require.True(t, errors.As(err, &invalid))
		assert.Empty(t, invalid.Unmatched)
		assert.Equal(t, "no symptoms provided", err.Error())
	})

	t.Run("nothing matched", func(t *testing.T) {
		_, err := v.Encode([]string{"not_a_real_symptom"})

		var invalid *InvalidInputError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, []string{"not_a_real_symptom"}, invalid.Unmatched)
		assert.Contains(t, err.Error(), "not_a_real_symptom")
	})
}

func TestNewVocabulary_Rejects(t *testing.T) {
	_, err := NewVocabulary(nil)
	assert.Error(t, err)

	_, err = NewVocabulary([]string{"a", "  "})
	assert.Error(t, err)
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symptoms.txt")
	content := "# model v2\nitching\n\n  Skin_Rash  \r\nvomiting\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"itching", "Skin_Rash", "vomiting"}, v.Symptoms())
	idx, ok := v.Index("skin_rash")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
