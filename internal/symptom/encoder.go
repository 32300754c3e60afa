package symptom

import (
	"fmt"
	"strings"
)

// FeatureVector is the binary presence encoding fed to a classifier.
type FeatureVector []float64

// Ones returns the positions set to 1.
func (fv FeatureVector) Ones() []int {
	var out []int
	for i, x := range fv {
		if x != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Encoding is the result of mapping caller input onto the vocabulary.
type Encoding struct {
	Vector FeatureVector

	// Matched holds vocabulary identifiers, in input order, one per matched name.
	Matched []string
	// Unmatched holds caller-supplied names exactly as they were sent.
	Unmatched []string
}

// InvalidInputError reports input that cannot be mapped to any feature.
type InvalidInputError struct {
	Reason    string
	Unmatched []string
}

func (e *InvalidInputError) Error() string {
	if len(e.Unmatched) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s. Invalid symptoms: [%s]", e.Reason, strings.Join(e.Unmatched, ", "))
}

// Encode builds the feature vector for names. Matching is exact after
// trimming surrounding whitespace and lower-casing. It fails with
// *InvalidInputError when names is empty or nothing matched.
func (v *Vocabulary) Encode(names []string) (Encoding, error) {
	if len(names) == 0 {
		return Encoding{}, &InvalidInputError{Reason: "no symptoms provided"}
	}

	enc := Encoding{Vector: make(FeatureVector, len(v.symptoms))}
	for _, name := range names {
		idx, ok := v.Index(name)
		if !ok {
			enc.Unmatched = append(enc.Unmatched, name)
			continue
		}
		enc.Vector[idx] = 1
		enc.Matched = append(enc.Matched, v.symptoms[idx])
	}

	if len(enc.Matched) == 0 {
		return Encoding{}, &InvalidInputError{
			Reason:    "no valid symptoms matched",
			Unmatched: enc.Unmatched,
		}
	}
	return enc, nil
}
