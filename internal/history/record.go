package history

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one ranked category of a stored prediction.
type Entry struct {
	Disease     string  `json:"disease"`
	Probability float64 `json:"probability"`
}

// Record is a prediction as it was returned to the caller.
type Record struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ModelVersion string    `json:"model_version,omitempty"`

	Symptoms  []string `json:"symptoms"`
	Matched   []string `json:"matched"`
	Unmatched []string `json:"unmatched,omitempty"`

	Predicted  string  `json:"predicted_disease"`
	Confidence float64 `json:"confidence"`
	Top        []Entry `json:"top_predictions"`
}

// NewRecord stamps a record with a fresh id and the current time.
func NewRecord() Record {
	return Record{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}
}
