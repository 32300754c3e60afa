package classifier

import (
	"encoding/gob"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Snapshot is the on-disk form of a NaiveBayes model. The JSON tags match the
// attribute names of the exporting training pipeline.
type Snapshot struct {
	Classes        []string    `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

// SaveModel writes a gob snapshot of m to path.
func SaveModel(path string, m *NaiveBayes) error {
	snap := Snapshot{
		Classes:        m.classes,
		ClassLogPrior:  m.classLogPrior,
		FeatureLogProb: m.featureLogProb,
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "create model file")
	}

	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		file.Close()
		return errors.Wrap(err, "encode model")
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "close model file")
	}
	return errors.Wrap(os.Rename(tmp, path), "rename model file")
}

// LoadModel restores a NaiveBayes model. Files ending in .json hold exported
// parameters, anything else is read as a gob snapshot.
func LoadModel(path string) (*NaiveBayes, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open model file")
	}
	defer file.Close()

	var snap Snapshot
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.NewDecoder(file).Decode(&snap)
	} else {
		err = gob.NewDecoder(file).Decode(&snap)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode model %s", path)
	}

	m, err := NewNaiveBayes(snap.Classes, snap.ClassLogPrior, snap.FeatureLogProb)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid model %s", path)
	}
	return m, nil
}
