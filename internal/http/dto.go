package http

import (
	"github.com/rupamthxt/symptomrank/internal/history"
	"github.com/rupamthxt/symptomrank/internal/predict"
)

type PredictRequest struct {
	Symptoms []string `json:"symptoms"`
}

type DiseasePrediction struct {
	Disease     string  `json:"disease"`
	Probability float64 `json:"probability"`
}

type PredictResponse struct {
	Success          bool                `json:"success"`
	PredictedDisease string              `json:"predicted_disease"`
	Confidence       float64             `json:"confidence"`
	TopPredictions   []DiseasePrediction `json:"top_predictions"`

	UnmatchedSymptoms []string `json:"unmatched_symptoms,omitempty"`
	PredictionID      string   `json:"prediction_id,omitempty"`
}

type ErrorResponse struct {
	Error             string   `json:"error"`
	UnmatchedSymptoms []string `json:"unmatched_symptoms,omitempty"`
}

type StatusResponse struct {
	Service       string `json:"service"`
	Status        string `json:"status"`
	ModelLoaded   bool   `json:"model_loaded"`
	ModelVersion  string `json:"model_version,omitempty"`
	SymptomsCount int    `json:"symptoms_count"`
	DiseasesCount int    `json:"diseases_count"`
}

type SymptomsResponse struct {
	Symptoms []string `json:"symptoms"`
	Count    int      `json:"count"`
}

type DiseasesResponse struct {
	Diseases []string `json:"diseases"`
	Count    int      `json:"count"`
}

type PredictionsResponse struct {
	Predictions []history.Record `json:"predictions"`
	Count       int              `json:"count"`
}

type JoinRequest struct {
	NodeID string `json:"node_id"`
	Addr   string `json:"addr"`
}

func newPredictResponse(resp *predict.RankedResponse) PredictResponse {
	top := make([]DiseasePrediction, 0, len(resp.Top))
	for _, s := range resp.Top {
		top = append(top, DiseasePrediction{Disease: s.Category, Probability: s.Probability})
	}
	return PredictResponse{
		Success:           resp.Success,
		PredictedDisease:  resp.Predicted,
		Confidence:        resp.Confidence,
		TopPredictions:    top,
		UnmatchedSymptoms: resp.Unmatched,
	}
}

func newRecord(symptoms []string, resp *predict.RankedResponse) history.Record {
	rec := history.NewRecord()
	rec.ModelVersion = resp.ModelVersion
	rec.Symptoms = symptoms
	rec.Matched = resp.Matched
	rec.Unmatched = resp.Unmatched
	rec.Predicted = resp.Predicted
	rec.Confidence = resp.Confidence
	rec.Top = make([]history.Entry, 0, len(resp.Top))
	for _, s := range resp.Top {
		rec.Top = append(rec.Top, history.Entry{Disease: s.Category, Probability: s.Probability})
	}
	return rec
}
