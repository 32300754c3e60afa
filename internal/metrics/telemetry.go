package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for PredictRequests.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid_input"
	OutcomeUnavailable = "unavailable"
	OutcomeInference   = "inference_error"
)

var (
	// 1. Throughput (Counters)
	PredictRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symptomrank_predict_requests_total",
		Help: "Total number of predict requests by outcome",
	}, []string{"outcome"})

	UnmatchedSymptoms = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symptomrank_unmatched_symptoms_total",
		Help: "Symptom names that did not match the vocabulary",
	})

	HistoryWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symptomrank_history_write_errors_total",
		Help: "Predictions that could not be recorded in history",
	})

	// 2. Latency (Histograms)
	PredictDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "symptomrank_predict_duration_seconds",
		Help:    "Time taken to encode, classify and rank a request",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// 3. State (Gauges)
	ModelLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "symptomrank_model_loaded",
		Help: "1 when a classifier is loaded and serving, 0 otherwise",
	})

	KnownCategories = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "symptomrank_known_categories",
		Help: "Number of categories the loaded classifier can predict",
	})

	RaftState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "symptomrank_raft_state",
		Help: "Current Raft state of the history replica (0=Follower, 1=Candidate, 2=Leader, 3=Shutdown)",
	})
)
