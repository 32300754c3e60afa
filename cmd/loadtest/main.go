package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const (
	PredictCount = 10_000
	Concurrency  = 10
	MaxSymptoms  = 6

	DefaultBaseURL = "http://localhost:5001"
)

// Data Structures matching the server API
type PredictRequest struct {
	Symptoms []string `json:"symptoms"`
}

type SymptomsResponse struct {
	Symptoms []string `json:"symptoms"`
}

var client = &http.Client{Timeout: 5 * time.Second}

func main() {
	baseURL := DefaultBaseURL
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	fmt.Println("Starting symptomrank HTTP load generator")
	fmt.Printf("Target: %s | Workers: %d\n", baseURL, Concurrency)

	vocab, err := fetchSymptoms(baseURL)
	if err != nil {
		fmt.Printf("cannot fetch vocabulary: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Vocabulary: %d symptoms\n", len(vocab))

	// --- Phase 1: valid predictions ---
	fmt.Println("\nPhase 1: Predict with known symptoms...")
	runTest("predict", PredictCount, func(workerID, i int) error {
		return sendRequest(baseURL+"/predict", PredictRequest{Symptoms: randomSymptoms(vocab)}, http.StatusOK)
	})

	// --- Phase 2: rejected input ---
	fmt.Println("\nPhase 2: Predict with unknown symptoms...")
	runTest("invalid", PredictCount/10, func(workerID, i int) error {
		req := PredictRequest{Symptoms: []string{fmt.Sprintf("unknown_%d_%d", workerID, i)}}
		return sendRequest(baseURL+"/predict", req, http.StatusBadRequest)
	})

	fmt.Println("\nLoad Test Complete!")
}

// Generic Test Runner to handle Concurrency and Timing
func runTest(name string, totalOps int, opFunc func(workerID, i int) error) {
	var wg sync.WaitGroup
	var failures atomic.Int64
	start := time.Now()

	opsPerWorker := totalOps / Concurrency

	for w := 0; w < Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				if err := opFunc(workerID, i); err != nil {
					failures.Add(1)
					fmt.Printf("%s error: %v\n", name, err)
				}
			}
		}(w)
	}

	wg.Wait()
	duration := time.Since(start)
	qps := float64(totalOps) / duration.Seconds()

	fmt.Printf("%s Duration: %s\n", name, duration)
	fmt.Printf("%s QPS: %.2f | failures: %d\n", name, qps, failures.Load())
}

func fetchSymptoms(baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/symptoms")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out SymptomsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Symptoms) == 0 {
		return nil, fmt.Errorf("server returned an empty vocabulary")
	}
	return out.Symptoms, nil
}

// Helper to send HTTP requests
func sendRequest(url string, body interface{}, wantStatus int) error {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("status %d, want %d", resp.StatusCode, wantStatus)
	}
	return nil
}

func randomSymptoms(vocab []string) []string {
	n := 1 + rand.Intn(MaxSymptoms)
	out := make([]string, n)
	for i := range out {
		out[i] = vocab[rand.Intn(len(vocab))]
	}
	return out
}
