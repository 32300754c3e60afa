package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Remote calls a model served over HTTP.
//
// Request (POST {endpoint}/predict):
//
//	{"instances": [[0, 1, 0, ...]]}
//
// Response:
//
//	{"labels": ["Fungal infection"], "probabilities": [[0.91, 0.02, ...]]}
//
// The class ordering is fetched once from GET {endpoint}/classes.
type Remote struct {
	Endpoint string
	Client   *http.Client

	classes []string
}

type remotePredictRequest struct {
	Instances [][]float64 `json:"instances"`
}

type remotePredictResponse struct {
	Labels        []string    `json:"labels"`
	Probabilities [][]float64 `json:"probabilities"`
}

type remoteClassesResponse struct {
	Classes []string `json:"classes"`
}

// NewRemote connects to endpoint and fetches its class ordering.
func NewRemote(ctx context.Context, endpoint string, timeout time.Duration) (*Remote, error) {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	r := &Remote{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Client:   &http.Client{Timeout: timeout},
	}

	var resp remoteClassesResponse
	if err := r.do(ctx, http.MethodGet, "/classes", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch classes: %w", err)
	}
	if len(resp.Classes) == 0 {
		return nil, fmt.Errorf("fetch classes: remote model reported no classes")
	}
	r.classes = resp.Classes
	return r, nil
}

func (r *Remote) Classes() []string {
	return append([]string(nil), r.classes...)
}

func (r *Remote) Predict(ctx context.Context, features []float64) (string, error) {
	label, _, err := r.Score(ctx, features)
	return label, err
}

func (r *Remote) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	_, proba, err := r.Score(ctx, features)
	return proba, err
}

func (r *Remote) Score(ctx context.Context, features []float64) (string, []float64, error) {
	var resp remotePredictResponse
	req := remotePredictRequest{Instances: [][]float64{features}}
	if err := r.do(ctx, http.MethodPost, "/predict", req, &resp); err != nil {
		return "", nil, fmt.Errorf("predict: %w", err)
	}
	if len(resp.Labels) != 1 || len(resp.Probabilities) != 1 {
		return "", nil, fmt.Errorf("predict: expected 1 result, got %d labels and %d distributions",
			len(resp.Labels), len(resp.Probabilities))
	}
	return resp.Labels[0], resp.Probabilities[0], nil
}

func (r *Remote) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.Endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return fmt.Errorf("rpc error: status=%d, read body failed: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
