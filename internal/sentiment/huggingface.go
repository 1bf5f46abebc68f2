// Package sentiment classifies the dominant emotion of a text through
// the HuggingFace inference API.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

type scoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// HuggingFaceClassifier calls a text-classification model and returns
// the top-scoring label.
type HuggingFaceClassifier struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewHuggingFaceClassifier(apiKey, baseURL, model string) *HuggingFaceClassifier {
	return &HuggingFaceClassifier{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Classify returns the dominant emotion label and its confidence score
// in [0, 1].
func (c *HuggingFaceClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	body, err := json.Marshal(classifyRequest{Inputs: text})
	if err != nil {
		return "", 0, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("classifier request: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("classifier status %d: %s", res.StatusCode, string(resBody))
	}

	// The inference API nests results one level deep per input.
	var results [][]scoredLabel
	if err := json.Unmarshal(resBody, &results); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 || len(results[0]) == 0 {
		return "", 0, fmt.Errorf("empty classifier response")
	}

	top := results[0][0]
	for _, candidate := range results[0][1:] {
		if candidate.Score > top.Score {
			top = candidate
		}
	}
	return top.Label, top.Score, nil
}
