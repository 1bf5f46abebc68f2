package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("missing api key header, got %q", got)
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "how is my budget?" {
			t.Errorf("unexpected request payload: %+v", req)
		}

		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{
				{Content: geminiContent{Parts: []geminiPart{{Text: "Looking good."}}}},
			},
		})
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", srv.URL, "gemini-2.0-flash")
	got, err := c.Generate(context.Background(), "how is my budget?")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "Looking good." {
		t.Fatalf("expected candidate text, got %q", got)
	}
}

func TestGenerateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGeminiClient("k", srv.URL, "gemini-2.0-flash")
	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{})
	}))
	defer srv.Close()

	c := NewGeminiClient("k", srv.URL, "gemini-2.0-flash")
	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error for empty candidates")
	}
}

func TestGenerateMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewGeminiClient("k", srv.URL, "gemini-2.0-flash")
	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
