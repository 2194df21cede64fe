package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/taskhub-dev/taskhub/internal/reports"
)

func TestSummarizeSendsHistoryAndPrompt(t *testing.T) {
	var captured generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/test-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}

		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": "the summary"}},
				}},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model", DefaultGenerationConfig).WithBaseURL(server.URL)

	history := []reports.Exchange{{Prompt: "old prompt", Response: "old response"}}

	text, err := client.Summarize(context.Background(), "be brief", nil, history, "new logs")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if text != "the summary" {
		t.Fatalf("text = %q, want %q", text, "the summary")
	}

	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "be brief" {
		t.Fatalf("system instruction = %+v", captured.SystemInstruction)
	}

	if len(captured.Contents) != 3 {
		t.Fatalf("contents length = %d, want history pair + new turn", len(captured.Contents))
	}
	if captured.Contents[0].Role != "user" || captured.Contents[0].Parts[0].Text != "old prompt" {
		t.Fatalf("contents[0] = %+v", captured.Contents[0])
	}
	if captured.Contents[1].Role != "model" || captured.Contents[1].Parts[0].Text != "old response" {
		t.Fatalf("contents[1] = %+v", captured.Contents[1])
	}
	if captured.Contents[2].Role != "user" || captured.Contents[2].Parts[0].Text != "new logs" {
		t.Fatalf("contents[2] = %+v", captured.Contents[2])
	}

	if captured.GenerationConfig.MaxOutputTokens != 8192 {
		t.Fatalf("generation config = %+v", captured.GenerationConfig)
	}
}

func TestSummarizePerCallConfigOverridesDefaults(t *testing.T) {
	var captured generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": "ok"}},
				}},
			},
		})
	}))
	defer server.Close()

	client := NewClient("k", "m", DefaultGenerationConfig).WithBaseURL(server.URL)

	config := json.RawMessage(`{"temperature":0.2,"topP":0.5,"topK":10,"maxOutputTokens":128}`)

	if _, err := client.Summarize(context.Background(), "", config, nil, "prompt"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	want := GenerationConfig{Temperature: 0.2, TopP: 0.5, TopK: 10, MaxOutputTokens: 128}
	if captured.GenerationConfig != want {
		t.Fatalf("generation config = %+v, want %+v", captured.GenerationConfig, want)
	}

	// The next call without a config falls back to the client's defaults.
	if _, err := client.Summarize(context.Background(), "", nil, nil, "prompt"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if captured.GenerationConfig != DefaultGenerationConfig {
		t.Fatalf("generation config = %+v, want defaults", captured.GenerationConfig)
	}
}

func TestSummarizeSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	}))
	defer server.Close()

	client := NewClient("k", "m", DefaultGenerationConfig).WithBaseURL(server.URL)

	_, err := client.Summarize(context.Background(), "", nil, nil, "prompt")
	if err == nil {
		t.Fatal("expected error from 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v, want status mentioned", err)
	}
}

func TestSummarizeRejectsEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewClient("k", "m", DefaultGenerationConfig).WithBaseURL(server.URL)

	_, err := client.Summarize(context.Background(), "", nil, nil, "prompt")
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}
