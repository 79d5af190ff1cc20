package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerate_Request(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected x-api-key test-key, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != apiVersion {
			t.Errorf("expected anthropic-version %s, got %q", apiVersion, r.Header.Get("anthropic-version"))
		}

		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "Sentiment?" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.MaxTokens != 200 {
			t.Errorf("expected max_tokens 200, got %d", req.MaxTokens)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "Sentiment: Positive"}},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", WithMaxTokens(200))
	c.SetTestTransport(server.URL)

	out, err := c.Generate(context.Background(), "Sentiment?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Sentiment: Positive" {
		t.Errorf("got %q", out)
	}
}

func TestGenerate_Defaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		json.NewDecoder(r.Body).Decode(&raw)
		if raw["model"] != defaultModel {
			t.Errorf("expected default model, got %v", raw["model"])
		}
		if raw["max_tokens"] != float64(defaultMaxTokens) {
			t.Errorf("expected default max_tokens, got %v", raw["max_tokens"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Sorry about the wait. "},
				{"type": "text", "text": "We are on it 🙏"},
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "")
	c.SetTestTransport(server.URL)

	out, err := c.Generate(context.Background(), "reply")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Sorry about the wait. We are on it 🙏" {
		t.Errorf("text blocks not joined: %q", out)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "typed api error",
			status:  http.StatusBadRequest,
			body:    `{"error":{"type":"invalid_request_error","message":"max_tokens is too large"}}`,
			wantErr: "invalid_request_error",
		},
		{
			name:    "untyped error body",
			status:  http.StatusBadGateway,
			body:    `upstream unavailable`,
			wantErr: "upstream unavailable",
		},
		{
			name:    "no text content",
			status:  http.StatusOK,
			body:    `{"content":[],"stop_reason":"max_tokens"}`,
			wantErr: "max_tokens",
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{"content":`,
			wantErr: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient("test-key", "test-model")
			c.SetTestTransport(server.URL)

			_, err := c.Generate(context.Background(), "hi")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}
