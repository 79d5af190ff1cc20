package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/steward/internal/anthropic"
	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWithTimeout_PassesThrough(t *testing.T) {
	g := WithTimeout(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	}), time.Second, discardLogger())

	out, err := g.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "echo: hi" {
		t.Errorf("got %q", out)
	}
}

func TestWithTimeout_WrapsErrors(t *testing.T) {
	backendErr := errors.New("service unavailable")
	g := WithTimeout(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", backendErr
	}), 0, discardLogger())

	_, err := g.Generate(context.Background(), "hi")
	if !errors.Is(err, feedback.ErrOracle) {
		t.Errorf("expected ErrOracle, got %v", err)
	}
	if !errors.Is(err, backendErr) {
		t.Errorf("expected backend error to stay in chain, got %v", err)
	}
}

func TestWithTimeout_Expiry(t *testing.T) {
	g := WithTimeout(GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), 20*time.Millisecond, discardLogger())

	_, err := g.Generate(context.Background(), "slow")
	if !errors.Is(err, feedback.ErrOracle) {
		t.Fatalf("expected ErrOracle, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout message, got %q", err.Error())
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "ollama"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNew_MissingKeys(t *testing.T) {
	for _, provider := range []string{"gemini", "anthropic"} {
		if _, err := New(context.Background(), Config{Provider: provider}); err == nil {
			t.Errorf("expected error for %s without api key", provider)
		}
	}
}

func TestNew_Providers(t *testing.T) {
	g, err := New(context.Background(), Config{Provider: "gemini", GeminiAPIKey: "k"})
	if err != nil || g == nil {
		t.Fatalf("gemini: %v", err)
	}
	g, err = New(context.Background(), Config{Provider: "anthropic", AnthropicAPIKey: "k"})
	if err != nil || g == nil {
		t.Fatalf("anthropic: %v", err)
	}
}

func TestNew_AnthropicMaxTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens int
		want   float64
	}{
		{name: "configured", tokens: 2048, want: 2048},
		{name: "unset keeps default", tokens: 0, want: 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got float64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]any
				json.NewDecoder(r.Body).Decode(&body)
				got, _ = body["max_tokens"].(float64)
				json.NewEncoder(w).Encode(map[string]any{
					"content": []map[string]any{{"type": "text", "text": "ok"}},
				})
			}))
			defer server.Close()

			g, err := New(context.Background(), Config{Provider: "anthropic", AnthropicAPIKey: "k", AnthropicTokens: tt.tokens})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			client, ok := g.(*anthropic.Client)
			if !ok {
				t.Fatalf("expected *anthropic.Client, got %T", g)
			}
			client.SetTestTransport(server.URL)

			if _, err := client.Generate(context.Background(), "hi"); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("max_tokens = %v, want %v", got, tt.want)
			}
		})
	}
}
