package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docsight/docsight/internal/config"
	"github.com/docsight/docsight/internal/domain"
)

const completionBody = `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`

// capturedRequest is the subset of the chat-completions request we assert on.
type capturedRequest struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	Messages  []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	cfg := &config.VisionConfig{
		BaseURL:        ts.URL,
		Model:          "gpt-4o-mini",
		MaxTokens:      1000,
		TimeoutSeconds: 5,
	}
	return NewClient(cfg, "test-key")
}

func TestAnalyze_textOnly(t *testing.T) {
	var got capturedRequest
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, completionBody, "four")
	})

	answer, err := c.Analyze(context.Background(), "What is 2+2?", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if answer != "four" {
		t.Errorf("answer = %q, want %q (no heading without images)", answer, "four")
	}
	if auth != "Bearer test-key" {
		t.Errorf("authorization header = %q", auth)
	}
	if got.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", got.Model)
	}
	if got.MaxTokens != 1000 {
		t.Errorf("max_tokens = %d, want 1000", got.MaxTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	var text string
	if err := json.Unmarshal(got.Messages[0].Content, &text); err != nil {
		t.Fatalf("text-only content should be a plain string: %s", got.Messages[0].Content)
	}
	if text != "What is 2+2?" {
		t.Errorf("content = %q", text)
	}
}

func TestAnalyze_withImagesKeepsPageOrder(t *testing.T) {
	images := []domain.ImagePayload{
		{MediaType: "image/jpeg", Data: "cGFnZTA="},
		{MediaType: "image/jpeg", Data: "cGFnZTE="},
	}

	var got capturedRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, completionBody, "summary")
	})

	answer, err := c.Analyze(context.Background(), "Analyze this document.", images)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if answer != "### Insights\n\nsummary" {
		t.Errorf("answer = %q, want insights heading prefix", answer)
	}

	var parts []struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		ImageURL struct {
			URL string `json:"url"`
		} `json:"image_url"`
	}
	if err := json.Unmarshal(got.Messages[0].Content, &parts); err != nil {
		t.Fatalf("content should be a part list: %s", got.Messages[0].Content)
	}
	if len(parts) != 3 {
		t.Fatalf("parts: got %d, want 3", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text != "Analyze this document." {
		t.Errorf("parts[0] = %+v, want the prompt first", parts[0])
	}
	for i, img := range images {
		part := parts[i+1]
		if part.Type != "image_url" {
			t.Errorf("parts[%d].Type = %q", i+1, part.Type)
		}
		if part.ImageURL.URL != img.DataURI() {
			t.Errorf("parts[%d] url = %q, want %q", i+1, part.ImageURL.URL, img.DataURI())
		}
	}
}

func TestAnalyze_upstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})
	_, err := c.Analyze(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("expected error for upstream failure")
	}
	if kind := domain.KindOf(err); kind != domain.KindUpstream {
		t.Errorf("kind: got %q, want %q", kind, domain.KindUpstream)
	}
}

func TestAnalyze_emptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`)
	})
	_, err := c.Analyze(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
	if kind := domain.KindOf(err); kind != domain.KindUpstream {
		t.Errorf("kind: got %q, want %q", kind, domain.KindUpstream)
	}
}

func TestAnalyze_timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1500 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, completionBody, "late")
	}))
	t.Cleanup(ts.Close)
	cfg := &config.VisionConfig{
		BaseURL:        ts.URL,
		Model:          "gpt-4o-mini",
		MaxTokens:      1000,
		TimeoutSeconds: 1,
	}
	c := NewClient(cfg, "test-key")

	_, err := c.Analyze(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("expected error for hung upstream")
	}
	if kind := domain.KindOf(err); kind != domain.KindTimeout {
		t.Errorf("kind: got %q, want %q", kind, domain.KindTimeout)
	}
	if strings.Contains(err.Error(), "late") {
		t.Errorf("timeout error should not carry a response body: %v", err)
	}
}
