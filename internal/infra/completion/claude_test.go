package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"outbreak-feed/internal/resilience/circuitbreaker"
	"outbreak-feed/internal/resilience/retry"
	"outbreak-feed/internal/utils/text"
)

// recorderStub captures metric calls without touching the Prometheus
// registry.
type recorderStub struct {
	truncated int
	successes int
	failures  int
}

func (r *recorderStub) RecordDuration(string, time.Duration) {}

func (r *recorderStub) RecordOutcome(_ string, success bool) {
	if success {
		r.successes++
	} else {
		r.failures++
	}
}

func (r *recorderStub) RecordPromptTruncated(string) { r.truncated++ }

func (r *recorderStub) RecordResponseLength(string, int) {}

// fastRetry keeps test failures from sleeping through production backoff.
func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:  1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1.0,
	}
}

func testClientConfig() Config {
	return Config{
		Model:          "test-model",
		MaxTokens:      256,
		MaxPromptChars: 50_000,
		Timeout:        5 * time.Second,
	}
}

func newTestClaude(serverURL string, cfg Config, rec MetricsRecorder) *Claude {
	return &Claude{
		client: anthropic.NewClient(
			option.WithAPIKey("test-key"),
			option.WithBaseURL(serverURL),
			option.WithMaxRetries(0),
		),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    fastRetry(),
		config:         cfg,
		metrics:        rec,
	}
}

// claudeRequest is the wire shape of a Messages API call, as far as the
// tests need to inspect it.
type claudeRequest struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func claudeResponse(t *testing.T, w http.ResponseWriter, answer string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"id":    "msg_test",
		"type":  "message",
		"role":  "assistant",
		"model": "test-model",
		"content": []map[string]string{
			{"type": "text", "text": answer},
		},
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 10, "output_tokens": 10},
	})
	if err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestClaudeCompleteReturnsResponseText(t *testing.T) {
	var got claudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		claudeResponse(t, w, `["0|Cholera|null|human|Haiti|null|12|null|0.9"]`)
	}))
	defer server.Close()

	rec := &recorderStub{}
	c := newTestClaude(server.URL, testClientConfig(), rec)

	result, err := c.Complete(context.Background(), Request{
		System:    "output grammar",
		Prompt:    "classify this batch",
		MaxTokens: 99,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.Contains(result, "Cholera") {
		t.Errorf("result = %q, want the response text", result)
	}

	if got.Model != "test-model" {
		t.Errorf("model = %q, want the configured model", got.Model)
	}
	if got.MaxTokens != 99 {
		t.Errorf("max_tokens = %d, want the per-request override 99", got.MaxTokens)
	}
	if len(got.System) != 1 || got.System[0].Text != "output grammar" {
		t.Errorf("system = %+v, want the system block forwarded", got.System)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content[0].Text != "classify this batch" {
		t.Errorf("messages = %+v, want the prompt as one user message", got.Messages)
	}
	if rec.successes != 1 || rec.failures != 0 {
		t.Errorf("outcomes = %d success / %d failure, want 1/0", rec.successes, rec.failures)
	}
}

func TestClaudeCompleteTruncatesPromptOnRuneBoundary(t *testing.T) {
	var got claudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		claudeResponse(t, w, "ok")
	}))
	defer server.Close()

	cfg := testClientConfig()
	cfg.MaxPromptChars = 10
	rec := &recorderStub{}
	c := newTestClaude(server.URL, cfg, rec)

	if _, err := c.Complete(context.Background(), Request{Prompt: strings.Repeat("感染症", 20)}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	sent := got.Messages[0].Content[0].Text
	if !utf8.ValidString(sent) {
		t.Errorf("truncated prompt is invalid UTF-8: %q", sent)
	}
	if n := text.CountRunes(sent); n != 10 {
		t.Errorf("truncated prompt = %d runes, want 10", n)
	}
	if rec.truncated != 1 {
		t.Errorf("truncation recorded %d times, want 1", rec.truncated)
	}
}

func TestClaudeCompleteErrorsOnEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_test","type":"message","role":"assistant","model":"test-model","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer server.Close()

	rec := &recorderStub{}
	c := newTestClaude(server.URL, testClientConfig(), rec)

	if _, err := c.Complete(context.Background(), Request{Prompt: "p"}); err == nil {
		t.Fatal("Complete() accepted an empty response")
	}
	if rec.failures == 0 {
		t.Error("failure outcome not recorded")
	}
}

func TestClaudeCompleteServerErrorFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	rec := &recorderStub{}
	c := newTestClaude(server.URL, testClientConfig(), rec)

	if _, err := c.Complete(context.Background(), Request{Prompt: "p"}); err == nil {
		t.Fatal("Complete() succeeded against a failing server")
	}
	if rec.failures == 0 {
		t.Error("failure outcome not recorded")
	}
}
