package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"outbreak-feed/internal/resilience/circuitbreaker"
	"outbreak-feed/internal/resilience/retry"
	"outbreak-feed/internal/utils/text"
)

// Claude implements Completer against Anthropic's Messages API. Calls run
// through a circuit breaker and retry with backoff.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
	metrics        MetricsRecorder
}

// NewClaude creates a Claude completion client with the given API key.
func NewClaude(apiKey string) *Claude {
	config := loadConfig(string(anthropic.ModelClaudeSonnet4_5_20250929))

	slog.Info("initialized claude completion client",
		slog.String("model", config.Model),
		slog.Int("max_tokens", config.MaxTokens),
		slog.Int("max_prompt_chars", config.MaxPromptChars))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		config:         config,
		metrics:        NewPrometheusMetrics(),
	}
}

// Name implements Completer.
func (c *Claude) Name() string { return ProviderClaude }

// Complete sends one completion request through the breaker and retry stack.
func (c *Claude) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doComplete(ctx, req)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("claude complete failed after retries: %w", retryErr)
	}

	return result, nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (c *Claude) doComplete(ctx context.Context, req Request) (string, error) {
	requestID := uuid.New().String()

	prompt := text.TruncateRunes(req.Prompt, c.config.MaxPromptChars)
	if prompt != req.Prompt {
		c.metrics.RecordPromptTruncated(ProviderClaude)
		slog.Warn("prompt truncated for claude api",
			slog.String("request_id", requestID),
			slog.Int("original_length", text.CountRunes(req.Prompt)),
			slog.Int("truncated_length", text.CountRunes(prompt)))
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	slog.InfoContext(ctx, "starting completion request",
		slog.String("request_id", requestID),
		slog.String("provider", ProviderClaude),
		slog.Int("prompt_length", len(prompt)))

	start := time.Now()
	message, err := c.client.Messages.New(ctx, params)
	duration := time.Since(start)

	c.metrics.RecordDuration(ProviderClaude, duration)

	if err != nil {
		c.metrics.RecordOutcome(ProviderClaude, false)
		slog.ErrorContext(ctx, "completion request failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		c.metrics.RecordOutcome(ProviderClaude, false)
		slog.ErrorContext(ctx, "claude api returned empty response",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		c.metrics.RecordOutcome(ProviderClaude, false)
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	response := textBlock.Text
	c.metrics.RecordOutcome(ProviderClaude, true)
	c.metrics.RecordResponseLength(ProviderClaude, text.CountRunes(response))

	slog.InfoContext(ctx, "completion request completed",
		slog.String("request_id", requestID),
		slog.Int("response_length", text.CountRunes(response)),
		slog.Duration("duration", duration))

	return response, nil
}
