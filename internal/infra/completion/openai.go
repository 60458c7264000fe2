package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"outbreak-feed/internal/resilience/circuitbreaker"
	"outbreak-feed/internal/resilience/retry"
	"outbreak-feed/internal/utils/text"
)

// OpenAI implements Completer against the chat completions API. Calls run
// through a circuit breaker and retry with backoff.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
	metrics        MetricsRecorder
}

// NewOpenAI creates an OpenAI completion client with the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	config := loadConfig(openai.GPT4oMini)

	slog.Info("initialized openai completion client",
		slog.String("model", config.Model),
		slog.Int("max_tokens", config.MaxTokens),
		slog.Int("max_prompt_chars", config.MaxPromptChars))

	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		config:         config,
		metrics:        NewPrometheusMetrics(),
	}
}

// Name implements Completer.
func (o *OpenAI) Name() string { return ProviderOpenAI }

// Complete sends one completion request through the breaker and retry stack.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doComplete(ctx, req)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("openai complete failed after retries: %w", retryErr)
	}

	return result, nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doComplete(ctx context.Context, req Request) (string, error) {
	prompt := text.TruncateRunes(req.Prompt, o.config.MaxPromptChars)
	if prompt != req.Prompt {
		o.metrics.RecordPromptTruncated(ProviderOpenAI)
		slog.Warn("prompt truncated for openai api",
			slog.Int("original_length", text.CountRunes(req.Prompt)),
			slog.Int("truncated_length", text.CountRunes(prompt)))
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = o.config.MaxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	duration := time.Since(start)

	o.metrics.RecordDuration(ProviderOpenAI, duration)

	if err != nil {
		o.metrics.RecordOutcome(ProviderOpenAI, false)
		slog.ErrorContext(ctx, "completion request failed",
			slog.String("provider", ProviderOpenAI),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		o.metrics.RecordOutcome(ProviderOpenAI, false)
		return "", fmt.Errorf("openai api returned no choices")
	}

	response := resp.Choices[0].Message.Content
	o.metrics.RecordOutcome(ProviderOpenAI, true)
	o.metrics.RecordResponseLength(ProviderOpenAI, text.CountRunes(response))

	slog.InfoContext(ctx, "completion request completed",
		slog.String("provider", ProviderOpenAI),
		slog.Int("response_length", text.CountRunes(response)),
		slog.Duration("duration", duration))

	return response, nil
}
