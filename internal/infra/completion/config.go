package completion

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Provider names accepted by COMPLETION_PROVIDER.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderNoop   = "noop"
)

// Config holds the shared tunables of a completion client.
type Config struct {
	// Model is the provider-specific model identifier.
	Model string

	// MaxTokens is the default response token budget when the request does
	// not set one.
	MaxTokens int

	// MaxPromptChars truncates oversized prompts before the API call to
	// bound token cost. The classification prompt carries a whole article
	// batch, so this is sized much larger than a single-document budget.
	MaxPromptChars int

	// Timeout is the maximum duration of a single API call.
	Timeout time.Duration
}

// Validate checks the configuration fields.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MaxPromptChars <= 0 {
		return fmt.Errorf("max prompt chars must be positive, got %d", c.MaxPromptChars)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// loadConfig reads the shared tunables from the environment, falling back to
// the given defaults. Invalid values fall back with a warning rather than
// failing: a slightly wrong budget is recoverable, a dead pipeline is not.
func loadConfig(defaultModel string) Config {
	const (
		defaultMaxTokens      = 4096
		defaultMaxPromptChars = 120_000
		defaultTimeout        = 120 * time.Second
	)

	cfg := Config{
		Model:          defaultModel,
		MaxTokens:      defaultMaxTokens,
		MaxPromptChars: defaultMaxPromptChars,
		Timeout:        defaultTimeout,
	}

	if model := os.Getenv("COMPLETION_MODEL"); model != "" {
		cfg.Model = model
	}

	if raw := os.Getenv("COMPLETION_MAX_TOKENS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			slog.Warn("invalid COMPLETION_MAX_TOKENS, using default",
				slog.String("value", raw),
				slog.Int("default", defaultMaxTokens))
		} else {
			cfg.MaxTokens = parsed
		}
	}

	if raw := os.Getenv("COMPLETION_MAX_PROMPT_CHARS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			slog.Warn("invalid COMPLETION_MAX_PROMPT_CHARS, using default",
				slog.String("value", raw),
				slog.Int("default", defaultMaxPromptChars))
		} else {
			cfg.MaxPromptChars = parsed
		}
	}

	return cfg
}

// FromEnv builds the completion client selected by COMPLETION_PROVIDER and
// the available API keys. With no provider configured it returns the noop
// client, which degrades the pipeline to news-only mode instead of failing.
func FromEnv() Completer {
	provider := os.Getenv("COMPLETION_PROVIDER")

	switch provider {
	case ProviderClaude:
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return NewClaude(key)
		}
		slog.Warn("COMPLETION_PROVIDER=claude but ANTHROPIC_API_KEY not set, using noop")
		return NewNoOp()
	case ProviderOpenAI:
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return NewOpenAI(key)
		}
		slog.Warn("COMPLETION_PROVIDER=openai but OPENAI_API_KEY not set, using noop")
		return NewNoOp()
	case ProviderNoop:
		return NewNoOp()
	case "":
		// No explicit choice: pick whichever key is present, Claude first.
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return NewClaude(key)
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return NewOpenAI(key)
		}
		slog.Warn("no AI API key configured, classification and translation disabled")
		return NewNoOp()
	default:
		slog.Warn("unknown COMPLETION_PROVIDER, using noop",
			slog.String("provider", provider))
		return NewNoOp()
	}
}
