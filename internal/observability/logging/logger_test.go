package logging

import (
	"context"
	"errors"
	"testing"

	"outbreak-feed/internal/pkg/requestid"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"debug", "DEBUG"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"info", "INFO"},
		{"", "INFO"},
		{"bogus", "INFO"},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.value, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.value)
			if got := levelFromEnv().String(); got != tt.want {
				t.Errorf("levelFromEnv() with LOG_LEVEL=%q = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestWithRequestID(t *testing.T) {
	logger := NewLogger()

	// Without a request ID the logger is returned unchanged
	ctx := context.Background()
	if got := WithRequestID(ctx, logger); got != logger {
		t.Error("expected same logger when context has no request id")
	}

	ctx = requestid.WithRequestID(ctx, "req-123")
	if got := WithRequestID(ctx, logger); got == logger {
		t.Error("expected derived logger when context carries a request id")
	}
}

func TestFromContext_Fallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should fall back to the default logger")
	}
}

func TestWithLogger_RoundTrip(t *testing.T) {
	logger := NewTextLogger()
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("FromContext did not return the stored logger")
	}
}

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "anthropic key",
			err:  errors.New("auth failed: sk-ant-abc123DEF456"),
			want: "auth failed: sk-ant-****",
		},
		{
			name: "openai key",
			err:  errors.New("auth failed: sk-abcdefghij123456"),
			want: "auth failed: sk-****",
		},
		{
			name: "dsn password",
			err:  errors.New("connect postgres://user:hunter2@db:5432/app"),
			want: "connect postgres://user:****@db:5432/app",
		},
		{
			name: "geocoder query key",
			err:  errors.New("GET https://api.example.com/geocode?q=Jalisco&key=abc123 failed"),
			want: "GET https://api.example.com/geocode?q=Jalisco&key=**** failed",
		},
		{
			name: "plain error untouched",
			err:  errors.New("feed timeout"),
			want: "feed timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeError(tt.err); got != tt.want {
				t.Errorf("SanitizeError() = %q, want %q", got, tt.want)
			}
		})
	}
}
