package trends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestOverTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interest_over_time", r.URL.Path)
		assert.Equal(t, "Dengue,Cholera", r.URL.Query().Get("terms"))
		assert.Equal(t, "today 1-m", r.URL.Query().Get("timeframe"))
		_, _ = w.Write([]byte(`{
			"points": [
				{"date": "2026-08-01", "scores": {"Dengue": 42, "Cholera": 10}},
				{"date": "2026-08-02", "scores": {"Dengue": 55, "Cholera": 12}},
				{"date": "not-a-date", "scores": {"Dengue": 99}}
			]
		}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), ClientConfig{BaseURL: server.URL, Timeout: time.Second})

	series, err := c.InterestOverTime(context.Background(), []string{"Dengue", "Cholera"}, "today 1-m")
	require.NoError(t, err)
	require.Len(t, series["Dengue"], 2, "unparsable dates must be skipped")
	assert.Equal(t, 42, series["Dengue"][0].Score)
	assert.Equal(t, 12, series["Cholera"][1].Score)
}

func TestInterestByRegion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interest_by_region", r.URL.Path)
		assert.Equal(t, "Dengue", r.URL.Query().Get("term"))
		_, _ = w.Write([]byte(`{"regions": {"Mexico": 80, "Brazil": 65}}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), ClientConfig{BaseURL: server.URL, Timeout: time.Second})

	regions, err := c.InterestByRegion(context.Background(), "Dengue", "today 1-m")
	require.NoError(t, err)
	assert.Equal(t, 80, regions["Mexico"])
	assert.Equal(t, 65, regions["Brazil"])
}

func TestThrottledResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.Client(), ClientConfig{BaseURL: server.URL, Timeout: time.Second})

	_, err := c.InterestOverTime(context.Background(), []string{"Dengue"}, "today 1-m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestResetSession(t *testing.T) {
	var reset bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/reset" && r.Method == http.MethodPost {
			reset = true
		}
	}))
	defer server.Close()

	c := NewClient(server.Client(), ClientConfig{BaseURL: server.URL, Timeout: time.Second})

	require.NoError(t, c.ResetSession(context.Background()))
	assert.True(t, reset)
}

func TestNoOpProvider(t *testing.T) {
	n := NewNoOp()

	_, err := n.InterestOverTime(context.Background(), []string{"Dengue"}, "today 1-m")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = n.InterestByRegion(context.Background(), "Dengue", "today 1-m")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, n.ResetSession(context.Background()))
}
