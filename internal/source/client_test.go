package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"valutahub/config"
	"valutahub/logger"
)

func testRequestConfig() config.RequestConfig {
	return config.RequestConfig{
		TimeoutSeconds:    5,
		MaxRetries:        3,
		RetryDelaySeconds: 0,
		RequestsPerSecond: 1000,
		BurstSize:         1000,
	}
}

func TestGetJSONSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc"`)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := NewClient(testRequestConfig(), logger.Logger())
	var body map[string]bool
	meta, err := client.GetJSON(context.Background(), "test", server.URL, &body)
	if err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if !body["ok"] {
		t.Errorf("unexpected body: %v", body)
	}
	if meta.StatusCode != http.StatusOK {
		t.Errorf("unexpected status: %d", meta.StatusCode)
	}
	if meta.ETag != `"abc"` {
		t.Errorf("unexpected etag: %s", meta.ETag)
	}
}

func TestGetJSONRetriesRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(testRequestConfig(), logger.Logger())
	var body map[string]interface{}
	if _, err := client.GetJSON(context.Background(), "test", server.URL, &body); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestGetJSONRateLimitExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(testRequestConfig(), logger.Logger())
	var body map[string]interface{}
	_, err := client.GetJSON(context.Background(), "test", server.URL, &body)
	var svcErr *ExternalServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
}

func TestGetJSONNonRetryableStatus(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(testRequestConfig(), logger.Logger())
	var body map[string]interface{}
	_, err := client.GetJSON(context.Background(), "test", server.URL, &body)
	var svcErr *ExternalServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("bad request must not be retried, got %d calls", calls)
	}
}

func TestGetJSONRetriesConnectionFailure(t *testing.T) {
	// A closed server refuses connections; all attempts fail
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(testRequestConfig(), logger.Logger())
	var body map[string]interface{}
	_, err := client.GetJSON(context.Background(), "test", url, &body)
	var svcErr *ExternalServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
	if svcErr.Err == nil {
		t.Error("expected the last underlying cause to be attached")
	}
}

func TestGetJSONMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{broken`))
	}))
	defer server.Close()

	client := NewClient(testRequestConfig(), logger.Logger())
	var body map[string]interface{}
	_, err := client.GetJSON(context.Background(), "test", server.URL, &body)
	var svcErr *ExternalServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ExternalServiceError, got %v", err)
	}
}
