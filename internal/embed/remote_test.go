package embed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func embeddingsHandler(t *testing.T, dim int, calls *int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		*calls++
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			vec := make([]float64, dim)
			vec[0] = float64(i + 1)
			data[i] = map[string]any{"embedding": vec}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}
}

func TestRemoteClient_Embed(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %q, want /v1/embeddings", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want Bearer sk-test", got)
		}
		embeddingsHandler(t, 4, &calls)(w, r)
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, "sk-test", "test-model")
	vectors, err := client.Embed(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("Embed() = %d vectors, want 2", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][0] != 2 {
		t.Errorf("Embed() order not preserved: %v", vectors)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}
}

func TestRemoteClient_Embed_MissingAPIKey(t *testing.T) {
	client := NewRemoteClient("http://unused", "", "test-model")
	_, err := client.Embed(context.Background(), []string{"text"})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Embed() error = %v, want ErrMissingCredentials", err)
	}
}

func TestRemoteClient_Embed_RetriesRateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		embeddingsHandler(t, 4, new(int))(w, r)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewRemoteClient(server.URL, "sk-test", "test-model")
	client.sleep = func(d time.Duration) { slept = append(slept, d) }

	vectors, err := client.Embed(context.Background(), []string{"text"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 1 {
		t.Fatalf("Embed() = %d vectors, want 1", len(vectors))
	}
	if calls != 3 {
		t.Errorf("server calls = %d, want 3", calls)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Errorf("backoff delays = %v, want [1s 2s]", slept)
	}
}

func TestRemoteClient_Embed_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, "sk-test", "test-model")
	client.sleep = func(time.Duration) {}

	_, err := client.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("Embed() expected error after exhausting retries")
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("Embed() error = %v, want wrapped ErrRateLimited", err)
	}
	if calls != remoteMaxAttempts {
		t.Errorf("server calls = %d, want %d", calls, remoteMaxAttempts)
	}
}

func TestRemoteClient_Embed_NonTransientFailsFast(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid key"))
	}))
	defer server.Close()

	client := NewRemoteClient(server.URL, "sk-bad", "test-model")
	client.sleep = func(time.Duration) { t.Error("sleep should not be called for non-transient errors") }

	_, err := client.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("Embed() expected error")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("Embed() error = %v, want status 401 surfaced", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (no retry)", calls)
	}
}

func TestRemoteClient_Embed_Batches(t *testing.T) {
	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		batchSizes = append(batchSizes, len(req.Input))

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"embedding": []float64{1}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer server.Close()

	texts := make([]string, remoteBatchSize+5)
	for i := range texts {
		texts[i] = "text"
	}

	client := NewRemoteClient(server.URL, "sk-test", "test-model")
	vectors, err := client.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != len(texts) {
		t.Errorf("Embed() = %d vectors, want %d", len(vectors), len(texts))
	}
	if len(batchSizes) != 2 || batchSizes[0] != remoteBatchSize || batchSizes[1] != 5 {
		t.Errorf("batch sizes = %v, want [%d 5]", batchSizes, remoteBatchSize)
	}
}

func TestRemoteClient_Name(t *testing.T) {
	client := NewRemoteClient("http://unused", "k", "text-embedding-3-small")
	if got := client.Name(); got != "remote:text-embedding-3-small" {
		t.Errorf("Name() = %q, want remote:text-embedding-3-small", got)
	}
}
