package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestOpenAIClient(url string) *OpenAIClient {
	return NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "dall-e-3",
		Timeout: 5 * time.Second,
		Costs:   DefaultCostTable(),
	})
}

func TestOpenAIClient_GenerateImage(t *testing.T) {
	var gotBody openaiImageRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/images/generations" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://img.example/out.png"}},
		})
	}))
	defer srv.Close()

	client := newTestOpenAIClient(srv.URL)
	result, err := client.GenerateImage(context.Background(), ImageRequest{
		Prompt: "a summer hero shot",
		Size:   SizePortrait,
	})
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}

	if result.URL != "https://img.example/out.png" {
		t.Errorf("URL = %q", result.URL)
	}
	if result.CostCents != 12 {
		t.Errorf("CostCents = %d, want 12 for portrait", result.CostCents)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.N != 1 || gotBody.Size != "1024x1792" || gotBody.Model != "dall-e-3" {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.Quality != "hd" {
		t.Errorf("quality = %q, want hd default", gotBody.Quality)
	}
}

func TestOpenAIClient_GenerateImage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			},
			wantErr: "status 429",
		},
		{
			name: "api error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":{"message":"content policy violation"}}`))
			},
			wantErr: "content policy violation",
		},
		{
			name: "empty data",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data":[]}`))
			},
			wantErr: "no image URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := newTestOpenAIClient(srv.URL)
			_, err := client.GenerateImage(context.Background(), ImageRequest{
				Prompt: "test",
				Size:   SizeSquare,
			})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestOpenAIClient_MissingAPIKey(t *testing.T) {
	client := NewOpenAIClient("")
	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "x", Size: SizeSquare})
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("error = %v, want missing API key", err)
	}
}

func TestOpenAIClient_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := newTestOpenAIClient(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GenerateImage(ctx, ImageRequest{Prompt: "x", Size: SizeSquare})
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
}
