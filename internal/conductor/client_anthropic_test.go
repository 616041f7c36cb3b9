package conductor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAnthropicClient_Complete(t *testing.T) {
	var gotBody anthropicRequest
	var gotKey, gotVersion string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "hello from the model"}},
		})
	}))
	defer srv.Close()

	client := NewAnthropicClientWithConfig(AnthropicConfig{
		APIKey:    "ak-test",
		BaseURL:   srv.URL,
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 2000,
		Timeout:   5 * time.Second,
	})

	got, err := client.Complete(context.Background(), "be brief", "say hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "hello from the model" {
		t.Errorf("Complete() = %q", got)
	}
	if gotKey != "ak-test" || gotVersion != "2023-06-01" {
		t.Errorf("headers = %q / %q", gotKey, gotVersion)
	}
	if gotBody.System != "be brief" || len(gotBody.Messages) != 1 || gotBody.Messages[0].Content != "say hello" {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.MaxTokens != 2000 {
		t.Errorf("max_tokens = %d, want 2000", gotBody.MaxTokens)
	}
}

func TestAnthropicClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			},
			wantErr: "status 500",
		},
		{
			name: "api error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad model"}}`))
			},
			wantErr: "bad model",
		},
		{
			name: "no text content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"content":[]}`))
			},
			wantErr: "no text content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewAnthropicClientWithConfig(AnthropicConfig{
				APIKey:  "ak-test",
				BaseURL: srv.URL,
				Model:   "claude-sonnet-4-20250514",
				Timeout: 5 * time.Second,
			})
			_, err := client.Complete(context.Background(), "", "prompt")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestAnthropicClient_MissingKey(t *testing.T) {
	client := NewAnthropicClient("")
	_, err := client.Complete(context.Background(), "", "x")
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("error = %v, want missing API key", err)
	}
}
