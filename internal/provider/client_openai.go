package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"adforge/internal/logging"
)

// OpenAIClient implements ImageClient for the OpenAI Images API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	costs      CostTable
}

// OpenAIConfig holds configuration for the OpenAI images client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Costs   CostTable
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "dall-e-3",
		Timeout: 120 * time.Second,
		Costs:   DefaultCostTable(),
	}
}

// NewOpenAIClient creates a new OpenAI images client with default config.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return NewOpenAIClientWithConfig(DefaultOpenAIConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI images client.
func NewOpenAIClientWithConfig(config OpenAIConfig) *OpenAIClient {
	costs := config.Costs
	if costs.SquareCents == 0 && costs.WideCents == 0 {
		costs = DefaultCostTable()
	}
	return &OpenAIClient{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		costs: costs,
	}
}

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string {
	return c.model
}

// openaiImageRequest is the images/generations request body.
type openaiImageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
}

// openaiImageResponse is the images/generations response body.
type openaiImageResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateImage performs one images/generations call.
func (c *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	// Auto-apply timeout if context has no deadline (centralized timeout handling)
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	quality := req.Quality
	if quality == "" {
		quality = "hd"
	}

	logging.ProviderDebug("[OpenAI] GenerateImage: model=%s size=%s prompt_len=%d", c.model, req.Size, len(req.Prompt))

	body := openaiImageRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		N:       1,
		Size:    string(req.Size),
		Quality: quality,
		Style:   "natural",
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logging.Get(logging.CategoryProvider).Error("[OpenAI] request failed after %v: %v", time.Since(start), err)
		return nil, fmt.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		excerpt := string(respBody)
		if len(excerpt) > 500 {
			excerpt = excerpt[:500]
		}
		logging.Get(logging.CategoryProvider).Error("[OpenAI] status %d: %s", resp.StatusCode, excerpt)
		return nil, fmt.Errorf("image generation returned status %d: %s", resp.StatusCode, excerpt)
	}

	var parsed openaiImageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("image generation error: %s", parsed.Error.Message)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return nil, fmt.Errorf("no image URL in response")
	}

	logging.ProviderDebug("[OpenAI] GenerateImage succeeded in %v", time.Since(start))

	return &ImageResult{
		URL:       parsed.Data[0].URL,
		CostCents: c.costs.Cost(req.Size),
	}, nil
}
