package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"adforge/internal/logging"
)

// GeminiClient implements ImageClient using Google's Imagen models via the
// genai SDK. Imagen returns image bytes rather than hosted URLs, so outputs
// are written under outputDir and the file path is the opaque reference.
type GeminiClient struct {
	client    *genai.Client
	model     string
	outputDir string
	costs     CostTable
}

// GeminiConfig holds configuration for the Gemini/Imagen client.
type GeminiConfig struct {
	APIKey    string
	Model     string
	OutputDir string
	Costs     CostTable
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:    apiKey,
		Model:     "imagen-3.0-generate-002",
		OutputDir: filepath.Join(".adforge", "generated"),
		Costs:     DefaultCostTable(),
	}
}

// NewGeminiClient creates a new Imagen client.
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if config.Model == "" {
		config.Model = "imagen-3.0-generate-002"
	}
	if config.OutputDir == "" {
		config.OutputDir = filepath.Join(".adforge", "generated")
	}
	costs := config.Costs
	if costs.SquareCents == 0 && costs.WideCents == 0 {
		costs = DefaultCostTable()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		model:     config.Model,
		outputDir: config.OutputDir,
		costs:     costs,
	}, nil
}

// Model returns the configured model identifier.
func (c *GeminiClient) Model() string {
	return c.model
}

// GenerateImage performs one Imagen generation call and persists the result
// to the output directory.
func (c *GeminiClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	logging.ProviderDebug("[Gemini] GenerateImage: model=%s size=%s prompt_len=%d", c.model, req.Size, len(req.Prompt))

	start := time.Now()
	resp, err := c.client.Models.GenerateImages(ctx, c.model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    req.Size.AspectRatio(),
	})
	if err != nil {
		logging.Get(logging.CategoryProvider).Error("[Gemini] request failed after %v: %v", time.Since(start), err)
		return nil, fmt.Errorf("image generation request failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("no image in response")
	}

	img := resp.GeneratedImages[0].Image

	// Hosted output: hand back the URI directly.
	if img.GCSURI != "" {
		return &ImageResult{URL: img.GCSURI, CostCents: c.costs.Cost(req.Size)}, nil
	}

	if len(img.ImageBytes) == 0 {
		return nil, fmt.Errorf("empty image bytes in response")
	}

	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(c.outputDir, uuid.NewString()+".png")
	if err := os.WriteFile(path, img.ImageBytes, 0644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	logging.ProviderDebug("[Gemini] GenerateImage wrote %d bytes to %s in %v", len(img.ImageBytes), path, time.Since(start))

	return &ImageResult{
		URL:       path,
		CostCents: c.costs.Cost(req.Size),
	}, nil
}
