// Package provider adapts external text-to-image services behind a single
// ImageClient interface. Clients are explicitly constructed and injected;
// there is no package-level singleton.
package provider

import (
	"context"
	"strings"
)

// Size is a provider output size token.
type Size string

const (
	SizeSquare    Size = "1024x1024"
	SizePortrait  Size = "1024x1792"
	SizeLandscape Size = "1792x1024"
)

// Dimensions returns the pixel dimensions for the size token.
func (s Size) Dimensions() (width, height int) {
	switch s {
	case SizePortrait:
		return 1024, 1792
	case SizeLandscape:
		return 1792, 1024
	default:
		return 1024, 1024
	}
}

// AspectRatio returns the ratio token for the size.
func (s Size) AspectRatio() string {
	switch s {
	case SizePortrait:
		return "9:16"
	case SizeLandscape:
		return "16:9"
	default:
		return "1:1"
	}
}

// SizeForRatio maps an asset spec's aspect-ratio token to an output size.
// Portrait tokens ("9:16" or anything mentioning a story placement) map to
// the tall size, "16:9" to the wide size, and everything else to square.
func SizeForRatio(ratio string) Size {
	r := strings.TrimSpace(ratio)
	if r == "9:16" || strings.Contains(r, "story") {
		return SizePortrait
	}
	if r == "16:9" {
		return SizeLandscape
	}
	return SizeSquare
}

// ImageRequest is one generation call.
type ImageRequest struct {
	Prompt  string
	Size    Size
	Quality string // Provider-specific, e.g. "hd"
}

// ImageResult is one successful generation.
type ImageResult struct {
	// URL is an opaque reference to the provider's output (remote URL or
	// local file path, depending on the provider).
	URL string

	// CostCents is the size-based cost estimate in minor currency units,
	// from the client's cost table, not a provider query.
	CostCents int
}

// ImageClient is the narrow contract the generation agents drive.
type ImageClient interface {
	// GenerateImage performs one synchronous generation call. Callers own
	// retry policy; the client makes exactly one attempt.
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)

	// Model returns the model identifier the client generates with.
	Model() string
}

// CostTable maps output sizes to cost estimates in cents.
type CostTable struct {
	SquareCents int
	WideCents   int // Portrait and landscape bill the same
}

// DefaultCostTable mirrors DALL-E 3 HD pricing: $0.080 per 1024x1024 image,
// $0.120 per 1024x1792 or 1792x1024.
func DefaultCostTable() CostTable {
	return CostTable{SquareCents: 8, WideCents: 12}
}

// Cost returns the estimate for one image at the given size.
func (t CostTable) Cost(size Size) int {
	if size == SizeSquare {
		return t.SquareCents
	}
	return t.WideCents
}
