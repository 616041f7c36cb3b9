package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"adforge/internal/campaign"
	"adforge/internal/provider"
)

// stubClient is a scriptable ImageClient for tests.
type stubClient struct {
	mu       sync.Mutex
	calls    int
	failures int // fail the first N calls
	delay    time.Duration
	err      error

	maxInFlight int
	inFlight    int
}

func (s *stubClient) GenerateImage(ctx context.Context, req provider.ImageRequest) (*provider.ImageResult, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call <= s.failures {
		if s.err != nil {
			return nil, s.err
		}
		return nil, fmt.Errorf("transient provider error on call %d", call)
	}
	return &provider.ImageResult{
		URL:       fmt.Sprintf("https://img.example/%d.png", call),
		CostCents: provider.DefaultCostTable().Cost(req.Size),
	}, nil
}

func (s *stubClient) Model() string { return "stub-model" }

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fastAgentConfig removes real backoff waits from retry tests.
func fastAgentConfig() AgentConfig {
	cfg := DefaultAgentConfig()
	cfg.BackoffBase = time.Millisecond
	cfg.BackoffMax = 10 * time.Millisecond
	return cfg
}

func testBrief() *campaign.CreativeBrief {
	return &campaign.CreativeBrief{
		VisualDirection: campaign.VisualDirection{
			ColorPalette: campaign.ColorPalette{Primary: "#FF6B9D", Secondary: "#000000"},
			Composition:  campaign.Composition{Style: "clean and modern", Layout: "rule of thirds", Lighting: "natural and bright"},
			Mood:         campaign.Mood{Primary: "professional"},
		},
		Assets: []campaign.AssetSpec{
			{ID: "asset-1", Purpose: "Instagram feed hero", Role: "hero", Specs: campaign.SpecDetails{Ratio: "4:5"}},
		},
	}
}

func TestCraftPrompt_EnhancementOrder(t *testing.T) {
	agent := NewAgent(&stubClient{}, DefaultAgentConfig())
	brief := testBrief()

	spec := campaign.AssetSpec{ID: "asset-1", Prompt: "Product shot of sunscreen"}
	prompt := agent.craftPrompt(spec, interpretBrief(brief))

	want := "Product shot of sunscreen, rule of thirds composition, professional mood, " +
		"natural and bright lighting, clean and modern style, color palette featuring #FF6B9D, " +
		"high quality professional photography, commercial grade"
	if prompt != want {
		t.Errorf("craftPrompt() =\n%q\nwant\n%q", prompt, want)
	}
}

func TestCraftPrompt_PurposeFallbackAndSkips(t *testing.T) {
	agent := NewAgent(&stubClient{}, DefaultAgentConfig())
	brief := &campaign.CreativeBrief{} // no visual direction at all

	spec := campaign.AssetSpec{ID: "asset-1", Purpose: "Email header"}
	prompt := agent.craftPrompt(spec, interpretBrief(brief))

	want := "Email header, high quality professional photography, commercial grade"
	if prompt != want {
		t.Errorf("craftPrompt() = %q, want %q", prompt, want)
	}
}

func TestCraftPrompt_Truncation(t *testing.T) {
	cfg := DefaultAgentConfig()
	cfg.MaxPromptLength = 50
	agent := NewAgent(&stubClient{}, cfg)

	spec := campaign.AssetSpec{ID: "asset-1", Prompt: strings.Repeat("long prompt ", 40)}
	prompt := agent.craftPrompt(spec, interpretBrief(testBrief()))

	if len(prompt) > 50 {
		t.Errorf("prompt length = %d, want <= 50", len(prompt))
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	s := strings.Repeat("é", 30) // 2 bytes per rune
	got := truncate(s, 15)
	if len(got) > 15 {
		t.Errorf("truncate produced %d bytes, want <= 15", len(got))
	}
	if !strings.HasPrefix(s, got) {
		t.Errorf("truncate split a rune: %q", got)
	}
}

func TestComputeBackoff(t *testing.T) {
	agent := NewAgent(&stubClient{}, AgentConfig{BackoffBase: time.Second, BackoffMax: time.Hour})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
	}
	for _, tt := range tests {
		if got := agent.computeBackoff(tt.attempt); got != tt.want {
			t.Errorf("computeBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}

	capped := NewAgent(&stubClient{}, AgentConfig{BackoffBase: time.Second, BackoffMax: 3 * time.Second})
	if got := capped.computeBackoff(5); got != 3*time.Second {
		t.Errorf("capped backoff = %v, want 3s", got)
	}
}

func TestGenerate_SucceedsAfterRetries(t *testing.T) {
	client := &stubClient{failures: 2}
	agent := NewAgent(client, fastAgentConfig())
	brief := testBrief()

	asset, err := agent.Generate(context.Background(), brief.Assets[0], brief)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if asset.Metadata.Attempt != 3 {
		t.Errorf("Attempt = %d, want 3", asset.Metadata.Attempt)
	}
	if client.callCount() != 3 {
		t.Errorf("provider calls = %d, want 3", client.callCount())
	}
	if asset.AssetID != "asset-1" || asset.Status != campaign.AssetGenerated {
		t.Errorf("asset = %+v", asset)
	}
	if asset.Metadata.Width != 1024 || asset.Metadata.Height != 1024 {
		t.Errorf("dimensions = %dx%d, want 1024x1024 for 4:5 ratio", asset.Metadata.Width, asset.Metadata.Height)
	}
	if asset.Metadata.CostCents != 8 {
		t.Errorf("cost = %d, want 8", asset.Metadata.CostCents)
	}
}

func TestGenerate_ExhaustsAttempts(t *testing.T) {
	cause := errors.New("provider down")
	client := &stubClient{failures: 100, err: cause}
	agent := NewAgent(client, fastAgentConfig())
	brief := testBrief()

	_, err := agent.Generate(context.Background(), brief.Assets[0], brief)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !errors.Is(err, cause) {
		t.Errorf("error should wrap the final provider error, got %v", err)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error = %v, want attempt count", err)
	}
	if client.callCount() != 3 {
		t.Errorf("provider calls = %d, want 3", client.callCount())
	}
}

func TestGenerate_CancelledDuringBackoff(t *testing.T) {
	client := &stubClient{failures: 100}
	cfg := DefaultAgentConfig()
	cfg.BackoffBase = time.Hour // cancellation must not wait this out
	agent := NewAgent(client, cfg)
	brief := testBrief()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := agent.Generate(ctx, brief.Assets[0], brief)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("cancellation took %v, backoff was not interrupted", time.Since(start))
	}
}
