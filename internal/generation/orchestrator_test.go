package generation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"adforge/internal/campaign"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func briefWithAssets(n int) *campaign.CreativeBrief {
	brief := testBrief()
	brief.Assets = nil
	for i := 1; i <= n; i++ {
		brief.Assets = append(brief.Assets, campaign.AssetSpec{
			ID:      fmt.Sprintf("asset-%d", i),
			Purpose: fmt.Sprintf("deliverable %d", i),
			Role:    "custom",
			Specs:   campaign.SpecDetails{Ratio: "1:1"},
		})
	}
	return brief
}

func TestGenerateAll_AllSucceed(t *testing.T) {
	client := &stubClient{delay: 5 * time.Millisecond}
	orch := NewOrchestrator(client, Config{MaxConcurrent: 3, Agent: fastAgentConfig()})
	brief := briefWithAssets(8)

	results, failures := orch.GenerateAll(context.Background(), brief, nil)

	if len(results)+len(failures) != len(brief.Assets) {
		t.Fatalf("results %d + failures %d != total %d", len(results), len(failures), len(brief.Assets))
	}
	if len(failures) != 0 {
		t.Errorf("failures = %v, want none", failures)
	}

	// Every spec must be represented exactly once; completion order is
	// unspecified, so correlate by id.
	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.AssetID] {
			t.Errorf("asset %s reported twice", r.AssetID)
		}
		seen[r.AssetID] = true
		if brief.AssetByID(r.AssetID) == nil {
			t.Errorf("result for unknown asset %s", r.AssetID)
		}
	}
}

func TestGenerateAll_ConcurrencyCap(t *testing.T) {
	client := &stubClient{delay: 10 * time.Millisecond}
	orch := NewOrchestrator(client, Config{MaxConcurrent: 3, Agent: fastAgentConfig()})
	brief := briefWithAssets(10)

	orch.GenerateAll(context.Background(), brief, nil)

	client.mu.Lock()
	peak := client.maxInFlight
	client.mu.Unlock()
	if peak > 3 {
		t.Errorf("max in-flight calls = %d, want <= 3", peak)
	}
}

func TestGenerateAll_PartialFailure(t *testing.T) {
	// First asset fails all its attempts, the rest succeed. With batch size 1
	// the first 3 calls belong to asset-1.
	client := &stubClient{failures: 3}
	orch := NewOrchestrator(client, Config{MaxConcurrent: 1, Agent: fastAgentConfig()})
	brief := briefWithAssets(3)

	results, failures := orch.GenerateAll(context.Background(), brief, nil)

	if len(results) != 2 || len(failures) != 1 {
		t.Fatalf("results=%d failures=%d, want 2/1", len(results), len(failures))
	}
	if failures[0].AssetID != "asset-1" {
		t.Errorf("failed asset = %s, want asset-1", failures[0].AssetID)
	}
	if len(results)+len(failures) != len(brief.Assets) {
		t.Errorf("results + failures != total")
	}
}

func TestGenerateAll_ProgressReachesTotal(t *testing.T) {
	client := &stubClient{}
	orch := NewOrchestrator(client, Config{MaxConcurrent: 2, Agent: fastAgentConfig()})
	brief := briefWithAssets(5)

	// Snapshots are not guaranteed to arrive in monotonic order, so track the
	// most complete one instead of the last one delivered.
	var mu sync.Mutex
	var best campaign.Progress
	orch.GenerateAll(context.Background(), brief, func(p campaign.Progress) {
		mu.Lock()
		defer mu.Unlock()
		if p.Total != 5 {
			t.Errorf("progress total = %d, want 5", p.Total)
		}
		if p.Completed+p.Failed > best.Completed+best.Failed {
			best = p
		}
	})

	mu.Lock()
	defer mu.Unlock()
	if best.Completed+best.Failed != 5 {
		t.Errorf("most complete snapshot completed+failed = %d, want 5", best.Completed+best.Failed)
	}
	if best.InProgress != 0 {
		t.Errorf("most complete snapshot in-progress = %d, want 0", best.InProgress)
	}
}

func TestGenerateAll_CancellationStopsNewBatches(t *testing.T) {
	client := &stubClient{delay: 50 * time.Millisecond}
	orch := NewOrchestrator(client, Config{MaxConcurrent: 2, Agent: fastAgentConfig()})
	brief := briefWithAssets(10)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	results, failures := orch.GenerateAll(ctx, brief, nil)

	// Cancellation never loses an asset: everything is either a result or a
	// recorded failure.
	if len(results)+len(failures) != len(brief.Assets) {
		t.Fatalf("results %d + failures %d != total %d", len(results), len(failures), len(brief.Assets))
	}
	if len(failures) == 0 {
		t.Error("expected unlaunched assets to be recorded as failures")
	}
	// Only batches started before cancellation hit the provider.
	if client.callCount() >= len(brief.Assets) {
		t.Errorf("provider calls = %d, want fewer than %d", client.callCount(), len(brief.Assets))
	}
}
