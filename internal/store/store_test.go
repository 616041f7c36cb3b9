package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"adforge/internal/campaign"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "adforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testCampaign() *campaign.Campaign {
	return &campaign.Campaign{
		ID:        "camp-1",
		Name:      "Summer Launch",
		Objective: "Promote the summer collection",
		Status:    campaign.StatusDraft,
		BrandAssets: campaign.BrandAssetRefs{
			Logos:  []string{"logo-1"},
			Colors: []string{"palette-1"},
		},
		Inspiration: campaign.InspirationRefs{
			Photos: []string{"shoot-01"},
		},
		Requirements: campaign.Requirements{
			TargetAudience: "Women 25-40",
			Deliverables: []campaign.Deliverable{
				{Name: "Instagram feed hero", Quantity: 1},
			},
		},
	}
}

func TestCampaignRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := testCampaign()
	require.NoError(t, s.CreateCampaign(ctx, want))

	got, err := s.GetCampaign(ctx, "camp-1")
	require.NoError(t, err)

	if diff := cmp.Diff(want.BrandAssets, got.BrandAssets); diff != "" {
		t.Errorf("brand assets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Requirements, got.Requirements); diff != "" {
		t.Errorf("requirements mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, campaign.StatusDraft, got.Status)
	require.Nil(t, got.CreativeBrief)
	require.Nil(t, got.GenerationMetadata)
	require.False(t, got.CreatedAt.IsZero())
}

func TestGetCampaign_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetCampaign(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound), "want ErrNotFound, got %v", err)
}

func TestUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateCampaign(ctx, testCampaign()))

	require.NoError(t, s.UpdateStatus(ctx, "camp-1", campaign.StatusGeneratingBrief))
	got, err := s.GetCampaign(ctx, "camp-1")
	require.NoError(t, err)
	require.Equal(t, campaign.StatusGeneratingBrief, got.Status)

	err = s.UpdateStatus(ctx, "missing", campaign.StatusReview)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateBrief(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateCampaign(ctx, testCampaign()))

	brief := &campaign.CreativeBrief{
		VisualDirection: campaign.VisualDirection{
			ColorPalette: campaign.ColorPalette{Primary: "#FF6B9D", Secondary: "#000000"},
			Mood:         campaign.Mood{Primary: "joyful"},
		},
		Assets: []campaign.AssetSpec{
			{ID: "asset-1", Purpose: "Instagram feed hero", Role: "hero", Specs: campaign.SpecDetails{Ratio: "4:5"}},
		},
	}
	require.NoError(t, s.UpdateBrief(ctx, "camp-1", brief, campaign.StatusBriefReady))

	got, err := s.GetCampaign(ctx, "camp-1")
	require.NoError(t, err)
	require.Equal(t, campaign.StatusBriefReady, got.Status)
	require.NotNil(t, got.CreativeBrief)
	if diff := cmp.Diff(brief, got.CreativeBrief); diff != "" {
		t.Errorf("brief mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateGenerationMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateCampaign(ctx, testCampaign()))

	meta := &campaign.GenerationMetadata{
		TotalAssets:     3,
		GeneratedAssets: 2,
		FailedAssets:    1,
		TotalCostCents:  20,
		TotalTimeMS:     4200,
		Iterations:      1,
	}
	require.NoError(t, s.UpdateGenerationMetadata(ctx, "camp-1", meta))

	got, err := s.GetCampaign(ctx, "camp-1")
	require.NoError(t, err)
	if diff := cmp.Diff(meta, got.GenerationMetadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestAssets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &campaign.AssetRecord{
		ID:       "logo-1",
		FileName: "logo.png",
		FilePath: "/brand/logo.png",
		FileType: "image",
		MimeType: "image/png",
		FileSize: 1234,
		Width:    512,
		Height:   512,
		Caption:  "Primary logo",
	}
	require.NoError(t, s.CreateAsset(ctx, rec))

	got, err := s.GetAssets(ctx, []string{"logo-1", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1, "missing ids are skipped")
	require.Equal(t, "logo.png", got[0].FileName)
	require.Equal(t, "Primary logo", got[0].Caption)

	empty, err := s.GetAssets(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func resultPair(specID, role string, passed bool) campaign.ResultPair {
	return campaign.ResultPair{
		Spec: campaign.AssetSpec{
			ID:      specID,
			Purpose: "Instagram feed hero",
			Role:    role,
			Specs:   campaign.SpecDetails{Ratio: "4:5"},
		},
		Asset: campaign.GeneratedAsset{
			AssetID: specID,
			URL:     "https://img.example/" + specID + ".png",
			Role:    role,
			Status:  campaign.AssetGenerated,
			Metadata: campaign.GenerationInfo{
				Model:            "dall-e-3",
				Prompt:           "hero shot",
				CostCents:        8,
				GenerationTimeMS: 900,
				Attempt:          1,
				Width:            1024,
				Height:           1024,
			},
		},
		Quality: campaign.QualityCheckResult{
			AssetID:  specID,
			Passed:   passed,
			Score:    0.92,
			Feedback: []string{"All quality checks passed!"},
		},
	}
}

func TestWriteResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateCampaign(ctx, testCampaign()))

	pairs := []campaign.ResultPair{
		resultPair("asset-1", "hero", true),
		resultPair("asset-2", "story", false),
	}
	require.NoError(t, s.WriteResults(ctx, "camp-1", pairs))

	records, err := s.ListCampaignAssets(ctx, "camp-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Sort order follows input order.
	require.Equal(t, "hero", records[0].Role)
	require.Equal(t, campaign.AssetGenerated, records[0].Status)
	require.Equal(t, "story", records[1].Role)
	require.Equal(t, campaign.AssetFailed, records[1].Status, "QC failure marks the link failed")

	require.NotNil(t, records[0].QualityResults)
	require.True(t, records[0].QualityResults.Passed)
	require.Equal(t, 0.92, records[0].QualityResults.Score)
	require.Equal(t, "dall-e-3", records[0].GenerationModel)
	require.Equal(t, 8, records[0].GenerationCost)

	// The linked asset records exist too.
	assets, err := s.GetAssets(ctx, []string{records[0].AssetID, records[1].AssetID})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	for _, a := range assets {
		require.Equal(t, "image/png", a.MimeType)
		require.Contains(t, a.FileName, "camp-1-")
	}
}

func TestWriteResults_Empty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateCampaign(ctx, testCampaign()))
	require.NoError(t, s.WriteResults(ctx, "camp-1", nil))

	records, err := s.ListCampaignAssets(ctx, "camp-1")
	require.NoError(t, err)
	require.Empty(t, records)
}
