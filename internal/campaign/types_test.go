package campaign

import (
	"testing"
)

func TestCreativeBrief_AssetByID(t *testing.T) {
	brief := CreativeBrief{
		Assets: []AssetSpec{
			{ID: "asset-1", Purpose: "hero"},
			{ID: "asset-2", Purpose: "story"},
		},
	}

	if spec := brief.AssetByID("asset-2"); spec == nil || spec.Purpose != "story" {
		t.Errorf("AssetByID(asset-2) = %v, want story spec", spec)
	}
	if spec := brief.AssetByID("asset-9"); spec != nil {
		t.Errorf("AssetByID(asset-9) = %v, want nil", spec)
	}
}

func TestRefs_All(t *testing.T) {
	brand := BrandAssetRefs{
		Logos:      []string{"logo-1"},
		Colors:     []string{"palette-1"},
		Typography: []string{"type-1"},
		Guidelines: []string{"guide-1"},
	}
	if got := brand.All(); len(got) != 4 || got[0] != "logo-1" || got[3] != "guide-1" {
		t.Errorf("BrandAssetRefs.All() = %v", got)
	}

	inspo := InspirationRefs{
		Photos:          []string{"p1", "p2"},
		StyleReferences: []string{"s1"},
	}
	if got := inspo.All(); len(got) != 3 {
		t.Errorf("InspirationRefs.All() = %v, want 3 ids", got)
	}
}
