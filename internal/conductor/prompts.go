package conductor

import (
	"encoding/json"
	"fmt"
	"strings"

	"adforge/internal/campaign"
)

const (
	brandAnalystSystemPrompt   = "You are a brand strategist analyzing brand assets for a campaign."
	inspirationSystemPrompt    = "You are a creative director analyzing inspiration for a campaign."
	briefSynthesisSystemPrompt = "You are an expert creative director creating a comprehensive creative brief for a campaign."
)

// buildBrandAnalysisPrompt asks the model to extract a visual identity from
// the referenced brand assets.
func buildBrandAnalysisPrompt(refs campaign.BrandAssetRefs, records []campaign.AssetRecord) string {
	var sb strings.Builder

	sb.WriteString("Brand Assets Provided:\n")
	sb.WriteString(mustIndentJSON(refs))
	sb.WriteString("\n\nAsset Details:\n")
	sb.WriteString(describeRecords(records))
	sb.WriteString(`

Analyze these assets and extract:

1. **Color Palette**:
   - Primary colors (hex codes)
   - Secondary colors
   - Accent colors

2. **Typography**:
   - Heading fonts
   - Body fonts

3. **Logo Usage**:
   - Preferred logo variation
   - Placement guidelines

4. **Brand Voice**:
   - Tone keywords
   - Common messaging themes
   - Words/phrases to avoid

Return a JSON object with this structure:
{
  "colors": {
    "primary": ["#hex1", "#hex2"],
    "secondary": ["#hex3"],
    "accent": ["#hex4"]
  },
  "typography": {
    "headings": ["Font Name"],
    "body": ["Font Name"]
  },
  "logo_usage": {
    "preferred": "description",
    "variations": ["var1", "var2"],
    "placement": "guidelines"
  },
  "voice": {
    "tone": ["keyword1", "keyword2"],
    "keywords": ["brand", "keywords"],
    "avoid": ["words", "to", "avoid"]
  }
}`)

	return sb.String()
}

// buildInspirationAnalysisPrompt asks the model to identify visual themes in
// the referenced inspiration material.
func buildInspirationAnalysisPrompt(refs campaign.InspirationRefs, records []campaign.AssetRecord) string {
	var sb strings.Builder

	sb.WriteString("Inspiration Assets:\n")
	sb.WriteString(mustIndentJSON(refs))
	sb.WriteString("\n\nAsset Details:\n")
	sb.WriteString(describeRecords(records))
	sb.WriteString(`

Analyze these inspirations and identify:

1. **Visual Style**:
   - Style keywords (e.g., "minimal", "vibrant", "organic")
   - Mood descriptors
   - Composition patterns

2. **Color Trends**:
   - Dominant colors across images
   - Accent colors
   - Overall palette vibe

3. **Patterns**:
   - Common layout approaches
   - Recurring visual elements

Return JSON:
{
  "visual_style": {
    "keywords": ["keyword1", "keyword2"],
    "mood": ["mood1", "mood2"],
    "composition": ["pattern1", "pattern2"]
  },
  "color_trends": {
    "dominant": ["#hex1", "#hex2"],
    "accents": ["#hex3"],
    "palette": "description"
  },
  "patterns": {
    "layout": ["pattern1", "pattern2"],
    "elements": ["element1", "element2"]
  }
}`)

	return sb.String()
}

// buildBriefSynthesisPrompt merges the campaign input with both analyses and
// asks for the full creative brief as JSON.
func buildBriefSynthesisPrompt(input campaign.BriefInput, brand brandAnalysis, inspiration inspirationAnalysis) string {
	audience := input.Requirements.TargetAudience
	if audience == "" {
		audience = "Not specified"
	}

	var deliverables []string
	for _, d := range input.Requirements.Deliverables {
		deliverables = append(deliverables, fmt.Sprintf("- %s (x%d)", d.Name, max(d.Quantity, 1)))
	}
	deliverableBlock := strings.Join(deliverables, "\n")
	if deliverableBlock == "" {
		deliverableBlock = "Not specified"
	}

	var constraints []string
	for _, c := range input.Requirements.Constraints {
		constraints = append(constraints, fmt.Sprintf("- [%s/%s] %s", c.Type, c.Priority, c.Description))
	}
	constraintBlock := strings.Join(constraints, "\n")
	if constraintBlock == "" {
		constraintBlock = "None specified"
	}

	return fmt.Sprintf(`CAMPAIGN OBJECTIVE: %s
TARGET PLATFORMS: %s
TARGET AUDIENCE: %s

BRAND IDENTITY:
%s

INSPIRATION ANALYSIS:
%s

DELIVERABLES REQUIRED:
%s

CONSTRAINTS:
%s

Create a detailed creative brief with:

1. **Visual Direction**: Color palette, composition style, mood
2. **Copy Direction**: Tone, voice, keywords to use/avoid
3. **Technical Specs**: Resolution, format, color space, safe zones
4. **Brand Compliance**: Required elements, prohibited elements, quality thresholds

Return comprehensive JSON following this structure:
{
  "visual_direction": {
    "color_palette": {
      "primary": "#hex",
      "secondary": "#hex",
      "accent": "#hex",
      "rationale": "why these colors"
    },
    "composition": {
      "style": "composition approach",
      "layout": "layout principles",
      "lighting": "lighting direction"
    },
    "mood": {
      "primary": "main mood",
      "secondary": "secondary mood",
      "avoid": ["mood1", "mood2"]
    }
  },
  "copy_direction": {
    "tone": "overall tone",
    "voice": "brand voice",
    "keywords": ["keyword1", "keyword2"],
    "avoid": ["word1", "word2"]
  },
  "technical_specs": {
    "resolution": "minimum resolution",
    "format": "file formats",
    "color_space": "color space",
    "safe_zones": "safe zone requirements"
  },
  "brand_compliance": {
    "required_elements": ["element1", "element2"],
    "prohibited_elements": ["element1", "element2"],
    "quality_thresholds": {
      "brand_alignment": 0.85,
      "visual_quality": 0.90,
      "accessibility": "WCAG AA"
    }
  }
}`,
		input.Objective,
		strings.Join(input.Platforms, ", "),
		audience,
		mustIndentJSON(brand),
		mustIndentJSON(inspiration),
		deliverableBlock,
		constraintBlock,
	)
}

// describeRecords renders asset records as a bullet list for prompt context.
func describeRecords(records []campaign.AssetRecord) string {
	if len(records) == 0 {
		return "- No asset files available"
	}
	var lines []string
	for _, r := range records {
		caption := r.Caption
		if caption == "" {
			caption = "No caption"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", r.FileName, caption))
	}
	return strings.Join(lines, "\n")
}

// mustIndentJSON pretty-prints v for inclusion in a prompt. Marshal failures
// degrade to an empty object rather than aborting brief construction.
func mustIndentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// extractJSON pulls the first top-level JSON object out of a model response,
// tolerating surrounding prose and code fences.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
