package quality

import (
	"math"
	"strconv"
	"strings"

	"adforge/internal/campaign"
)

// Check names, also used as keys when reading results back.
const (
	CheckBrandAlignment = "Brand Alignment"
	CheckVisualQuality  = "Visual Quality"
	CheckAccessibility  = "Accessibility"
	CheckTechnicalSpecs = "Technical Specs"
)

// brandAlignmentPassBar is the fixed pass bar for the brand check; the
// brief's brand-alignment threshold governs refinement, not this check.
const brandAlignmentPassBar = 0.80

// checkBrandAlignment scores the asset against the brief's visual direction
// and brand compliance rules.
//
// Scoring factors (weighted):
//   - Color alignment: prompt carries the palette clause        0.30
//   - Mood alignment: prompt carries the target mood            0.25
//   - Composition alignment: prompt carries the layout          0.25
//   - Required elements present                                 0.20
//   - Each prohibited element found: -0.25 penalty
func checkBrandAlignment(asset *campaign.GeneratedAsset, brief *campaign.CreativeBrief) campaign.QualityCheck {
	prompt := strings.ToLower(asset.Metadata.Prompt)
	dir := brief.VisualDirection

	colorScore := mentionScore(prompt, dir.ColorPalette.Primary, dir.ColorPalette.Secondary)
	moodScore := mentionScore(prompt, dir.Mood.Primary, dir.Mood.Secondary)
	compositionScore := mentionScore(prompt, dir.Composition.Layout, dir.Composition.Style)

	var required, prohibited []string
	if brief.BrandCompliance != nil {
		required = brief.BrandCompliance.RequiredElements
		prohibited = brief.BrandCompliance.ProhibitedElements
	}

	var requiredFound []string
	for _, el := range required {
		if el != "" && strings.Contains(prompt, strings.ToLower(el)) {
			requiredFound = append(requiredFound, el)
		}
	}
	requiredScore := 1.0
	if len(required) > 0 {
		requiredScore = float64(len(requiredFound)) / float64(len(required))
	}

	var prohibitedFound []string
	for _, el := range prohibited {
		if el != "" && strings.Contains(prompt, strings.ToLower(el)) {
			prohibitedFound = append(prohibitedFound, el)
		}
	}

	overall := 0.30*colorScore + 0.25*moodScore + 0.25*compositionScore + 0.20*requiredScore
	overall -= 0.25 * float64(len(prohibitedFound))
	if overall < 0 {
		overall = 0
	}
	overall = round2(overall)

	return campaign.QualityCheck{
		Name:   CheckBrandAlignment,
		Passed: overall >= brandAlignmentPassBar,
		Score:  overall,
		Details: map[string]any{
			"color_score":       colorScore,
			"mood_score":        moodScore,
			"composition_score": compositionScore,
			"required_found":    requiredFound,
			"prohibited_found":  prohibitedFound,
		},
	}
}

// mentionScore returns 1.0 when the prompt carries the primary token, 0.9
// for the secondary only, 0.6 for neither. Empty tokens count as carried -
// a brief that gives no direction cannot be violated.
func mentionScore(prompt, primary, secondary string) float64 {
	if primary == "" || strings.Contains(prompt, strings.ToLower(primary)) {
		return 1.0
	}
	if secondary != "" && strings.Contains(prompt, strings.ToLower(secondary)) {
		return 0.9
	}
	return 0.6
}

// checkVisualQuality applies resolution/sharpness/lighting/composition
// sanity facets. Score is 0.7 + 0.3 * passed-facet fraction, so a single
// failing facet lands just above the default 0.90 bar and two sink it.
// The caller resolves the effective threshold (brief or configured default).
func checkVisualQuality(asset *campaign.GeneratedAsset, brief *campaign.CreativeBrief, threshold float64) campaign.QualityCheck {
	prompt := strings.ToLower(asset.Metadata.Prompt)

	facets := map[string]bool{
		"resolution":  asset.Metadata.Width*asset.Metadata.Height >= 1024*1024,
		"sharpness":   strings.Contains(prompt, "high quality"),
		"lighting":    mentionScore(prompt, brief.VisualDirection.Composition.Lighting, "") >= 1.0,
		"composition": mentionScore(prompt, brief.VisualDirection.Composition.Layout, "") >= 1.0,
	}

	passed := 0
	details := make(map[string]any, len(facets))
	for name, ok := range facets {
		if ok {
			passed++
			details[name] = "Pass"
		} else {
			details[name] = "Fail"
		}
	}

	score := round2(0.7 + 0.3*float64(passed)/float64(len(facets)))

	return campaign.QualityCheck{
		Name:    CheckVisualQuality,
		Passed:  score >= threshold,
		Score:   score,
		Details: details,
	}
}

// checkAccessibility scores color contrast and text readability. It always
// contributes a score, even when the asset carries no text.
func checkAccessibility(asset *campaign.GeneratedAsset, brief *campaign.CreativeBrief) campaign.QualityCheck {
	palette := brief.VisualDirection.ColorPalette

	contrastScore := 0.85 // Neutral when the palette is not hex-parseable
	wcagLevel := "unknown"
	var ratio float64
	if fg, ok := parseHexColor(palette.Primary); ok {
		if bg, ok := parseHexColor(palette.Secondary); ok {
			ratio = contrastRatio(fg, bg)
			switch {
			case ratio >= 7.0:
				contrastScore, wcagLevel = 1.0, "WCAG AAA"
			case ratio >= 4.5:
				contrastScore, wcagLevel = 0.9, "WCAG AA"
			case ratio >= 3.0:
				contrastScore, wcagLevel = 0.75, "WCAG AA Large"
			default:
				contrastScore, wcagLevel = 0.5, "Below WCAG"
			}
		}
	}

	readabilityScore := 0.7
	altText := "Missing"
	if asset.Metadata.Prompt != "" {
		readabilityScore = 1.0
		altText = "Present"
	}

	score := round2(0.6*contrastScore + 0.4*readabilityScore)

	details := map[string]any{
		"color_contrast":   wcagLevel,
		"text_readability": readabilityScore,
		"alt_text":         altText,
	}
	if ratio > 0 {
		details["contrast_ratio"] = round2(ratio)
	}

	return campaign.QualityCheck{
		Name:    CheckAccessibility,
		Passed:  score >= 0.75,
		Score:   score,
		Details: details,
	}
}

// checkTechnicalSpecs validates resolution, format, color space, and file
// size against the brief. Score is the fraction of sub-checks passed and
// the check passes only when every sub-check does.
func checkTechnicalSpecs(asset *campaign.GeneratedAsset, brief *campaign.CreativeBrief) campaign.QualityCheck {
	specs := brief.TechnicalSpecs

	resolutionOK := true
	if minW, minH, ok := parseResolution(specs.Resolution); ok {
		resolutionOK = asset.Metadata.Width >= minW && asset.Metadata.Height >= minH
	}

	// Providers emit PNG in sRGB; anything else the brief demands fails here.
	formatOK := specs.Format == "" || strings.EqualFold(specs.Format, "png")
	colorSpaceOK := specs.ColorSpace == "" || strings.EqualFold(specs.ColorSpace, "sRGB")

	fileSizeOK := true
	if specs.MaxFileSizeBytes > 0 {
		// Upper-bound estimate: 3 bytes per pixel uncompressed.
		estimate := int64(asset.Metadata.Width) * int64(asset.Metadata.Height) * 3
		fileSizeOK = estimate <= specs.MaxFileSizeBytes
	}

	subChecks := map[string]bool{
		"resolution":  resolutionOK,
		"format":      formatOK,
		"color_space": colorSpaceOK,
		"file_size":   fileSizeOK,
	}

	passed := 0
	details := make(map[string]any, len(subChecks))
	for name, ok := range subChecks {
		details[name] = ok
		if ok {
			passed++
		}
	}

	score := round2(float64(passed) / float64(len(subChecks)))

	return campaign.QualityCheck{
		Name:    CheckTechnicalSpecs,
		Passed:  passed == len(subChecks),
		Score:   score,
		Details: details,
	}
}

// parseResolution parses a "WxH" token, tolerating suffixes like
// "1024x1024 minimum".
func parseResolution(s string) (w, h int, ok bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, 0, false
	}
	parts := strings.SplitN(strings.ToLower(fields[0]), "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// rgb holds color channels in [0,1].
type rgb struct {
	r, g, b float64
}

// parseHexColor parses "#rrggbb" or "rrggbb".
func parseHexColor(s string) (rgb, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{
		r: float64(v>>16&0xff) / 255.0,
		g: float64(v>>8&0xff) / 255.0,
		b: float64(v&0xff) / 255.0,
	}, true
}

// relativeLuminance implements the WCAG 2.x formula.
func relativeLuminance(c rgb) float64 {
	lin := func(ch float64) float64 {
		if ch <= 0.03928 {
			return ch / 12.92
		}
		return math.Pow((ch+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.r) + 0.7152*lin(c.g) + 0.0722*lin(c.b)
}

// contrastRatio returns the WCAG contrast ratio between two colors, >= 1.
func contrastRatio(a, b rgb) float64 {
	la, lb := relativeLuminance(a), relativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// round2 rounds to two decimal places to keep scores stable across runs.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// detailFloat reads a float64 factor back out of a check's details map.
func detailFloat(c campaign.QualityCheck, key string) (float64, bool) {
	v, ok := c.Details[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
