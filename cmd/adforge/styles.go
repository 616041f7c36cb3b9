package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"adforge/internal/campaign"
)

// Semantic colors for CLI output.
var (
	successColor = lipgloss.Color("#8BC34A")
	errorColor   = lipgloss.Color("#e53935")
	warnColor    = lipgloss.Color("#FFC107")
	infoColor    = lipgloss.Color("#2196F3")
	mutedColor   = lipgloss.Color("#808080")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(infoColor)
	labelStyle = lipgloss.NewStyle().Foreground(mutedColor)
	passStyle  = lipgloss.NewStyle().Foreground(successColor)
	failStyle  = lipgloss.NewStyle().Foreground(errorColor)
	warnStyle  = lipgloss.NewStyle().Foreground(warnColor)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(errorColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// renderRunSummary renders the post-run summary box.
func renderRunSummary(result *campaign.RunResult, meta *campaign.GenerationMetadata) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Generation Run Complete"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Campaign:"), result.CampaignID))
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Status:"), string(result.Status)))
	sb.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Generated:"), result.GeneratedAssets))
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Passed QC:"), passStyle.Render(fmt.Sprintf("%d", result.PassedQC))))
	sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Failed QC:"), failStyle.Render(fmt.Sprintf("%d", result.FailedQC))))

	if meta != nil {
		sb.WriteString(fmt.Sprintf("%s %d of %d\n", labelStyle.Render("Succeeded:"), meta.GeneratedAssets, meta.TotalAssets))
		sb.WriteString(fmt.Sprintf("%s $%.2f\n", labelStyle.Render("Total cost:"), float64(meta.TotalCostCents)/100))
		sb.WriteString(fmt.Sprintf("%s %.1fs", labelStyle.Render("Wall time:"), float64(meta.TotalTimeMS)/1000))
	}

	return boxStyle.Render(sb.String())
}

// renderStatusBadge colors a campaign status for list output.
func renderStatusBadge(status campaign.Status) string {
	switch status {
	case campaign.StatusReview, campaign.StatusApproved, campaign.StatusLive, campaign.StatusCompleted:
		return passStyle.Render(string(status))
	case campaign.StatusDraft, campaign.StatusArchived:
		return labelStyle.Render(string(status))
	default:
		return warnStyle.Render(string(status))
	}
}
