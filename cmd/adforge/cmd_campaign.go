package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"adforge/internal/campaign"
	"adforge/internal/conductor"
	"adforge/internal/config"
	"adforge/internal/generation"
	"adforge/internal/pipeline"
	"adforge/internal/provider"
	"adforge/internal/quality"
	"adforge/internal/store"
)

// campaignCmd is the parent command for campaign operations
var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Create and run generation campaigns",
	Long: `Campaigns bundle an objective, brand identity references, inspiration,
and deliverables, then run through the generation pipeline.

Examples:
  adforge campaign create "Summer Launch" --objective "Promote the new summer collection" --input ./summer.yaml
  adforge campaign generate <id>
  adforge campaign status <id>
  adforge campaign assets <id>`,
}

// campaignCreateCmd creates a new campaign from an input file
var campaignCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new campaign",
	Long: `Creates a campaign in draft status. Brand asset references, inspiration,
and requirements come from a YAML input file:

  brand_assets:
    logos: [logo-main]
    colors: [palette-2024]
  inspiration:
    photos: [shoot-01, shoot-02]
  requirements:
    target_audience: "Women 25-40"
    platforms:
      - name: instagram
        types: [feed-post, story]
    deliverables:
      - name: "Instagram feed hero"
        quantity: 2
      - name: "Instagram story teaser"
        quantity: 1`,
	Args: cobra.ExactArgs(1),
	RunE: runCampaignCreate,
}

// campaignGenerateCmd runs the full pipeline for a campaign
var campaignGenerateCmd = &cobra.Command{
	Use:   "generate [campaign-id]",
	Short: "Run the generation pipeline for a campaign",
	Long: `Runs brief construction, parallel asset generation, quality control,
and persistence for the given campaign. On success the campaign lands in
review status; on a fatal error it rolls back to draft.`,
	Args: cobra.ExactArgs(1),
	RunE: runCampaignGenerate,
}

// campaignStatusCmd shows one campaign
var campaignStatusCmd = &cobra.Command{
	Use:   "status [campaign-id]",
	Short: "Show campaign status and generation metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignStatus,
}

// campaignAssetsCmd lists a campaign's generated assets
var campaignAssetsCmd = &cobra.Command{
	Use:   "assets [campaign-id]",
	Short: "List the campaign's generated assets with quality verdicts",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignAssets,
}

func init() {
	campaignCreateCmd.Flags().String("objective", "", "Campaign objective (required)")
	campaignCreateCmd.Flags().String("input", "", "YAML file with brand assets, inspiration, and requirements")
	_ = campaignCreateCmd.MarkFlagRequired("objective")

	campaignGenerateCmd.Flags().Duration("timeout", 30*time.Minute, "Overall run timeout")

	campaignCmd.AddCommand(campaignCreateCmd)
	campaignCmd.AddCommand(campaignGenerateCmd)
	campaignCmd.AddCommand(campaignStatusCmd)
	campaignCmd.AddCommand(campaignAssetsCmd)
}

// campaignInput is the YAML shape of the --input file.
type campaignInput struct {
	BrandAssets  campaign.BrandAssetRefs  `yaml:"brand_assets"`
	Inspiration  campaign.InspirationRefs `yaml:"inspiration"`
	Requirements campaign.Requirements    `yaml:"requirements"`
}

func runCampaignCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	objective, _ := cmd.Flags().GetString("objective")
	inputPath, _ := cmd.Flags().GetString("input")

	var input campaignInput
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		if err := yaml.Unmarshal(data, &input); err != nil {
			return fmt.Errorf("failed to parse input file: %w", err)
		}
	}
	if len(input.Requirements.Deliverables) == 0 {
		return fmt.Errorf("campaign needs at least one deliverable (requirements.deliverables in the input file)")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	camp := &campaign.Campaign{
		ID:           uuid.NewString(),
		Name:         args[0],
		Objective:    objective,
		Status:       campaign.StatusDraft,
		BrandAssets:  input.BrandAssets,
		Inspiration:  input.Inspiration,
		Requirements: input.Requirements,
	}
	if err := st.CreateCampaign(cmd.Context(), camp); err != nil {
		return err
	}

	logger.Info("campaign created", zap.String("id", camp.ID), zap.String("name", camp.Name))
	fmt.Println(passStyle.Render("Campaign created"))
	fmt.Printf("%s %s\n", labelStyle.Render("ID:"), camp.ID)
	fmt.Printf("%s %d deliverables\n", labelStyle.Render("Scope:"), len(input.Requirements.Deliverables))
	fmt.Printf("\nRun: adforge campaign generate %s\n", camp.ID)
	return nil
}

func runCampaignGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runTimeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	// Graceful shutdown: in-flight generations finish, no new batch starts
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Println("\n" + warnStyle.Render("Cancelling run (in-flight generations will finish)..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	coord, err := buildCoordinator(ctx, cfg, st)
	if err != nil {
		return err
	}

	campaignID := args[0]
	fmt.Printf("%s %s\n", labelStyle.Render("Running pipeline for campaign"), campaignID)

	result, err := coord.Run(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("generation run failed: %w", err)
	}

	camp, err := st.GetCampaign(context.WithoutCancel(ctx), campaignID)
	if err != nil {
		return err
	}

	fmt.Println(renderRunSummary(result, camp.GenerationMetadata))
	return nil
}

func runCampaignStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	camp, err := st.GetCampaign(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(camp.Name))
	fmt.Printf("%s %s\n", labelStyle.Render("ID:"), camp.ID)
	fmt.Printf("%s %s\n", labelStyle.Render("Status:"), renderStatusBadge(camp.Status))
	fmt.Printf("%s %s\n", labelStyle.Render("Objective:"), camp.Objective)
	if camp.CreativeBrief != nil {
		fmt.Printf("%s %d asset specs\n", labelStyle.Render("Brief:"), len(camp.CreativeBrief.Assets))
	}
	if meta := camp.GenerationMetadata; meta != nil {
		fmt.Printf("%s %d/%d generated, %d failed, $%.2f, %.1fs\n",
			labelStyle.Render("Last run:"),
			meta.GeneratedAssets, meta.TotalAssets, meta.FailedAssets,
			float64(meta.TotalCostCents)/100, float64(meta.TotalTimeMS)/1000)
	}
	return nil
}

func runCampaignAssets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListCampaignAssets(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(labelStyle.Render("No generated assets yet"))
		return nil
	}

	for _, r := range records {
		verdict := labelStyle.Render("unchecked")
		if q := r.QualityResults; q != nil {
			if q.Passed {
				verdict = passStyle.Render(fmt.Sprintf("passed (%.2f)", q.Score))
			} else {
				verdict = failStyle.Render(fmt.Sprintf("failed (%.2f)", q.Score))
			}
			if q.RequiresRefinement {
				verdict += " " + warnStyle.Render("[needs refinement]")
			}
		}
		fmt.Printf("%-14s %-10s %s\n", r.Role, string(r.Status), verdict)
		fmt.Printf("  %s %s\n", labelStyle.Render("asset:"), r.AssetID)
		if q := r.QualityResults; q != nil {
			for _, f := range q.Feedback {
				fmt.Printf("  %s %s\n", labelStyle.Render("-"), f)
			}
		}
	}
	return nil
}

// openStore opens the workspace SQLite store.
func openStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.Store.DatabasePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(resolveWorkspace(), path)
	}
	return store.New(path)
}

// buildCoordinator wires the pipeline from config: provider client, conductor,
// orchestrator, and batch validator around the shared store.
func buildCoordinator(ctx context.Context, cfg *config.Config, st *store.Store) (*pipeline.Coordinator, error) {
	client, err := provider.NewFromConfig(ctx, cfg.Provider)
	if err != nil {
		return nil, err
	}

	llm := conductor.NewAnthropicClientWithConfig(conductor.AnthropicConfig{
		APIKey:    cfg.Conductor.APIKey,
		BaseURL:   cfg.Conductor.BaseURL,
		Model:     cfg.Conductor.Model,
		MaxTokens: cfg.Conductor.MaxTokens,
		Timeout:   config.ParseTimeout(cfg.Conductor.Timeout, 120*time.Second),
	})

	orch := generation.NewOrchestrator(client, generation.Config{
		MaxConcurrent: cfg.Generation.MaxConcurrent,
		Agent: generation.AgentConfig{
			MaxAttempts:     cfg.Generation.MaxAttempts,
			BackoffBase:     config.ParseTimeout(cfg.Generation.RetryBackoffBase, time.Second),
			BackoffMax:      config.ParseTimeout(cfg.Generation.RetryBackoffMax, 5*time.Minute),
			CallTimeout:     config.ParseTimeout(cfg.Generation.CallTimeout, 120*time.Second),
			MaxPromptLength: cfg.Provider.MaxPromptLength,
		},
	})

	validator := quality.NewBatchValidatorWithThresholds(cfg.Quality.BatchSize, quality.Thresholds{
		BrandAlignment: cfg.Quality.BrandAlignmentThreshold,
		VisualQuality:  cfg.Quality.VisualQualityThreshold,
	})

	stores := pipeline.Stores{Campaigns: st, Assets: st, Results: st}
	return pipeline.NewCoordinator(stores, conductor.NewAgent(llm), orch, validator,
		pipeline.WithGenerationProgress(func(p campaign.Progress) {
			fmt.Printf("\r%s %d/%d done, %d in flight, %d failed   ",
				labelStyle.Render("Generating:"), p.Completed, p.Total, p.InProgress, p.Failed)
			if p.Completed+p.Failed == p.Total {
				fmt.Println()
			}
		}),
		pipeline.WithQualityProgress(func(completed, total int) {
			fmt.Printf("\r%s %d/%d checked   ", labelStyle.Render("Quality:"), completed, total)
			if completed == total {
				fmt.Println()
			}
		}),
	), nil
}
