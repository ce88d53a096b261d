package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkrasilnikov/minusflow/internal/cli"
	"github.com/mkrasilnikov/minusflow/internal/common"
	"github.com/mkrasilnikov/minusflow/internal/engine"
	"github.com/mkrasilnikov/minusflow/internal/service"
	"github.com/mkrasilnikov/minusflow/internal/source"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Triage a search query report into target / trash / review",
		Long: `Analyze loads a Yandex.Direct search query report (CSV or JSON), ranks the
queries by cost, classifies the most expensive slice and reports the trash
queries, suggested minus-words and potential savings.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("input", "i", "", "path to the query report (CSV or JSON)")
	cmd.Flags().String("business-description", "", "what the advertised business does")
	cmd.Flags().Float64("target-cpl", 0, "target cost per lead; queries above it are wasteful")
	cmd.Flags().Bool("ai", false, "classify with the configured AI provider")
	cmd.Flags().Bool("fallback", false, "fall back to heuristic rules if the AI call fails")
	cmd.Flags().Bool("clusters", false, "include keyword and phrase clusters")
	cmd.Flags().Bool("json", false, "print the raw JSON result instead of the report")
	cmd.Flags().Bool("no-save", false, "do not record the run in analysis history")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := loggerFromViper()

	input, _ := cmd.Flags().GetString("input")
	useAI, _ := cmd.Flags().GetBool("ai")
	fallback, _ := cmd.Flags().GetBool("fallback")
	withClusters, _ := cmd.Flags().GetBool("clusters")
	asJSON, _ := cmd.Flags().GetBool("json")
	noSave, _ := cmd.Flags().GetBool("no-save")

	// Flags override the configured project brief.
	brief := source.NewStaticBrief(
		viper.GetString("project.business_description"),
		viper.GetFloat64("project.target_cpl"),
	)
	description, _ := cmd.Flags().GetString("business-description")
	if description == "" {
		description = brief.BusinessDescription()
	}
	targetCpl := brief.TargetCpl()
	if v, _ := cmd.Flags().GetFloat64("target-cpl"); v > 0 {
		targetCpl = &v
	}

	records, err := loadCorpus(ctx, input, logger)
	if err != nil {
		return common.NewUserError("failed to load query report", err)
	}

	eng, err := buildEngine(logger)
	if err != nil {
		return err
	}

	resp, err := eng.Analyze(ctx, engine.AnalyzeRequest{
		TargetCpl:           targetCpl,
		BusinessDescription: description,
		Queries:             records,
		UseAI:               useAI,
		FallbackToHeuristic: fallback,
		WithClusters:        withClusters,
	})
	if err != nil {
		return err
	}

	if !noSave {
		store, storeErr := initStorage(ctx)
		if storeErr != nil {
			return storeErr
		}
		defer func() { _ = store.Close() }()

		snapshot := &service.AnalysisSnapshot{
			BusinessDescription: description,
			Warning:             resp.Warning,
			Result:              resp.Result,
			RawQueriesCount:     resp.RawQueriesCount,
			FilteredCount:       resp.FilteredCount,
			UsedAI:              resp.UsedAI,
		}
		if saveErr := store.SaveAnalysis(ctx, snapshot); saveErr != nil {
			return fmt.Errorf("failed to save analysis: %w", saveErr)
		}
		logger.Info("analysis saved", "id", snapshot.ID)
	}

	if asJSON {
		out, marshalErr := json.MarshalIndent(resp.Result, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Println(cli.RenderAnalysis(resp.Result, resp.Warning))
	if resp.FilteredCount > 0 {
		cmd.Println(cli.SubtleStyle.Render(fmt.Sprintf(
			"%d of %d queries analyzed; %d low-cost queries excluded.",
			resp.Result.TotalQueries, resp.RawQueriesCount, resp.FilteredCount)))
	}
	return nil
}
