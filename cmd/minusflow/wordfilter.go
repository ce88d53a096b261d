package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkrasilnikov/minusflow/internal/cli"
	"github.com/mkrasilnikov/minusflow/internal/common"
	"github.com/mkrasilnikov/minusflow/internal/engine"
	"github.com/mkrasilnikov/minusflow/internal/source"
)

func wordFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordfilter",
		Short: "Suggest minus-words from per-word spend statistics",
		Long: `Wordfilter aggregates a query report into per-word cost rollups, sends the
most expensive words to the AI filter and reports confidence-tiered
minus-word candidates. Words appearing in converting queries are derived as
the safe list and never suggested.`,
		RunE: runWordFilter,
	}

	cmd.Flags().StringP("input", "i", "", "path to the query report (CSV or JSON)")
	cmd.Flags().String("business-description", "", "what the advertised business does")
	cmd.Flags().StringSlice("safe-words", nil, "extra words that must never be suggested")
	cmd.Flags().Bool("json", false, "print the raw JSON result instead of the report")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runWordFilter(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := loggerFromViper()

	input, _ := cmd.Flags().GetString("input")
	asJSON, _ := cmd.Flags().GetBool("json")
	extraSafe, _ := cmd.Flags().GetStringSlice("safe-words")

	description, _ := cmd.Flags().GetString("business-description")
	if description == "" {
		description = viper.GetString("project.business_description")
	}

	records, err := loadCorpus(ctx, input, logger)
	if err != nil {
		return common.NewUserError("failed to load query report", err)
	}

	words := source.AggregateWordStats(records)
	safeWords := append(source.DeriveSafeWords(records), extraSafe...)

	eng, err := buildEngine(logger)
	if err != nil {
		return err
	}

	resp, err := eng.FilterWords(ctx, engine.WordFilterRequest{
		BusinessDescription: description,
		SafeWords:           safeWords,
		Words:               words,
	})
	if err != nil {
		return err
	}

	if asJSON {
		out, marshalErr := json.MarshalIndent(resp.Suggestions, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Println(cli.RenderWordSuggestions(resp.Suggestions))
	return nil
}
