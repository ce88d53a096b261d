package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkrasilnikov/minusflow/internal/cli"
	"github.com/mkrasilnikov/minusflow/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [words...]",
		Short: "Write a minus-word list in the ad platform import format",
		Long: `Export renders minus-words one per line, each prefixed with a hyphen, the
exact shape the negative-keyword import accepts. Words come from the
arguments, or from the suggestions of a saved analysis via --analysis.`,
		RunE: runExport,
	}

	cmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	cmd.Flags().String("analysis", "", "export the suggested minus-words of a saved analysis by ID")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	words := args
	if analysisID, _ := cmd.Flags().GetString("analysis"); analysisID != "" {
		store, err := initStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		snapshot, err := store.GetAnalysis(ctx, analysisID)
		if err != nil {
			return err
		}
		for _, s := range snapshot.Result.SuggestedMinusWords {
			words = append(words, s.Word)
		}
	}
	if len(words) == 0 {
		return errors.New("nothing to export: pass words as arguments or use --analysis")
	}

	text := export.Format(words)

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := os.WriteFile(output, []byte(text), 0600); err != nil {
			return fmt.Errorf("failed to write export file: %w", err)
		}
		cmd.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d minus-words to %s", len(words), output)))
		return nil
	}

	cmd.Print(text)
	return nil
}
