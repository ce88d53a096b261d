package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkrasilnikov/minusflow/internal/cli"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or show saved analysis runs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent analyses, newest first",
		RunE:  runHistoryList,
	}
	list.Flags().Int("limit", 20, "maximum number of analyses to list")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one analysis in full",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}
	show.Flags().Bool("json", false, "print the raw JSON snapshot")

	cmd.AddCommand(list)
	cmd.AddCommand(show)
	return cmd
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	snapshots, err := store.ListAnalyses(ctx, limit)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		cmd.Println("No analyses recorded yet.")
		return nil
	}

	cmd.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-36s %-20s %8s %10s  %s",
		"ID", "Created", "Queries", "Wasted ₽", "Business")))
	for _, s := range snapshots {
		wasted := 0.0
		analyzed := 0
		if s.Result != nil {
			wasted = s.Result.Summary.WastedCost
			analyzed = s.Result.TotalQueries
		}
		cmd.Printf("%-36s %-20s %8d %10.2f  %s\n",
			s.ID,
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			analyzed,
			wasted,
			s.BusinessDescription)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	snapshot, err := store.GetAnalysis(ctx, args[0])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out, marshalErr := json.MarshalIndent(snapshot, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Println(cli.RenderAnalysis(snapshot.Result, snapshot.Warning))
	return nil
}
