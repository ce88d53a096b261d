package cli

import (
	"fmt"
	"strings"

	"github.com/mkrasilnikov/minusflow/internal/model"
)

// maxReportRows bounds each table in the terminal report; the full data is
// always available through the JSON output and the history store.
const maxReportRows = 15

// RenderAnalysis renders the triage result as a terminal report.
func RenderAnalysis(result *model.AnalysisResult, warning string) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Query Triage Report"))
	b.WriteString("\n")

	if warning != "" {
		b.WriteString(FormatWarning(warning))
		b.WriteString("\n\n")
	}

	summary := fmt.Sprintf("%s Target: %d    %s Trash: %d    %s Review: %d\n\n",
		TargetIcon, len(result.TargetQueries),
		TrashIcon, len(result.TrashQueries),
		WarningIcon, len(result.ReviewQueries)) +
		fmt.Sprintf("Queries analyzed:  %d\n", result.TotalQueries) +
		fmt.Sprintf("Total cost:        %.2f ₽\n", result.Summary.TotalCost) +
		fmt.Sprintf("Wasted cost:       %.2f ₽\n", result.Summary.WastedCost) +
		fmt.Sprintf("Potential savings: %.2f ₽", result.Summary.PotentialSavings)
	b.WriteString(RenderBox("Summary", summary))
	b.WriteString("\n")

	if len(result.SuggestedMinusWords) > 0 {
		b.WriteString(renderSuggestions(result.SuggestedMinusWords))
	}
	if len(result.TrashQueries) > 0 {
		b.WriteString(renderTrash(result.TrashQueries))
	}
	if len(result.Clusters) > 0 {
		b.WriteString(renderClusters(result.Clusters))
	}

	return b.String()
}

func renderSuggestions(suggestions []model.MinusWordSuggestion) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Suggested minus-words"))
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-25s %10s %8s  %s", "Word", "Savings ₽", "Queries", "Reason")))
	b.WriteString("\n")

	for i, s := range suggestions {
		if i >= maxReportRows {
			b.WriteString(SubtleStyle.Render(fmt.Sprintf("... and %d more", len(suggestions)-maxReportRows)))
			b.WriteString("\n")
			break
		}
		line := fmt.Sprintf("%-25s %10.2f %8d  %s", s.Word, s.PotentialSavings, s.QueriesAffected, s.Reason)
		if s.Confidence.AutoApply() {
			line = SuccessStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func renderTrash(trash []model.AnalyzedQuery) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Trash queries"))
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-40s %10s  %s", "Query", "Cost ₽", "Reason")))
	b.WriteString("\n")

	for i, q := range trash {
		if i >= maxReportRows {
			b.WriteString(SubtleStyle.Render(fmt.Sprintf("... and %d more", len(trash)-maxReportRows)))
			b.WriteString("\n")
			break
		}
		fmt.Fprintf(&b, "%-40s %10.2f  %s\n", q.Query, q.Metrics.Cost, q.Reason)
	}
	b.WriteString("\n")
	return b.String()
}

func renderClusters(clusters []model.QueryCluster) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Clusters"))
	b.WriteString("\n")
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-25s %8s %10s %7s %7s %7s", "Keyword", "Queries", "Cost ₽", "Target", "Trash", "Review")))
	b.WriteString("\n")

	for i, cl := range clusters {
		if i >= maxReportRows {
			b.WriteString(SubtleStyle.Render(fmt.Sprintf("... and %d more", len(clusters)-maxReportRows)))
			b.WriteString("\n")
			break
		}
		keyword := cl.Keyword
		if cl.IsBigram {
			keyword = "\"" + keyword + "\""
		}
		fmt.Fprintf(&b, "%-25s %8d %10.2f %7d %7d %7d\n",
			keyword, cl.Queries, cl.Cost, cl.TargetCount, cl.TrashCount, cl.ReviewCount)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderWordSuggestions renders word-filter output, split into the
// auto-apply tier and the review tier.
func RenderWordSuggestions(suggestions []model.MinusWordSuggestion) string {
	var auto, review []model.MinusWordSuggestion
	for _, s := range suggestions {
		if s.Confidence.AutoApply() {
			auto = append(auto, s)
		} else {
			review = append(review, s)
		}
	}

	var b strings.Builder
	b.WriteString(FormatTitle("Word Filter Report"))
	b.WriteString("\n")

	render := func(title string, list []model.MinusWordSuggestion) {
		if len(list) == 0 {
			return
		}
		b.WriteString(TitleStyle.Render(title))
		b.WriteString("\n")
		for _, s := range list {
			fmt.Fprintf(&b, "%-25s %10.2f ₽  [%s] %s\n", s.Word, s.PotentialSavings, s.Confidence, s.Reason)
		}
		b.WriteString("\n")
	}

	render("Safe to apply (high confidence)", auto)
	render("Needs review (medium/low confidence)", review)
	return b.String()
}
