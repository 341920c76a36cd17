package export

import (
	"fmt"
	"strings"

	"agroyield/domain/yield"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// methodologyNote explains the percent-of-mean metric to report readers
const methodologyNote = "Percent-of-mean = (observed yield / mean yield of the " +
	"same crop and year) × 100. 100% is the cohort average; values above " +
	"100% are above average, values below are under average. Missing " +
	"measurements are excluded from all statistics, never counted as zero."

// Markdown renders the report as a markdown document
func (r *Report) Markdown() string {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = "Yield Analysis Report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt)
	}
	if r.SnapshotVersion != "" {
		fmt.Fprintf(&b, "Dataset version: `%s`\n\n", r.SnapshotVersion)
	}

	for _, table := range r.Aggregates {
		fmt.Fprintf(&b, "## Aggregates by %s\n\n", table.Key)
		writeMarkdownTable(&b, aggregateHeader, func(emit func([]string)) {
			for _, row := range table.Rows() {
				emit(aggregateRow(row))
			}
		})
	}

	if r.Comparison.Status != "" {
		b.WriteString("## Crop comparison (one-way ANOVA)\n\n")
		switch r.Comparison.Status {
		case yield.ComparisonComputed:
			verdict := "no statistically significant difference between crop means"
			if r.Comparison.Significant {
				verdict = "statistically significant difference between crop means"
			}
			fmt.Fprintf(&b, "F = %s, p = %s (α = %s): %s.\n\n",
				formatFloat(r.Comparison.FStatistic),
				formatFloat(r.Comparison.PValue),
				formatFloat(r.Comparison.Alpha),
				verdict)
		case yield.ComparisonInsufficientData:
			b.WriteString("Not enough data: the test needs at least two crops with two valid observations each.\n\n")
		case yield.ComparisonUndefined:
			b.WriteString("Test undefined: all compared groups have zero within-group variance.\n\n")
		}
		for _, g := range r.Comparison.Groups {
			fmt.Fprintf(&b, "- %s: %d valid observations\n", g.Crop, g.Count)
		}
		b.WriteString("\n")
	}

	if len(r.Ranking.Entries) > 0 {
		b.WriteString("## Parcel leaderboard\n\n")
		writeMarkdownTable(&b, rankingHeader, func(emit func([]string)) {
			for _, e := range r.Ranking.Entries {
				emit(rankingRow(e))
			}
		})
		if len(r.Ranking.Unranked) > 0 {
			fmt.Fprintf(&b, "Unranked (no defined metric): %s\n\n", strings.Join(r.Ranking.Unranked, ", "))
		}
	}

	b.WriteString("## Methodology\n\n")
	b.WriteString(methodologyNote)
	b.WriteString("\n")

	return b.String()
}

// HTML renders the markdown report to HTML
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

func writeMarkdownTable(b *strings.Builder, header []string, rows func(emit func([]string))) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	rows(func(cells []string) {
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	})
	b.WriteString("\n")
}
