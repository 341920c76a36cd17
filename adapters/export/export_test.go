package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"agroyield/app"
	"agroyield/domain/yield"
	"agroyield/internal/analysis"
	"agroyield/internal/testkit"
)

func reportFixture(t *testing.T) *Report {
	t.Helper()
	snap, err := testkit.NewSnapshot(testkit.DefaultConfig())
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}
	svc := app.NewAnalysisService(analysis.NewEngine(), analysis.DefaultAlpha, nil)
	ov, err := svc.Overview(context.Background(), snap)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	return &Report{
		Title:           "Season Report",
		GeneratedAt:     snap.CapturedAt(),
		SnapshotVersion: snap.Version(),
		Aggregates:      []*yield.AggregateTable{ov.ByCrop, ov.ByYear},
		Normalized:      ov.Normalized,
		Comparison:      ov.Comparison,
		Ranking:         ov.ParcelRanking,
	}
}

func TestWriteAggregateCSV(t *testing.T) {
	snap, err := testkit.NewSnapshot(testkit.DefaultConfig())
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}
	table, err := analysis.NewEngine().Aggregate(snap, yield.GroupByCrop, yield.Filters{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteAggregateCSV(&buf, table); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1+table.Len() {
		t.Fatalf("expected header plus %d rows, got %d lines", table.Len(), len(lines))
	}
	if lines[0] != "group,count,missing,mean,median,std_dev,min,max" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "WHEAT,36,0,") {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
}

func TestWriteAggregateCSV_UndefinedStats(t *testing.T) {
	snap, err := yield.NewSnapshot([]yield.Observation{
		{Parcel: "P1", Crop: "WHEAT", Year: 2023, Yield: 6},
		{Parcel: "P2", Crop: "CORN", Year: 2023, Missing: true},
	})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	table, err := analysis.NewEngine().Aggregate(snap, yield.GroupByCrop, yield.Filters{})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteAggregateCSV(&buf, table); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	// Single observation: stddev undefined. All missing: everything undefined.
	if !strings.Contains(out, "WHEAT,1,0,6.000,6.000,n/a,6.000,6.000") {
		t.Fatalf("unexpected wheat row in:\n%s", out)
	}
	if !strings.Contains(out, "CORN,0,1,n/a,n/a,n/a,n/a,n/a") {
		t.Fatalf("unexpected corn row in:\n%s", out)
	}
}

func TestWriteRankingCSV_UnrankedRows(t *testing.T) {
	ranking := yield.Ranking{
		Direction: yield.Descending,
		Entries: []yield.RankedEntry{
			{ID: "P1", Metric: 112.5, Rank: 1, Tier: yield.TierTop},
		},
		Unranked: []string{"P9"},
	}

	var buf bytes.Buffer
	if err := WriteRankingCSV(&buf, ranking); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1] != "1,P1,112.500,top" {
		t.Fatalf("unexpected ranked row: %s", lines[1])
	}
	if lines[2] != ",P9,n/a,unranked" {
		t.Fatalf("unexpected unranked row: %s", lines[2])
	}
}

func TestWriteComparisonCSV(t *testing.T) {
	result := yield.ComparisonResult{
		Status: yield.ComparisonInsufficientData,
		Alpha:  0.05,
		Groups: []yield.GroupSampleSize{{Crop: "WHEAT", Count: 1}},
	}

	var buf bytes.Buffer
	if err := WriteComparisonCSV(&buf, result); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "status,insufficient_data") {
		t.Fatalf("missing status row in:\n%s", out)
	}
	if !strings.Contains(out, "f_statistic,n/a") {
		t.Fatalf("the statistic must be n/a when no test ran:\n%s", out)
	}
	if !strings.Contains(out, "group:WHEAT,1") {
		t.Fatalf("missing group sample size in:\n%s", out)
	}
}

func TestWorkbook_Sheets(t *testing.T) {
	report := reportFixture(t)

	f, err := report.Workbook()
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	defer f.Close()

	want := []string{"ByCrop", "ByYear", "Normalized", "Comparison", "Ranking"}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, got)
	}
	for i, name := range want {
		if got[i] != name {
			t.Fatalf("expected sheets %v, got %v", want, got)
		}
	}

	// The default "Sheet1" must have been renamed, not left alongside
	if idx, _ := f.GetSheetIndex("Sheet1"); idx >= 0 {
		t.Fatal("default sheet was not renamed")
	}

	value, err := f.GetCellValue("ByCrop", "A1")
	if err != nil {
		t.Fatalf("cell read: %v", err)
	}
	if value != "group" {
		t.Fatalf("expected header cell 'group', got %q", value)
	}
}

func TestWorkbook_Empty(t *testing.T) {
	if _, err := (&Report{}).Workbook(); err == nil {
		t.Fatal("expected an error for a report with no content")
	}
}

func TestWriteWorkbook(t *testing.T) {
	report := reportFixture(t)
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := report.WriteWorkbook(path); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestMarkdownReport(t *testing.T) {
	report := reportFixture(t)

	md := report.Markdown()
	for _, want := range []string{
		"# Season Report",
		"## Aggregates by crop",
		"## Crop comparison (one-way ANOVA)",
		"## Parcel leaderboard",
		"## Methodology",
		"statistically significant difference",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestHTMLReport(t *testing.T) {
	report := reportFixture(t)

	out := string(report.HTML())
	if !strings.Contains(out, "<html") {
		t.Fatalf("expected a complete HTML page, got:\n%.200s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Fatalf("expected rendered tables, got:\n%.200s", out)
	}
}
