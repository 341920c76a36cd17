package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"agroyield/adapters/dataio"
	"agroyield/adapters/export"
	"agroyield/app"
	"agroyield/domain/core"
	"agroyield/domain/yield"
	"agroyield/internal"
	"agroyield/internal/analysis"
	"agroyield/internal/config"
)

func main() {
	_ = godotenv.Load()

	var (
		input      = flag.String("in", "", "input yield table (.csv or .xlsx)")
		workbook   = flag.String("xlsx", "", "write analysis workbook to this path")
		reportPath = flag.String("report", "", "write HTML report to this path")
		limit      = flag.Int("top", 10, "leaderboard size")
	)
	flag.Parse()

	logger := internal.NewDefaultLogger()

	cfg, cfgErr := config.Load()
	alpha := analysis.DefaultAlpha
	rejectZero := true
	if cfgErr == nil {
		alpha = cfg.Analysis.Alpha
		rejectZero = cfg.Data.RejectZeroYields
		if *input == "" {
			*input = cfg.Data.File
		}
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: cli -in yield_data.csv [-xlsx out.xlsx] [-report out.html] [-top N]")
		os.Exit(2)
	}

	reader := dataio.NewDataReader(*input, dataio.Options{RejectZeroYields: rejectZero})
	snapshot, err := reader.ReadSnapshot()
	if err != nil {
		logger.Error("failed to load %s: %v", *input, err)
		os.Exit(1)
	}
	logger.Info("loaded %d observations (version %s)", snapshot.Len(), snapshot.Version())

	service := app.NewAnalysisService(analysis.NewEngine(), alpha, logger)
	overview, err := service.Overview(context.Background(), snapshot)
	if err != nil {
		logger.Error("analysis failed: %v", err)
		os.Exit(1)
	}

	printSummary(snapshot, overview, *limit)

	report := &export.Report{
		GeneratedAt:     core.Now(),
		SnapshotVersion: snapshot.Version(),
		Aggregates: []*yield.AggregateTable{
			overview.ByCrop, overview.ByYear, overview.ByParcel,
		},
		Normalized: overview.Normalized,
		Comparison: overview.Comparison,
		Ranking:    overview.ParcelRanking,
	}

	if *workbook != "" {
		if err := report.WriteWorkbook(*workbook); err != nil {
			logger.Error("failed to write workbook: %v", err)
			os.Exit(1)
		}
		logger.Info("workbook written to %s", *workbook)
	}
	if *reportPath != "" {
		if err := os.WriteFile(*reportPath, report.HTML(), 0o644); err != nil {
			logger.Error("failed to write report: %v", err)
			os.Exit(1)
		}
		logger.Info("report written to %s", *reportPath)
	}
}

func printSummary(snapshot *yield.Snapshot, overview *app.Overview, limit int) {
	minYear, maxYear := snapshot.Years()
	fmt.Printf("Dataset: %d observations, %d parcels, %d crops, %d-%d\n",
		snapshot.Len(), len(snapshot.Parcels()), len(snapshot.Crops()), minYear, maxYear)

	fmt.Println("\nMean yield by crop (t/ha):")
	for _, row := range overview.ByCrop.Rows() {
		if row.HasStats {
			fmt.Printf("  %-20s %8.2f  (n=%d, missing=%d)\n", row.Group, row.Mean, row.Count, row.MissingCount)
		} else {
			fmt.Printf("  %-20s %8s  (missing=%d)\n", row.Group, "n/a", row.MissingCount)
		}
	}

	fmt.Println("\nCrop comparison:")
	switch overview.Comparison.Status {
	case yield.ComparisonComputed:
		fmt.Printf("  F=%.4f p=%.4f significant=%t (alpha=%.2f)\n",
			overview.Comparison.FStatistic, overview.Comparison.PValue,
			overview.Comparison.Significant, overview.Comparison.Alpha)
	case yield.ComparisonInsufficientData:
		fmt.Println("  insufficient data")
	case yield.ComparisonUndefined:
		fmt.Println("  undefined test (zero within-group variance)")
	}

	fmt.Printf("\nTop parcels by mean percent-of-mean:\n")
	entries := overview.ParcelRanking.Entries
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	for _, e := range entries {
		fmt.Printf("  %2d. %-16s %7.1f%%  [%s]\n", e.Rank, e.ID, e.Metric, e.Tier)
	}
	if n := len(overview.ParcelRanking.Unranked); n > 0 {
		fmt.Printf("  (%d parcels unranked: no defined metric)\n", n)
	}
}
