package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"agroyield/domain/yield"
)

// WriteAggregateCSV writes an aggregate table as a flat CSV file
func WriteAggregateCSV(w io.Writer, table *yield.AggregateTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(aggregateHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range table.Rows() {
		if err := cw.Write(aggregateRow(row)); err != nil {
			return fmt.Errorf("failed to write row for group %s: %w", row.Group, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNormalizedCSV writes normalized observations in snapshot order
func WriteNormalizedCSV(w io.Writer, normalized []yield.NormalizedObservation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(normalizedHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, n := range normalized {
		if err := cw.Write(normalizedRow(n)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRankingCSV writes ranked entries followed by unranked identifiers
func WriteRankingCSV(w io.Writer, ranking yield.Ranking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rankingHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range ranking.Entries {
		if err := cw.Write(rankingRow(e)); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", e.ID, err)
		}
	}
	for _, id := range ranking.Unranked {
		if err := cw.Write([]string{"", id, undefined, "unranked"}); err != nil {
			return fmt.Errorf("failed to write unranked row for %s: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComparisonCSV writes the comparison result as key/value rows plus the
// per-group sample sizes
func WriteComparisonCSV(w io.Writer, result yield.ComparisonResult) error {
	cw := csv.NewWriter(w)
	computed := result.Computed()
	rows := [][]string{
		{"status", string(result.Status)},
		{"f_statistic", formatStat(result.FStatistic, computed)},
		{"p_value", formatStat(result.PValue, computed)},
		{"alpha", formatFloat(result.Alpha)},
		{"significant", strconv.FormatBool(result.Significant)},
	}
	for _, g := range result.Groups {
		rows = append(rows, []string{"group:" + string(g.Crop), strconv.Itoa(g.Count)})
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write comparison row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
