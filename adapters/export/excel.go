package export

import (
	"fmt"

	"agroyield/domain/yield"

	"github.com/xuri/excelize/v2"
)

// Workbook renders the report as an Excel workbook with one sheet per
// artifact: each aggregate table, the normalized observations, the crop
// comparison, and the parcel ranking.
func (r *Report) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()

	first := true
	addSheet := func(name string) error {
		if first {
			// excelize always starts with one default sheet; rename it
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
			first = false
			return nil
		}
		_, err := f.NewSheet(name)
		return err
	}

	writeRows := func(sheet string, rows [][]string) error {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return err
			}
		}
		return nil
	}

	for _, table := range r.Aggregates {
		sheet := sheetNameFor(table.Key)
		if err := addSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}
		rows := [][]string{aggregateHeader}
		for _, row := range table.Rows() {
			rows = append(rows, aggregateRow(row))
		}
		if err := writeRows(sheet, rows); err != nil {
			return nil, fmt.Errorf("failed to fill sheet %s: %w", sheet, err)
		}
	}

	if len(r.Normalized) > 0 {
		if err := addSheet("Normalized"); err != nil {
			return nil, fmt.Errorf("failed to add sheet Normalized: %w", err)
		}
		rows := [][]string{normalizedHeader}
		for _, n := range r.Normalized {
			rows = append(rows, normalizedRow(n))
		}
		if err := writeRows("Normalized", rows); err != nil {
			return nil, fmt.Errorf("failed to fill sheet Normalized: %w", err)
		}
	}

	if r.Comparison.Status != "" {
		if err := addSheet("Comparison"); err != nil {
			return nil, fmt.Errorf("failed to add sheet Comparison: %w", err)
		}
		computed := r.Comparison.Computed()
		rows := [][]string{
			{"status", string(r.Comparison.Status)},
			{"f_statistic", formatStat(r.Comparison.FStatistic, computed)},
			{"p_value", formatStat(r.Comparison.PValue, computed)},
			{"alpha", formatFloat(r.Comparison.Alpha)},
			{"significant", fmt.Sprintf("%t", r.Comparison.Significant)},
		}
		for _, g := range r.Comparison.Groups {
			rows = append(rows, []string{"group:" + string(g.Crop), fmt.Sprintf("%d", g.Count)})
		}
		if err := writeRows("Comparison", rows); err != nil {
			return nil, fmt.Errorf("failed to fill sheet Comparison: %w", err)
		}
	}

	if len(r.Ranking.Entries) > 0 || len(r.Ranking.Unranked) > 0 {
		if err := addSheet("Ranking"); err != nil {
			return nil, fmt.Errorf("failed to add sheet Ranking: %w", err)
		}
		rows := [][]string{rankingHeader}
		for _, e := range r.Ranking.Entries {
			rows = append(rows, rankingRow(e))
		}
		for _, id := range r.Ranking.Unranked {
			rows = append(rows, []string{"", id, undefined, "unranked"})
		}
		if err := writeRows("Ranking", rows); err != nil {
			return nil, fmt.Errorf("failed to fill sheet Ranking: %w", err)
		}
	}

	if first {
		return nil, fmt.Errorf("report has no exportable content")
	}
	return f, nil
}

// WriteWorkbook renders the workbook and saves it to path
func (r *Report) WriteWorkbook(path string) error {
	f, err := r.Workbook()
	if err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func sheetNameFor(key yield.GroupKey) string {
	switch key {
	case yield.GroupByParcel:
		return "ByParcel"
	case yield.GroupByCrop:
		return "ByCrop"
	case yield.GroupByYear:
		return "ByYear"
	case yield.GroupByCropYear:
		return "ByCropYear"
	case yield.GroupByParcelCrop:
		return "ByParcelCrop"
	}
	return string(key)
}
