// Package dataio loads tabular yield data from CSV and xlsx files into
// validated observations. Producing the table is a collaborator concern;
// the analytics core only ever sees the resulting snapshot.
package dataio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"agroyield/domain/core"
	"agroyield/domain/yield"

	"github.com/xuri/excelize/v2"
)

// Options controls ingestion behavior
type Options struct {
	// RejectZeroYields drops rows with yield <= 0, matching the upstream
	// data convention where zero means "not harvested" rather than a
	// measured zero yield.
	RejectZeroYields bool

	// Sheet is the xlsx sheet name; empty means "Sheet1"
	Sheet string
}

// DataReader reads yield observation tables from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	opts     Options
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string, opts Options) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, opts: opts}
}

// ReadObservations reads the file into validated observations. Rows missing
// parcel, crop or year are structural errors and fail the load, as are
// negative yield values; unparseable or blank yield cells are tagged
// missing, never coerced to zero.
func (r *DataReader) ReadObservations() ([]yield.Observation, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have a header row and at least one data row", r.fileType)
	}

	return r.processRows(rows)
}

// ReadSnapshot reads the file and captures the observations in a snapshot
func (r *DataReader) ReadSnapshot() (*yield.Snapshot, error) {
	obs, err := r.ReadObservations()
	if err != nil {
		return nil, err
	}
	return yield.NewSnapshot(obs)
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.opts.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// column aliases accepted in the header row, lowercased
var columnAliases = map[string]string{
	"parcel":         "parcel",
	"parcel_id":      "parcel",
	"agev_parcel_id": "parcel",
	"name":           "parcel",
	"crop":           "crop",
	"plodina":        "crop",
	"year":           "year",
	"rok":            "year",
	"yield":          "yield",
	"yield_ha":       "yield",
	"vynos":          "yield",
	"area":           "area",
	"plocha":         "area",
	"geometry":       "geometry",
}

// processRows converts raw string rows into observations
func (r *DataReader) processRows(rows [][]string) ([]yield.Observation, error) {
	columns := make(map[string]int)
	for i, header := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(header))
		if canonical, ok := columnAliases[key]; ok {
			if _, dup := columns[canonical]; !dup {
				columns[canonical] = i
			}
		}
	}
	for _, required := range []string{"parcel", "crop", "year"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("required column %q not found in header", required)
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var observations []yield.Observation
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, counting the header

		o := yield.Observation{
			Parcel:   yield.ParcelID(cell(row, "parcel")),
			Crop:     yield.Crop(cell(row, "crop")),
			Geometry: cell(row, "geometry"),
		}

		yearStr := cell(row, "year")
		if o.Parcel == "" || o.Crop == "" || yearStr == "" {
			return nil, core.NewInvalidObservationError(rowNum, "parcel, crop and year are required")
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return nil, core.NewInvalidObservationError(rowNum, fmt.Sprintf("year %q is not an integer", yearStr))
		}
		o.Year = year

		if yieldStr := cell(row, "yield"); yieldStr == "" {
			o.Missing = true
		} else if v, err := parseNumber(yieldStr); err != nil {
			o.Missing = true
		} else if v < 0 {
			return nil, core.NewInvalidObservationError(rowNum, fmt.Sprintf("yield %q is negative", yieldStr))
		} else {
			o.Yield = v
		}

		if areaStr := cell(row, "area"); areaStr != "" {
			if v, err := parseNumber(areaStr); err == nil && v > 0 {
				o.Area = v
			}
		}

		if r.opts.RejectZeroYields && !o.Missing && o.Yield == 0 {
			continue
		}

		observations = append(observations, o)
	}

	return observations, nil
}

// parseNumber accepts both dot and comma decimal separators
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}
