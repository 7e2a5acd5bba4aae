package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ExportMode selects the scope of a CSV report.
type ExportMode string

const (
	ExportMonth ExportMode = "month"
	ExportYear  ExportMode = "year"
)

var (
	ErrNoExportData      = errors.New("no entries in selected period")
	ErrInvalidExportMode = errors.New("invalid export mode")
)

func (m ExportMode) Valid() bool {
	return m == ExportMonth || m == ExportYear
}

// SelectForExport filters entries by date prefix: "YYYY-MM" for month mode,
// "YYYY" for year mode. It returns the selected rows and their amount total.
// An empty selection is a reportable condition, not a silent empty export.
func SelectForExport(entries []Entry, mode ExportMode, month, year int) ([]Entry, int64, error) {
	var prefix string
	switch mode {
	case ExportMonth:
		prefix = fmt.Sprintf("%04d-%02d", year, month)
	case ExportYear:
		prefix = fmt.Sprintf("%04d", year)
	default:
		return nil, 0, ErrInvalidExportMode
	}

	var rows []Entry
	var total int64
	for _, e := range entries {
		if strings.HasPrefix(e.Date.String(), prefix) {
			rows = append(rows, e)
			total += e.Amount
		}
	}
	if len(rows) == 0 {
		return nil, 0, ErrNoExportData
	}
	return rows, total, nil
}

// WriteCSV serializes export rows as UTF-8 CSV prefixed with a byte-order
// marker so spreadsheet tools render the Vietnamese text correctly. Columns:
// date, description, category label, amount; a trailing total row closes the
// report.
func WriteCSV(w io.Writer, rows []Entry, total int64) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Ngày", "Mô tả", "Danh mục", "Số tiền"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range rows {
		rec := []string{e.Date.String(), e.Description, e.Category.Label(), strconv.FormatInt(e.Amount, 10)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := cw.Write([]string{""}); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}
	if err := cw.Write([]string{"Tổng cộng", "", "", strconv.FormatInt(total, 10)}); err != nil {
		return fmt.Errorf("write total: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName names the downloadable report by its scope.
func ExportFileName(mode ExportMode) string {
	return "Bao_cao_" + string(mode) + ".csv"
}
