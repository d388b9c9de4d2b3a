package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"bizpulse/pkg/contracts/domain"
)

// columnFields maps upload column names to record field setters. Uploads use
// the Portuguese column names of the source spreadsheets.
var columnFields = map[string]func(*domain.BalanceRecord, float64){
	"RECEBER_VP":      func(r *domain.BalanceRecord, v float64) { r.ReceivableVP = v },
	"PAGAR_VP":        func(r *domain.BalanceRecord, v float64) { r.PayableVP = v },
	"RECEBER_TGN":     func(r *domain.BalanceRecord, v float64) { r.ReceivableTGN = v },
	"PAGAR_TGN":       func(r *domain.BalanceRecord, v float64) { r.PayableTGN = v },
	"TOTAL_RECEBER":   func(r *domain.BalanceRecord, v float64) { r.TotalReceivable = v },
	"TOTAL_A_PAGAR":   func(r *domain.BalanceRecord, v float64) { r.TotalPayable = v },
	"SALDO_DIARIO":    func(r *domain.BalanceRecord, v float64) { r.DailyBalance = v },
	"SALDO_ACUMULADO": func(r *domain.BalanceRecord, v float64) { r.AccumulatedBalance = v },
}

const dateColumn = "DATA"

// ParseFile reads an uploaded balance file, dispatching on extension.
// .xlsx/.xlsm go through excelize, everything else is treated as CSV.
func ParseFile(filePath string) ([]domain.BalanceRecord, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		return ParseExcelFile(filePath)
	default:
		return ParseCSVFile(filePath)
	}
}

// ParseCSVFile reads a CSV upload from disk.
func ParseCSVFile(filePath string) ([]domain.BalanceRecord, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV extracts balance records from CSV data. The header row is located
// by name rather than position, so leading banner rows are tolerated. Cell
// values that fail numeric coercion contribute zero; only an unreadable
// stream or a missing date column is an error.
func ParseCSV(r io.Reader) ([]domain.BalanceRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return recordsFromRows(rows)
}

// ParseExcelFile extracts balance records from the first sheet of a workbook
// that carries the expected columns.
func ParseExcelFile(filePath string) ([]domain.BalanceRecord, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var lastErr error
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			lastErr = err
			continue
		}
		records, err := recordsFromRows(rows)
		if err != nil {
			lastErr = err
			continue
		}
		slog.Debug("parsed balance sheet",
			slog.String("sheet_name", name),
			slog.Int("record_count", len(records)))
		return records, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("no sheet with balance data: %w", lastErr)
	}
	return nil, fmt.Errorf("no sheet with balance data")
}

func recordsFromRows(rows [][]string) ([]domain.BalanceRecord, error) {
	headerRow, columnMap := findHeader(rows)
	if headerRow < 0 {
		return nil, fmt.Errorf("could not find header row with %s column", dateColumn)
	}

	dateIdx := columnMap[dateColumn]
	records := make([]domain.BalanceRecord, 0, len(rows)-headerRow-1)

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if rowIsEmpty(row) {
			continue
		}
		// Summary rows appended below the data.
		if isSummaryRow(row, dateIdx) {
			continue
		}

		rec := domain.BalanceRecord{}
		if dateIdx < len(row) {
			rec.Date = strings.TrimSpace(row[dateIdx])
		}
		for col, set := range columnFields {
			idx, ok := columnMap[col]
			if !ok || idx >= len(row) {
				continue
			}
			set(&rec, domain.CoerceFloat(row[idx]))
		}
		records = append(records, rec)
	}

	return records, nil
}

// findHeader locates the row naming the date column and maps every known
// column name to its position.
func findHeader(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		columnMap := make(map[string]int, len(columnFields)+1)
		for j, cell := range row {
			name := strings.ToUpper(strings.TrimSpace(cell))
			if name == dateColumn {
				columnMap[dateColumn] = j
				continue
			}
			if _, known := columnFields[name]; known {
				columnMap[name] = j
			}
		}
		if _, ok := columnMap[dateColumn]; ok {
			return i, columnMap
		}
	}
	return -1, nil
}

// isSummaryRow detects the TOTAL lines spreadsheets append below the data,
// whether the marker sits in the date column or the first cell.
func isSummaryRow(row []string, dateIdx int) bool {
	if len(row) == 0 {
		return false
	}
	if strings.Contains(strings.ToUpper(row[0]), "TOTAL") {
		return true
	}
	if dateIdx < len(row) && strings.Contains(strings.ToUpper(row[dateIdx]), "TOTAL") {
		return true
	}
	return false
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
