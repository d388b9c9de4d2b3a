package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"bizpulse/pkg/contracts/domain"
)

// Section is one named series within an export document. A dashboard view
// exports as an ordered list of sections.
type Section struct {
	Title  string
	Series domain.MetricSeries
}

// LedgerSection converts bookkeeping lines into an exportable section.
func LedgerSection(title string, entries []domain.LedgerEntry) Section {
	series := make(domain.MetricSeries, 0, len(entries))
	for _, e := range entries {
		series = append(series, domain.NewMetricPoint(
			fmt.Sprintf("%s (%s)", e.Name, e.Type),
			map[string]float64{"Amount": e.Amount},
		))
	}
	return Section{Title: title, Series: series}
}

// CSVOptions configures CSV output.
type CSVOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel opens the file with the right
	// encoding.
	BOMPrefix bool
}

// WriteCSV writes the sections to w, each as a header row plus one row per
// point, separated by a blank line. Columns are the union of the section's
// value fields in sorted order.
func WriteCSV(w io.Writer, sections []Section, options CSVOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	for i, section := range sections {
		if i > 0 {
			// Blank separator row between sections.
			if err := cw.Write([]string{""}); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		if err := writeSection(cw, section); err != nil {
			return fmt.Errorf("failed to write section %q: %w", section.Title, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeSection(cw *csv.Writer, section Section) error {
	fields := fieldColumns(section.Series)

	header := append([]string{section.Title}, fields...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, point := range section.Series {
		row := make([]string, 0, len(fields)+1)
		row = append(row, point.Name)
		for _, field := range fields {
			row = append(row, formatFloat(point.Value(field)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// fieldColumns returns the sorted union of value fields across a series.
func fieldColumns(series domain.MetricSeries) []string {
	seen := make(map[string]bool)
	var fields []string
	for _, point := range series {
		for field := range point.Values {
			if !seen[field] {
				seen[field] = true
				fields = append(fields, field)
			}
		}
	}
	sort.Strings(fields)
	return fields
}

// formatFloat renders numbers without trailing zeros.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
