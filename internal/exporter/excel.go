package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes the sections to w as a workbook with one sheet per
// section.
func WriteXLSX(w io.Writer, sections []Section) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, section := range sections {
		sheet := sheetName(section.Title, i)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
			}
		}
		if err := writeSheet(f, sheet, section); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", sheet, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, section Section) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	fields := fieldColumns(section.Series)

	header := make([]interface{}, 0, len(fields)+1)
	header = append(header, section.Title)
	for _, field := range fields {
		header = append(header, field)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, point := range section.Series {
		row := make([]interface{}, 0, len(fields)+1)
		row = append(row, point.Name)
		for _, field := range fields {
			row = append(row, point.Value(field))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	return sw.Flush()
}

// sheetName keeps titles within Excel's 31-char sheet name limit.
func sheetName(title string, index int) string {
	if title == "" {
		return fmt.Sprintf("Sheet%d", index+1)
	}
	if len(title) > 31 {
		return title[:31]
	}
	return title
}
