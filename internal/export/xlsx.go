package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"pagecrafter/internal/domain"
)

const documentSheet = "Document"

// DocumentXLSX writes a report document as a workbook: title and author on
// top, then one row per section.
func DocumentXLSX(doc domain.ReportDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", documentSheet); err != nil {
		return nil, fmt.Errorf("export.DocumentXLSX: %w", err)
	}

	rows := [][]interface{}{
		{"Title", doc.Title},
		{"Author", doc.Author},
		{},
		{"#", "Heading", "Content"},
	}
	for i, s := range doc.Sections {
		rows = append(rows, []interface{}{i + 1, s.Heading, s.Content})
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("export.DocumentXLSX: %w", err)
		}
		if err := f.SetSheetRow(documentSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("export.DocumentXLSX: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export.DocumentXLSX: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return nil, fmt.Errorf("export.DocumentXLSX: %w", err)
	}
	_ = f.SetCellStyle(documentSheet, "A1", "A2", bold)
	_ = f.SetCellStyle(documentSheet, "A4", "C4", bold)
	if n := len(doc.Sections); n > 0 {
		_ = f.SetCellStyle(documentSheet, "C5", fmt.Sprintf("C%d", 4+n), wrap)
	}
	_ = f.SetColWidth(documentSheet, "B", "B", 32)
	_ = f.SetColWidth(documentSheet, "C", "C", 100)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export.DocumentXLSX: %w", err)
	}
	return buf.Bytes(), nil
}
