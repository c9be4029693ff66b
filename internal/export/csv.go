package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"pagecrafter/internal/domain"
)

// BOM is the UTF-8 byte order mark prepended for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var documentColumns = []string{"Section", "Heading", "Content"}

// DocumentCSV writes one row per section after a header row.
func DocumentCSV(doc domain.ReportDocument) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(documentColumns); err != nil {
		return nil, fmt.Errorf("export.DocumentCSV: %w", err)
	}
	for i, s := range doc.Sections {
		if err := w.Write([]string{strconv.Itoa(i + 1), sanitizeCell(s.Heading), sanitizeCell(s.Content)}); err != nil {
			return nil, fmt.Errorf("export.DocumentCSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export.DocumentCSV: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeCell neutralises values a spreadsheet would evaluate as formulas.
func sanitizeCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}
