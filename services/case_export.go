package services

import (
	"bytes"
	"fmt"

	"case_docket_app_go/models"

	"github.com/xuri/excelize/v2"
)

const exportSheetCases = "Cases"

var exportHeaders = []string{
	"ID", "Client Name", "Case Status", "Date Created", "Case File", "Interim Orders File", "Proceedings",
}

// ExportCasesXLSX writes cases to a single-sheet workbook in the given order.
// The proceedings column holds the count of loaded proceedings.
func ExportCasesXLSX(cases []models.Case) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetCases); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheetCases, cell, header)
	}

	for i := range cases {
		c := &cases[i]
		row := []interface{}{
			c.ID,
			c.ClientName,
			c.CaseStatus,
			c.DateCreated.Format("2006-01-02 15:04:05"),
			derefString(c.CaseFile),
			derefString(c.InterimOrdersFile),
			len(c.Proceedings),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheetCases, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(exportSheetCases, "A1", "G1", headerStyle)
	f.SetColWidth(exportSheetCases, "A", "A", 38)
	f.SetColWidth(exportSheetCases, "B", "F", 24)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
