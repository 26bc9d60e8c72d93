package reports

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/security/validation"
)

// ExcelExporter renders aggregation results as xlsx workbooks. Layout
// mirrors the spreadsheet exports users already know: grouped results get a
// merged header per consortium with a date annotation, flat results get a
// plain table.
type ExcelExporter struct{}

func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

func sheetNameFor(title string) string {
	// Excel caps sheet names at 31 characters.
	if len(title) > 31 {
		return title[:31]
	}
	if title == "" {
		return "Relatorio"
	}
	return title
}

func (e *ExcelExporter) newSheet(title string) (*excelize.File, string, int, int, error) {
	f := excelize.NewFile()
	sheet := sheetNameFor(title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, "", 0, 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D7E4BC"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("failed to create header style: %w", err)
	}
	groupStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F7F7F7"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("failed to create group style: %w", err)
	}
	return f, sheet, headerStyle, groupStyle, nil
}

// SalespersonTotals writes the flat salesperson aggregation as one table.
func (e *ExcelExporter) SalespersonTotals(totals []models.SalespersonTotal, title string) (*excelize.File, error) {
	f, sheet, headerStyle, _, err := e.newSheet(title)
	if err != nil {
		return nil, err
	}

	headers := []string{"VENDEDOR", "TOTAL LÍQUIDO"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for i, t := range totals {
		nameCell, _ := excelize.CoordinatesToCellName(1, i+2)
		totalCell, _ := excelize.CoordinatesToCellName(2, i+2)
		f.SetCellValue(sheet, nameCell, validation.SanitizeForFormulaInjection(t.Salesperson))
		f.SetCellValue(sheet, totalCell, t.TotalNet)
	}
	f.SetColWidth(sheet, "A", "B", 24)
	return f, nil
}

// ConsortiumReport writes the nested per-consortium aggregation: a merged
// group header annotated with the group's sale date, a per-group header
// row, the salesperson rows and a grand-total row, one cluster per
// consortium separated by a blank row.
func (e *ExcelExporter) ConsortiumReport(report map[string]models.ConsortiumReport, title string) (*excelize.File, error) {
	f, sheet, headerStyle, groupStyle, err := e.newSheet(title)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := []string{"VENDEDOR", "TOTAL LÍQUIDO", "TOTAL C/ AJUSTE"}
	row := 1
	for _, name := range names {
		group := report[name]

		groupLabel := validation.SanitizeForFormulaInjection(name)
		if group.SaleDate != nil {
			groupLabel = fmt.Sprintf("%s - %s", name, group.SaleDate.Format("02/01/2006"))
		}
		startCell, _ := excelize.CoordinatesToCellName(1, row)
		endCell, _ := excelize.CoordinatesToCellName(len(headers), row)
		f.SetCellValue(sheet, startCell, groupLabel)
		f.MergeCell(sheet, startCell, endCell)
		f.SetCellStyle(sheet, startCell, endCell, groupStyle)
		row++

		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, h)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
		row++

		for _, sp := range group.Salespeople {
			nameCell, _ := excelize.CoordinatesToCellName(1, row)
			netCell, _ := excelize.CoordinatesToCellName(2, row)
			markedCell, _ := excelize.CoordinatesToCellName(3, row)
			f.SetCellValue(sheet, nameCell, validation.SanitizeForFormulaInjection(sp.Salesperson))
			f.SetCellValue(sheet, netCell, sp.TotalNet)
			f.SetCellValue(sheet, markedCell, sp.TotalMarked)
			row++
		}

		totalLabelCell, _ := excelize.CoordinatesToCellName(1, row)
		totalCell, _ := excelize.CoordinatesToCellName(3, row)
		f.SetCellValue(sheet, totalLabelCell, "TOTAL GERAL")
		f.SetCellValue(sheet, totalCell, group.GrandTotal)
		f.SetCellStyle(sheet, totalLabelCell, totalCell, headerStyle)
		row += 2 // blank row between clusters
	}

	f.SetColWidth(sheet, "A", "C", 24)
	return f, nil
}
