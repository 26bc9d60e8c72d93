package loaders

import (
	"bytes"
	"fmt"
	"io"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/username/comissio/backend/src/models"
)

// XLSXLoader reads modern workbooks. First sheet only, header assumed in
// the first row, mirroring how the statements are exported.
type XLSXLoader struct{}

func NewXLSXLoader() *XLSXLoader {
	return &XLSXLoader{}
}

func (l *XLSXLoader) Load(file io.Reader) (*models.RawFrame, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx workbook contains no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return frameFromRows(rows)
}

// XLSLoader reads legacy binary workbooks.
type XLSLoader struct{}

func NewXLSLoader() *XLSLoader {
	return &XLSLoader{}
}

func (l *XLSLoader) Load(file io.Reader) (*models.RawFrame, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read xls file: %w", err)
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		// Some exports carry a .xls extension but are really xlsx.
		if f, errX := excelize.OpenReader(bytes.NewReader(data)); errX == nil {
			defer f.Close()
			sheets := f.GetSheetList()
			if len(sheets) == 0 {
				return nil, fmt.Errorf("workbook contains no sheets")
			}
			rows, errR := f.GetRows(sheets[0])
			if errR != nil {
				return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], errR)
			}
			return frameFromRows(rows)
		}
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}

	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("xls workbook contains no sheets")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read xls sheet: %w", err)
	}

	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return frameFromRows(rows)
}

func frameFromRows(rows [][]string) (*models.RawFrame, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet contains no rows")
	}
	header := rows[0]
	frame := &models.RawFrame{Columns: header}
	for _, record := range rows[1:] {
		row := make([]string, len(header))
		copy(row, record)
		frame.Rows = append(frame.Rows, row)
	}
	return frame, nil
}
