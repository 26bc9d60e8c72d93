package loaders

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/username/comissio/backend/src/models"
)

// CSVDialect describes how a CSV source is delimited. Two flavours coexist
// in practice: generic exports use comma/dot, the localized commission
// exports use semicolon/comma.
type CSVDialect struct {
	Comma        rune
	DecimalComma bool
}

var (
	DialectStandard  = CSVDialect{Comma: ',', DecimalComma: false}
	DialectLocalized = CSVDialect{Comma: ';', DecimalComma: true}
)

// DialectByName resolves a configured dialect name, defaulting to the
// localized commission-export flavour.
func DialectByName(name string) CSVDialect {
	if name == "standard" {
		return DialectStandard
	}
	return DialectLocalized
}

type CSVLoader struct {
	dialect CSVDialect
}

func NewCSVLoader(dialect CSVDialect) *CSVLoader {
	return &CSVLoader{dialect: dialect}
}

// Load reads the header row as column names and every remaining row as
// string cells. Ragged rows are tolerated; short rows are padded so the
// frame stays rectangular.
func (l *CSVLoader) Load(file io.Reader) (*models.RawFrame, error) {
	reader := csv.NewReader(file)
	reader.Comma = l.dialect.Comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	frame := &models.RawFrame{Columns: header}
	for _, record := range records {
		row := make([]string, len(header))
		copy(row, record)
		frame.Rows = append(frame.Rows, row)
	}
	return frame, nil
}
