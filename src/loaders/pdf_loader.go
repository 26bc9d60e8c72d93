package loaders

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/username/comissio/backend/src/models"
)

// PDFLoader extracts the concatenated text of every page into a
// single-cell frame under the "Texto" column. PDF statements carry no
// structured columns; the aggregation layer special-cases these frames and
// only ever produces a verbatim excerpt.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Load(file io.Reader) (*models.RawFrame, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf file: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return nil, fmt.Errorf("failed to extract pdf text: %w", err)
	}

	return &models.RawFrame{
		Columns: []string{models.PDFTextColumn},
		Rows:    [][]string{{buf.String()}},
	}, nil
}
