package loaders

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/username/comissio/backend/src/models"
)

// ErrUnsupportedFormat is returned when a file extension has no loader.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Loader turns one source file into a raw tabular frame.
type Loader interface {
	Load(file io.Reader) (*models.RawFrame, error)
}

// ForFilename picks a loader by file extension. The dialect only applies to
// CSV sources; spreadsheet and PDF loaders ignore it.
func ForFilename(filename string, dialect CSVDialect) (Loader, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return NewCSVLoader(dialect), nil
	case ".xlsx":
		return NewXLSXLoader(), nil
	case ".xls":
		return NewXLSLoader(), nil
	case ".pdf":
		return NewPDFLoader(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// LoadFile dispatches on the path's extension and reads the whole file.
func LoadFile(path string, dialect CSVDialect) (*models.RawFrame, error) {
	loader, err := ForFilename(path, dialect)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return loader.Load(f)
}
