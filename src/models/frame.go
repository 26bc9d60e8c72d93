package models

// PDFTextColumn is the single column carried by frames loaded from PDF
// statements. These frames hold no structured data; downstream code must
// only ever show a verbatim excerpt of the extracted text.
const PDFTextColumn = "Texto"

// RawFrame is the untyped tabular output of a loader: ordered column names
// plus string-valued cells, exactly as they appear in the source file.
type RawFrame struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (f *RawFrame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsPDFText reports whether this frame came from a PDF extraction.
func (f *RawFrame) IsPDFText() bool {
	return len(f.Columns) == 1 && f.Columns[0] == PDFTextColumn
}

// CanonicalFrame is the normalized representation all aggregations consume:
// one SaleRecord per data row, plus the set of canonical fields that were
// actually present in the source. Field presence distinguishes "column was
// never there" (a MissingField error for aggregations that need it) from
// "value was null in this row".
type CanonicalFrame struct {
	Records []SaleRecord `json:"records"`
	Fields  []string     `json:"fields"`

	// PDFText holds the extracted text when the source was a PDF; such
	// frames carry no records.
	PDFText string `json:"pdf_text,omitempty"`
}

// HasField reports whether a canonical field survived normalization.
func (f *CanonicalFrame) HasField(name string) bool {
	for _, c := range f.Fields {
		if c == name {
			return true
		}
	}
	return false
}

// IsPDFText reports whether the frame only carries extracted PDF text.
func (f *CanonicalFrame) IsPDFText() bool {
	return f.PDFText != ""
}
