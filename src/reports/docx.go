package reports

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/username/comissio/backend/src/models"
)

// DocxTable is one category→value table of the word-processor report.
type DocxTable struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// DocxReportData is the content contract of the word-processor report:
// heading, applied-filter line, summary paragraph, zero or more tables and
// a closing remarks section.
type DocxReportData struct {
	Title   string
	Filter  string
	Summary string
	Tables  []DocxTable
	Remarks string
}

// DocxReporter writes a minimal WordprocessingML package: a zip holding the
// content-types part, the package relationships and word/document.xml.
// That is everything Word and LibreOffice need for text and simple tables.
type DocxReporter struct{}

func NewDocxReporter() *DocxReporter {
	return &DocxReporter{}
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Write renders the report data into w as a .docx package.
func (r *DocxReporter) Write(w io.Writer, data DocxReportData) error {
	archive := zip.NewWriter(w)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", buildDocumentXML(data)},
	}
	for _, part := range parts {
		f, err := archive.Create(part.name)
		if err != nil {
			return fmt.Errorf("failed to create docx part %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return fmt.Errorf("failed to write docx part %s: %w", part.name, err)
		}
	}
	return archive.Close()
}

func buildDocumentXML(data DocxReportData) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	title := data.Title
	if title == "" {
		title = "Relatório de Vendas"
	}
	writeHeading(&b, title, 32)

	if data.Filter != "" {
		writeParagraph(&b, "Filtro aplicado: "+data.Filter)
	}
	if data.Summary != "" {
		writeParagraph(&b, data.Summary)
	}

	for _, table := range data.Tables {
		if table.Title != "" {
			writeHeading(&b, table.Title, 26)
		}
		writeTable(&b, table)
	}

	writeHeading(&b, "Observações Finais", 26)
	writeParagraph(&b, data.Remarks)

	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func writeParagraph(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func writeHeading(b *strings.Builder, text string, halfPoints int) {
	fmt.Fprintf(b, `<w:p><w:r><w:rPr><w:b/><w:sz w:val="%d"/></w:rPr><w:t xml:space="preserve">`, halfPoints)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func writeTable(b *strings.Builder, table DocxTable) {
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/><w:tblBorders>`)
	for _, edge := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		fmt.Fprintf(b, `<w:%s w:val="single" w:sz="4" w:color="auto"/>`, edge)
	}
	b.WriteString(`</w:tblBorders></w:tblPr>`)

	if len(table.Headers) > 0 {
		b.WriteString(`<w:tr>`)
		for _, h := range table.Headers {
			b.WriteString(`<w:tc><w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
			b.WriteString(escapeXML(h))
			b.WriteString(`</w:t></w:r></w:p></w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	for _, row := range table.Rows {
		b.WriteString(`<w:tr>`)
		for _, cell := range row {
			b.WriteString(`<w:tc><w:p><w:r><w:t xml:space="preserve">`)
			b.WriteString(escapeXML(cell))
			b.WriteString(`</w:t></w:r></w:p></w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
}

func escapeXML(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// SalespersonTotalsReport assembles the report data for the flat
// salesperson aggregation.
func SalespersonTotalsReport(totals []models.SalespersonTotal, filter string, remarks string) DocxReportData {
	table := DocxTable{
		Title:   "Total Líquido por Vendedor",
		Headers: []string{"Vendedor", "Total Líquido"},
	}
	grandTotal := 0.0
	for _, t := range totals {
		table.Rows = append(table.Rows, []string{t.Salesperson, formatAmount(t.TotalNet)})
		grandTotal += t.TotalNet
	}
	return DocxReportData{
		Title:   "Relatório de Vendas",
		Filter:  filter,
		Summary: fmt.Sprintf("Total líquido geral: %s (%d vendedores)", formatAmount(grandTotal), len(totals)),
		Tables:  []DocxTable{table},
		Remarks: remarks,
	}
}

// DelinquencyReport assembles the report data for the delinquency summary.
func DelinquencyReport(clients []models.DelinquentClient, totalCredit float64, refDate string, remarks string) DocxReportData {
	table := DocxTable{
		Title:   "Clientes Inadimplentes",
		Headers: []string{"Contrato", "Consorciado", "Base R$"},
	}
	for _, c := range clients {
		table.Rows = append(table.Rows, []string{c.Contract, c.ConsortiumName, formatAmount(c.BaseAmount)})
	}
	return DocxReportData{
		Title:   "Relatório de Inadimplência",
		Filter:  "Data de referência: " + refDate,
		Summary: fmt.Sprintf("Total de crédito em atraso: %s (%d inadimplentes)", formatAmount(totalCredit), len(clients)),
		Tables:  []DocxTable{table},
		Remarks: remarks,
	}
}

// PDFExcerptReport wraps an unstructured PDF extraction as a
// verbatim-excerpt report. PDF frames are never aggregated numerically.
func PDFExcerptReport(text string, sourceName string) DocxReportData {
	const excerptLimit = 2000
	excerpt := text
	if len(excerpt) > excerptLimit {
		excerpt = excerpt[:excerptLimit] + "…"
	}
	return DocxReportData{
		Title:   "Extrato de Texto (PDF)",
		Filter:  "Origem: " + sourceName,
		Summary: excerpt,
	}
}

func formatAmount(v float64) string {
	// Localized decimal comma, matching the source statements.
	return "R$ " + strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}
