package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/username/comissio/backend/src/logger"
	"github.com/username/comissio/backend/src/reports"
	"github.com/username/comissio/backend/src/services"
	"github.com/username/comissio/backend/src/utils"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type ExportHandler struct {
	datasetService services.DatasetService
	excelExporter  *reports.ExcelExporter
	docxReporter   *reports.DocxReporter
}

func NewExportHandler(service services.DatasetService) *ExportHandler {
	return &ExportHandler{
		datasetService: service,
		excelExporter:  reports.NewExcelExporter(),
		docxReporter:   reports.NewDocxReporter(),
	}
}

func setDownloadHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

// HandleSalespersonTotalsXLSX streams the flat salesperson aggregation as a
// spreadsheet download.
func (h *ExportHandler) HandleSalespersonTotalsXLSX(w http.ResponseWriter, r *http.Request) {
	totals, err := h.datasetService.SalespersonTotals(batchParam(r))
	if err != nil {
		sendReportError(w, err, "salesperson totals export")
		return
	}

	f, err := h.excelExporter.SalespersonTotals(totals, "Total por Vendedor")
	if err != nil {
		logger.L.Error("Error building salesperson totals workbook", "error", err)
		utils.SendJSONError(w, "Error building spreadsheet", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	setDownloadHeaders(w, contentTypeXLSX, "total_por_vendedor.xlsx")
	if err := f.Write(w); err != nil {
		logger.L.Error("Error streaming salesperson totals workbook", "error", err)
	}
}

// HandleConsortiumReportXLSX streams the nested consortium report as a
// spreadsheet download.
func (h *ExportHandler) HandleConsortiumReportXLSX(w http.ResponseWriter, r *http.Request) {
	report, err := h.datasetService.ConsortiumReport(batchParam(r))
	if err != nil {
		sendReportError(w, err, "consortium report export")
		return
	}

	f, err := h.excelExporter.ConsortiumReport(report, "Relatorio por Consorcio")
	if err != nil {
		logger.L.Error("Error building consortium report workbook", "error", err)
		utils.SendJSONError(w, "Error building spreadsheet", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	setDownloadHeaders(w, contentTypeXLSX, "relatorio_por_consorcio.xlsx")
	if err := f.Write(w); err != nil {
		logger.L.Error("Error streaming consortium report workbook", "error", err)
	}
}

// HandleSalespersonTotalsDOCX streams the salesperson aggregation as a
// word-processor report download.
func (h *ExportHandler) HandleSalespersonTotalsDOCX(w http.ResponseWriter, r *http.Request) {
	totals, err := h.datasetService.SalespersonTotals(batchParam(r))
	if err != nil {
		sendReportError(w, err, "salesperson totals export")
		return
	}

	filter := "Todos os registros"
	if batch := batchParam(r); batch != "" {
		filter = "Lote " + batch
	}
	data := reports.SalespersonTotalsReport(totals, filter,
		"Valores líquidos após estornos e cancelamentos, gerado em "+time.Now().Format("02/01/2006")+".")

	setDownloadHeaders(w, contentTypeDOCX, "relatorio_vendas.docx")
	if err := h.docxReporter.Write(w, data); err != nil {
		logger.L.Error("Error streaming salesperson totals document", "error", err)
	}
}

// HandlePDFExcerptDOCX wraps the text extracted from the most recent PDF
// upload as a verbatim-excerpt document. PDF text is never aggregated.
func (h *ExportHandler) HandlePDFExcerptDOCX(w http.ResponseWriter, r *http.Request) {
	frame := h.datasetService.LatestFrame()
	if frame == nil || !frame.IsPDFText() {
		utils.SendJSONError(w, "No PDF dataset loaded. Upload a PDF file first.", http.StatusNotFound)
		return
	}

	data := reports.PDFExcerptReport(frame.PDFText, "último PDF carregado")

	setDownloadHeaders(w, contentTypeDOCX, "extrato_pdf.docx")
	if err := h.docxReporter.Write(w, data); err != nil {
		logger.L.Error("Error streaming PDF excerpt document", "error", err)
	}
}

// HandleDelinquencyDOCX streams the delinquency summary as a word-processor
// report download.
func (h *ExportHandler) HandleDelinquencyDOCX(w http.ResponseWriter, r *http.Request) {
	ref, err := refDateParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid 'ref' date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	summary, err := h.datasetService.DelinquencySummary(batchParam(r), ref)
	if err != nil {
		sendReportError(w, err, "delinquency export")
		return
	}

	data := reports.DelinquencyReport(summary.Clients, summary.TotalCreditOverdue,
		ref.Format("02/01/2006"),
		"Clientes com parcelas vencidas e não pagas na data de referência.")

	setDownloadHeaders(w, contentTypeDOCX, "relatorio_inadimplencia.docx")
	if err := h.docxReporter.Write(w, data); err != nil {
		logger.L.Error("Error streaming delinquency document", "error", err)
	}
}
