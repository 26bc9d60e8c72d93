package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/username/comissio/backend/src/logger"
	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/processors"
	"github.com/username/comissio/backend/src/services"
	"github.com/username/comissio/backend/src/utils"
)

type ReportHandler struct {
	datasetService services.DatasetService
}

func NewReportHandler(service services.DatasetService) *ReportHandler {
	return &ReportHandler{
		datasetService: service,
	}
}

// batchParam reads the optional "batch" query parameter. Empty addresses
// the most recent in-memory upload.
func batchParam(r *http.Request) string {
	return r.URL.Query().Get("batch")
}

// refDateParam reads the optional "ref" query parameter (YYYY-MM-DD) used
// by the delinquency endpoints; it defaults to today.
func refDateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("ref")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func sendReportError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, services.ErrNoDataset):
		utils.SendJSONError(w, "No dataset loaded. Upload a file first or address a persisted batch.", http.StatusNotFound)
	case errors.Is(err, services.ErrBatchNotFound):
		utils.SendJSONError(w, "Batch not found", http.StatusNotFound)
	case errors.Is(err, processors.ErrMissingField):
		utils.SendJSONError(w, "The dataset does not carry the columns this report needs: "+err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.L.Error("Error computing report", "report", what, "error", err)
		utils.SendJSONError(w, "Error computing "+what, http.StatusInternalServerError)
	}
}

func (h *ReportHandler) HandleSalespersonTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.datasetService.SalespersonTotals(batchParam(r))
	if err != nil {
		sendReportError(w, err, "salesperson totals")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *ReportHandler) HandleConsortiumSalespersonTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.datasetService.ConsortiumSalespersonTotals(batchParam(r))
	if err != nil {
		sendReportError(w, err, "consortium totals")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *ReportHandler) HandleConsortiumReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.datasetService.ConsortiumReport(batchParam(r))
	if err != nil {
		sendReportError(w, err, "consortium report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) HandleDelinquencySummary(w http.ResponseWriter, r *http.Request) {
	ref, err := refDateParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid 'ref' date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	summary, err := h.datasetService.DelinquencySummary(batchParam(r), ref)
	if err != nil {
		sendReportError(w, err, "delinquency summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) HandleOverdueQuotas(w http.ResponseWriter, r *http.Request) {
	records, err := h.datasetService.OverdueQuotas(batchParam(r))
	if err != nil {
		sendReportError(w, err, "overdue quotas")
		return
	}
	if records == nil {
		records = []models.SaleRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *ReportHandler) HandleSalesByYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		utils.SendJSONError(w, "Invalid or missing 'year' parameter", http.StatusBadRequest)
		return
	}
	records, err := h.datasetService.SalesByYear(batchParam(r), year)
	if err != nil {
		sendReportError(w, err, "sales by year")
		return
	}
	if records == nil {
		records = []models.SaleRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
