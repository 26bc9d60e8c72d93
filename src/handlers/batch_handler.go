package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/username/comissio/backend/src/logger"
	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/services"
	"github.com/username/comissio/backend/src/utils"
)

type BatchHandler struct {
	datasetService services.DatasetService
}

func NewBatchHandler(service services.DatasetService) *BatchHandler {
	return &BatchHandler{
		datasetService: service,
	}
}

func (h *BatchHandler) HandleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.datasetService.ListBatches()
	if err != nil {
		logger.L.Error("Error listing upload batches", "error", err)
		utils.SendJSONError(w, "Error retrieving upload batches", http.StatusInternalServerError)
		return
	}
	if batches == nil {
		batches = []models.UploadBatch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

func (h *BatchHandler) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	batch, err := h.datasetService.GetBatch(batchID)
	if err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			utils.SendJSONError(w, "Batch not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving batch", "batchID", batchID, "error", err)
		utils.SendJSONError(w, "Error retrieving batch", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// HandleGetRecordsBySource returns the rows of the most recent batch
// uploaded under the source filename given in the "source" query parameter.
func (h *BatchHandler) HandleGetRecordsBySource(w http.ResponseWriter, r *http.Request) {
	sourceName := r.URL.Query().Get("source")
	if sourceName == "" {
		utils.SendJSONError(w, "Missing 'source' query parameter", http.StatusBadRequest)
		return
	}
	records, err := h.datasetService.RecordsBySource(sourceName)
	if err != nil {
		logger.L.Error("Error retrieving records by source", "sourceName", sourceName, "error", err)
		utils.SendJSONError(w, "Error retrieving records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.SaleRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *BatchHandler) HandleGetBatchRecords(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	records, err := h.datasetService.BatchRecords(batchID)
	if err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			utils.SendJSONError(w, "Batch not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving batch records", "batchID", batchID, "error", err)
		utils.SendJSONError(w, "Error retrieving batch records", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.SaleRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
