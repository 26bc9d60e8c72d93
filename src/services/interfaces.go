package services

import (
	"errors"
	"io"
	"time"

	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/processors"
)

var (
	ErrParsingFailed    = errors.New("file parsing failed")
	ErrProcessingFailed = errors.New("dataset processing failed")
	ErrNoDataset        = errors.New("no dataset loaded")
	ErrBatchNotFound    = errors.New("batch not found")
)

// UploadResult is what an upload call hands back to the client: the batch id
// when the dataset was persisted, plus enough metadata to drive the report
// endpoints.
type UploadResult struct {
	BatchID     string   `json:"batchId,omitempty"`
	SourceName  string   `json:"sourceName"`
	RecordCount int      `json:"recordCount"`
	Fields      []string `json:"fields"`
	Persisted   bool     `json:"persisted"`
	PDFText     string   `json:"pdfText,omitempty"`
}

// DelinquencySummary bundles the three delinquency aggregations that are
// always requested together.
type DelinquencySummary struct {
	ReferenceDate      string                    `json:"referenceDate"`
	Clients            []models.DelinquentClient `json:"clients"`
	TotalCreditOverdue float64                   `json:"totalCreditOverdue"`
	Count              int                       `json:"count"`
}

// DatasetService is the application surface over uploads and aggregations.
// A batchID of "" addresses the most recent in-memory upload; any other id
// addresses a persisted batch.
type DatasetService interface {
	ProcessUpload(fileReader io.Reader, filename string, persist bool) (*UploadResult, error)
	Source(batchID string) (processors.SalesSource, error)

	SalespersonTotals(batchID string) ([]models.SalespersonTotal, error)
	ConsortiumSalespersonTotals(batchID string) ([]models.ConsortiumSalespersonTotal, error)
	ConsortiumReport(batchID string) (map[string]models.ConsortiumReport, error)
	DelinquencySummary(batchID string, ref time.Time) (*DelinquencySummary, error)
	OverdueQuotas(batchID string) ([]models.SaleRecord, error)
	SalesByYear(batchID string, year int) ([]models.SaleRecord, error)

	ListBatches() ([]models.UploadBatch, error)
	GetBatch(batchID string) (*models.UploadBatch, error)
	BatchRecords(batchID string) ([]models.SaleRecord, error)
	RecordsBySource(sourceName string) ([]models.SaleRecord, error)

	LatestFrame() *models.CanonicalFrame
	InvalidateBatchCache(batchID string)
}
