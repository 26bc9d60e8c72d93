package services

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/comissio/backend/src/config"
	"github.com/username/comissio/backend/src/loaders"
	"github.com/username/comissio/backend/src/logger"
	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/normalizer"
	"github.com/username/comissio/backend/src/processors"
	"github.com/username/comissio/backend/src/storage"
)

const (
	ckSalespersonTotals = "res_salesperson_totals_batch_%s"
	ckConsortiumTotals  = "res_consortium_totals_batch_%s"
	ckConsortiumReport  = "res_consortium_report_batch_%s"
	ckDelinquency       = "res_delinquency_batch_%s_ref_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type datasetServiceImpl struct {
	store       *storage.Store
	reportCache *cache.Cache

	mu          sync.RWMutex
	latestFrame *models.CanonicalFrame
	latestName  string
}

func NewDatasetService(store *storage.Store, reportCache *cache.Cache) DatasetService {
	return &datasetServiceImpl{
		store:       store,
		reportCache: reportCache,
	}
}

// ProcessUpload runs the full ingestion pipeline: format detection by
// extension, loading, normalization, sanitization and, when requested,
// atomic persistence. The resulting frame replaces the in-memory dataset
// either way.
func (s *datasetServiceImpl) ProcessUpload(fileReader io.Reader, filename string, persist bool) (*UploadResult, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "filename", filename, "persist", persist)

	loader, err := loaders.ForFilename(filename, loaders.DialectByName(config.Cfg.CSVDialect))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	raw, err := loader.Load(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	frame := normalizer.Sanitize(normalizer.New(config.Cfg.ExtendedSchema).Normalize(raw))

	result := &UploadResult{
		SourceName:  filename,
		RecordCount: len(frame.Records),
		Fields:      frame.Fields,
		PDFText:     frame.PDFText,
	}

	if persist && !frame.IsPDFText() {
		batchID, err := s.store.InsertBatch(frame.Records, filename)
		if err != nil {
			return nil, err
		}
		result.BatchID = batchID
		result.Persisted = true
		s.InvalidateBatchCache(batchID)
	}

	s.mu.Lock()
	s.latestFrame = frame
	s.latestName = filename
	s.mu.Unlock()
	s.InvalidateBatchCache("")

	logger.L.Info("ProcessUpload END", "filename", filename,
		"recordCount", result.RecordCount, "batchID", result.BatchID,
		"duration", time.Since(overallStartTime))
	return result, nil
}

// Source resolves a batch id to an aggregation source. The empty id means
// the most recent in-memory upload.
func (s *datasetServiceImpl) Source(batchID string) (processors.SalesSource, error) {
	if batchID == "" {
		s.mu.RLock()
		frame := s.latestFrame
		s.mu.RUnlock()
		if frame == nil {
			return nil, ErrNoDataset
		}
		return processors.NewFrameSource(frame), nil
	}
	if _, err := s.store.GetBatch(batchID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	return storage.NewBatchSource(s.store, batchID), nil
}

func (s *datasetServiceImpl) SalespersonTotals(batchID string) ([]models.SalespersonTotal, error) {
	cacheKey := fmt.Sprintf(ckSalespersonTotals, batchID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for salesperson totals", "batchID", batchID)
		return cached.([]models.SalespersonTotal), nil
	}

	source, err := s.Source(batchID)
	if err != nil {
		return nil, err
	}
	totals, err := source.TotalNetBySalesperson()
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, totals, DefaultCacheExpiration)
	return totals, nil
}

func (s *datasetServiceImpl) ConsortiumSalespersonTotals(batchID string) ([]models.ConsortiumSalespersonTotal, error) {
	cacheKey := fmt.Sprintf(ckConsortiumTotals, batchID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.([]models.ConsortiumSalespersonTotal), nil
	}

	source, err := s.Source(batchID)
	if err != nil {
		return nil, err
	}
	totals, err := source.TotalNetByConsortiumAndSalesperson()
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, totals, DefaultCacheExpiration)
	return totals, nil
}

func (s *datasetServiceImpl) ConsortiumReport(batchID string) (map[string]models.ConsortiumReport, error) {
	cacheKey := fmt.Sprintf(ckConsortiumReport, batchID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(map[string]models.ConsortiumReport), nil
	}

	source, err := s.Source(batchID)
	if err != nil {
		return nil, err
	}
	report, err := source.ReportByConsortium(config.Cfg.ConsortiumMarkup)
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, report, DefaultCacheExpiration)
	return report, nil
}

func (s *datasetServiceImpl) DelinquencySummary(batchID string, ref time.Time) (*DelinquencySummary, error) {
	cacheKey := fmt.Sprintf(ckDelinquency, batchID, ref.Format("2006-01-02"))
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*DelinquencySummary), nil
	}

	source, err := s.Source(batchID)
	if err != nil {
		return nil, err
	}
	clients, err := source.DelinquentClients(ref)
	if err != nil {
		return nil, err
	}
	total, err := source.TotalCreditOverdue(ref)
	if err != nil {
		return nil, err
	}
	count, err := source.CountDelinquent(ref)
	if err != nil {
		return nil, err
	}

	summary := &DelinquencySummary{
		ReferenceDate:      ref.Format("2006-01-02"),
		Clients:            clients,
		TotalCreditOverdue: total,
		Count:              count,
	}
	s.reportCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return summary, nil
}

func (s *datasetServiceImpl) OverdueQuotas(batchID string) ([]models.SaleRecord, error) {
	source, err := s.Source(batchID)
	if err != nil {
		return nil, err
	}
	return source.FilterOverdue(config.Cfg.ActiveQuotaStatus)
}

func (s *datasetServiceImpl) SalesByYear(batchID string, year int) ([]models.SaleRecord, error) {
	source, err := s.Source(batchID)
	if err != nil {
		return nil, err
	}
	return source.FilterByYear(year)
}

func (s *datasetServiceImpl) ListBatches() ([]models.UploadBatch, error) {
	return s.store.ListBatches()
}

func (s *datasetServiceImpl) GetBatch(batchID string) (*models.UploadBatch, error) {
	batch, err := s.store.GetBatch(batchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	return batch, nil
}

func (s *datasetServiceImpl) BatchRecords(batchID string) ([]models.SaleRecord, error) {
	if _, err := s.GetBatch(batchID); err != nil {
		return nil, err
	}
	return s.store.QueryByBatch(batchID)
}

// RecordsBySource returns the rows of the most recent batch uploaded under
// the given source filename. An unknown filename yields an empty slice.
func (s *datasetServiceImpl) RecordsBySource(sourceName string) ([]models.SaleRecord, error) {
	return s.store.QueryBySourceName(sourceName)
}

func (s *datasetServiceImpl) LatestFrame() *models.CanonicalFrame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestFrame
}

// InvalidateBatchCache drops every cached aggregation for one batch. The
// delinquency keys carry a reference date so they are flushed by prefix.
func (s *datasetServiceImpl) InvalidateBatchCache(batchID string) {
	s.reportCache.Delete(fmt.Sprintf(ckSalespersonTotals, batchID))
	s.reportCache.Delete(fmt.Sprintf(ckConsortiumTotals, batchID))
	s.reportCache.Delete(fmt.Sprintf(ckConsortiumReport, batchID))

	prefix := fmt.Sprintf("res_delinquency_batch_%s_ref_", batchID)
	for key := range s.reportCache.Items() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			s.reportCache.Delete(key)
		}
	}
	logger.L.Debug("Invalidated report caches", "batchID", batchID)
}
