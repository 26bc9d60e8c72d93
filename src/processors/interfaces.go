package processors

import (
	"errors"
	"time"

	"github.com/username/comissio/backend/src/models"
)

// ErrMissingField is returned when an aggregation needs a canonical field
// the frame does not carry. Fatal to that aggregation call only; a partial
// aggregate would be misleading.
var ErrMissingField = errors.New("required field missing from frame")

// SalesSource is the aggregation contract shared by the in-memory frame and
// the persisted batch. Same underlying rows must produce the same output
// regardless of which implementation serves them.
type SalesSource interface {
	Records() ([]models.SaleRecord, error)
	FilterOverdue(activeStatus string) ([]models.SaleRecord, error)
	FilterByYear(year int) ([]models.SaleRecord, error)
	TotalNetBySalesperson() ([]models.SalespersonTotal, error)
	TotalNetByConsortiumAndSalesperson() ([]models.ConsortiumSalespersonTotal, error)
	ReportByConsortium(markup float64) (map[string]models.ConsortiumReport, error)
	DelinquentClients(ref time.Time) ([]models.DelinquentClient, error)
	TotalCreditOverdue(ref time.Time) (float64, error)
	CountDelinquent(ref time.Time) (int, error)
}

// FrameSource serves aggregations straight from an in-memory canonical
// frame by delegating to the pure aggregation functions.
type FrameSource struct {
	frame *models.CanonicalFrame
}

func NewFrameSource(frame *models.CanonicalFrame) *FrameSource {
	return &FrameSource{frame: frame}
}

func (s *FrameSource) Records() ([]models.SaleRecord, error) {
	return s.frame.Records, nil
}

func (s *FrameSource) FilterOverdue(activeStatus string) ([]models.SaleRecord, error) {
	return FilterOverdue(s.frame, activeStatus)
}

func (s *FrameSource) FilterByYear(year int) ([]models.SaleRecord, error) {
	return FilterByYear(s.frame, year)
}

func (s *FrameSource) TotalNetBySalesperson() ([]models.SalespersonTotal, error) {
	return TotalNetBySalesperson(s.frame)
}

func (s *FrameSource) TotalNetByConsortiumAndSalesperson() ([]models.ConsortiumSalespersonTotal, error) {
	return TotalNetByConsortiumAndSalesperson(s.frame)
}

func (s *FrameSource) ReportByConsortium(markup float64) (map[string]models.ConsortiumReport, error) {
	return ReportByConsortium(s.frame, markup)
}

func (s *FrameSource) DelinquentClients(ref time.Time) ([]models.DelinquentClient, error) {
	return DelinquentClients(s.frame, ref)
}

func (s *FrameSource) TotalCreditOverdue(ref time.Time) (float64, error) {
	return TotalCreditOverdue(s.frame, ref)
}

func (s *FrameSource) CountDelinquent(ref time.Time) (int, error) {
	return CountDelinquent(s.frame, ref)
}
