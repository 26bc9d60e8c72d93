package storage

import (
	"fmt"
	"time"

	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/normalizer"
	"github.com/username/comissio/backend/src/processors"
	"github.com/username/comissio/backend/src/utils"
)

// allBatchFields lists every canonical field; persisted batches always
// carry the full column set.
var allBatchFields = []string{
	models.FieldSaleDate, models.FieldAllocationDate,
	models.FieldCommissionedCode, models.FieldSalespersonPointCode,
	models.FieldTeamCode, models.FieldContract,
	models.FieldConsortiumCode, models.FieldConsortiumName,
	models.FieldQuotaStatus, models.FieldInstallmentProgress,
	models.FieldRuleCode, models.FieldCategoryCode,
	models.FieldCommissionPercent, models.FieldBaseCalcAmount,
	models.FieldCommissionAmount, models.FieldReversalAmount,
	models.FieldCancellationAmount, models.FieldBaseAmount,
	models.FieldNetAmount, models.FieldSalesperson,
	models.FieldDueDate, models.FieldPaymentDate,
}

// BatchSource serves the aggregation contract from a persisted batch.
// Group-bys and filters run as SQL against the sales table; the contract is
// that the same rows produce exactly what the in-memory FrameSource would.
type BatchSource struct {
	store   *Store
	batchID string
}

func NewBatchSource(store *Store, batchID string) *BatchSource {
	return &BatchSource{store: store, batchID: batchID}
}

func (s *BatchSource) Records() ([]models.SaleRecord, error) {
	return s.store.QueryByBatch(s.batchID)
}

func (s *BatchSource) frame() (*models.CanonicalFrame, error) {
	records, err := s.Records()
	if err != nil {
		return nil, err
	}
	return &models.CanonicalFrame{Records: records, Fields: allBatchFields}, nil
}

func (s *BatchSource) FilterOverdue(activeStatus string) ([]models.SaleRecord, error) {
	rows, err := s.store.db.Query(`SELECT id, sale_date, allocation_date,
		commissioned_code, salesperson_point_code, team_code, contract,
		consortium_code, consortium_name, quota_status, installment_progress,
		rule_code, category_code, commission_percent, base_calc_amount,
		commission_amount, reversal_amount, cancellation_amount, base_amount,
		net_amount, salesperson, due_date, payment_date
		FROM sales WHERE batch_id = ? AND quota_status != ? ORDER BY id ASC`,
		s.batchID, activeStatus)
	if err != nil {
		return nil, fmt.Errorf("error querying overdue rows for batch %s: %w", s.batchID, err)
	}
	defer rows.Close()
	return scanSaleRows(rows)
}

func (s *BatchSource) FilterByYear(year int) ([]models.SaleRecord, error) {
	rows, err := s.store.db.Query(`SELECT id, sale_date, allocation_date,
		commissioned_code, salesperson_point_code, team_code, contract,
		consortium_code, consortium_name, quota_status, installment_progress,
		rule_code, category_code, commission_percent, base_calc_amount,
		commission_amount, reversal_amount, cancellation_amount, base_amount,
		net_amount, salesperson, due_date, payment_date
		FROM sales WHERE batch_id = ? AND sale_date IS NOT NULL
		AND CAST(strftime('%Y', sale_date) AS INTEGER) = ? ORDER BY id ASC`,
		s.batchID, year)
	if err != nil {
		return nil, fmt.Errorf("error querying year %d for batch %s: %w", year, s.batchID, err)
	}
	defer rows.Close()
	return scanSaleRows(rows)
}

func (s *BatchSource) TotalNetBySalesperson() ([]models.SalespersonTotal, error) {
	rows, err := s.store.db.Query(`SELECT salesperson, SUM(COALESCE(net_amount, 0))
		FROM sales WHERE batch_id = ?
		GROUP BY salesperson
		ORDER BY SUM(COALESCE(net_amount, 0)) DESC, salesperson ASC`, s.batchID)
	if err != nil {
		return nil, fmt.Errorf("error aggregating salesperson totals for batch %s: %w", s.batchID, err)
	}
	defer rows.Close()

	out := []models.SalespersonTotal{}
	for rows.Next() {
		var t models.SalespersonTotal
		if err := rows.Scan(&t.Salesperson, &t.TotalNet); err != nil {
			return nil, fmt.Errorf("error scanning salesperson total: %w", err)
		}
		// Matches the in-memory engine: subtotal artifacts never
		// reach the result even if they got persisted.
		if !normalizer.ValidSalesperson(t.Salesperson) {
			continue
		}
		t.TotalNet = utils.RoundFloat(t.TotalNet, 2)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *BatchSource) TotalNetByConsortiumAndSalesperson() ([]models.ConsortiumSalespersonTotal, error) {
	rows, err := s.store.db.Query(`SELECT consortium_name, salesperson, SUM(COALESCE(net_amount, 0))
		FROM sales WHERE batch_id = ?
		GROUP BY consortium_name, salesperson
		ORDER BY consortium_name ASC, salesperson ASC`, s.batchID)
	if err != nil {
		return nil, fmt.Errorf("error aggregating consortium totals for batch %s: %w", s.batchID, err)
	}
	defer rows.Close()

	out := []models.ConsortiumSalespersonTotal{}
	for rows.Next() {
		var t models.ConsortiumSalespersonTotal
		if err := rows.Scan(&t.ConsortiumName, &t.Salesperson, &t.TotalNet); err != nil {
			return nil, fmt.Errorf("error scanning consortium total: %w", err)
		}
		t.TotalNet = utils.RoundFloat(t.TotalNet, 2)
		out = append(out, t)
	}
	return out, rows.Err()
}

// The nested consortium report and the delinquency chain reuse the pure
// engine over the fetched batch; their dedupe-by-first-occurrence semantics
// do not map cleanly onto a single relational query.

func (s *BatchSource) ReportByConsortium(markup float64) (map[string]models.ConsortiumReport, error) {
	frame, err := s.frame()
	if err != nil {
		return nil, err
	}
	return processors.ReportByConsortium(frame, markup)
}

func (s *BatchSource) DelinquentClients(ref time.Time) ([]models.DelinquentClient, error) {
	frame, err := s.frame()
	if err != nil {
		return nil, err
	}
	return processors.DelinquentClients(frame, ref)
}

func (s *BatchSource) TotalCreditOverdue(ref time.Time) (float64, error) {
	frame, err := s.frame()
	if err != nil {
		return 0, err
	}
	return processors.TotalCreditOverdue(frame, ref)
}

func (s *BatchSource) CountDelinquent(ref time.Time) (int, error) {
	frame, err := s.frame()
	if err != nil {
		return 0, err
	}
	return processors.CountDelinquent(frame, ref)
}
