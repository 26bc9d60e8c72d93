package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/username/comissio/backend/src/logger"
	"github.com/username/comissio/backend/src/models"
)

// ErrPersistenceFailed wraps any error raised inside the batch transaction.
// The whole batch rolls back; no partial data is ever visible to readers.
var ErrPersistenceFailed = errors.New("persistence failed")

const saleColumns = `batch_id, upload_time, source_name, sale_date, allocation_date,
	commissioned_code, salesperson_point_code, team_code, contract,
	consortium_code, consortium_name, quota_status, installment_progress,
	rule_code, category_code, commission_percent, base_calc_amount,
	commission_amount, reversal_amount, cancellation_amount, base_amount,
	net_amount, salesperson, due_date, payment_date`

// Store is the persistence adapter over the uploads/sales tables.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InsertBatch writes one upload record plus one sale row per record as a
// single transaction, stamped with a fresh batch id. Either everything
// commits or nothing does. Rows are immutable once inserted; corrections
// require a new batch.
func (s *Store) InsertBatch(records []models.SaleRecord, sourceName string) (string, error) {
	batchID := uuid.New().String()
	uploadTime := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("%w: beginning transaction: %v", ErrPersistenceFailed, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO uploads (id, upload_time, source_name, record_count) VALUES (?, ?, ?, ?)`,
		batchID, uploadTime.Format(time.RFC3339), sourceName, len(records),
	); err != nil {
		return "", fmt.Errorf("%w: inserting upload record: %v", ErrPersistenceFailed, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO sales (` + saleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("%w: preparing insert statement: %v", ErrPersistenceFailed, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.Exec(
			batchID, uploadTime.Format(time.RFC3339), sourceName,
			nullTime(rec.SaleDate), nullTime(rec.AllocationDate),
			rec.CommissionedCode, rec.SalespersonPointCode, rec.TeamCode,
			rec.Contract, rec.ConsortiumCode, rec.ConsortiumName,
			rec.QuotaStatus, rec.InstallmentProgress, rec.RuleCode,
			rec.CategoryCode,
			nullFloat(rec.CommissionPercent), nullFloat(rec.BaseCalcAmount),
			nullFloat(rec.CommissionAmount), nullFloat(rec.ReversalAmount),
			nullFloat(rec.CancellationAmount), nullFloat(rec.BaseAmount),
			nullFloat(rec.NetAmount), rec.Salesperson,
			nullTime(rec.DueDate), nullTime(rec.PaymentDate),
		); err != nil {
			return "", fmt.Errorf("%w: inserting sale row %d: %v", ErrPersistenceFailed, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: committing batch: %v", ErrPersistenceFailed, err)
	}

	logger.L.Info("Batch persisted", "batchID", batchID, "sourceName", sourceName, "recordCount", len(records))
	return batchID, nil
}

// QueryByBatch returns every sale row belonging to one batch, in insertion
// order. An unknown batch id yields an empty slice.
func (s *Store) QueryByBatch(batchID string) ([]models.SaleRecord, error) {
	rows, err := s.db.Query(`SELECT id, sale_date, allocation_date,
		commissioned_code, salesperson_point_code, team_code, contract,
		consortium_code, consortium_name, quota_status, installment_progress,
		rule_code, category_code, commission_percent, base_calc_amount,
		commission_amount, reversal_amount, cancellation_amount, base_amount,
		net_amount, salesperson, due_date, payment_date
		FROM sales WHERE batch_id = ? ORDER BY id ASC`, batchID)
	if err != nil {
		return nil, fmt.Errorf("error querying sales for batch %s: %w", batchID, err)
	}
	defer rows.Close()
	return scanSaleRows(rows)
}

// QueryBySourceName resolves the most recent batch uploaded under the given
// source filename and returns its rows. No matching batch yields an empty
// slice, not an error.
func (s *Store) QueryBySourceName(sourceName string) ([]models.SaleRecord, error) {
	var batchID string
	err := s.db.QueryRow(
		`SELECT id FROM uploads WHERE source_name = ? ORDER BY upload_time DESC, id DESC LIMIT 1`,
		sourceName,
	).Scan(&batchID)
	if err == sql.ErrNoRows {
		return []models.SaleRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error resolving batch for source %s: %w", sourceName, err)
	}
	return s.QueryByBatch(batchID)
}

// GetBatch returns the metadata of one upload batch.
func (s *Store) GetBatch(batchID string) (*models.UploadBatch, error) {
	var batch models.UploadBatch
	var uploadTime string
	err := s.db.QueryRow(
		`SELECT id, upload_time, source_name, record_count FROM uploads WHERE id = ?`,
		batchID,
	).Scan(&batch.ID, &uploadTime, &batch.SourceName, &batch.RecordCount)
	if err != nil {
		return nil, fmt.Errorf("error querying batch %s: %w", batchID, err)
	}
	if t, err := time.Parse(time.RFC3339, uploadTime); err == nil {
		batch.UploadTime = t
	}
	return &batch, nil
}

// ListBatches returns every upload batch, newest first.
func (s *Store) ListBatches() ([]models.UploadBatch, error) {
	rows, err := s.db.Query(
		`SELECT id, upload_time, source_name, record_count FROM uploads ORDER BY upload_time DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying uploads: %w", err)
	}
	defer rows.Close()

	var batches []models.UploadBatch
	for rows.Next() {
		var batch models.UploadBatch
		var uploadTime string
		if err := rows.Scan(&batch.ID, &uploadTime, &batch.SourceName, &batch.RecordCount); err != nil {
			return nil, fmt.Errorf("error scanning upload row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, uploadTime); err == nil {
			batch.UploadTime = t
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

func scanSaleRows(rows *sql.Rows) ([]models.SaleRecord, error) {
	var records []models.SaleRecord
	for rows.Next() {
		var rec models.SaleRecord
		var saleDate, allocationDate, dueDate, paymentDate sql.NullString
		var commissionPercent, baseCalc, commission, reversal, cancellation, base, net sql.NullFloat64
		if err := rows.Scan(&rec.ID, &saleDate, &allocationDate,
			&rec.CommissionedCode, &rec.SalespersonPointCode, &rec.TeamCode,
			&rec.Contract, &rec.ConsortiumCode, &rec.ConsortiumName,
			&rec.QuotaStatus, &rec.InstallmentProgress, &rec.RuleCode,
			&rec.CategoryCode, &commissionPercent, &baseCalc, &commission,
			&reversal, &cancellation, &base, &net, &rec.Salesperson,
			&dueDate, &paymentDate,
		); err != nil {
			return nil, fmt.Errorf("error scanning sale row: %w", err)
		}
		rec.SaleDate = parseStoredTime(saleDate)
		rec.AllocationDate = parseStoredTime(allocationDate)
		rec.DueDate = parseStoredTime(dueDate)
		rec.PaymentDate = parseStoredTime(paymentDate)
		rec.CommissionPercent = floatPtr(commissionPercent)
		rec.BaseCalcAmount = floatPtr(baseCalc)
		rec.CommissionAmount = floatPtr(commission)
		rec.ReversalAmount = floatPtr(reversal)
		rec.CancellationAmount = floatPtr(cancellation)
		rec.BaseAmount = floatPtr(base)
		rec.NetAmount = floatPtr(net)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Dates are stored as RFC3339 text so sqlite's date functions keep working
// on them.

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func parseStoredTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
