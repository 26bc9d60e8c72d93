package processors

import (
	"fmt"
	"time"

	"github.com/username/comissio/backend/src/models"
)

func requireFields(frame *models.CanonicalFrame, fields ...string) error {
	for _, f := range fields {
		if !frame.HasField(f) {
			return fmt.Errorf("%w: %s", ErrMissingField, f)
		}
	}
	return nil
}

// FilterOverdue returns the rows whose quota status differs from the
// active sentinel. The sentinel varies across statement eras ("A" vs
// "Ativa"), so the caller supplies it from configuration.
func FilterOverdue(frame *models.CanonicalFrame, activeStatus string) ([]models.SaleRecord, error) {
	if err := requireFields(frame, models.FieldQuotaStatus); err != nil {
		return nil, err
	}
	var out []models.SaleRecord
	for _, rec := range frame.Records {
		if rec.QuotaStatus != activeStatus {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FilterByYear returns the rows whose sale date falls in the given year.
// Rows with a null sale date are excluded.
func FilterByYear(frame *models.CanonicalFrame, year int) ([]models.SaleRecord, error) {
	if err := requireFields(frame, models.FieldSaleDate); err != nil {
		return nil, err
	}
	var out []models.SaleRecord
	for _, rec := range frame.Records {
		if rec.SaleDate != nil && rec.SaleDate.Year() == year {
			out = append(out, rec)
		}
	}
	return out, nil
}

// OverdueInstallments returns the rows due on or before the reference date
// that have no payment date. Requires the extended installment schema; the
// base commission statements never carry these columns.
func OverdueInstallments(frame *models.CanonicalFrame, ref time.Time) ([]models.SaleRecord, error) {
	if err := requireFields(frame, models.FieldDueDate, models.FieldPaymentDate); err != nil {
		return nil, err
	}
	var out []models.SaleRecord
	for _, rec := range frame.Records {
		if rec.DueDate != nil && !rec.DueDate.After(ref) && rec.PaymentDate == nil {
			out = append(out, rec)
		}
	}
	return out, nil
}
