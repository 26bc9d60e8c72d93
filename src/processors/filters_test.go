package processors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/comissio/backend/src/models"
)

func TestFilterOverdue(t *testing.T) {
	frame := salesFrame(
		models.SaleRecord{Contract: "C-1", QuotaStatus: "A"},
		models.SaleRecord{Contract: "C-2", QuotaStatus: "I"},
		models.SaleRecord{Contract: "C-3", QuotaStatus: "C"},
		models.SaleRecord{Contract: "C-4", QuotaStatus: "A"},
	)

	out, err := FilterOverdue(frame, "A")

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "C-2", out[0].Contract)
	assert.Equal(t, "C-3", out[1].Contract)
}

func TestFilterOverdueMissingField(t *testing.T) {
	frame := &models.CanonicalFrame{Fields: []string{models.FieldContract}}

	_, err := FilterOverdue(frame, "A")

	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestFilterByYear(t *testing.T) {
	frame := salesFrame(
		models.SaleRecord{Contract: "C-1", SaleDate: dptr(2025, time.January, 10)},
		models.SaleRecord{Contract: "C-2", SaleDate: dptr(2024, time.December, 31)},
		models.SaleRecord{Contract: "C-3", SaleDate: dptr(2025, time.July, 1)},
		models.SaleRecord{Contract: "C-4", SaleDate: nil},
	)

	out, err := FilterByYear(frame, 2025)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "C-1", out[0].Contract)
	assert.Equal(t, "C-3", out[1].Contract)
}

func TestFilterByYearNoMatches(t *testing.T) {
	frame := salesFrame(
		models.SaleRecord{Contract: "C-1", SaleDate: dptr(2023, time.May, 5)},
	)

	out, err := FilterByYear(frame, 2025)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func delinquencyFrame(records ...models.SaleRecord) *models.CanonicalFrame {
	return &models.CanonicalFrame{
		Fields: []string{
			models.FieldContract, models.FieldConsortiumName,
			models.FieldBaseAmount, models.FieldDueDate,
			models.FieldPaymentDate,
		},
		Records: records,
	}
}

func TestOverdueInstallments(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	frame := delinquencyFrame(
		// due before ref, unpaid: overdue
		models.SaleRecord{Contract: "C-1", DueDate: dptr(2025, time.June, 1)},
		// due exactly on ref, unpaid: overdue
		models.SaleRecord{Contract: "C-2", DueDate: dptr(2025, time.June, 15)},
		// due after ref: not yet overdue
		models.SaleRecord{Contract: "C-3", DueDate: dptr(2025, time.July, 1)},
		// due before ref but paid
		models.SaleRecord{Contract: "C-4", DueDate: dptr(2025, time.June, 1), PaymentDate: dptr(2025, time.June, 5)},
		// no due date at all
		models.SaleRecord{Contract: "C-5"},
	)

	out, err := OverdueInstallments(frame, ref)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "C-1", out[0].Contract)
	assert.Equal(t, "C-2", out[1].Contract)
}

func TestOverdueInstallmentsRequiresExtendedSchema(t *testing.T) {
	frame := salesFrame(models.SaleRecord{Contract: "C-1"})

	_, err := OverdueInstallments(frame, time.Now())

	assert.True(t, errors.Is(err, ErrMissingField))
}
