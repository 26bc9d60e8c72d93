package processors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/comissio/backend/src/models"
)

func fptr(v float64) *float64 { return &v }

func dptr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func salesFrame(records ...models.SaleRecord) *models.CanonicalFrame {
	return &models.CanonicalFrame{
		Fields: []string{
			models.FieldSaleDate, models.FieldContract,
			models.FieldConsortiumName, models.FieldQuotaStatus,
			models.FieldBaseAmount, models.FieldNetAmount,
			models.FieldSalesperson,
		},
		Records: records,
	}
}

func TestTotalNetBySalesperson(t *testing.T) {
	frame := salesFrame(
		models.SaleRecord{Salesperson: "A", NetAmount: fptr(100)},
		models.SaleRecord{Salesperson: "B", NetAmount: fptr(30)},
		models.SaleRecord{Salesperson: "A", NetAmount: fptr(50)},
	)

	totals, err := TotalNetBySalesperson(frame)

	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, models.SalespersonTotal{Salesperson: "A", TotalNet: 150}, totals[0])
	assert.Equal(t, models.SalespersonTotal{Salesperson: "B", TotalNet: 30}, totals[1])
}

func TestTotalNetBySalespersonTieBreaksByName(t *testing.T) {
	frame := salesFrame(
		models.SaleRecord{Salesperson: "Carla", NetAmount: fptr(75)},
		models.SaleRecord{Salesperson: "Bruno", NetAmount: fptr(75)},
	)

	totals, err := TotalNetBySalesperson(frame)

	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Bruno", totals[0].Salesperson)
	assert.Equal(t, "Carla", totals[1].Salesperson)
}

func TestTotalNetBySalespersonSkipsFooterArtifacts(t *testing.T) {
	frame := salesFrame(
		models.SaleRecord{Salesperson: "Ana", NetAmount: fptr(10)},
		models.SaleRecord{Salesperson: "TOTAL GERAL", NetAmount: fptr(9999)},
		models.SaleRecord{Salesperson: "", NetAmount: fptr(5)},
	)

	totals, err := TotalNetBySalesperson(frame)

	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "Ana", totals[0].Salesperson)
}

func TestTotalNetBySalespersonNullNetCountsAsZero(t *testing.T) {
	frame := salesFrame(
		models.SaleRecord{Salesperson: "Ana", NetAmount: fptr(40)},
		models.SaleRecord{Salesperson: "Ana", NetAmount: nil},
	)

	totals, err := TotalNetBySalesperson(frame)

	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 40.0, totals[0].TotalNet)
}

func TestTotalNetBySalespersonMissingField(t *testing.T) {
	frame := &models.CanonicalFrame{
		Fields:  []string{models.FieldSalesperson},
		Records: []models.SaleRecord{{Salesperson: "Ana"}},
	}

	_, err := TotalNetBySalesperson(frame)

	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestTotalNetByConsortiumAndSalesperson(t *testing.T) {
	frame := salesFrame(
		models.SaleRecord{ConsortiumName: "Beta", Salesperson: "Ana", NetAmount: fptr(20)},
		models.SaleRecord{ConsortiumName: "Alfa", Salesperson: "Bruno", NetAmount: fptr(10)},
		models.SaleRecord{ConsortiumName: "Alfa", Salesperson: "Bruno", NetAmount: fptr(15)},
		models.SaleRecord{ConsortiumName: "Alfa", Salesperson: "Ana", NetAmount: fptr(5)},
	)

	totals, err := TotalNetByConsortiumAndSalesperson(frame)

	require.NoError(t, err)
	require.Len(t, totals, 3)
	assert.Equal(t, models.ConsortiumSalespersonTotal{ConsortiumName: "Alfa", Salesperson: "Ana", TotalNet: 5}, totals[0])
	assert.Equal(t, models.ConsortiumSalespersonTotal{ConsortiumName: "Alfa", Salesperson: "Bruno", TotalNet: 25}, totals[1])
	assert.Equal(t, models.ConsortiumSalespersonTotal{ConsortiumName: "Beta", Salesperson: "Ana", TotalNet: 20}, totals[2])
}
