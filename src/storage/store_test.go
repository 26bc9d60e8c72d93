package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/comissio/backend/src/database"
	"github.com/username/comissio/backend/src/logger"
	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/processors"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	m.Run()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	return NewStore(database.DB)
}

func fptr(v float64) *float64 { return &v }

func dptr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleRecords() []models.SaleRecord {
	return []models.SaleRecord{
		{
			SaleDate:       dptr(2025, time.March, 15),
			Contract:       "C-001",
			ConsortiumName: "Consórcio Alfa",
			QuotaStatus:    "A",
			Salesperson:    "Ana Silva",
			NetAmount:      fptr(1234.56),
			BaseAmount:     fptr(2000),
		},
		{
			SaleDate:       dptr(2024, time.December, 1),
			Contract:       "C-002",
			ConsortiumName: "Consórcio Beta",
			QuotaStatus:    "I",
			Salesperson:    "João Souza",
			NetAmount:      nil, // null amounts survive the round trip as null
			BaseAmount:     fptr(500),
		},
	}
}

func TestInsertBatchRoundTrip(t *testing.T) {
	store := newTestStore(t)

	batchID, err := store.InsertBatch(sampleRecords(), "vendas_marco.xlsx")
	require.NoError(t, err)
	require.NotEmpty(t, batchID)

	records, err := store.QueryByBatch(batchID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "C-001", first.Contract)
	assert.Equal(t, "Ana Silva", first.Salesperson)
	require.NotNil(t, first.SaleDate)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), first.SaleDate.UTC())
	require.NotNil(t, first.NetAmount)
	assert.InDelta(t, 1234.56, *first.NetAmount, 0.001)

	second := records[1]
	assert.Nil(t, second.NetAmount)
	assert.Nil(t, second.DueDate)
}

func TestInsertBatchRecordsBatchMetadata(t *testing.T) {
	store := newTestStore(t)

	batchID, err := store.InsertBatch(sampleRecords(), "vendas.csv")
	require.NoError(t, err)

	batch, err := store.GetBatch(batchID)
	require.NoError(t, err)
	assert.Equal(t, batchID, batch.ID)
	assert.Equal(t, "vendas.csv", batch.SourceName)
	assert.Equal(t, 2, batch.RecordCount)
	assert.WithinDuration(t, time.Now().UTC(), batch.UploadTime, time.Minute)
}

func TestQueryByBatchUnknownIDIsEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.QueryByBatch("no-such-batch")

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryBySourceNamePicksNewest(t *testing.T) {
	store := newTestStore(t)

	_, err := store.InsertBatch(sampleRecords()[:1], "vendas.csv")
	require.NoError(t, err)
	secondID, err := store.InsertBatch(sampleRecords(), "vendas.csv")
	require.NoError(t, err)

	records, err := store.QueryBySourceName("vendas.csv")
	require.NoError(t, err)

	expected, err := store.QueryByBatch(secondID)
	require.NoError(t, err)
	assert.Equal(t, expected, records)
}

func TestQueryBySourceNameUnknownIsEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.QueryBySourceName("nunca_carregado.csv")

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestListBatchesNewestFirst(t *testing.T) {
	store := newTestStore(t)

	firstID, err := store.InsertBatch(sampleRecords(), "a.csv")
	require.NoError(t, err)
	secondID, err := store.InsertBatch(sampleRecords(), "b.csv")
	require.NoError(t, err)

	batches, err := store.ListBatches()
	require.NoError(t, err)
	require.Len(t, batches, 2)
	ids := []string{batches[0].ID, batches[1].ID}
	assert.Contains(t, ids, firstID)
	assert.Contains(t, ids, secondID)
}

func TestExtendedColumnsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	records := []models.SaleRecord{
		{
			Contract:       "C-010",
			ConsortiumName: "Gama",
			BaseAmount:     fptr(750),
			DueDate:        dptr(2025, time.June, 1),
			PaymentDate:    nil,
		},
	}
	batchID, err := store.InsertBatch(records, "inadimplencia.xlsx")
	require.NoError(t, err)

	got, err := store.QueryByBatch(batchID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].DueDate)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got[0].DueDate.UTC())
	assert.Nil(t, got[0].PaymentDate)
}

// The persisted batch and the in-memory frame must serve identical
// aggregation results for the same rows.
func TestBatchSourceMatchesFrameSource(t *testing.T) {
	store := newTestStore(t)

	records := []models.SaleRecord{
		{ConsortiumName: "Alfa", Salesperson: "Ana", NetAmount: fptr(100), QuotaStatus: "A", SaleDate: dptr(2025, time.March, 10)},
		{ConsortiumName: "Alfa", Salesperson: "Bruno", NetAmount: fptr(50), QuotaStatus: "I", SaleDate: dptr(2025, time.March, 12)},
		{ConsortiumName: "Beta", Salesperson: "Ana", NetAmount: fptr(200), QuotaStatus: "A", SaleDate: dptr(2024, time.April, 1)},
	}
	batchID, err := store.InsertBatch(records, "vendas.xlsx")
	require.NoError(t, err)

	batchSource := NewBatchSource(store, batchID)
	stored, err := batchSource.Records()
	require.NoError(t, err)
	frameSource := processors.NewFrameSource(&models.CanonicalFrame{
		Records: stored,
		Fields:  allBatchFields,
	})

	fromBatch, err := batchSource.TotalNetBySalesperson()
	require.NoError(t, err)
	fromFrame, err := frameSource.TotalNetBySalesperson()
	require.NoError(t, err)
	assert.Equal(t, fromFrame, fromBatch)

	pairBatch, err := batchSource.TotalNetByConsortiumAndSalesperson()
	require.NoError(t, err)
	pairFrame, err := frameSource.TotalNetByConsortiumAndSalesperson()
	require.NoError(t, err)
	assert.Equal(t, pairFrame, pairBatch)

	overdueBatch, err := batchSource.FilterOverdue("A")
	require.NoError(t, err)
	overdueFrame, err := frameSource.FilterOverdue("A")
	require.NoError(t, err)
	assert.Equal(t, overdueFrame, overdueBatch)

	yearBatch, err := batchSource.FilterByYear(2025)
	require.NoError(t, err)
	yearFrame, err := frameSource.FilterByYear(2025)
	require.NoError(t, err)
	assert.Equal(t, yearFrame, yearBatch)

	reportBatch, err := batchSource.ReportByConsortium(1.2)
	require.NoError(t, err)
	reportFrame, err := frameSource.ReportByConsortium(1.2)
	require.NoError(t, err)
	assert.Equal(t, reportFrame, reportBatch)
}
