package services

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/comissio/backend/src/config"
	"github.com/username/comissio/backend/src/database"
	"github.com/username/comissio/backend/src/logger"
	"github.com/username/comissio/backend/src/storage"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	m.Run()
}

func newTestService(t *testing.T) DatasetService {
	t.Helper()
	config.Cfg = &config.AppConfig{
		MaxUploadSizeBytes: 10 * 1024 * 1024,
		CSVDialect:         "localized",
		ActiveQuotaStatus:  "A",
		ConsortiumMarkup:   1.2,
		ExtendedSchema:     false,
	}
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	return NewDatasetService(storage.NewStore(database.DB), cache.New(time.Minute, time.Minute))
}

const sampleCSV = `DATA VENDA;NOME CONSORCIADO;STATUS COTA;VENDEDOR;LIQUIDO R$
15/03/2025;Consórcio Alfa;A;Ana Silva;100,00
16/03/2025;Consórcio Alfa;I;Bruno Costa;50,00
01/04/2024;Consórcio Beta;A;Ana Silva;200,00
;;;TOTAL GERAL;350,00
`

func TestProcessUploadInMemory(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.ProcessUpload(strings.NewReader(sampleCSV), "vendas.csv", false)
	require.NoError(t, err)

	assert.Empty(t, result.BatchID)
	assert.False(t, result.Persisted)
	assert.Equal(t, "vendas.csv", result.SourceName)
	// Footer row is sanitized out before anything downstream sees it.
	assert.Equal(t, 3, result.RecordCount)
	require.NotNil(t, svc.LatestFrame())
	assert.Len(t, svc.LatestFrame().Records, 3)
}

func TestProcessUploadPersisted(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.ProcessUpload(strings.NewReader(sampleCSV), "vendas.csv", true)
	require.NoError(t, err)
	require.True(t, result.Persisted)
	require.NotEmpty(t, result.BatchID)

	batch, err := svc.GetBatch(result.BatchID)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.RecordCount)

	records, err := svc.BatchRecords(result.BatchID)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestProcessUploadUnsupportedFormat(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ProcessUpload(strings.NewReader("conteúdo"), "vendas.txt", false)

	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestSalespersonTotalsFromLatestUpload(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ProcessUpload(strings.NewReader(sampleCSV), "vendas.csv", false)
	require.NoError(t, err)

	totals, err := svc.SalespersonTotals("")
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Ana Silva", totals[0].Salesperson)
	assert.InDelta(t, 300.0, totals[0].TotalNet, 0.001)
	assert.Equal(t, "Bruno Costa", totals[1].Salesperson)
}

func TestSalespersonTotalsEquivalentAcrossSources(t *testing.T) {
	svc := newTestService(t)
	result, err := svc.ProcessUpload(strings.NewReader(sampleCSV), "vendas.csv", true)
	require.NoError(t, err)

	fromMemory, err := svc.SalespersonTotals("")
	require.NoError(t, err)
	fromBatch, err := svc.SalespersonTotals(result.BatchID)
	require.NoError(t, err)

	assert.Equal(t, fromMemory, fromBatch)
}

func TestConsortiumReportAppliesConfiguredMarkup(t *testing.T) {
	svc := newTestService(t)
	config.Cfg.ConsortiumMarkup = 1.5
	_, err := svc.ProcessUpload(strings.NewReader(sampleCSV), "vendas.csv", false)
	require.NoError(t, err)

	report, err := svc.ConsortiumReport("")
	require.NoError(t, err)

	alfa := report["Consórcio Alfa"]
	require.Len(t, alfa.Salespeople, 2)
	assert.InDelta(t, 150.0, alfa.Salespeople[0].TotalMarked, 0.001)
}

func TestReportsWithoutDataset(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SalespersonTotals("")
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Source("unknown-batch")
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestOverdueQuotasUsesConfiguredStatus(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ProcessUpload(strings.NewReader(sampleCSV), "vendas.csv", false)
	require.NoError(t, err)

	overdue, err := svc.OverdueQuotas("")
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Bruno Costa", overdue[0].Salesperson)
}

func TestSalesByYear(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ProcessUpload(strings.NewReader(sampleCSV), "vendas.csv", false)
	require.NoError(t, err)

	records, err := svc.SalesByYear("", 2025)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCachedTotalsInvalidateOnNewUpload(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ProcessUpload(strings.NewReader(sampleCSV), "vendas.csv", false)
	require.NoError(t, err)

	before, err := svc.SalespersonTotals("")
	require.NoError(t, err)
	require.Len(t, before, 2)

	smaller := "DATA VENDA;NOME CONSORCIADO;STATUS COTA;VENDEDOR;LIQUIDO R$\n01/01/2025;Gama;A;Carla Dias;10,00\n"
	_, err = svc.ProcessUpload(strings.NewReader(smaller), "vendas2.csv", false)
	require.NoError(t, err)

	after, err := svc.SalespersonTotals("")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "Carla Dias", after[0].Salesperson)
}
