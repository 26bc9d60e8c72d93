package validation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/comissio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	m.Run()
}

func TestValidateClientContentType(t *testing.T) {
	for _, ct := range []string{
		"text/csv",
		"text/csv; charset=utf-8",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/pdf",
	} {
		assert.NoError(t, ValidateClientContentType(ct), ct)
	}

	for _, ct := range []string{
		"application/x-msdownload",
		"image/png",
		"",
	} {
		assert.Error(t, ValidateClientContentType(ct), ct)
	}
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	testCases := []struct {
		name     string
		content  []byte
		expected string
		wantErr  bool
	}{
		{"xlsx zip signature", []byte("PK\x03\x04rest-of-zip"), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", false},
		{"legacy xls signature", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}, "application/vnd.ms-excel", false},
		{"pdf signature", []byte("%PDF-1.7 rest"), "application/pdf", false},
		{"plain csv text", []byte("DATA VENDA;VENDEDOR\n15/03/2025;Ana\n"), "text/plain", false},
		{"png is rejected", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			detected, err := ValidateFileContentByMagicBytes(bytes.NewReader(tc.content))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, detected)
		})
	}
}

func TestValidateFileContentResetsReader(t *testing.T) {
	content := []byte("%PDF-1.7 corpo do documento")
	reader := bytes.NewReader(content)

	_, err := ValidateFileContentByMagicBytes(reader)
	require.NoError(t, err)

	pos, err := reader.Seek(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos, "reader must be rewound for the loader")
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", SanitizeForFormulaInjection("=SUM(A1)"))
	assert.Equal(t, "'+algo", SanitizeForFormulaInjection("+algo"))
	assert.Equal(t, "'-algo", SanitizeForFormulaInjection("-algo"))
	assert.Equal(t, "'@algo", SanitizeForFormulaInjection("@algo"))
	assert.Equal(t, "Ana Silva", SanitizeForFormulaInjection("Ana Silva"))
	assert.Equal(t, "", SanitizeForFormulaInjection(""))
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "Ana Silva\n", StripUnprintable("Ana\x00 Silva\n"))
	assert.Equal(t, "consórcio", StripUnprintable("consórcio"))
}
