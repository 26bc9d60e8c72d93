package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/utils"
)

// columnMapping resolves folded header text to canonical field names. Both
// the raw export headers (accented, spaced, currency-suffixed) and the
// canonical names themselves are keys, so normalizing an already-canonical
// frame is a no-op.
var columnMapping = map[string]string{
	"DATA VENDA":           models.FieldSaleDate,
	"DATA ALOCACAO":        models.FieldAllocationDate,
	"COD COMISSIONADO":     models.FieldCommissionedCode,
	"COD PV":               models.FieldSalespersonPointCode,
	"COD EQUIPE":           models.FieldTeamCode,
	"CONTRATO":             models.FieldContract,
	"CONSORCIADO":          models.FieldConsortiumCode,
	"NOME CONSORCIADO":     models.FieldConsortiumName,
	"STATUS COTA":          models.FieldQuotaStatus,
	"PARC LIB":             models.FieldInstallmentProgress,
	"REGRA":                models.FieldRuleCode,
	"CATEGORIA":            models.FieldCategoryCode,
	"COMISSAO":             models.FieldCommissionPercent, // "COMISSAO %" folds to this
	"BASE CALC COMISSAO":   models.FieldBaseCalcAmount,
	"COMISSAO R":           models.FieldCommissionAmount, // "COMISSAO R$"
	"ESTORNO R":            models.FieldReversalAmount,
	"CANCELAMENTO COTA R":  models.FieldCancellationAmount,
	"BASE R":               models.FieldBaseAmount,
	"LIQUIDO R":            models.FieldNetAmount,
	"VENDEDOR":             models.FieldSalesperson,
}

// extendedColumnMapping covers the installment columns used only by the
// delinquency statements.
var extendedColumnMapping = map[string]string{
	"DATA VENCIMENTO": models.FieldDueDate,
	"DATA PAGAMENTO":  models.FieldPaymentDate,
}

func init() {
	for _, field := range []string{
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
	} {
		columnMapping[foldHeader(field)] = field
	}
	for _, field := range []string{models.FieldDueDate, models.FieldPaymentDate} {
		extendedColumnMapping[foldHeader(field)] = field
	}
}

var (
	nonAlphanumericRe = regexp.MustCompile(`[^A-Z0-9 ]+`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
)

// foldHeader strips accents, uppercases and collapses punctuation so that
// "DATA ALOCAÇÃO", "Data Alocação" and "data_alocacao" all fold to the
// same lookup key.
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToUpper(folded)
	folded = nonAlphanumericRe.ReplaceAllString(folded, " ")
	folded = whitespaceRe.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}

// nullTokens are the literals that normalize to null, regardless of column.
var nullTokens = map[string]bool{
	"":     true,
	"NULL": true,
	"null": true,
	"nan":  true,
	"NaN":  true,
}

func isNull(cell string) bool {
	return nullTokens[strings.TrimSpace(cell)]
}

// ParseCurrency coerces a currency-formatted cell to a number. Handles the
// localized form ("R$ 1.234,56"), the plain dot-decimal form produced by
// spreadsheet readers ("1234.56") and parenthesized or signed negatives.
// Empty and unparseable cells become nil, never an error.
func ParseCurrency(cell string) *float64 {
	s := strings.TrimSpace(cell)
	if isNull(s) {
		return nil
	}
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return nil
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	}

	// Decide which separator is the decimal mark by position.
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case lastDot > lastComma:
		s = strings.ReplaceAll(s, ",", "")
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if neg {
		v = -v
	}
	return &v
}

// Normalizer maps raw source frames onto the canonical schema. Extended
// enables the due/payment date columns of the delinquency statements.
type Normalizer struct {
	Extended bool
}

func New(extended bool) *Normalizer {
	return &Normalizer{Extended: extended}
}

func (n *Normalizer) resolveField(header string) string {
	key := foldHeader(header)
	if field, ok := columnMapping[key]; ok {
		return field
	}
	if n.Extended {
		if field, ok := extendedColumnMapping[key]; ok {
			return field
		}
	}
	return ""
}

// Normalize converts a raw frame into the canonical frame. Unknown columns
// are dropped; only canonical business fields survive. Date and currency
// cells that fail to parse become null rather than failing the load.
func (n *Normalizer) Normalize(raw *models.RawFrame) *models.CanonicalFrame {
	if raw.IsPDFText() {
		text := ""
		if len(raw.Rows) > 0 && len(raw.Rows[0]) > 0 {
			text = raw.Rows[0][0]
		}
		return &models.CanonicalFrame{PDFText: text}
	}

	fieldByCol := make([]string, len(raw.Columns))
	seen := make(map[string]bool)
	frame := &models.CanonicalFrame{}
	for i, col := range raw.Columns {
		field := n.resolveField(col)
		if field == "" || seen[field] {
			continue
		}
		fieldByCol[i] = field
		seen[field] = true
		frame.Fields = append(frame.Fields, field)
	}

	for _, row := range raw.Rows {
		var rec models.SaleRecord
		for i, cell := range row {
			if i >= len(fieldByCol) || fieldByCol[i] == "" {
				continue
			}
			setField(&rec, fieldByCol[i], cell)
		}
		deriveAmounts(&rec)
		frame.Records = append(frame.Records, rec)
	}

	// Derived amounts count as present once their inputs are.
	if seen[models.FieldBaseCalcAmount] && !seen[models.FieldBaseAmount] {
		frame.Fields = append(frame.Fields, models.FieldBaseAmount)
	}
	if seen[models.FieldCommissionAmount] && !seen[models.FieldNetAmount] {
		frame.Fields = append(frame.Fields, models.FieldNetAmount)
	}

	return frame
}

func setField(rec *models.SaleRecord, field, cell string) {
	switch field {
	case models.FieldSaleDate:
		rec.SaleDate = parseDate(cell)
	case models.FieldAllocationDate:
		rec.AllocationDate = parseDate(cell)
	case models.FieldDueDate:
		rec.DueDate = parseDate(cell)
	case models.FieldPaymentDate:
		rec.PaymentDate = parseDate(cell)
	case models.FieldCommissionPercent:
		rec.CommissionPercent = ParseCurrency(cell)
	case models.FieldBaseCalcAmount:
		rec.BaseCalcAmount = ParseCurrency(cell)
	case models.FieldCommissionAmount:
		rec.CommissionAmount = ParseCurrency(cell)
	case models.FieldReversalAmount:
		rec.ReversalAmount = ParseCurrency(cell)
	case models.FieldCancellationAmount:
		rec.CancellationAmount = ParseCurrency(cell)
	case models.FieldBaseAmount:
		rec.BaseAmount = ParseCurrency(cell)
	case models.FieldNetAmount:
		rec.NetAmount = ParseCurrency(cell)
	default:
		setStringField(rec, field, cell)
	}
}

func setStringField(rec *models.SaleRecord, field, cell string) {
	s := strings.TrimSpace(cell)
	if isNull(s) {
		s = ""
	}
	switch field {
	case models.FieldCommissionedCode:
		rec.CommissionedCode = s
	case models.FieldSalespersonPointCode:
		rec.SalespersonPointCode = s
	case models.FieldTeamCode:
		rec.TeamCode = s
	case models.FieldContract:
		rec.Contract = s
	case models.FieldConsortiumCode:
		rec.ConsortiumCode = s
	case models.FieldConsortiumName:
		rec.ConsortiumName = s
	case models.FieldQuotaStatus:
		rec.QuotaStatus = s
	case models.FieldInstallmentProgress:
		rec.InstallmentProgress = s
	case models.FieldRuleCode:
		rec.RuleCode = s
	case models.FieldCategoryCode:
		rec.CategoryCode = s
	case models.FieldSalesperson:
		rec.Salesperson = s
	}
}

func parseDate(cell string) *time.Time {
	if isNull(cell) {
		return nil
	}
	return utils.ParseDayFirst(cell)
}

// deriveAmounts fills base_amount and net_amount from their components when
// the source omitted them. base = base_calc − reversal − cancellation,
// net = commission − reversal − cancellation; these identities must hold on
// every canonical row.
func deriveAmounts(rec *models.SaleRecord) {
	reversal := 0.0
	if rec.ReversalAmount != nil {
		reversal = *rec.ReversalAmount
	}
	cancellation := 0.0
	if rec.CancellationAmount != nil {
		cancellation = *rec.CancellationAmount
	}
	if rec.BaseAmount == nil && rec.BaseCalcAmount != nil {
		v := *rec.BaseCalcAmount - reversal - cancellation
		rec.BaseAmount = &v
	}
	if rec.NetAmount == nil && rec.CommissionAmount != nil {
		v := *rec.CommissionAmount - reversal - cancellation
		rec.NetAmount = &v
	}
}
