package models

import "time"

// Canonical field identifiers. These are the only columns that survive
// normalization; anything else in a source file is dropped.
const (
	FieldSaleDate             = "sale_date"
	FieldAllocationDate       = "allocation_date"
	FieldCommissionedCode     = "commissioned_code"
	FieldSalespersonPointCode = "salesperson_point_code"
	FieldTeamCode             = "team_code"
	FieldContract             = "contract"
	FieldConsortiumCode       = "consortium_code"
	FieldConsortiumName       = "consortium_name"
	FieldQuotaStatus          = "quota_status"
	FieldInstallmentProgress  = "installment_progress"
	FieldRuleCode             = "rule_code"
	FieldCategoryCode         = "category_code"
	FieldCommissionPercent    = "commission_percent"
	FieldBaseCalcAmount       = "base_calc_amount"
	FieldCommissionAmount     = "commission_amount"
	FieldReversalAmount       = "reversal_amount"
	FieldCancellationAmount   = "cancellation_amount"
	FieldBaseAmount           = "base_amount"
	FieldNetAmount            = "net_amount"
	FieldSalesperson          = "salesperson"

	// Extended-schema fields, populated only for delinquency statements.
	FieldDueDate     = "due_date"
	FieldPaymentDate = "payment_date"
)

// SaleRecord is one row of the canonical frame. Dates and currency amounts
// are pointers because statement exports routinely carry unparseable or
// empty cells; a nil value means "null", never zero.
type SaleRecord struct {
	ID int64 `json:"id,omitempty"` // database primary key, zero for in-memory rows

	SaleDate       *time.Time `json:"sale_date"`
	AllocationDate *time.Time `json:"allocation_date"`

	CommissionedCode     string `json:"commissioned_code"`
	SalespersonPointCode string `json:"salesperson_point_code"`
	TeamCode             string `json:"team_code"`
	Contract             string `json:"contract"`
	ConsortiumCode       string `json:"consortium_code"`
	ConsortiumName       string `json:"consortium_name"`
	QuotaStatus          string `json:"quota_status"`
	InstallmentProgress  string `json:"installment_progress"`
	RuleCode             string `json:"rule_code"`
	CategoryCode         string `json:"category_code"`
	Salesperson          string `json:"salesperson"`

	CommissionPercent  *float64 `json:"commission_percent"`
	BaseCalcAmount     *float64 `json:"base_calc_amount"`
	CommissionAmount   *float64 `json:"commission_amount"`
	ReversalAmount     *float64 `json:"reversal_amount"`
	CancellationAmount *float64 `json:"cancellation_amount"`
	BaseAmount         *float64 `json:"base_amount"`
	NetAmount          *float64 `json:"net_amount"`

	DueDate     *time.Time `json:"due_date,omitempty"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

// Net returns the net amount, treating null as zero for aggregation.
func (r *SaleRecord) Net() float64 {
	if r.NetAmount == nil {
		return 0
	}
	return *r.NetAmount
}

// Base returns the base amount, treating null as zero for aggregation.
func (r *SaleRecord) Base() float64 {
	if r.BaseAmount == nil {
		return 0
	}
	return *r.BaseAmount
}

// UploadBatch is the persistence-side metadata of one load-and-persist
// operation. Records belonging to a batch are immutable once inserted;
// corrections require a new batch.
type UploadBatch struct {
	ID          string    `json:"id"`
	UploadTime  time.Time `json:"upload_time"`
	SourceName  string    `json:"source_name"`
	RecordCount int       `json:"record_count"`
}

// SalespersonTotal is one row of the flat salesperson aggregation.
type SalespersonTotal struct {
	Salesperson string  `json:"salesperson"`
	TotalNet    float64 `json:"total_net"`
}

// ConsortiumSalespersonTotal is one row of the (consortium, salesperson)
// pair aggregation.
type ConsortiumSalespersonTotal struct {
	ConsortiumName string  `json:"consortium_name"`
	Salesperson    string  `json:"salesperson"`
	TotalNet       float64 `json:"total_net"`
}

// SalespersonMarkupTotal carries a salesperson subtotal alongside the same
// figure with the consortium markup applied.
type SalespersonMarkupTotal struct {
	Salesperson string  `json:"salesperson"`
	TotalNet    float64 `json:"total_net"`
	TotalMarked float64 `json:"total_marked"`
}

// ConsortiumReport is the nested per-consortium aggregation: the group's
// first sale date, per-salesperson subtotals and the grand total of the
// marked-up column.
type ConsortiumReport struct {
	SaleDate    *time.Time               `json:"sale_date"`
	Salespeople []SalespersonMarkupTotal `json:"salespeople"`
	GrandTotal  float64                  `json:"grand_total"`
}

// DelinquentClient is one deduplicated overdue contract.
type DelinquentClient struct {
	Contract       string  `json:"contract"`
	ConsortiumName string  `json:"consortium_name"`
	BaseAmount     float64 `json:"base_amount"`
}
