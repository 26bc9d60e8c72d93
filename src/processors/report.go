package processors

import (
	"sort"
	"time"

	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/utils"
)

// DefaultConsortiumMarkup is the uniform multiplier applied to every
// per-salesperson subtotal in the consortium report. A business constant
// inherited from the statement workflow; overridable via configuration.
const DefaultConsortiumMarkup = 1.2

// ReportByConsortium builds the nested per-consortium report: the group's
// first sale date, each salesperson's net subtotal with the markup applied,
// and the grand total of the marked-up column.
func ReportByConsortium(frame *models.CanonicalFrame, markup float64) (map[string]models.ConsortiumReport, error) {
	if err := requireFields(frame, models.FieldConsortiumName, models.FieldSalesperson, models.FieldNetAmount); err != nil {
		return nil, err
	}
	if markup == 0 {
		markup = DefaultConsortiumMarkup
	}

	type group struct {
		saleDate *time.Time
		totals   map[string]float64
	}
	groups := make(map[string]*group)
	for _, rec := range frame.Records {
		g, ok := groups[rec.ConsortiumName]
		if !ok {
			g = &group{saleDate: rec.SaleDate, totals: make(map[string]float64)}
			groups[rec.ConsortiumName] = g
		}
		g.totals[rec.Salesperson] += rec.Net()
	}

	report := make(map[string]models.ConsortiumReport, len(groups))
	for name, g := range groups {
		salespeople := make([]models.SalespersonMarkupTotal, 0, len(g.totals))
		for salesperson, total := range g.totals {
			salespeople = append(salespeople, models.SalespersonMarkupTotal{
				Salesperson: salesperson,
				TotalNet:    utils.RoundFloat(total, 2),
				TotalMarked: utils.RoundFloat(total*markup, 2),
			})
		}
		sort.Slice(salespeople, func(i, j int) bool {
			return salespeople[i].Salesperson < salespeople[j].Salesperson
		})

		grandTotal := 0.0
		for _, sp := range salespeople {
			grandTotal += sp.TotalMarked
		}
		report[name] = models.ConsortiumReport{
			SaleDate:    g.saleDate,
			Salespeople: salespeople,
			GrandTotal:  utils.RoundFloat(grandTotal, 2),
		}
	}
	return report, nil
}
