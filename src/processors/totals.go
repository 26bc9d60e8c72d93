package processors

import (
	"sort"

	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/normalizer"
	"github.com/username/comissio/backend/src/utils"
)

// TotalNetBySalesperson groups rows by salesperson and sums the net amount,
// sorted by total descending (name ascending on ties, for determinism).
// Rows failing the salesperson validity predicate are excluded even when the
// frame was never sanitized; one leaked subtotal row would corrupt the sums.
func TotalNetBySalesperson(frame *models.CanonicalFrame) ([]models.SalespersonTotal, error) {
	if err := requireFields(frame, models.FieldSalesperson, models.FieldNetAmount); err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, rec := range frame.Records {
		if !normalizer.ValidSalesperson(rec.Salesperson) {
			continue
		}
		totals[rec.Salesperson] += rec.Net()
	}

	out := make([]models.SalespersonTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, models.SalespersonTotal{
			Salesperson: name,
			TotalNet:    utils.RoundFloat(total, 2),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalNet != out[j].TotalNet {
			return out[i].TotalNet > out[j].TotalNet
		}
		return out[i].Salesperson < out[j].Salesperson
	})
	return out, nil
}

// TotalNetByConsortiumAndSalesperson groups rows by the (consortium,
// salesperson) pair and sums the net amount, sorted by the pair ascending.
func TotalNetByConsortiumAndSalesperson(frame *models.CanonicalFrame) ([]models.ConsortiumSalespersonTotal, error) {
	if err := requireFields(frame, models.FieldConsortiumName, models.FieldSalesperson, models.FieldNetAmount); err != nil {
		return nil, err
	}

	type pair struct{ consortium, salesperson string }
	totals := make(map[pair]float64)
	for _, rec := range frame.Records {
		totals[pair{rec.ConsortiumName, rec.Salesperson}] += rec.Net()
	}

	out := make([]models.ConsortiumSalespersonTotal, 0, len(totals))
	for p, total := range totals {
		out = append(out, models.ConsortiumSalespersonTotal{
			ConsortiumName: p.consortium,
			Salesperson:    p.salesperson,
			TotalNet:       utils.RoundFloat(total, 2),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConsortiumName != out[j].ConsortiumName {
			return out[i].ConsortiumName < out[j].ConsortiumName
		}
		return out[i].Salesperson < out[j].Salesperson
	})
	return out, nil
}
