package processors

import (
	"time"

	"github.com/username/comissio/backend/src/models"
	"github.com/username/comissio/backend/src/utils"
)

// DelinquentClients lists the contracts with at least one overdue
// installment at the reference date, deduplicated by (contract,
// consortium), keeping the first occurrence. An empty result is a valid
// outcome, not an error.
func DelinquentClients(frame *models.CanonicalFrame, ref time.Time) ([]models.DelinquentClient, error) {
	overdue, err := OverdueInstallments(frame, ref)
	if err != nil {
		return nil, err
	}

	type key struct{ contract, consortium string }
	seen := make(map[key]bool)
	out := []models.DelinquentClient{}
	for _, rec := range overdue {
		k := key{rec.Contract, rec.ConsortiumName}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, models.DelinquentClient{
			Contract:       rec.Contract,
			ConsortiumName: rec.ConsortiumName,
			BaseAmount:     rec.Base(),
		})
	}
	return out, nil
}

// TotalCreditOverdue sums the base amount across delinquent clients.
// Returns 0.0 when nothing is overdue.
func TotalCreditOverdue(frame *models.CanonicalFrame, ref time.Time) (float64, error) {
	clients, err := DelinquentClients(frame, ref)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, c := range clients {
		total += c.BaseAmount
	}
	return utils.RoundFloat(total, 2), nil
}

// CountDelinquent returns the number of delinquent clients. Always equals
// len(DelinquentClients(...)).
func CountDelinquent(frame *models.CanonicalFrame, ref time.Time) (int, error) {
	clients, err := DelinquentClients(frame, ref)
	if err != nil {
		return 0, err
	}
	return len(clients), nil
}
