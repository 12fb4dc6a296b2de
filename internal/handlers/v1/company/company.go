package company

import (
	"time"

	"github.com/carson-networks/ledger-server/internal/storage/company"
)

// Company is the API response model for a company.
type Company struct {
	ID           string `json:"id" doc:"Company UUID"`
	Name         string `json:"name" doc:"Legal or trading name"`
	BaseCurrency string `json:"baseCurrency" doc:"ISO-4217 currency all amounts are kept in"`
	CreatedAt    string `json:"createdAt" format:"date-time" doc:"Creation time"`
}

func toCompany(c *company.Company) Company {
	return Company{
		ID:           c.ID.String(),
		Name:         c.Name,
		BaseCurrency: c.BaseCurrency,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}
