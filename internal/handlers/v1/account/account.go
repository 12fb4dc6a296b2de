package account

import (
	"time"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// Account is the API response model for a chart-of-accounts entry.
type Account struct {
	ID            string `json:"id" doc:"Account UUID"`
	Code          string `json:"code" doc:"Account code, unique per company"`
	Name          string `json:"name" doc:"Account name"`
	Type          string `json:"type" enum:"asset,liability,equity,revenue,expense" doc:"Account type"`
	NormalBalance string `json:"normalBalance" enum:"debit,credit" doc:"Side that increases the account"`
	IsActive      bool   `json:"isActive" doc:"Inactive accounts reject new postings"`
	Description   string `json:"description,omitempty" doc:"Free-form description"`
	CreatedAt     string `json:"createdAt" format:"date-time" doc:"Creation time"`
}

func toAccount(a *ledger.Account) Account {
	return Account{
		ID:            a.ID.String(),
		Code:          a.Code,
		Name:          a.Name,
		Type:          string(a.Type),
		NormalBalance: string(a.NormalBalance),
		IsActive:      a.IsActive,
		Description:   a.Description,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}
