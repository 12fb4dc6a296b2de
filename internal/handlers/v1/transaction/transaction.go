package transaction

import (
	"time"

	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
)

// Transaction is the API response model for an imported bank transaction.
type Transaction struct {
	ID           string `json:"id" doc:"Transaction UUID"`
	ConnectionID string `json:"connectionID" doc:"Bank connection it was imported from"`
	ExternalID   string `json:"externalID" doc:"Provider's id, unique per connection"`
	Date         string `json:"date" format:"date"`
	Amount       string `json:"amount" doc:"Signed decimal amount, negative for money out"`
	Description  string `json:"description"`
	IsReconciled bool   `json:"isReconciled"`
	ReconciledAt string `json:"reconciledAt,omitempty" format:"date-time"`
	JournalID    string `json:"journalID,omitempty" doc:"Matched journal entry"`
	CreatedAt    string `json:"createdAt" format:"date-time"`
}

func toTransaction(tx *banking.Transaction) Transaction {
	out := Transaction{
		ID:           tx.ID.String(),
		ConnectionID: tx.BankConnectionID.String(),
		ExternalID:   tx.ExternalID,
		Date:         params.FormatDate(tx.Date),
		Amount:       ledger.FormatDecimal(tx.Amount, tx.Currency),
		Description:  tx.Description,
		IsReconciled: tx.IsReconciled,
		CreatedAt:    tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.ReconciledAt != nil {
		out.ReconciledAt = tx.ReconciledAt.Format(time.RFC3339)
	}
	if tx.JournalID.Valid {
		out.JournalID = tx.JournalID.UUID.String()
	}
	return out
}
