package sqlconfig

import (
	"errors"
	"net/url"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"

	"github.com/carson-networks/ledger-server/internal/config"
)

// Table names.
const (
	TableCompanies         = "companies"
	TableAccounts          = "accounts"
	TableJournals          = "journals"
	TableJournalLines      = "journal_lines"
	TableBankConnections   = "bank_connections"
	TableTransactions      = "transactions"
	TableRecurringProfiles = "recurring_profiles"
	TableInvoices          = "invoices"
)

// Constraint names the writers react to.
const (
	ConstraintJournalSource  = "journals_source_key"
	ConstraintAccountCode    = "accounts_company_code_key"
	ConstraintTransactionExt = "transactions_connection_external_key"
)

const uniqueViolation = "23505"

// ConnectionString builds the lib/pq DSN for the configured database.
func ConnectionString(env *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(env.PostgresUsername, env.PostgresPassword),
		Host:     env.PostgresAddress + ":" + env.PostgresPort,
		Path:     "/" + env.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// IsUniqueViolation reports whether err is a unique-constraint failure. An empty
// constraint matches any unique constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// NullUUID maps uuid.Nil to SQL NULL.
func NullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

// UUIDArray renders ids for `= ANY(?::uuid[])`.
func UUIDArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
