package journal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

const defaultLimit = 20

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// FindByID returns the entry with its lines, or nil when it does not exist for the company.
func (r *Reader) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.JournalEntry, error) {
	entry, err := r.findHeader(ctx,
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
	)
	if entry == nil || err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, []*ledger.JournalEntry{entry}); err != nil {
		return nil, err
	}
	return entry, nil
}

// FindBySource returns the header of the entry a company posted for a source
// document, or nil.
func (r *Reader) FindBySource(ctx context.Context, companyID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID) (*ledger.JournalEntry, error) {
	if sourceID == uuid.Nil {
		return nil, nil
	}
	return r.findHeader(ctx,
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
		sm.Where(psql.Quote("source_type").EQ(psql.Arg(string(sourceType)))),
		sm.Where(psql.Quote("source_id").EQ(psql.Arg(sourceID))),
	)
}

func (r *Reader) findHeader(ctx context.Context, where ...bob.Mod[*dialect.SelectQuery]) (*ledger.JournalEntry, error) {
	mods := append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableJournals),
	}, where...)
	row, err := bob.One(ctx, r.exec, psql.Select(mods...), scan.StructMapper[journalRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rowToEntry(row), nil
}

// List returns a page of entries, newest first, each with its lines. filter must be non-nil.
func (r *Reader) List(ctx context.Context, filter *JournalFilter) (*JournalListResult, error) {
	limit := defaultLimit
	offset := filter.Offset
	maxCreationTime := time.Now().UTC()
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	if filter.MaxCreationTime != nil {
		maxCreationTime = *filter.MaxCreationTime
	}

	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableJournals),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(filter.CompanyID))),
		sm.Where(psql.Quote("created_at").LTE(psql.Arg(maxCreationTime))),
		sm.OrderBy("entry_date").Desc(),
		sm.OrderBy("id").Desc(),
		sm.Limit(limit + 1),
		sm.Offset(offset),
	}
	if filter.SourceType != nil {
		mods = append(mods, sm.Where(psql.Quote("source_type").EQ(psql.Arg(string(*filter.SourceType)))))
	}
	if filter.From != nil {
		mods = append(mods, sm.Where(psql.Quote("entry_date").GTE(psql.Arg(*filter.From))))
	}
	if filter.To != nil {
		mods = append(mods, sm.Where(psql.Quote("entry_date").LTE(psql.Arg(*filter.To))))
	}

	rows, err := bob.All(ctx, r.exec, psql.Select(mods...), scan.StructMapper[journalRow]())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &JournalListResult{}, nil
	}

	var nextCursor *JournalCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &JournalCursor{
			Position:        offset + limit,
			Limit:           limit,
			MaxCreationTime: maxCreationTime,
		}
	}

	entries := make([]*ledger.JournalEntry, len(rows))
	for i, row := range rows {
		entries[i] = rowToEntry(row)
	}
	if err := r.loadLines(ctx, entries); err != nil {
		return nil, err
	}
	return &JournalListResult{Journals: entries, NextCursor: nextCursor}, nil
}

func (r *Reader) loadLines(ctx context.Context, entries []*ledger.JournalEntry) error {
	ids := make([]uuid.UUID, len(entries))
	byID := make(map[uuid.UUID]*ledger.JournalEntry, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	q := psql.RawQuery(`
		SELECT l.id, l.journal_id, l.line_no, l.account_id, a.code AS account_code,
		       l.debit_amount, l.credit_amount, l.description
		FROM journal_lines l
		JOIN accounts a ON a.id = l.account_id
		WHERE l.journal_id = ANY(?::uuid[])
		ORDER BY l.journal_id, l.line_no`, sqlconfig.UUIDArray(ids))
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[lineRow]())
	if err != nil {
		return err
	}
	for _, row := range rows {
		if e, ok := byID[row.JournalID]; ok {
			e.Lines = append(e.Lines, rowToLine(row))
		}
	}
	return nil
}

// AccountTotals sums posted lines per account for one company. A non-nil asOf
// limits the sum to entries dated on or before it.
func (r *Reader) AccountTotals(ctx context.Context, companyID uuid.UUID, asOf *time.Time) ([]ledger.AccountTotals, error) {
	query := `
		SELECT l.account_id,
		       COALESCE(SUM(l.debit_amount), 0) AS debit,
		       COALESCE(SUM(l.credit_amount), 0) AS credit
		FROM journal_lines l
		JOIN journals j ON j.id = l.journal_id
		WHERE j.company_id = ?`
	args := []any{companyID}
	if asOf != nil {
		query += ` AND j.entry_date <= ?`
		args = append(args, *asOf)
	}
	query += ` GROUP BY l.account_id`

	rows, err := bob.All(ctx, r.exec, psql.RawQuery(query, args...), scan.StructMapper[totalsRow]())
	if err != nil {
		return nil, err
	}
	result := make([]ledger.AccountTotals, len(rows))
	for i, row := range rows {
		result[i] = ledger.AccountTotals{AccountID: row.AccountID, Debit: row.Debit, Credit: row.Credit}
	}
	return result, nil
}

// CashMovements returns each entry's net debit on accountID between from and to inclusive.
func (r *Reader) CashMovements(ctx context.Context, companyID, accountID uuid.UUID, from, to time.Time) ([]ledger.CashMovement, error) {
	q := psql.RawQuery(`
		SELECT j.id AS journal_id, j.entry_date, j.memo,
		       SUM(l.debit_amount - l.credit_amount) AS amount
		FROM journals j
		JOIN journal_lines l ON l.journal_id = j.id
		WHERE j.company_id = ? AND l.account_id = ? AND j.entry_date BETWEEN ? AND ?
		GROUP BY j.id, j.entry_date, j.memo
		ORDER BY j.entry_date, j.id`, companyID, accountID, from, to)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[movementRow]())
	if err != nil {
		return nil, err
	}
	result := make([]ledger.CashMovement, len(rows))
	for i, row := range rows {
		result[i] = ledger.CashMovement{
			JournalID: row.JournalID,
			Date:      row.EntryDate,
			Amount:    row.Amount,
			Memo:      row.Memo,
		}
	}
	return result, nil
}
