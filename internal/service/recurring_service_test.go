package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/billing"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
)

var retainer = billing.Items{{Description: "Monthly retainer", Quantity: dec("1"), UnitPrice: dec("500")}}

func (f *fixture) profile(t *testing.T, companyID uuid.UUID, start time.Time) uuid.UUID {
	t.Helper()
	p, err := f.svc.Recurring.CreateProfile(context.Background(), companyID, Profile{
		ClientID:         uuid.Must(uuid.NewV7()),
		Interval:         billing.IntervalMonthly,
		StartDate:        start,
		TaxRate:          dec("0.1"),
		PaymentTermsDays: 30,
		Items:            retainer,
	})
	require.NoError(t, err)
	return p.ID
}

// -- CreateInvoice tests --

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)
	ctx := context.Background()

	inv, entry, err := f.svc.Invoice.CreateInvoice(ctx, companyID, Invoice{
		ClientID:         uuid.Must(uuid.NewV7()),
		IssueDate:        day1,
		PaymentTermsDays: 14,
		TaxRate:          dec("0.2"),
		Items:            retainer,
	})
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(dec("600")))
	assert.Equal(t, inv.JournalID.UUID, entry.ID)

	got, err := f.svc.Invoice.GetInvoice(ctx, companyID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, day1.AddDate(0, 0, 14), got.DueDate)
}

func TestGetInvoice_NotFound(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)

	_, err := f.svc.Invoice.GetInvoice(context.Background(), companyID, uuid.Must(uuid.NewV7()))

	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// -- ProcessDue tests --

func TestProcessDue_IssuesDueProfiles(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)
	due := f.profile(t, companyID, day1)
	f.profile(t, companyID, day1.AddDate(0, 1, 0))

	results, err := f.svc.Recurring.ProcessDue(context.Background(), companyID, day1.Add(15*time.Hour))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, due, results[0].ProfileID)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, day1.AddDate(0, 1, 0), results[0].NextRunDate)
	assert.Equal(t, 1, f.mem.JournalCount())

	// A second run on the same day finds nothing due.
	results, err = f.svc.Recurring.ProcessDue(context.Background(), companyID, day1)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 1, f.mem.JournalCount())
}

func TestProcessDue_FailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	companyA := f.company(t)
	companyB := f.company(t)
	broken := f.profile(t, companyA, day1)
	healthy := f.profile(t, companyB, day1)

	f.proc.intercept = func(action actions.IAction) error {
		if run, ok := action.(*actions.RunRecurringProfile); ok && run.ProfileID == broken {
			return errors.New("deadlock detected")
		}
		return nil
	}

	results, err := f.svc.Recurring.ProcessDue(context.Background(), uuid.Nil, day1)

	require.NoError(t, err)
	require.Len(t, results, 2)
	byID := map[uuid.UUID]RunResult{}
	for _, r := range results {
		byID[r.ProfileID] = r
	}
	assert.Contains(t, byID[broken].Error, "deadlock detected")
	assert.Empty(t, byID[healthy].Error)
	assert.NotEqual(t, uuid.Nil, byID[healthy].InvoiceID)
	assert.Equal(t, 1, f.mem.JournalCount())

	p, err := f.mem.Recurring().FindByID(context.Background(), companyA, broken)
	require.NoError(t, err)
	assert.Equal(t, day1, p.NextRunDate)
}

func TestProcessDue_UnknownCompany(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Recurring.ProcessDue(context.Background(), uuid.Must(uuid.NewV7()), day1)

	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
