package report

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) GetTrialBalance(ctx context.Context, companyID uuid.UUID, asOf *time.Time) (*ledger.TrialBalance, error) {
	args := m.Called(ctx, companyID, asOf)
	tb, _ := args.Get(0).(*ledger.TrialBalance)
	return tb, args.Error(1)
}

func (m *mockReportService) GetConsolidatedTrialBalance(ctx context.Context, companyIDs []uuid.UUID, asOf *time.Time) (*ledger.TrialBalance, error) {
	args := m.Called(ctx, companyIDs, asOf)
	tb, _ := args.Get(0).(*ledger.TrialBalance)
	return tb, args.Error(1)
}

func newTestAPI(t *testing.T, svc *mockReportService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewTrialBalanceHandler(svc).Register(api)
	return api
}

func sampleBalance(ids ...uuid.UUID) *ledger.TrialBalance {
	d := decimal.RequireFromString
	return &ledger.TrialBalance{
		CompanyIDs: ids,
		Rows: []ledger.TrialBalanceRow{
			{Code: "1000", Name: "Cash at Bank", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalDebit,
				Debit: d("500"), Credit: d("0"), Balance: d("500")},
			{Code: "3000", Name: "Owner's Equity", Type: ledger.AccountTypeEquity, NormalBalance: ledger.NormalCredit,
				Debit: d("0"), Credit: d("500"), Balance: d("-500")},
		},
		TotalDebit:  d("500"),
		TotalCredit: d("500"),
	}
}

func TestHTTP_TrialBalance(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	asOf := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	tb := sampleBalance(companyID)
	tb.AsOf = &asOf
	svc := new(mockReportService)
	svc.On("GetTrialBalance", mock.Anything, companyID, &asOf).Return(tb, nil)

	resp := newTestAPI(t, svc).Get("/v1/company/" + companyID.String() + "/trial-balance?asOf=2025-04-30")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body TrialBalance
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Balanced)
	assert.Equal(t, "2025-04-30", body.AsOf)
	assert.Equal(t, "500.00", body.TotalDebit)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "-500.00", body.Rows[1].Balance)
	svc.AssertExpectations(t)
}

func TestHTTP_TrialBalance_CompanyCurrency(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	d := decimal.RequireFromString
	tb := &ledger.TrialBalance{
		CompanyIDs: []uuid.UUID{companyID},
		Currency:   "KWD",
		Rows: []ledger.TrialBalanceRow{
			{Code: "6400", Name: "Office Supplies", Type: ledger.AccountTypeExpense, NormalBalance: ledger.NormalDebit,
				Debit: d("1.005"), Credit: d("0"), Balance: d("1.005")},
			{Code: "1000", Name: "Cash at Bank", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalDebit,
				Debit: d("0"), Credit: d("1.005"), Balance: d("-1.005")},
		},
		TotalDebit:  d("1.005"),
		TotalCredit: d("1.005"),
	}
	svc := new(mockReportService)
	svc.On("GetTrialBalance", mock.Anything, companyID, (*time.Time)(nil)).Return(tb, nil)

	resp := newTestAPI(t, svc).Get("/v1/company/" + companyID.String() + "/trial-balance")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body TrialBalance
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1.005", body.TotalDebit)
	assert.Equal(t, "1.005", body.TotalCredit)
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "1.005", body.Rows[0].Debit)
	assert.Equal(t, "0.000", body.Rows[0].Credit)
	assert.Equal(t, "-1.005", body.Rows[1].Balance)
}

func TestHTTP_TrialBalance_NoAsOf(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	svc := new(mockReportService)
	svc.On("GetTrialBalance", mock.Anything, companyID, (*time.Time)(nil)).Return(sampleBalance(companyID), nil)

	resp := newTestAPI(t, svc).Get("/v1/company/" + companyID.String() + "/trial-balance")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body TrialBalance
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.AsOf)
}

func TestHTTP_ConsolidatedTrialBalance(t *testing.T) {
	a, b := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
	svc := new(mockReportService)
	svc.On("GetConsolidatedTrialBalance", mock.Anything, []uuid.UUID{a, b, a}, (*time.Time)(nil)).
		Return(sampleBalance(a, b), nil)

	resp := newTestAPI(t, svc).Post("/v1/trial-balance/consolidated", map[string]any{
		"companyIDs": []string{a.String(), b.String(), a.String()},
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body TrialBalance
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{a.String(), b.String()}, body.CompanyIDs)
}

func TestHTTP_ConsolidatedTrialBalance_Errors(t *testing.T) {
	svc := new(mockReportService)
	missing := uuid.Must(uuid.NewV7())
	svc.On("GetConsolidatedTrialBalance", mock.Anything, []uuid.UUID{missing}, (*time.Time)(nil)).
		Return(nil, ledger.NewNotFoundError("company %s not found", missing))
	api := newTestAPI(t, svc)

	resp := api.Post("/v1/trial-balance/consolidated", map[string]any{"companyIDs": []string{"nope"}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/v1/trial-balance/consolidated", map[string]any{"companyIDs": []string{missing.String()}})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
