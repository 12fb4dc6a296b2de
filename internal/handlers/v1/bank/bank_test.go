package bank

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
)

type mockBankSyncService struct {
	mock.Mock
}

func (m *mockBankSyncService) CreateConnection(ctx context.Context, companyID uuid.UUID, provider, name, externalRef, accountCode string) (*banking.Connection, error) {
	args := m.Called(ctx, companyID, provider, name, externalRef, accountCode)
	c, _ := args.Get(0).(*banking.Connection)
	return c, args.Error(1)
}

func (m *mockBankSyncService) SyncCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]service.SyncResult, error) {
	args := m.Called(ctx, companyID, from, to)
	r, _ := args.Get(0).([]service.SyncResult)
	return r, args.Error(1)
}

func (m *mockBankSyncService) ImportCSV(ctx context.Context, companyID, connectionID uuid.UUID, format string, r io.Reader) (int64, int64, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, companyID, connectionID, format, string(body))
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func newTestAPI(t *testing.T, svc *mockBankSyncService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewCreateConnectionHandler(svc).Register(api)
	NewSyncHandler(svc).Register(api)
	return api
}

func TestHTTP_CreateConnection(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	conn := &banking.Connection{
		ID:          uuid.Must(uuid.NewV7()),
		CompanyID:   companyID,
		Provider:    "plaid",
		Name:        "Operating",
		ExternalRef: "acc-123",
		AccountCode: ledger.CodeCashAtBank,
		CreatedAt:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	svc := new(mockBankSyncService)
	svc.On("CreateConnection", mock.Anything, companyID, "plaid", "Operating", "acc-123", "").Return(conn, nil)

	resp := newTestAPI(t, svc).Post("/v1/company/"+companyID.String()+"/bank/connection", CreateConnectionBody{
		Provider: "plaid", Name: "Operating", ExternalRef: "acc-123",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body Connection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1000", body.AccountCode)
	assert.Empty(t, body.LastSyncedAt)
	svc.AssertExpectations(t)
}

func TestHTTP_CreateConnection_NotCashAccount(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	svc := new(mockBankSyncService)
	svc.On("CreateConnection", mock.Anything, companyID, "csv", "Card", "", "4000").
		Return(nil, ledger.NewMappingError("account 4000 is revenue, bank connections need an asset account"))

	resp := newTestAPI(t, svc).Post("/v1/company/"+companyID.String()+"/bank/connection", CreateConnectionBody{
		Provider: "csv", Name: "Card", AccountCode: "4000",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestHTTP_Sync_PartialFailure(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	ok, broken := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
	svc := new(mockBankSyncService)
	svc.On("SyncCompany", mock.Anything, companyID, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), time.Time{}).
		Return([]service.SyncResult{
			{ConnectionID: ok, Name: "Operating", Imported: 3, Skipped: 1},
			{ConnectionID: broken, Name: "Savings", Error: "bank feed returned 503"},
		}, nil)

	resp := newTestAPI(t, svc).Post("/v1/company/"+companyID.String()+"/bank/sync", map[string]string{"from": "2025-04-01"})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Results []SyncResult `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 2)
	assert.Equal(t, int64(3), body.Results[0].Imported)
	assert.Empty(t, body.Results[0].Error)
	assert.Equal(t, "bank feed returned 503", body.Results[1].Error)
	svc.AssertExpectations(t)
}

func TestHTTP_Sync_UnknownCompany(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	svc := new(mockBankSyncService)
	svc.On("SyncCompany", mock.Anything, companyID, time.Time{}, time.Time{}).
		Return(nil, ledger.NewNotFoundError("company %s not found", companyID))

	resp := newTestAPI(t, svc).Post("/v1/company/"+companyID.String()+"/bank/sync", map[string]string{})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHTTP_ImportCSV(t *testing.T) {
	companyID, connID := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
	csv := "id,date,amount,description\nbt-1,2025-04-03,-57.50,OFFICE DEPOT\n"
	svc := new(mockBankSyncService)
	svc.On("ImportCSV", mock.Anything, companyID, connID, "generic", csv).Return(int64(1), int64(0), nil)

	resp := newTestAPI(t, svc).Post(
		"/v1/company/"+companyID.String()+"/bank/connection/"+connID.String()+"/import?format=generic",
		"Content-Type: text/csv",
		strings.NewReader(csv),
	)

	assert.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Imported int64 `json:"imported"`
		Skipped  int64 `json:"skipped"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(1), body.Imported)
	assert.Zero(t, body.Skipped)
	svc.AssertExpectations(t)
}

func TestHTTP_ImportCSV_UnknownFormat(t *testing.T) {
	companyID, connID := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
	svc := new(mockBankSyncService)
	svc.On("ImportCSV", mock.Anything, companyID, connID, "ofx", mock.Anything).
		Return(int64(0), int64(0), ledger.NewValidationError(`unknown csv format "ofx", expected one of chase, generic`))

	resp := newTestAPI(t, svc).Post(
		"/v1/company/"+companyID.String()+"/bank/connection/"+connID.String()+"/import?format=ofx",
		"Content-Type: text/csv",
		strings.NewReader("x"),
	)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
