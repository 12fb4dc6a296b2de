package account

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

type mockChartService struct {
	mock.Mock
}

func (m *mockChartService) CreateAccount(ctx context.Context, companyID uuid.UUID, a service.NewAccount) (*ledger.Account, error) {
	args := m.Called(ctx, companyID, a)
	acc, _ := args.Get(0).(*ledger.Account)
	return acc, args.Error(1)
}

func (m *mockChartService) GetChartOfAccounts(ctx context.Context, companyID uuid.UUID) ([]ledger.Account, error) {
	args := m.Called(ctx, companyID)
	accs, _ := args.Get(0).([]ledger.Account)
	return accs, args.Error(1)
}

func (m *mockChartService) InitializeChartOfAccounts(ctx context.Context, companyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, companyID)
	return args.Bool(0), args.Error(1)
}

func (m *mockChartService) UpdateAccount(ctx context.Context, companyID, accountID uuid.UUID, update account.AccountUpdate) (*ledger.Account, error) {
	args := m.Called(ctx, companyID, accountID, update)
	acc, _ := args.Get(0).(*ledger.Account)
	return acc, args.Error(1)
}

func newTestAPI(t *testing.T, svc *mockChartService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewCreateAccountHandler(svc).Register(api)
	NewListAccountsHandler(svc).Register(api)
	NewUpdateAccountHandler(svc).Register(api)
	return api
}

func software(companyID uuid.UUID) *ledger.Account {
	return &ledger.Account{
		ID:            uuid.Must(uuid.NewV7()),
		CompanyID:     companyID,
		Code:          "6150",
		Name:          "Software",
		Type:          ledger.AccountTypeExpense,
		NormalBalance: ledger.NormalDebit,
		IsActive:      true,
		CreatedAt:     time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHTTP_CreateAccount(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	acc := software(companyID)
	svc := new(mockChartService)
	svc.On("CreateAccount", mock.Anything, companyID, service.NewAccount{
		Code: "6150", Name: "Software", Type: ledger.AccountTypeExpense,
	}).Return(acc, nil)

	resp := newTestAPI(t, svc).Post("/v1/company/"+companyID.String()+"/account", CreateAccountBody{
		Code: "6150", Name: "Software", Type: "expense",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, acc.ID.String(), body.ID)
	assert.Equal(t, "debit", body.NormalBalance)
	svc.AssertExpectations(t)
}

func TestHTTP_CreateAccount_BadType(t *testing.T) {
	svc := new(mockChartService)

	resp := newTestAPI(t, svc).Post("/v1/company/"+uuid.Must(uuid.NewV7()).String()+"/account", CreateAccountBody{
		Code: "6150", Name: "Software", Type: "cost",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	svc.AssertNotCalled(t, "CreateAccount")
}

func TestHTTP_CreateAccount_DuplicateCode(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	svc := new(mockChartService)
	svc.On("CreateAccount", mock.Anything, companyID, mock.Anything).
		Return(nil, ledger.NewValidationError("account code 6150 already exists"))

	resp := newTestAPI(t, svc).Post("/v1/company/"+companyID.String()+"/account", CreateAccountBody{
		Code: "6150", Name: "Software", Type: "expense",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHTTP_ListAccounts(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	svc := new(mockChartService)
	svc.On("GetChartOfAccounts", mock.Anything, companyID).
		Return([]ledger.Account{*software(companyID), *software(companyID)}, nil)

	resp := newTestAPI(t, svc).Get("/v1/company/" + companyID.String() + "/accounts")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListAccountsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Accounts, 2)
	assert.Equal(t, "6150", body.Accounts[0].Code)
}

func TestHTTP_ListAccounts_UnknownCompany(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	svc := new(mockChartService)
	svc.On("GetChartOfAccounts", mock.Anything, companyID).
		Return(nil, ledger.NewNotFoundError("company %s not found", companyID))

	resp := newTestAPI(t, svc).Get("/v1/company/" + companyID.String() + "/accounts")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHTTP_InitializeChart(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	svc := new(mockChartService)
	svc.On("InitializeChartOfAccounts", mock.Anything, companyID).Return(false, nil)

	resp := newTestAPI(t, svc).Post("/v1/company/" + companyID.String() + "/chart/initialize")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Seeded bool `json:"seeded"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Seeded)
}

func TestHTTP_UpdateAccount(t *testing.T) {
	companyID := uuid.Must(uuid.NewV7())
	acc := software(companyID)
	acc.IsActive = false
	svc := new(mockChartService)
	svc.On("UpdateAccount", mock.Anything, companyID, acc.ID, mock.MatchedBy(func(u account.AccountUpdate) bool {
		return u.Name.IsUnset() && u.Description.IsUnset() && u.IsActive.GetOrZero() == false && u.IsActive.IsValue()
	})).Return(acc, nil)

	inactive := false
	resp := newTestAPI(t, svc).Patch("/v1/company/"+companyID.String()+"/account/"+acc.ID.String(),
		UpdateAccountBody{IsActive: &inactive})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.IsActive)
	svc.AssertExpectations(t)
}

func TestParseAccountUpdate(t *testing.T) {
	name := "Cloud software"
	u := parseAccountUpdate(UpdateAccountBody{Name: &name})

	assert.Equal(t, "Cloud software", u.Name.GetOrZero())
	assert.True(t, u.Description.IsUnset())
	assert.False(t, parseAccountUpdate(UpdateAccountBody{Name: &name}).IsEmpty())
	assert.True(t, parseAccountUpdate(UpdateAccountBody{}).IsEmpty())
}
