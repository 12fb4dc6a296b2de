package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// ListAccountsInput is the Huma input for listing a company's chart.
type ListAccountsInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
}

// ListAccountsResponseBody is the response body for listing accounts.
type ListAccountsResponseBody struct {
	Accounts []Account `json:"accounts" doc:"Every account ordered by code"`
}

// ListAccountsOutput is the Huma output for listing accounts.
type ListAccountsOutput struct {
	Body ListAccountsResponseBody
}

// InitializeChartOutput reports whether the default chart was seeded.
type InitializeChartOutput struct {
	Body struct {
		Seeded bool `json:"seeded" doc:"False when the company already had accounts"`
	}
}

type chartReader interface {
	GetChartOfAccounts(ctx context.Context, companyID uuid.UUID) ([]ledger.Account, error)
	InitializeChartOfAccounts(ctx context.Context, companyID uuid.UUID) (bool, error)
}

// ListAccountsHandler serves the chart of accounts and its seeding.
type ListAccountsHandler struct {
	ChartService chartReader
}

// NewListAccountsHandler creates a new ListAccountsHandler.
func NewListAccountsHandler(svc chartReader) *ListAccountsHandler {
	return &ListAccountsHandler{ChartService: svc}
}

// Register registers the list and initialize endpoints with the Huma API.
func (h *ListAccountsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/v1/company/{companyID}/accounts",
		Summary:     "Get the chart of accounts",
		Tags:        []string{"Accounts"},
	}, h.handle)

	huma.Register(api, huma.Operation{
		OperationID: "initialize-chart",
		Method:      http.MethodPost,
		Path:        "/v1/company/{companyID}/chart/initialize",
		Summary:     "Seed the default chart",
		Description: "Seeds the default small-business chart. Does nothing when the company already has accounts.",
		Tags:        []string{"Accounts"},
	}, h.initialize)
}

func (h *ListAccountsHandler) handle(ctx context.Context, input *ListAccountsInput) (*ListAccountsOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("listAccountsMs")
	accounts, err := h.ChartService.GetChartOfAccounts(ctx, companyID)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("accountCount", len(accounts))

	resp := ListAccountsResponseBody{Accounts: make([]Account, len(accounts))}
	for i := range accounts {
		resp.Accounts[i] = toAccount(&accounts[i])
	}
	return &ListAccountsOutput{Body: resp}, nil
}

func (h *ListAccountsHandler) initialize(ctx context.Context, input *ListAccountsInput) (*InitializeChartOutput, error) {
	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}
	seeded, err := h.ChartService.InitializeChartOfAccounts(ctx, companyID)
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	out := &InitializeChartOutput{}
	out.Body.Seeded = seeded
	return out, nil
}
