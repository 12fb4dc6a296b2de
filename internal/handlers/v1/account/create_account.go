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
	"github.com/carson-networks/ledger-server/internal/service"
)

// CreateAccountInput is the Huma input for creating an account.
type CreateAccountInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	Body      CreateAccountBody
}

// CreateAccountBody is the request body fields for creating an account.
type CreateAccountBody struct {
	Code        string `json:"code" minLength:"1" maxLength:"20" doc:"Account code, e.g. 6150"`
	Name        string `json:"name" minLength:"1" doc:"Account name"`
	Type        string `json:"type" enum:"asset,liability,equity,revenue,expense" doc:"Account type"`
	Description string `json:"description,omitempty" doc:"Free-form description"`
}

// CreateAccountOutput is the response for creating an account.
type CreateAccountOutput struct {
	Status int
	Body   Account
}

// accountCreator is the interface for creating accounts.
type accountCreator interface {
	CreateAccount(ctx context.Context, companyID uuid.UUID, a service.NewAccount) (*ledger.Account, error)
}

// CreateAccountHandler handles POST /v1/company/{companyID}/account.
type CreateAccountHandler struct {
	ChartService accountCreator
}

// NewCreateAccountHandler creates a new CreateAccountHandler.
func NewCreateAccountHandler(svc accountCreator) *CreateAccountHandler {
	return &CreateAccountHandler{ChartService: svc}
}

// Register registers the create account endpoint with the Huma API.
func (h *CreateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-account",
		Method:        http.MethodPost,
		Path:          "/v1/company/{companyID}/account",
		Summary:       "Create an account",
		Description:   "Adds an account to the company's chart. The normal balance follows the account type.",
		Tags:          []string{"Accounts"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *CreateAccountHandler) handle(ctx context.Context, input *CreateAccountInput) (*CreateAccountOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("createAccountMs")
	acc, err := h.ChartService.CreateAccount(ctx, companyID, service.NewAccount{
		Code:        input.Body.Code,
		Name:        input.Body.Name,
		Type:        ledger.AccountType(input.Body.Type),
		Description: input.Body.Description,
	})
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}

	logData.AddData("accountID", acc.ID.String())
	return &CreateAccountOutput{Status: http.StatusCreated, Body: toAccount(acc)}, nil
}
