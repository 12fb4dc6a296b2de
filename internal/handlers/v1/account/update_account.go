package account

import (
	"context"
	"net/http"

	"github.com/aarondl/opt/omit"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

type UpdateAccountInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	AccountID string `path:"accountID" format:"uuid" doc:"Account UUID"`
	Body      UpdateAccountBody
}

// UpdateAccountBody carries only the fields to change. Code and type are fixed once created.
type UpdateAccountBody struct {
	Name        *string `json:"name,omitempty" minLength:"1" doc:"New name"`
	Description *string `json:"description,omitempty" doc:"New description"`
	IsActive    *bool   `json:"isActive,omitempty" doc:"Activate or deactivate"`
}

type UpdateAccountOutput struct {
	Body Account
}

type accountUpdater interface {
	UpdateAccount(ctx context.Context, companyID, accountID uuid.UUID, update account.AccountUpdate) (*ledger.Account, error)
}

// UpdateAccountHandler handles PATCH /v1/company/{companyID}/account/{accountID}.
type UpdateAccountHandler struct {
	ChartService accountUpdater
}

func NewUpdateAccountHandler(svc accountUpdater) *UpdateAccountHandler {
	return &UpdateAccountHandler{ChartService: svc}
}

func (h *UpdateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-account",
		Method:      http.MethodPatch,
		Path:        "/v1/company/{companyID}/account/{accountID}",
		Summary:     "Update an account",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func parseAccountUpdate(body UpdateAccountBody) account.AccountUpdate {
	var u account.AccountUpdate
	if body.Name != nil {
		u.Name = omit.From(*body.Name)
	}
	if body.Description != nil {
		u.Description = omit.From(*body.Description)
	}
	if body.IsActive != nil {
		u.IsActive = omit.From(*body.IsActive)
	}
	return u
}

func (h *UpdateAccountHandler) handle(ctx context.Context, input *UpdateAccountInput) (*UpdateAccountOutput, error) {
	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}
	accountID, err := params.UUID("accountID", input.AccountID)
	if err != nil {
		return nil, err
	}

	acc, err := h.ChartService.UpdateAccount(ctx, companyID, accountID, parseAccountUpdate(input.Body))
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	return &UpdateAccountOutput{Body: toAccount(acc)}, nil
}
