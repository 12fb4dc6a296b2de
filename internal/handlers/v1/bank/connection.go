package bank

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
)

// Connection is the API response model for a bank connection.
type Connection struct {
	ID           string `json:"id" doc:"Connection UUID"`
	Provider     string `json:"provider" doc:"Feed provider or csv format name"`
	Name         string `json:"name"`
	ExternalRef  string `json:"externalRef,omitempty" doc:"Provider account reference, empty for CSV-only connections"`
	AccountCode  string `json:"accountCode" doc:"Cash account the bank account maps to"`
	LastSyncedAt string `json:"lastSyncedAt,omitempty" format:"date-time"`
	CreatedAt    string `json:"createdAt" format:"date-time"`
}

func toConnection(c *banking.Connection) Connection {
	out := Connection{
		ID:          c.ID.String(),
		Provider:    c.Provider,
		Name:        c.Name,
		ExternalRef: c.ExternalRef,
		AccountCode: c.AccountCode,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
	if c.LastSyncedAt != nil {
		out.LastSyncedAt = c.LastSyncedAt.Format(time.RFC3339)
	}
	return out
}

type CreateConnectionInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	Body      CreateConnectionBody
}

type CreateConnectionBody struct {
	Provider    string `json:"provider" minLength:"1"`
	Name        string `json:"name" minLength:"1"`
	ExternalRef string `json:"externalRef,omitempty"`
	AccountCode string `json:"accountCode,omitempty" doc:"Defaults to 1000 Cash at Bank"`
}

type CreateConnectionOutput struct {
	Status int
	Body   Connection
}

type connectionCreator interface {
	CreateConnection(ctx context.Context, companyID uuid.UUID, provider, name, externalRef, accountCode string) (*banking.Connection, error)
}

// CreateConnectionHandler handles POST /v1/company/{companyID}/bank/connection.
type CreateConnectionHandler struct {
	BankSyncService connectionCreator
}

func NewCreateConnectionHandler(svc connectionCreator) *CreateConnectionHandler {
	return &CreateConnectionHandler{BankSyncService: svc}
}

func (h *CreateConnectionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-bank-connection",
		Method:        http.MethodPost,
		Path:          "/v1/company/{companyID}/bank/connection",
		Summary:       "Create a bank connection",
		Tags:          []string{"Banking"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *CreateConnectionHandler) handle(ctx context.Context, input *CreateConnectionInput) (*CreateConnectionOutput, error) {
	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}
	b := input.Body
	conn, err := h.BankSyncService.CreateConnection(ctx, companyID, b.Provider, b.Name, b.ExternalRef, b.AccountCode)
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logging.GetLogData(ctx).AddData("connectionID", conn.ID.String())
	return &CreateConnectionOutput{Status: http.StatusCreated, Body: toConnection(conn)}, nil
}
