package company

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/company"
)

// CreateCompanyInput is the Huma input for creating a company.
type CreateCompanyInput struct {
	Body CreateCompanyBody
}

// CreateCompanyBody is the request body for creating a company.
type CreateCompanyBody struct {
	Name         string `json:"name" minLength:"1" doc:"Company name"`
	BaseCurrency string `json:"baseCurrency" minLength:"3" maxLength:"3" doc:"ISO-4217 base currency, e.g. USD"`
}

// CreateCompanyResponse is the response body for creating a company.
type CreateCompanyResponse struct {
	Company        Company `json:"company"`
	SeededAccounts int64   `json:"seededAccounts" doc:"Accounts created from the default chart"`
}

// CreateCompanyOutput is the response for creating a company.
type CreateCompanyOutput struct {
	Status int
	Body   CreateCompanyResponse
}

type companyCreator interface {
	CreateCompany(ctx context.Context, name, baseCurrency string) (*company.Company, int64, error)
}

// CreateCompanyHandler handles POST /v1/company.
type CreateCompanyHandler struct {
	CompanyService companyCreator
}

func NewCreateCompanyHandler(svc companyCreator) *CreateCompanyHandler {
	return &CreateCompanyHandler{CompanyService: svc}
}

func (h *CreateCompanyHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-company",
		Method:        http.MethodPost,
		Path:          "/v1/company",
		Summary:       "Create a company",
		Description:   "Creates a company and seeds its default chart of accounts.",
		Tags:          []string{"Companies"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *CreateCompanyHandler) handle(ctx context.Context, input *CreateCompanyInput) (*CreateCompanyOutput, error) {
	logData := logging.GetLogData(ctx)

	stopTimer := logData.AddTiming("createCompanyMs")
	c, seeded, err := h.CompanyService.CreateCompany(ctx, input.Body.Name, input.Body.BaseCurrency)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}

	logData.AddData("companyID", c.ID.String())
	return &CreateCompanyOutput{
		Status: http.StatusCreated,
		Body:   CreateCompanyResponse{Company: toCompany(c), SeededAccounts: seeded},
	}, nil
}
