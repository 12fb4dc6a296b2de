package company

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/storage/company"
)

type GetCompanyInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
}

type GetCompanyOutput struct {
	Body Company
}

type ListCompaniesOutput struct {
	Body struct {
		Companies []Company `json:"companies"`
	}
}

type companyReader interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*company.Company, error)
	ListCompanies(ctx context.Context) ([]*company.Company, error)
}

// GetCompanyHandler serves GET /v1/company and GET /v1/company/{companyID}.
type GetCompanyHandler struct {
	CompanyService companyReader
}

func NewGetCompanyHandler(svc companyReader) *GetCompanyHandler {
	return &GetCompanyHandler{CompanyService: svc}
}

func (h *GetCompanyHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-company",
		Method:      http.MethodGet,
		Path:        "/v1/company/{companyID}",
		Summary:     "Get a company",
		Tags:        []string{"Companies"},
	}, h.get)

	huma.Register(api, huma.Operation{
		OperationID: "list-companies",
		Method:      http.MethodGet,
		Path:        "/v1/company",
		Summary:     "List companies",
		Tags:        []string{"Companies"},
	}, h.list)
}

func (h *GetCompanyHandler) get(ctx context.Context, input *GetCompanyInput) (*GetCompanyOutput, error) {
	id, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}
	c, err := h.CompanyService.GetCompany(ctx, id)
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	return &GetCompanyOutput{Body: toCompany(c)}, nil
}

func (h *GetCompanyHandler) list(ctx context.Context, _ *struct{}) (*ListCompaniesOutput, error) {
	companies, err := h.CompanyService.ListCompanies(ctx)
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	out := &ListCompaniesOutput{}
	out.Body.Companies = make([]Company, len(companies))
	for i, c := range companies {
		out.Body.Companies[i] = toCompany(c)
	}
	return out, nil
}
