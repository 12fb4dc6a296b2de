package report

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// Row is one account of a trial balance.
type Row struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	NormalBalance string `json:"normalBalance"`
	Debit         string `json:"debit"`
	Credit        string `json:"credit"`
	Balance       string `json:"balance" doc:"Debit minus credit"`
}

// TrialBalance is the API response model for a trial balance.
type TrialBalance struct {
	CompanyIDs  []string `json:"companyIDs"`
	AsOf        string   `json:"asOf,omitempty" format:"date"`
	Rows        []Row    `json:"rows"`
	TotalDebit  string   `json:"totalDebit"`
	TotalCredit string   `json:"totalCredit"`
	Balanced    bool     `json:"balanced"`
}

func toTrialBalance(tb *ledger.TrialBalance) TrialBalance {
	out := TrialBalance{
		CompanyIDs:  make([]string, len(tb.CompanyIDs)),
		Rows:        make([]Row, len(tb.Rows)),
		TotalDebit:  ledger.FormatDecimal(tb.TotalDebit, tb.Currency),
		TotalCredit: ledger.FormatDecimal(tb.TotalCredit, tb.Currency),
		Balanced:    tb.Balanced(),
	}
	for i, id := range tb.CompanyIDs {
		out.CompanyIDs[i] = id.String()
	}
	if tb.AsOf != nil {
		out.AsOf = params.FormatDate(*tb.AsOf)
	}
	for i, r := range tb.Rows {
		out.Rows[i] = Row{
			Code:          r.Code,
			Name:          r.Name,
			Type:          string(r.Type),
			NormalBalance: string(r.NormalBalance),
			Debit:         ledger.FormatDecimal(r.Debit, tb.Currency),
			Credit:        ledger.FormatDecimal(r.Credit, tb.Currency),
			Balance:       ledger.FormatDecimal(r.Balance, tb.Currency),
		}
	}
	return out
}

type TrialBalanceInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	AsOf      string `query:"asOf" format:"date" doc:"Only entries dated on or before this day"`
}

type ConsolidatedInput struct {
	Body struct {
		CompanyIDs []string `json:"companyIDs" minItems:"1" doc:"Companies to combine; duplicates are ignored"`
		AsOf       string   `json:"asOf,omitempty" format:"date"`
	}
}

type TrialBalanceOutput struct {
	Body TrialBalance
}

type reportService interface {
	GetTrialBalance(ctx context.Context, companyID uuid.UUID, asOf *time.Time) (*ledger.TrialBalance, error)
	GetConsolidatedTrialBalance(ctx context.Context, companyIDs []uuid.UUID, asOf *time.Time) (*ledger.TrialBalance, error)
}

// TrialBalanceHandler serves single-company and consolidated trial balances.
type TrialBalanceHandler struct {
	ReportService reportService
}

func NewTrialBalanceHandler(svc reportService) *TrialBalanceHandler {
	return &TrialBalanceHandler{ReportService: svc}
}

func (h *TrialBalanceHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-trial-balance",
		Method:      http.MethodGet,
		Path:        "/v1/company/{companyID}/trial-balance",
		Summary:     "Get a trial balance",
		Description: "Lists every account of the company with its debit and credit totals.",
		Tags:        []string{"Reports"},
	}, h.get)

	huma.Register(api, huma.Operation{
		OperationID: "get-consolidated-trial-balance",
		Method:      http.MethodPost,
		Path:        "/v1/trial-balance/consolidated",
		Summary:     "Get a consolidated trial balance",
		Description: "Combines the trial balances of several companies by account code.",
		Tags:        []string{"Reports"},
	}, h.consolidated)
}

func (h *TrialBalanceHandler) get(ctx context.Context, input *TrialBalanceInput) (*TrialBalanceOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}
	asOf, err := params.DatePtr("asOf", input.AsOf)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("trialBalanceMs")
	tb, err := h.ReportService.GetTrialBalance(ctx, companyID, asOf)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("balanced", tb.Balanced())
	return &TrialBalanceOutput{Body: toTrialBalance(tb)}, nil
}

func (h *TrialBalanceHandler) consolidated(ctx context.Context, input *ConsolidatedInput) (*TrialBalanceOutput, error) {
	logData := logging.GetLogData(ctx)

	ids := make([]uuid.UUID, len(input.Body.CompanyIDs))
	for i, raw := range input.Body.CompanyIDs {
		id, err := params.UUID("companyIDs", raw)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	asOf, err := params.DatePtr("asOf", input.Body.AsOf)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("trialBalanceMs")
	tb, err := h.ReportService.GetConsolidatedTrialBalance(ctx, ids, asOf)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("companyCount", len(tb.CompanyIDs))
	return &TrialBalanceOutput{Body: toTrialBalance(tb)}, nil
}
