package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
)

// ListUnreconciledInput is the Huma input for listing unreconciled transactions.
type ListUnreconciledInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
}

// ListTransactionsResponseBody is the response body for listing transactions.
type ListTransactionsResponseBody struct {
	Transactions []Transaction `json:"transactions" doc:"Unreconciled transactions, oldest first"`
}

// ListTransactionsOutput is the Huma output for listing transactions.
type ListTransactionsOutput struct {
	Body ListTransactionsResponseBody
}

// transactionLister is the interface for listing transactions.
type transactionLister interface {
	GetUnreconciledTransactions(ctx context.Context, companyID uuid.UUID) ([]*banking.Transaction, error)
}

// ListTransactionsHandler handles GET /v1/company/{companyID}/transactions/unreconciled.
type ListTransactionsHandler struct {
	ReconciliationService transactionLister
}

// NewListTransactionsHandler creates a new ListTransactionsHandler.
func NewListTransactionsHandler(svc transactionLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{ReconciliationService: svc}
}

// Register registers the list transactions endpoint with the Huma API.
func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-unreconciled-transactions",
		Method:      http.MethodGet,
		Path:        "/v1/company/{companyID}/transactions/unreconciled",
		Summary:     "List unreconciled transactions",
		Description: "Returns the company's bank transactions that are not yet matched to a journal entry.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *ListTransactionsHandler) handle(ctx context.Context, input *ListUnreconciledInput) (*ListTransactionsOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("listTransactionsMs")
	transactions, err := h.ReconciliationService.GetUnreconciledTransactions(ctx, companyID)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("transactionCount", len(transactions))

	resp := ListTransactionsResponseBody{Transactions: make([]Transaction, len(transactions))}
	for i, tx := range transactions {
		resp.Transactions[i] = toTransaction(tx)
	}
	return &ListTransactionsOutput{Body: resp}, nil
}
