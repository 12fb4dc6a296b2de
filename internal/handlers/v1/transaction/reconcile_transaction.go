package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
)

type TransactionPathInput struct {
	CompanyID     string `path:"companyID" format:"uuid" doc:"Company UUID"`
	TransactionID string `path:"transactionID" format:"uuid" doc:"Bank transaction UUID"`
}

type ReconcileInput struct {
	CompanyID     string `path:"companyID" format:"uuid" doc:"Company UUID"`
	TransactionID string `path:"transactionID" format:"uuid" doc:"Bank transaction UUID"`
	Body          struct {
		JournalID string `json:"journalID,omitempty" required:"false" doc:"Journal entry the transaction settles; omit to reconcile without one"`
	}
}

type ReconcileResponse struct {
	Transaction       Transaction `json:"transaction"`
	AlreadyReconciled bool        `json:"alreadyReconciled" doc:"True when the transaction was already reconciled; nothing was changed"`
}

type ReconcileOutput struct {
	Body ReconcileResponse
}

// Suggestion is a candidate journal entry for a bank transaction.
type Suggestion struct {
	JournalID string  `json:"journalID"`
	Date      string  `json:"date" format:"date"`
	Amount    string  `json:"amount" doc:"Entry's signed effect on the connection's cash account"`
	Memo      string  `json:"memo,omitempty"`
	DaysApart int     `json:"daysApart"`
	Score     float64 `json:"score" doc:"1 for the same day, falling towards 0 at the window edge"`
}

type SuggestionsOutput struct {
	Body struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
}

type reconciler interface {
	ReconcileTransaction(ctx context.Context, companyID, transactionID, journalID uuid.UUID) (*banking.Transaction, bool, error)
	SuggestMatches(ctx context.Context, companyID, transactionID uuid.UUID) ([]ledger.MatchSuggestion, error)
}

// ReconcileHandler serves manual reconciliation and match suggestions.
type ReconcileHandler struct {
	ReconciliationService reconciler
}

func NewReconcileHandler(svc reconciler) *ReconcileHandler {
	return &ReconcileHandler{ReconciliationService: svc}
}

func (h *ReconcileHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "reconcile-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/company/{companyID}/transactions/{transactionID}/reconcile",
		Summary:     "Reconcile a bank transaction",
		Description: "Marks the transaction reconciled, optionally against a journal entry. Reconciling an already reconciled transaction changes nothing and returns it as stored.",
		Tags:        []string{"Transactions"},
	}, h.reconcile)

	huma.Register(api, huma.Operation{
		OperationID: "suggest-matches",
		Method:      http.MethodGet,
		Path:        "/v1/company/{companyID}/transactions/{transactionID}/suggestions",
		Summary:     "Suggest journal matches",
		Description: "Ranks journal entries with the transaction's exact amount near its date. Nothing is reconciled.",
		Tags:        []string{"Transactions"},
	}, h.suggest)
}

func parsePath(rawCompanyID, rawTransactionID string) (companyID, transactionID uuid.UUID, err error) {
	if companyID, err = params.UUID("companyID", rawCompanyID); err != nil {
		return
	}
	transactionID, err = params.UUID("transactionID", rawTransactionID)
	return
}

func (h *ReconcileHandler) reconcile(ctx context.Context, input *ReconcileInput) (*ReconcileOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, transactionID, err := parsePath(input.CompanyID, input.TransactionID)
	if err != nil {
		return nil, err
	}
	journalID, err := params.OptionalUUID("journalID", input.Body.JournalID)
	if err != nil {
		return nil, err
	}

	tx, already, err := h.ReconciliationService.ReconcileTransaction(ctx, companyID, transactionID, journalID)
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("alreadyReconciled", already)
	return &ReconcileOutput{Body: ReconcileResponse{Transaction: toTransaction(tx), AlreadyReconciled: already}}, nil
}

func (h *ReconcileHandler) suggest(ctx context.Context, input *TransactionPathInput) (*SuggestionsOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, transactionID, err := parsePath(input.CompanyID, input.TransactionID)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("suggestMatchesMs")
	suggestions, err := h.ReconciliationService.SuggestMatches(ctx, companyID, transactionID)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("suggestionCount", len(suggestions))

	out := &SuggestionsOutput{}
	out.Body.Suggestions = make([]Suggestion, len(suggestions))
	for i, s := range suggestions {
		out.Body.Suggestions[i] = Suggestion{
			JournalID: s.JournalID.String(),
			Date:      params.FormatDate(s.Date),
			Amount:    ledger.FormatDecimal(s.Amount, s.Currency),
			Memo:      s.Memo,
			DaysApart: s.DaysApart,
			Score:     s.Score,
		}
	}
	return out, nil
}
