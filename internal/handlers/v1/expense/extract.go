package expense

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/extract"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

type ExtractInput struct {
	Body struct {
		Text string `json:"text" minLength:"1" doc:"OCR text of the receipt"`
	}
}

// Receipt holds the extracted fields. Empty strings mean the field was not found.
type Receipt struct {
	Vendor     string  `json:"vendor"`
	Date       string  `json:"date" doc:"YYYY-MM-DD"`
	Total      string  `json:"total"`
	TaxAmount  string  `json:"taxAmount"`
	Currency   string  `json:"currency"`
	Confidence float64 `json:"confidence" doc:"Share of vendor, date and total that were found"`
	Source     string  `json:"source" doc:"llm or heuristic"`
}

type ExtractOutput struct {
	Body Receipt
}

// ExtractHandler handles POST /v1/expense/extract.
type ExtractHandler struct {
	Extractor extract.Extractor
}

func NewExtractHandler(e extract.Extractor) *ExtractHandler {
	return &ExtractHandler{Extractor: e}
}

func (h *ExtractHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "extract-expense",
		Method:      http.MethodPost,
		Path:        "/v1/expense/extract",
		Summary:     "Extract expense fields from a receipt",
		Description: "Reads vendor, date, total, tax and currency from receipt text. Nothing is posted.",
		Tags:        []string{"Expenses"},
	}, h.handle)
}

func (h *ExtractHandler) handle(ctx context.Context, input *ExtractInput) (*ExtractOutput, error) {
	logData := logging.GetLogData(ctx)

	stopTimer := logData.AddTiming("extractMs")
	r, err := h.Extractor.Extract(ctx, input.Body.Text)
	stopTimer()
	if err != nil {
		return nil, huma.NewError(http.StatusBadGateway, "receipt extraction failed", err)
	}
	logData.AddData("source", r.Source)
	logData.AddData("confidence", r.Confidence)

	out := &ExtractOutput{Body: Receipt{
		Vendor:     r.Vendor,
		Date:       params.FormatDate(r.Date),
		Currency:   r.Currency,
		Confidence: r.Confidence,
		Source:     r.Source,
	}}
	if !r.Total.IsZero() {
		out.Body.Total = ledger.FormatDecimal(r.Total, r.Currency)
	}
	if !r.TaxAmount.IsZero() {
		out.Body.TaxAmount = ledger.FormatDecimal(r.TaxAmount, r.Currency)
	}
	return out, nil
}
