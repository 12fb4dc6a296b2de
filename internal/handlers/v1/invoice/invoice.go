package invoice

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/billing"
	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/invoice"
)

// Item is one billable line in requests and responses.
type Item struct {
	Description string `json:"description" minLength:"1"`
	Quantity    string `json:"quantity" doc:"Decimal quantity"`
	UnitPrice   string `json:"unitPrice" doc:"Decimal price per unit"`
}

// ParseItems converts request items to billing items.
func ParseItems(items []Item) (billing.Items, error) {
	out := make(billing.Items, len(items))
	for i, it := range items {
		qty, err := params.Decimal("quantity", it.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := params.Decimal("unitPrice", it.UnitPrice)
		if err != nil {
			return nil, err
		}
		out[i] = billing.Item{Description: it.Description, Quantity: qty, UnitPrice: price}
	}
	return out, nil
}

// ToItems converts billing items to their API model, pricing them in currency.
func ToItems(items billing.Items, currency string) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{Description: it.Description, Quantity: it.Quantity.String(), UnitPrice: ledger.FormatDecimal(it.UnitPrice, currency)}
	}
	return out
}

// Invoice is the API response model for an invoice.
type Invoice struct {
	ID                 string `json:"id"`
	ClientID           string `json:"clientID"`
	RecurringProfileID string `json:"recurringProfileID,omitempty"`
	IssueDate          string `json:"issueDate" format:"date"`
	DueDate            string `json:"dueDate" format:"date"`
	Subtotal           string `json:"subtotal"`
	TaxAmount          string `json:"taxAmount"`
	Total              string `json:"total"`
	Status             string `json:"status"`
	Items              []Item `json:"items"`
	JournalID          string `json:"journalID,omitempty" doc:"Entry posting the receivable"`
	CreatedAt          string `json:"createdAt" format:"date-time"`
}

func toInvoice(inv *invoice.Invoice) Invoice {
	out := Invoice{
		ID:        inv.ID.String(),
		ClientID:  inv.ClientID.String(),
		IssueDate: params.FormatDate(inv.IssueDate),
		DueDate:   params.FormatDate(inv.DueDate),
		Subtotal:  ledger.FormatDecimal(inv.Subtotal, inv.Currency),
		TaxAmount: ledger.FormatDecimal(inv.TaxAmount, inv.Currency),
		Total:     ledger.FormatDecimal(inv.Total, inv.Currency),
		Status:    string(inv.Status),
		Items:     ToItems(inv.Items, inv.Currency),
		CreatedAt: inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.RecurringProfileID.Valid {
		out.RecurringProfileID = inv.RecurringProfileID.UUID.String()
	}
	if inv.JournalID.Valid {
		out.JournalID = inv.JournalID.UUID.String()
	}
	return out
}

type CreateInvoiceInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	Body      CreateInvoiceBody
}

type CreateInvoiceBody struct {
	ClientID         string `json:"clientID" format:"uuid"`
	IssueDate        string `json:"issueDate" format:"date"`
	DueDate          string `json:"dueDate,omitempty" format:"date" doc:"Defaults to issueDate plus paymentTermsDays"`
	PaymentTermsDays int    `json:"paymentTermsDays,omitempty" minimum:"0"`
	TaxRate          string `json:"taxRate,omitempty" doc:"Decimal rate between 0 and 1"`
	RevenueCode      string `json:"revenueCode,omitempty" doc:"Defaults to 4000 Sales Revenue"`
	Items            []Item `json:"items" minItems:"1"`
}

type InvoiceOutput struct {
	Status int
	Body   Invoice
}

type GetInvoiceInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	InvoiceID string `path:"invoiceID" format:"uuid" doc:"Invoice UUID"`
}

type invoiceService interface {
	CreateInvoice(ctx context.Context, companyID uuid.UUID, in service.Invoice) (*invoice.Invoice, *ledger.JournalEntry, error)
	GetInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) (*invoice.Invoice, error)
}

// InvoiceHandler issues and fetches one-off invoices.
type InvoiceHandler struct {
	InvoiceService invoiceService
}

func NewInvoiceHandler(svc invoiceService) *InvoiceHandler {
	return &InvoiceHandler{InvoiceService: svc}
}

func (h *InvoiceHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-invoice",
		Method:        http.MethodPost,
		Path:          "/v1/company/{companyID}/invoice",
		Summary:       "Create an invoice",
		Description:   "Stores the invoice and posts its receivable in the same transaction.",
		Tags:          []string{"Invoices"},
		DefaultStatus: http.StatusCreated,
	}, h.create)

	huma.Register(api, huma.Operation{
		OperationID: "get-invoice",
		Method:      http.MethodGet,
		Path:        "/v1/company/{companyID}/invoice/{invoiceID}",
		Summary:     "Get an invoice",
		Tags:        []string{"Invoices"},
	}, h.get)
}

func parseCreateInvoiceInput(input *CreateInvoiceInput) (uuid.UUID, service.Invoice, error) {
	var in service.Invoice
	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return uuid.Nil, in, err
	}
	b := input.Body
	if in.ClientID, err = params.UUID("clientID", b.ClientID); err != nil {
		return uuid.Nil, in, err
	}
	if in.IssueDate, err = params.Date("issueDate", b.IssueDate); err != nil {
		return uuid.Nil, in, err
	}
	if in.DueDate, err = params.OptionalDate("dueDate", b.DueDate); err != nil {
		return uuid.Nil, in, err
	}
	if in.TaxRate, err = params.OptionalDecimal("taxRate", b.TaxRate); err != nil {
		return uuid.Nil, in, err
	}
	if in.Items, err = ParseItems(b.Items); err != nil {
		return uuid.Nil, in, err
	}
	in.PaymentTermsDays = b.PaymentTermsDays
	in.RevenueCode = b.RevenueCode
	return companyID, in, nil
}

func (h *InvoiceHandler) create(ctx context.Context, input *CreateInvoiceInput) (*InvoiceOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, in, err := parseCreateInvoiceInput(input)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("createInvoiceMs")
	inv, _, err := h.InvoiceService.CreateInvoice(ctx, companyID, in)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("invoiceID", inv.ID.String())
	return &InvoiceOutput{Status: http.StatusCreated, Body: toInvoice(inv)}, nil
}

func (h *InvoiceHandler) get(ctx context.Context, input *GetInvoiceInput) (*InvoiceOutput, error) {
	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}
	invoiceID, err := params.UUID("invoiceID", input.InvoiceID)
	if err != nil {
		return nil, err
	}
	inv, err := h.InvoiceService.GetInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	return &InvoiceOutput{Status: http.StatusOK, Body: toInvoice(inv)}, nil
}
