package journal

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// PostDocumentInput is the Huma input for posting a source document.
type PostDocumentInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	Body      PostDocumentBody
}

// PostDocumentBody describes an invoice, bill, expense or payment to post.
type PostDocumentBody struct {
	SourceType      string `json:"sourceType" enum:"invoice,bill,expense,payment" doc:"Kind of document"`
	SourceID        string `json:"sourceID" format:"uuid" doc:"Document UUID, posted at most once"`
	Date            string `json:"date" format:"date" doc:"Posting date"`
	Amount          string `json:"amount" doc:"Decimal gross total, tax included"`
	TaxAmount       string `json:"taxAmount,omitempty" doc:"Decimal tax portion of amount"`
	TaxRate         string `json:"taxRate,omitempty" doc:"Decimal rate between 0 and 1; the tax is split out of amount"`
	AccountCode     string `json:"accountCode,omitempty" doc:"Revenue or expense account, defaults by document type"`
	BankAccountCode string `json:"bankAccountCode,omitempty" doc:"Cash account for payments and cash expenses"`
	Direction       string `json:"direction,omitempty" enum:"received,made" doc:"Payment direction"`
	Memo            string `json:"memo,omitempty"`
}

// PostManualInput is the Huma input for posting a manual entry.
type PostManualInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	Body      PostManualBody
}

type PostManualBody struct {
	Date     string           `json:"date" format:"date"`
	Memo     string           `json:"memo,omitempty"`
	SourceID string           `json:"sourceID,omitempty" format:"uuid" doc:"Optional idempotency key"`
	Lines    []ManualLineBody `json:"lines" minItems:"2"`
}

type ManualLineBody struct {
	AccountCode string `json:"accountCode" minLength:"1"`
	Debit       string `json:"debit,omitempty" doc:"Decimal debit; set exactly one of debit or credit"`
	Credit      string `json:"credit,omitempty"`
	Description string `json:"description,omitempty"`
}

type journalPoster interface {
	PostDocument(ctx context.Context, doc ledger.SourceDocument) (*ledger.JournalEntry, error)
	PostManual(ctx context.Context, entry ledger.ManualEntry) (*ledger.JournalEntry, error)
}

// PostEntryHandler handles document and manual postings.
type PostEntryHandler struct {
	JournalService journalPoster
}

func NewPostEntryHandler(svc journalPoster) *PostEntryHandler {
	return &PostEntryHandler{JournalService: svc}
}

func (h *PostEntryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "post-document",
		Method:        http.MethodPost,
		Path:          "/v1/company/{companyID}/journal/document",
		Summary:       "Post a source document",
		Description:   "Builds the balanced entry for the document and stores it. The amount is the gross total; a tax rate splits the tax out of it. Posting the same document twice returns 409 with the existing journal id.",
		Tags:          []string{"Journal"},
		DefaultStatus: http.StatusCreated,
	}, h.postDocument)

	huma.Register(api, huma.Operation{
		OperationID:   "post-manual-entry",
		Method:        http.MethodPost,
		Path:          "/v1/company/{companyID}/journal/manual",
		Summary:       "Post a manual entry",
		Tags:          []string{"Journal"},
		DefaultStatus: http.StatusCreated,
	}, h.postManual)
}

func parseDocument(input *PostDocumentInput) (ledger.SourceDocument, error) {
	var doc ledger.SourceDocument
	var err error
	if doc.CompanyID, err = params.UUID("companyID", input.CompanyID); err != nil {
		return doc, err
	}
	b := input.Body
	if doc.SourceID, err = params.UUID("sourceID", b.SourceID); err != nil {
		return doc, err
	}
	if doc.Date, err = params.Date("date", b.Date); err != nil {
		return doc, err
	}
	if doc.Amount, err = params.Decimal("amount", b.Amount); err != nil {
		return doc, err
	}
	if doc.TaxAmount, err = params.OptionalDecimal("taxAmount", b.TaxAmount); err != nil {
		return doc, err
	}
	if doc.TaxRate, err = params.OptionalDecimal("taxRate", b.TaxRate); err != nil {
		return doc, err
	}
	doc.SourceType = ledger.SourceType(b.SourceType)
	doc.AccountCode = b.AccountCode
	doc.BankAccountCode = b.BankAccountCode
	doc.Direction = ledger.PaymentDirection(b.Direction)
	doc.Memo = b.Memo
	return doc, nil
}

func parseManual(input *PostManualInput) (ledger.ManualEntry, error) {
	var entry ledger.ManualEntry
	var err error
	if entry.CompanyID, err = params.UUID("companyID", input.CompanyID); err != nil {
		return entry, err
	}
	if entry.Date, err = params.Date("date", input.Body.Date); err != nil {
		return entry, err
	}
	if entry.SourceID, err = params.OptionalUUID("sourceID", input.Body.SourceID); err != nil {
		return entry, err
	}
	entry.Memo = input.Body.Memo
	for _, l := range input.Body.Lines {
		line := ledger.ManualLine{AccountCode: l.AccountCode, Description: l.Description}
		if line.Debit, err = params.OptionalDecimal("debit", l.Debit); err != nil {
			return entry, err
		}
		if line.Credit, err = params.OptionalDecimal("credit", l.Credit); err != nil {
			return entry, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, nil
}

func (h *PostEntryHandler) postDocument(ctx context.Context, input *PostDocumentInput) (*EntryOutput, error) {
	logData := logging.GetLogData(ctx)

	doc, err := parseDocument(input)
	if err != nil {
		return nil, err
	}
	logData.AddData("sourceType", string(doc.SourceType))

	stopTimer := logData.AddTiming("postDocumentMs")
	entry, err := h.JournalService.PostDocument(ctx, doc)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}

	logData.AddData("journalID", entry.ID.String())
	return &EntryOutput{Status: http.StatusCreated, Body: ToJournalEntry(entry)}, nil
}

func (h *PostEntryHandler) postManual(ctx context.Context, input *PostManualInput) (*EntryOutput, error) {
	logData := logging.GetLogData(ctx)

	entry, err := parseManual(input)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("postManualMs")
	posted, err := h.JournalService.PostManual(ctx, entry)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}

	logData.AddData("journalID", posted.ID.String())
	return &EntryOutput{Status: http.StatusCreated, Body: ToJournalEntry(posted)}, nil
}

