package journal

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

type EntryPathInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	JournalID string `path:"journalID" format:"uuid" doc:"Journal UUID"`
}

type ReverseEntryInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	JournalID string `path:"journalID" format:"uuid" doc:"Journal UUID"`
	Body      ReverseEntryBody
}

type ReverseEntryBody struct {
	Date string `json:"date,omitempty" format:"date" doc:"Reversal date, defaults to the original entry's date"`
	Memo string `json:"memo,omitempty"`
}

type entryService interface {
	GetEntry(ctx context.Context, companyID, journalID uuid.UUID) (*ledger.JournalEntry, error)
	Reverse(ctx context.Context, companyID, journalID uuid.UUID, date time.Time, memo string) (*ledger.JournalEntry, error)
}

// EntryHandler serves single entries: fetch and reverse.
type EntryHandler struct {
	JournalService entryService
}

func NewEntryHandler(svc entryService) *EntryHandler {
	return &EntryHandler{JournalService: svc}
}

func (h *EntryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-journal-entry",
		Method:      http.MethodGet,
		Path:        "/v1/company/{companyID}/journal/{journalID}",
		Summary:     "Get a journal entry",
		Tags:        []string{"Journal"},
	}, h.get)

	huma.Register(api, huma.Operation{
		OperationID:   "reverse-journal-entry",
		Method:        http.MethodPost,
		Path:          "/v1/company/{companyID}/journal/{journalID}/reverse",
		Summary:       "Reverse a journal entry",
		Description:   "Posts a new entry with debits and credits swapped. Entries are never edited or deleted.",
		Tags:          []string{"Journal"},
		DefaultStatus: http.StatusCreated,
	}, h.reverse)
}

func parseEntryPath(rawCompanyID, rawJournalID string) (companyID, journalID uuid.UUID, err error) {
	if companyID, err = params.UUID("companyID", rawCompanyID); err != nil {
		return
	}
	journalID, err = params.UUID("journalID", rawJournalID)
	return
}

func (h *EntryHandler) get(ctx context.Context, input *EntryPathInput) (*EntryOutput, error) {
	companyID, journalID, err := parseEntryPath(input.CompanyID, input.JournalID)
	if err != nil {
		return nil, err
	}
	entry, err := h.JournalService.GetEntry(ctx, companyID, journalID)
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	return &EntryOutput{Status: http.StatusOK, Body: ToJournalEntry(entry)}, nil
}

func (h *EntryHandler) reverse(ctx context.Context, input *ReverseEntryInput) (*EntryOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, journalID, err := parseEntryPath(input.CompanyID, input.JournalID)
	if err != nil {
		return nil, err
	}
	date, err := params.OptionalDate("date", input.Body.Date)
	if err != nil {
		return nil, err
	}

	entry, err := h.JournalService.Reverse(ctx, companyID, journalID, date, input.Body.Memo)
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("journalID", entry.ID.String())
	return &EntryOutput{Status: http.StatusCreated, Body: ToJournalEntry(entry)}, nil
}
