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
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/journal"
)

// ListEntriesCursor represents a pagination cursor in request and response bodies.
// It bundles position, limit, and maxCreationTime so subsequent pages use consistent parameters.
type ListEntriesCursor struct {
	Position        int    `json:"position" minimum:"0" doc:"Numeric offset position for the next page"`
	Limit           int    `json:"limit" minimum:"1" maximum:"100" doc:"Page size used for this cursor"`
	MaxCreationTime string `json:"maxCreationTime" format:"date-time" doc:"Upper bound on created_at locked in from the first page"`
}

// ListEntriesBody is the request body for listing journal entries.
type ListEntriesBody struct {
	SourceType string             `json:"sourceType,omitempty" enum:"invoice,bill,expense,payment,manual,reversal" doc:"Only entries of this source type"`
	From       string             `json:"from,omitempty" format:"date" doc:"Earliest entry date, inclusive"`
	To         string             `json:"to,omitempty" format:"date" doc:"Latest entry date, inclusive"`
	Cursor     *ListEntriesCursor `json:"cursor,omitempty" doc:"Cursor from a previous response to fetch the next page"`
}

type ListEntriesInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	Body      ListEntriesBody
}

// ListEntriesResponseBody is the response body for listing journal entries.
type ListEntriesResponseBody struct {
	Entries    []JournalEntry     `json:"entries" doc:"Page of entry headers, newest first"`
	NextCursor *ListEntriesCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

type ListEntriesOutput struct {
	Body ListEntriesResponseBody
}

type entryLister interface {
	ListEntries(ctx context.Context, companyID uuid.UUID, query service.JournalQuery, cursor *journal.JournalCursor) ([]*ledger.JournalEntry, *journal.JournalCursor, error)
}

// ListEntriesHandler handles POST /v1/company/{companyID}/journal/list.
type ListEntriesHandler struct {
	JournalService entryLister
}

func NewListEntriesHandler(svc entryLister) *ListEntriesHandler {
	return &ListEntriesHandler{JournalService: svc}
}

func (h *ListEntriesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-journal-entries",
		Method:      http.MethodPost,
		Path:        "/v1/company/{companyID}/journal/list",
		Summary:     "List journal entries",
		Description: "Returns a paginated list of entry headers using cursor-based pagination.",
		Tags:        []string{"Journal"},
	}, h.handle)
}

// parseListEntriesInput parses and validates the API input.
// When a cursor is provided, limit and maxCreationTime come from it.
func parseListEntriesInput(input *ListEntriesInput) (uuid.UUID, service.JournalQuery, *journal.JournalCursor, error) {
	var query service.JournalQuery
	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return uuid.Nil, query, nil, err
	}
	if input.Body.SourceType != "" {
		st := ledger.SourceType(input.Body.SourceType)
		query.SourceType = &st
	}
	if query.From, err = params.DatePtr("from", input.Body.From); err != nil {
		return uuid.Nil, query, nil, err
	}
	if query.To, err = params.DatePtr("to", input.Body.To); err != nil {
		return uuid.Nil, query, nil, err
	}

	c := input.Body.Cursor
	if c == nil {
		return companyID, query, nil, nil
	}
	if c.Position < 0 {
		return uuid.Nil, query, nil, huma.NewError(http.StatusBadRequest, "cursor position must be non-negative")
	}
	maxCreationTime, err := time.Parse(time.RFC3339, c.MaxCreationTime)
	if err != nil {
		return uuid.Nil, query, nil, huma.NewError(http.StatusBadRequest, "invalid cursor maxCreationTime", err)
	}
	return companyID, query, &journal.JournalCursor{
		Position:        c.Position,
		Limit:           c.Limit,
		MaxCreationTime: maxCreationTime,
	}, nil
}

func (h *ListEntriesHandler) handle(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, query, cursor, err := parseListEntriesInput(input)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("listEntriesMs")
	entries, next, err := h.JournalService.ListEntries(ctx, companyID, query, cursor)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("entryCount", len(entries))

	resp := ListEntriesResponseBody{Entries: make([]JournalEntry, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = ToJournalEntry(e)
	}
	if next != nil {
		resp.NextCursor = &ListEntriesCursor{
			Position:        next.Position,
			Limit:           next.Limit,
			MaxCreationTime: next.MaxCreationTime.Format(time.RFC3339),
		}
	}
	return &ListEntriesOutput{Body: resp}, nil
}
