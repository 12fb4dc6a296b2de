package bank

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

type SyncInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	Body      struct {
		From string `json:"from,omitempty" format:"date" doc:"Defaults to a few days before each connection's last sync"`
		To   string `json:"to,omitempty" format:"date" doc:"Defaults to today"`
	}
}

// SyncResult is the outcome for one connection. A failed connection does not fail the request.
type SyncResult struct {
	ConnectionID string `json:"connectionID"`
	Name         string `json:"name"`
	Imported     int64  `json:"imported"`
	Skipped      int64  `json:"skipped" doc:"Lines already imported earlier"`
	Error        string `json:"error,omitempty"`
}

type SyncOutput struct {
	Body struct {
		Results []SyncResult `json:"results"`
	}
}

type ImportCSVInput struct {
	CompanyID    string `path:"companyID" format:"uuid" doc:"Company UUID"`
	ConnectionID string `path:"connectionID" format:"uuid" doc:"Connection UUID"`
	Format       string `query:"format" required:"true" doc:"CSV layout, e.g. chase or generic"`
	RawBody      []byte `contentType:"text/csv"`
}

type ImportCSVOutput struct {
	Body struct {
		Imported int64 `json:"imported"`
		Skipped  int64 `json:"skipped"`
	}
}

type bankSyncer interface {
	SyncCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]service.SyncResult, error)
	ImportCSV(ctx context.Context, companyID, connectionID uuid.UUID, format string, r io.Reader) (int64, int64, error)
}

// SyncHandler pulls statement lines from the bank feed or an uploaded CSV.
type SyncHandler struct {
	BankSyncService bankSyncer
}

func NewSyncHandler(svc bankSyncer) *SyncHandler {
	return &SyncHandler{BankSyncService: svc}
}

func (h *SyncHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "sync-bank",
		Method:      http.MethodPost,
		Path:        "/v1/company/{companyID}/bank/sync",
		Summary:     "Sync bank transactions",
		Description: "Fetches new transactions for every feed connection of the company.",
		Tags:        []string{"Banking"},
	}, h.sync)

	huma.Register(api, huma.Operation{
		OperationID: "import-bank-csv",
		Method:      http.MethodPost,
		Path:        "/v1/company/{companyID}/bank/connection/{connectionID}/import",
		Summary:     "Import a bank CSV export",
		Tags:        []string{"Banking"},
	}, h.importCSV)
}

func (h *SyncHandler) sync(ctx context.Context, input *SyncInput) (*SyncOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}
	from, err := params.OptionalDate("from", input.Body.From)
	if err != nil {
		return nil, err
	}
	to, err := params.OptionalDate("to", input.Body.To)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("syncMs")
	results, err := h.BankSyncService.SyncCompany(ctx, companyID, from, to)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}

	out := &SyncOutput{}
	out.Body.Results = make([]SyncResult, len(results))
	failed := 0
	for i, r := range results {
		out.Body.Results[i] = SyncResult{
			ConnectionID: r.ConnectionID.String(),
			Name:         r.Name,
			Imported:     r.Imported,
			Skipped:      r.Skipped,
			Error:        r.Error,
		}
		if r.Error != "" {
			failed++
		}
	}
	logData.AddData("connectionCount", len(results))
	logData.AddData("failedCount", failed)
	return out, nil
}

func (h *SyncHandler) importCSV(ctx context.Context, input *ImportCSVInput) (*ImportCSVOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return nil, err
	}
	connectionID, err := params.UUID("connectionID", input.ConnectionID)
	if err != nil {
		return nil, err
	}

	imported, skipped, err := h.BankSyncService.ImportCSV(ctx, companyID, connectionID, input.Format, bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logData.AddData("imported", imported)
	logData.AddData("skipped", skipped)

	out := &ImportCSVOutput{}
	out.Body.Imported, out.Body.Skipped = imported, skipped
	return out, nil
}
