package recurring

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/billing"
	"github.com/carson-networks/ledger-server/internal/handlers/errmap"
	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/invoice"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
)

// Profile is the API response model for a recurring invoice profile.
type Profile struct {
	ID               string         `json:"id"`
	ClientID         string         `json:"clientID"`
	Interval         string         `json:"interval"`
	AnchorDay        int            `json:"anchorDay"`
	NextRunDate      string         `json:"nextRunDate" format:"date"`
	TaxRate          string         `json:"taxRate"`
	RevenueCode      string         `json:"revenueCode"`
	PaymentTermsDays int            `json:"paymentTermsDays"`
	Items            []invoice.Item `json:"items"`
	IsActive         bool           `json:"isActive"`
	CreatedAt        string         `json:"createdAt" format:"date-time"`
}

func toProfile(p *recurring.Profile) Profile {
	return Profile{
		ID:               p.ID.String(),
		ClientID:         p.ClientID.String(),
		Interval:         string(p.Interval),
		AnchorDay:        p.AnchorDay,
		NextRunDate:      params.FormatDate(p.NextRunDate),
		TaxRate:          p.TaxRate.String(),
		RevenueCode:      p.RevenueCode,
		PaymentTermsDays: p.PaymentTermsDays,
		Items:            invoice.ToItems(p.Items, p.Currency),
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

type CreateProfileInput struct {
	CompanyID string `path:"companyID" format:"uuid" doc:"Company UUID"`
	Body      CreateProfileBody
}

type CreateProfileBody struct {
	ClientID         string         `json:"clientID" format:"uuid"`
	Interval         string         `json:"interval" enum:"weekly,monthly,quarterly,yearly"`
	AnchorDay        int            `json:"anchorDay,omitempty" minimum:"0" maximum:"31" doc:"Day of month to bill on, clamped to short months; 0 uses startDate's day"`
	StartDate        string         `json:"startDate" format:"date" doc:"First run date"`
	TaxRate          string         `json:"taxRate,omitempty"`
	RevenueCode      string         `json:"revenueCode,omitempty"`
	PaymentTermsDays int            `json:"paymentTermsDays,omitempty" minimum:"0"`
	Items            []invoice.Item `json:"items" minItems:"1"`
}

type CreateProfileOutput struct {
	Status int
	Body   Profile
}

type ProcessDueInput struct {
	Body struct {
		CompanyID string `json:"companyID,omitempty" format:"uuid" doc:"Limit to one company; all companies when absent"`
		Today     string `json:"today,omitempty" format:"date" doc:"Run date, defaults to today"`
	}
}

// RunResult is the outcome for one due profile.
type RunResult struct {
	ProfileID   string `json:"profileID"`
	CompanyID   string `json:"companyID"`
	Skipped     bool   `json:"skipped" doc:"True when another run already advanced the profile"`
	InvoiceID   string `json:"invoiceID,omitempty"`
	JournalID   string `json:"journalID,omitempty"`
	NextRunDate string `json:"nextRunDate,omitempty" format:"date"`
	Error       string `json:"error,omitempty"`
}

type ProcessDueOutput struct {
	Body struct {
		Results []RunResult `json:"results"`
	}
}

type recurringService interface {
	CreateProfile(ctx context.Context, companyID uuid.UUID, p service.Profile) (*recurring.Profile, error)
	ProcessDue(ctx context.Context, companyID uuid.UUID, today time.Time) ([]service.RunResult, error)
}

// RecurringHandler creates profiles and runs the due ones.
type RecurringHandler struct {
	RecurringService recurringService
}

func NewRecurringHandler(svc recurringService) *RecurringHandler {
	return &RecurringHandler{RecurringService: svc}
}

func (h *RecurringHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-recurring-profile",
		Method:        http.MethodPost,
		Path:          "/v1/company/{companyID}/recurring",
		Summary:       "Create a recurring invoice profile",
		Tags:          []string{"Invoices"},
		DefaultStatus: http.StatusCreated,
	}, h.create)

	huma.Register(api, huma.Operation{
		OperationID: "process-recurring",
		Method:      http.MethodPost,
		Path:        "/v1/recurring/process",
		Summary:     "Issue due recurring invoices",
		Description: "Issues one invoice per due profile. A failing profile is reported in its result and does not stop the others.",
		Tags:        []string{"Invoices"},
	}, h.process)
}

func parseCreateProfileInput(input *CreateProfileInput) (uuid.UUID, service.Profile, error) {
	var p service.Profile
	companyID, err := params.UUID("companyID", input.CompanyID)
	if err != nil {
		return uuid.Nil, p, err
	}
	b := input.Body
	if p.ClientID, err = params.UUID("clientID", b.ClientID); err != nil {
		return uuid.Nil, p, err
	}
	if p.StartDate, err = params.Date("startDate", b.StartDate); err != nil {
		return uuid.Nil, p, err
	}
	if p.TaxRate, err = params.OptionalDecimal("taxRate", b.TaxRate); err != nil {
		return uuid.Nil, p, err
	}
	if p.Items, err = invoice.ParseItems(b.Items); err != nil {
		return uuid.Nil, p, err
	}
	p.Interval = billing.Interval(b.Interval)
	p.AnchorDay = b.AnchorDay
	p.RevenueCode = b.RevenueCode
	p.PaymentTermsDays = b.PaymentTermsDays
	return companyID, p, nil
}

func (h *RecurringHandler) create(ctx context.Context, input *CreateProfileInput) (*CreateProfileOutput, error) {
	companyID, p, err := parseCreateProfileInput(input)
	if err != nil {
		return nil, err
	}
	profile, err := h.RecurringService.CreateProfile(ctx, companyID, p)
	if err != nil {
		return nil, errmap.ToHuma(err)
	}
	logging.GetLogData(ctx).AddData("profileID", profile.ID.String())
	return &CreateProfileOutput{Status: http.StatusCreated, Body: toProfile(profile)}, nil
}

func optionalID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func (h *RecurringHandler) process(ctx context.Context, input *ProcessDueInput) (*ProcessDueOutput, error) {
	logData := logging.GetLogData(ctx)

	companyID, err := params.OptionalUUID("companyID", input.Body.CompanyID)
	if err != nil {
		return nil, err
	}
	today, err := params.OptionalDate("today", input.Body.Today)
	if err != nil {
		return nil, err
	}

	stopTimer := logData.AddTiming("processDueMs")
	results, err := h.RecurringService.ProcessDue(ctx, companyID, today)
	stopTimer()
	if err != nil {
		return nil, errmap.ToHuma(err)
	}

	out := &ProcessDueOutput{}
	out.Body.Results = make([]RunResult, len(results))
	for i, r := range results {
		out.Body.Results[i] = RunResult{
			ProfileID:   r.ProfileID.String(),
			CompanyID:   r.CompanyID.String(),
			Skipped:     r.Skipped,
			InvoiceID:   optionalID(r.InvoiceID),
			JournalID:   optionalID(r.JournalID),
			NextRunDate: params.FormatDate(r.NextRunDate),
			Error:       r.Error,
		}
	}
	logData.AddData("profileCount", len(results))
	return out, nil
}
