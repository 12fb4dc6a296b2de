package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/extract"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/account"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/bank"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/company"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/expense"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/invoice"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/journal"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/recurring"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/report"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/status"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

const shutdownTimeout = 10 * time.Second

type registrar interface {
	Register(api huma.API)
}

type Rest struct {
	Logger    *logrus.Logger
	Port      string
	DB        status.Pinger
	Service   *service.Service
	Extractor extract.Extractor
}

// Router builds the chi router with every v1 operation registered on huma.
func (r *Rest) Router() http.Handler {
	router := chi.NewRouter()

	statusHandler := status.NewHandler(r.DB)
	router.Get("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	api := humachi.New(router, huma.DefaultConfig("Ledger Server", "1.0.0"))
	api.UseMiddleware(logging.Middleware(r.Logger))

	svc := r.Service
	handlers := []registrar{
		company.NewCreateCompanyHandler(svc.Company),
		company.NewGetCompanyHandler(svc.Company),
		account.NewListAccountsHandler(svc.Chart),
		account.NewCreateAccountHandler(svc.Chart),
		account.NewUpdateAccountHandler(svc.Chart),
		journal.NewPostEntryHandler(svc.Journal),
		journal.NewEntryHandler(svc.Journal),
		journal.NewListEntriesHandler(svc.Journal),
		report.NewTrialBalanceHandler(svc.Report),
		bank.NewCreateConnectionHandler(svc.BankSync),
		bank.NewSyncHandler(svc.BankSync),
		transaction.NewListTransactionsHandler(svc.Reconciliation),
		transaction.NewReconcileHandler(svc.Reconciliation),
		invoice.NewInvoiceHandler(svc.Invoice),
		recurring.NewRecurringHandler(svc.Recurring),
		expense.NewExtractHandler(r.Extractor),
	}
	for _, h := range handlers {
		h.Register(api)
	}

	return router
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (r *Rest) Serve(ctx context.Context) error {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Router(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
