package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/carson-networks/ledger-server/internal/service"
)

func newProcessRecurringCommand() *cobra.Command {
	var companyFlag, dateFlag string

	cmd := &cobra.Command{
		Use:   "process-recurring",
		Short: "Issue invoices for every recurring profile that is due",
		Long: `Issues one invoice per due recurring profile and advances its next run date.
Profiles are processed independently; a failing profile does not stop the rest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseOptionalUUID("company", companyFlag)
			if err != nil {
				return err
			}
			today, err := parseOptionalDate("date", dateFlag)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.service.Recurring.ProcessDue(cmd.Context(), companyID, today)
			if err != nil {
				return err
			}
			return printRunResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVar(&companyFlag, "company", "", "only process profiles of this company")
	cmd.Flags().StringVar(&dateFlag, "date", "", "run as of this date (YYYY-MM-DD), defaults to today")
	return cmd
}

func printRunResults(w io.Writer, results []service.RunResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No recurring profiles due.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tCOMPANY\tSTATUS\tINVOICE\tNEXT RUN")
	failed := 0
	for _, r := range results {
		status, invoice, next := "issued", r.InvoiceID.String(), formatDate(r.NextRunDate)
		switch {
		case r.Error != "":
			status, invoice = "failed: "+r.Error, "-"
			failed++
		case r.Skipped:
			status, invoice = "skipped", "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ProfileID, r.CompanyID, status, invoice, next)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d recurring profiles failed", failed, len(results))
	}
	return nil
}

func parseOptionalUUID(name, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s: %w", name, err)
	}
	return id, nil
}

func parseOptionalDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD: %w", name, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}
