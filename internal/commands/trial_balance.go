package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

func newTrialBalanceCommand() *cobra.Command {
	var companyFlags []string
	var asOfFlag string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance of one or more companies",
		Long: `Prints debit and credit totals per account. Passing --company more than once
prints a consolidated balance pooled by account code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseCompanyIDs(companyFlags)
			if err != nil {
				return err
			}
			asOf, err := parseOptionalDate("as-of", asOfFlag)
			if err != nil {
				return err
			}
			var asOfPtr *time.Time
			if !asOf.IsZero() {
				asOfPtr = &asOf
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			first, err := a.service.Company.GetCompany(ctx, ids[0])
			if err != nil {
				return err
			}

			var tb *ledger.TrialBalance
			if len(ids) == 1 {
				tb, err = a.service.Report.GetTrialBalance(ctx, ids[0], asOfPtr)
			} else {
				tb, err = a.service.Report.GetConsolidatedTrialBalance(ctx, ids, asOfPtr)
			}
			if err != nil {
				return err
			}
			return printTrialBalance(cmd.OutOrStdout(), tb, first.BaseCurrency)
		},
	}

	cmd.Flags().StringArrayVar(&companyFlags, "company", nil, "company id, repeat to consolidate")
	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "only include entries dated on or before (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func parseCompanyIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, errors.New("at least one --company is required")
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.FromString(s)
		if err != nil {
			return nil, fmt.Errorf("--company %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// printTrialBalance writes one line per account followed by the totals. Amounts
// are formatted in the currency of the first company.
func printTrialBalance(w io.Writer, tb *ledger.TrialBalance, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CODE\tACCOUNT\tDEBIT\tCREDIT\t")
	for _, row := range tb.Rows {
		if row.Debit.IsZero() && row.Credit.IsZero() {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", row.Code, row.Name,
			ledger.FormatAmount(row.Debit, currency), ledger.FormatAmount(row.Credit, currency))
	}
	fmt.Fprintf(tw, "\tTOTAL\t%s\t%s\t\n",
		ledger.FormatAmount(tb.TotalDebit, currency), ledger.FormatAmount(tb.TotalCredit, currency))
	if err := tw.Flush(); err != nil {
		return err
	}

	if !tb.Balanced() {
		_, err := fmt.Fprintln(w, "WARNING: trial balance is out of balance")
		return err
	}
	return nil
}
