package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCSVCommand() *cobra.Command {
	var companyFlag, connectionFlag, formatFlag string

	cmd := &cobra.Command{
		Use:   "import-csv <file>",
		Short: "Import a bank statement CSV into a connection",
		Long: `Imports transactions from a bank statement export. Rows already imported
for the connection are skipped, so the same file can be imported twice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseOptionalUUID("company", companyFlag)
			if err != nil {
				return err
			}
			connectionID, err := parseOptionalUUID("connection", connectionFlag)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer f.Close()

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			imported, skipped, err := a.service.BankSync.ImportCSV(cmd.Context(), companyID, connectionID, formatFlag, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions, skipped %d already present.\n", imported, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&companyFlag, "company", "", "company id")
	cmd.Flags().StringVar(&connectionFlag, "connection", "", "bank connection id")
	cmd.Flags().StringVar(&formatFlag, "format", "generic", "statement format (chase, generic)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("connection")
	return cmd
}
