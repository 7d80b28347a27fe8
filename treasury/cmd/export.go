package cmd

import (
	"encoding/csv"
	"log"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

var exportDelimiter string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the transaction register as CSV, newest first",
	Run: func(_ *cobra.Command, _ []string) {
		eng, err := loadEngine()
		if err != nil {
			log.Fatalln(err)
		}
		filter, err := buildFilter()
		if err != nil {
			log.Fatalln(err)
		}

		delimiter, _ := utf8.DecodeRuneInString(exportDelimiter)

		w := csv.NewWriter(os.Stdout)
		w.Comma = delimiter
		w.Write([]string{"Timestamp", "FromAccount", "ToAccount", "Amount",
			"FromCurrency", "ToCurrency", "ConvertedAmount", "FXRate", "Note", "Status"})
		for rec := range eng.ledger.Query(filter) {
			w.Write([]string{
				rec.Timestamp.UTC().Format(time.RFC3339),
				rec.FromAccount,
				rec.ToAccount,
				rec.Amount.String(),
				string(rec.FromCurrency),
				string(rec.ToCurrency),
				rec.ConvertedAmount.String(),
				rec.FXRate.String(),
				rec.Note,
				string(rec.Status),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&filterAccount, "account", "", "Only export transactions touching accounts matching this string.")
	exportCmd.Flags().StringVar(&filterCurrency, "currency", "", "Only export transactions with this currency on either leg.")
	exportCmd.Flags().StringVar(&filterBeginDate, "begin-date", "", "Begin date of export.")
	exportCmd.Flags().StringVar(&filterEndDate, "end-date", "", "End date of export (inclusive).")
	exportCmd.Flags().StringVar(&exportDelimiter, "delimiter", ",", "Field delimiter.")
}
