package cmd

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/alfredxing/calc/compute"
	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/odhiambo/treasury"
)

var transferFrom, transferTo int64
var transferAmount, transferNote, transferSchedule string

// transferCmd represents the transfer command
var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Move funds between two accounts, converting currency when needed",
	Run: func(_ *cobra.Command, _ []string) {
		eng, err := loadEngine()
		if err != nil {
			log.Fatalln(err)
		}

		amount := transferAmount
		// The amount may be an arithmetic expression like "(1200*3)".
		if strings.ContainsAny(amount, "+-*/() ") {
			if val, cerr := compute.Evaluate(amount); cerr == nil {
				amount = strconv.FormatFloat(val, 'f', -1, 64)
			}
		}

		req := treasury.TransferRequest{
			FromID: transferFrom,
			ToID:   transferTo,
			Amount: amount,
			Note:   transferNote,
		}
		if transferSchedule != "" {
			when, derr := dateparse.ParseAny(transferSchedule)
			if derr != nil {
				log.Fatalf("unable to parse schedule date %q", transferSchedule)
			}
			req.ScheduledFor = &when
		}

		rec, err := eng.executor.Execute(req)
		if err != nil {
			log.Fatalln(err)
		}
		eng.save()

		if rec.Status == treasury.StatusScheduled {
			fmt.Printf("Transfer scheduled for %s\n", rec.Timestamp.Format("2006/01/02 15:04"))
			return
		}
		fmt.Printf("Transfer completed: %s %s -> %s %s (rate %s)\n",
			rec.FromCurrency, rec.Amount.StringFixedBank(2),
			rec.ToCurrency, rec.ConvertedAmount.StringFixedBank(2),
			rec.FXRate.String())
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.Flags().Int64Var(&transferFrom, "from", 0, "Source account id.")
	transferCmd.Flags().Int64Var(&transferTo, "to", 0, "Destination account id.")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "Amount in the source account's currency. Accepts expressions like '(1200*3)'.")
	transferCmd.Flags().StringVar(&transferNote, "note", "", "Optional transfer note.")
	transferCmd.Flags().StringVar(&transferSchedule, "schedule", "", "Record the transfer for a future date instead of executing now.")
}
