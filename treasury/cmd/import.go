package cmd

import (
	"encoding/csv"
	"errors"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	date "github.com/joyt/godate"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/odhiambo/treasury"
)

var errMissingColumns = errors.New("csv header is missing required columns")

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Args:  cobra.ExactArgs(1),
	Short: "Import transaction history from a CSV export",
	Run: func(_ *cobra.Command, args []string) {
		eng, err := loadEngine()
		if err != nil {
			log.Fatalln(err)
		}
		added, err := importCSV(eng, args[0])
		if err != nil {
			log.Fatalln(err)
		}
		eng.save()
		log.Printf("imported %d transactions", added)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// importCSV reads a register export and appends any records not
// already in the ledger. Balances are not touched; this restores
// history, not fund movement.
func importCSV(eng *engine, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	csvReader := csv.NewReader(f)
	csvRecords, err := csvReader.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(csvRecords) < 2 {
		return 0, nil
	}

	colIdx := func(name string) int {
		for i, field := range csvRecords[0] {
			if strings.Contains(strings.ToLower(field), name) {
				return i
			}
		}
		return -1
	}
	dateIdx := colIdx("time")
	fromIdx := colIdx("fromaccount")
	toIdx := colIdx("toaccount")
	amountIdx := colIdx("amount")
	fromCurIdx := colIdx("fromcurrency")
	toCurIdx := colIdx("tocurrency")
	convertedIdx := colIdx("converted")
	rateIdx := colIdx("rate")
	noteIdx := colIdx("note")
	statusIdx := colIdx("status")
	for _, idx := range []int{dateIdx, fromIdx, toIdx, amountIdx, fromCurIdx, toCurIdx} {
		if idx < 0 {
			return 0, errMissingColumns
		}
	}

	existing := make(map[string]bool)
	for _, rec := range eng.ledger.History() {
		existing[dedupeKey(rec)] = true
	}

	var imported []treasury.TransactionRecord
	var dateLayout string
	for _, csvRecord := range csvRecords[1:] {
		var stamp time.Time
		var derr error
		if dateLayout != "" {
			stamp, derr = time.Parse(dateLayout, csvRecord[dateIdx])
		}
		if dateLayout == "" || derr != nil {
			stamp, dateLayout, derr = date.ParseAndGetLayout(csvRecord[dateIdx])
			if derr != nil {
				return 0, derr
			}
		}

		amount, aerr := decimal.NewFromString(csvRecord[amountIdx])
		if aerr != nil {
			return 0, aerr
		}
		converted := amount
		if convertedIdx >= 0 {
			if converted, aerr = decimal.NewFromString(csvRecord[convertedIdx]); aerr != nil {
				return 0, aerr
			}
		}
		fxRate := decimal.NewFromInt(1)
		if rateIdx >= 0 {
			if fxRate, aerr = decimal.NewFromString(csvRecord[rateIdx]); aerr != nil {
				return 0, aerr
			}
		}
		status := treasury.StatusCompleted
		if statusIdx >= 0 && treasury.Status(csvRecord[statusIdx]) == treasury.StatusScheduled {
			status = treasury.StatusScheduled
		}

		rec := treasury.TransactionRecord{
			ID:              treasury.NewRecordID(),
			FromAccount:     csvRecord[fromIdx],
			ToAccount:       csvRecord[toIdx],
			FromCurrency:    treasury.Currency(csvRecord[fromCurIdx]),
			ToCurrency:      treasury.Currency(csvRecord[toCurIdx]),
			Amount:          amount,
			ConvertedAmount: converted,
			FXRate:          fxRate,
			Timestamp:       stamp,
			Status:          status,
		}
		if noteIdx >= 0 {
			rec.Note = csvRecord[noteIdx]
		}

		if existing[dedupeKey(rec)] {
			continue
		}
		existing[dedupeKey(rec)] = true
		imported = append(imported, rec)
	}

	// Exports are newest first; append oldest first so the ledger
	// keeps insertion order.
	slices.Reverse(imported)
	for _, rec := range imported {
		eng.ledger.Append(rec)
	}
	return len(imported), nil
}

func dedupeKey(rec treasury.TransactionRecord) string {
	return rec.Timestamp.UTC().Format(time.RFC3339) + "|" + rec.FromAccount + "|" +
		rec.ToAccount + "|" + rec.Amount.String()
}
