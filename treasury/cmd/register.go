package cmd

import (
	"bufio"
	"log"
	"os"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/hako/durafmt"
	"github.com/juztin/numeronym"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/odhiambo/treasury"
	"github.com/odhiambo/treasury/treasury/internal/fastcolor"
)

const newLine = "\n"
const displayDateFormat = "2006/01/02"

var filterAccount, filterCurrency string
var filterBeginDate, filterEndDate string
var registerColumnWidth int
var registerWide bool

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Print the transaction register, newest first",
	Run: func(_ *cobra.Command, _ []string) {
		eng, err := loadEngine()
		if err != nil {
			log.Fatalln(err)
		}
		filter, err := buildFilter()
		if err != nil {
			log.Fatalln(err)
		}
		printRegister(eng.ledger, filter, outputColumns(registerColumnWidth, registerWide))
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVar(&filterAccount, "account", "", "Only show transactions touching accounts matching this string.")
	registerCmd.Flags().StringVar(&filterCurrency, "currency", "", "Only show transactions with this currency on either leg.")
	registerCmd.Flags().StringVar(&filterBeginDate, "begin-date", "", "Begin date of register.")
	registerCmd.Flags().StringVar(&filterEndDate, "end-date", "", "End date of register (inclusive).")
	registerCmd.Flags().IntVar(&registerColumnWidth, "columns", 80, "Set a column width for output.")
	registerCmd.Flags().BoolVar(&registerWide, "wide", false, "Wide output (use terminal width).")
}

// buildFilter turns the shared register/export flags into a ledger
// filter. The end date covers the entire named day.
func buildFilter() (treasury.Filter, error) {
	var filter treasury.Filter
	filter.Account = filterAccount
	filter.Currency = treasury.Currency(filterCurrency)
	if filterBeginDate != "" {
		begin, err := dateparse.ParseAny(filterBeginDate)
		if err != nil {
			return filter, err
		}
		filter.Begin = begin
	}
	if filterEndDate != "" {
		end, err := dateparse.ParseAny(filterEndDate)
		if err != nil {
			return filter, err
		}
		filter.End = end.Add(24*time.Hour - time.Second)
	}
	return filter, nil
}

// abbreviate shortens an account name to fit a column, numeronym style
// (Operational_Float_KES -> O11l_F3t_KES).
func abbreviate(name string, width int) string {
	if utf8.RuneCountInString(name) <= width {
		return name
	}
	return string(numeronym.Parse([]byte(name)))
}

func printRegister(ledger *treasury.Ledger, filter treasury.Filter, columns int) {
	if columns < 60 {
		columns = 60
	}
	fastcolor.Enabled = isatty.IsTerminal(os.Stdout.Fd())

	// date | legs | amount | rate | note | status
	legWidth := (columns - 56) / 2
	if legWidth > 12 {
		legWidth = 12
	}
	// Notes get whatever is left after the fixed columns; on narrow
	// output they are dropped.
	noteWidth := columns - 10 - (2*legWidth + 4) - 30 - 8 - 9 - 5

	buf := bufio.NewWriter(os.Stdout)
	for rec := range ledger.Query(filter) {
		fastcolor.Reset.WriteStringFixed(buf, rec.Timestamp.Format(displayDateFormat), 10, false)
		buf.WriteString(" ")
		legs := abbreviate(rec.FromAccount, legWidth) + " -> " + abbreviate(rec.ToAccount, legWidth)
		fastcolor.FgBlue.WriteStringFixed(buf, legs, 2*legWidth+4, false)
		buf.WriteString(" ")

		outAmount := string(rec.FromCurrency) + " " + rec.Amount.StringFixedBank(2)
		if rec.FromCurrency != rec.ToCurrency {
			outAmount += " -> " + string(rec.ToCurrency) + " " + rec.ConvertedAmount.StringFixedBank(2)
		}
		fastcolor.Reset.WriteStringFixed(buf, outAmount, 30, true)
		buf.WriteString(" ")

		outRate := "-"
		if rec.FromCurrency != rec.ToCurrency {
			outRate = rec.FXRate.StringFixed(4)
		}
		fastcolor.Reset.WriteStringFixed(buf, outRate, 8, true)
		buf.WriteString(" ")

		if noteWidth > 0 {
			fastcolor.Reset.WriteStringFixed(buf, rec.Note, noteWidth, false)
			buf.WriteString(" ")
		}

		outStatus := string(rec.Status)
		statusColor := fastcolor.FgGreen
		if rec.Status == treasury.StatusScheduled {
			statusColor = fastcolor.FgYellow
			if wait := time.Until(rec.Timestamp); wait > 0 {
				outStatus += " due in " + durafmt.Parse(wait).LimitFirstN(2).String()
			}
		}
		statusWidth := utf8.RuneCountInString(outStatus)
		if statusWidth < 9 {
			statusWidth = 9
		}
		statusColor.WriteStringFixed(buf, outStatus, statusWidth, false)
		buf.WriteString(newLine)
	}
	buf.Flush()
}
