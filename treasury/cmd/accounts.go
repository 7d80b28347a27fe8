package cmd

import (
	"bufio"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/odhiambo/treasury"
	"github.com/odhiambo/treasury/treasury/internal/fastcolor"
)

var accountsColumnWidth int
var accountsWide bool

// accountsCmd represents the accounts command
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Show account balances and per-currency portfolio totals",
	Run: func(_ *cobra.Command, _ []string) {
		eng, err := loadEngine()
		if err != nil {
			log.Fatalln(err)
		}
		PrintAccounts(eng.store, outputColumns(accountsColumnWidth, accountsWide))
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsCmd.Flags().IntVar(&accountsColumnWidth, "columns", 80, "Set a column width for output.")
	accountsCmd.Flags().BoolVar(&accountsWide, "wide", false, "Wide output (use terminal width).")
}

func outputColumns(columns int, wide bool) int {
	if columns == 80 && wide {
		columns = 132
		fd := int(os.Stdout.Fd())
		if term.IsTerminal(fd) {
			if tw, _, err := term.GetSize(fd); err == nil {
				columns = tw
			}
		}
	}
	return columns
}

// PrintAccounts prints the account grid followed by portfolio totals,
// formatted to a window of the given width. Each row carries a bar
// sized and colored by the account's share of the largest balance.
func PrintAccounts(store *treasury.AccountStore, columns int) {
	if columns < 40 {
		columns = 40
	}
	fastcolor.Enabled = isatty.IsTerminal(os.Stdout.Fd())

	accounts := store.Accounts()
	maxBalance := decimal.Zero
	for _, acc := range accounts {
		if acc.Balance.GreaterThan(maxBalance) {
			maxBalance = acc.Balance
		}
	}

	// name | type | currency+balance | bar
	accWidth := columns - 40
	buf := bufio.NewWriter(os.Stdout)
	for _, acc := range accounts {
		share := 0.0
		if maxBalance.Sign() > 0 {
			share, _ = acc.Balance.Div(maxBalance).Float64()
		}

		fastcolor.FgBlue.WriteStringFixed(buf, acc.Name, accWidth, false)
		buf.WriteString(" ")
		fastcolor.Reset.WriteStringFixed(buf, acc.Type, 12, false)
		buf.WriteString(" ")
		outBalance := string(acc.Currency) + " " + acc.Balance.StringFixedBank(2)
		fastcolor.Reset.WriteStringFixed(buf, outBalance, 18, true)
		buf.WriteString(" ")
		barColor := fastcolor.RGB(colorful.Hsv(120*share, 0.9, 0.9))
		barColor.WriteStringFixed(buf, strings.Repeat("=", 1+int(share*6)), 7, false)
		buf.WriteString(newLine)
	}
	buf.WriteString(strings.Repeat("-", columns))
	buf.WriteString(newLine)

	totals := store.TotalsByCurrency()
	currencies := make([]treasury.Currency, 0, len(totals))
	for cur := range totals {
		currencies = append(currencies, cur)
	}
	slices.Sort(currencies)
	for _, cur := range currencies {
		fastcolor.Bold.WriteStringFixed(buf, "Total "+string(cur), accWidth+13, false)
		buf.WriteString(" ")
		outTotal := string(cur) + " " + totals[cur].StringFixedBank(2)
		fastcolor.Bold.WriteStringFixed(buf, outTotal, 18, true)
		buf.WriteString(newLine)
	}
	buf.Flush()
}
