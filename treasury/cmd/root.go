package cmd

import (
	"fmt"
	"os"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/cobra"

	"github.com/odhiambo/treasury"
	"github.com/odhiambo/treasury/treasury/internal/state"
)

var configPath string
var stateDir string

var rootCmd = &cobra.Command{
	Use:   "treasury",
	Short: "Multi-currency treasury movement simulator",
	Long: `Simulates fund movement across a fixed set of virtual accounts in
multiple currencies, with FX conversion, scheduled transfers and an
append-only transaction ledger.`,
}

// Execute runs the root command.
func Execute() {
	cc.Init(&cc.Config{
		RootCmd:  rootCmd,
		Headings: cc.HiCyan + cc.Bold + cc.Underline,
		Commands: cc.HiYellow + cc.Bold,
		Example:  cc.Italic,
		ExecName: cc.Bold,
		Flags:    cc.Bold,
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "treasury.toml", "Configuration file with rates and seed accounts.")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", ".", "Directory holding accounts.json and transactions.json snapshots.")
}

// engine bundles the store, ledger, rate table and executor wired from
// configuration and any existing snapshots.
type engine struct {
	cfg      state.Config
	snap     *state.Store
	store    *treasury.AccountStore
	ledger   *treasury.Ledger
	rates    *treasury.RateTable
	executor *treasury.Executor
}

func loadEngine() (*engine, error) {
	cfg, err := state.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	snap := state.NewStore(stateDir)
	accounts, ok, err := snap.LoadAccounts()
	if err != nil {
		return nil, err
	}
	if !ok {
		accounts = cfg.SeedAccounts()
	}
	records, _, err := snap.LoadTransactions()
	if err != nil {
		return nil, err
	}

	eng := &engine{cfg: cfg, snap: snap}
	eng.store = treasury.NewAccountStore(accounts)
	eng.ledger = treasury.NewLedger(records)
	eng.rates = cfg.RateTable()
	eng.rates.Warnf = warnf
	eng.executor = treasury.NewExecutor(eng.store, eng.ledger, eng.rates)
	eng.executor.Warnf = warnf
	return eng, nil
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// save snapshots the current book and history. Failures are reported
// but do not fail the command; snapshots are best effort.
func (e *engine) save() {
	if err := e.snap.Save(e.store.Accounts(), e.ledger.History()); err != nil {
		warnf("unable to save snapshots: %v", err)
	}
}
