// Package state loads treasury configuration and persists best-effort
// snapshots of accounts and transactions between runs.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/shopspring/decimal"

	"github.com/odhiambo/treasury"
)

// Config is the treasury.toml shape: the anchor currency used for
// cross rates, the configured pair table and the seed accounts.
type Config struct {
	Anchor   treasury.Currency `toml:"anchor"`
	Rates    []RateConfig      `toml:"rates"`
	Accounts []AccountConfig   `toml:"accounts"`
}

type RateConfig struct {
	From treasury.Currency `toml:"from"`
	To   treasury.Currency `toml:"to"`
	Rate float64           `toml:"rate"`
}

type AccountConfig struct {
	ID       int64             `toml:"id"`
	Name     string            `toml:"name"`
	Currency treasury.Currency `toml:"currency"`
	Balance  float64           `toml:"balance"`
	Type     string            `toml:"type"`
}

// DefaultConfig is the stock book: ten virtual accounts across
// KES/USD/NGN and the six configured rate pairs, anchored on USD.
func DefaultConfig() Config {
	return Config{
		Anchor: "USD",
		Rates: []RateConfig{
			{From: "KES", To: "USD", Rate: 0.0067},
			{From: "USD", To: "KES", Rate: 149.25},
			{From: "KES", To: "NGN", Rate: 2.58},
			{From: "NGN", To: "KES", Rate: 0.387},
			{From: "USD", To: "NGN", Rate: 385.5},
			{From: "NGN", To: "USD", Rate: 0.0026},
		},
		Accounts: []AccountConfig{
			{ID: 1, Name: "Mpesa_KES_1", Currency: "KES", Balance: 2500000.50, Type: "Mobile Money"},
			{ID: 2, Name: "Bank_USD_1", Currency: "USD", Balance: 15000.75, Type: "Bank Account"},
			{ID: 3, Name: "Equity_KES_2", Currency: "KES", Balance: 890000.25, Type: "Bank Account"},
			{ID: 4, Name: "Chase_USD_2", Currency: "USD", Balance: 8500.0, Type: "Bank Account"},
			{ID: 5, Name: "GTBank_NGN_1", Currency: "NGN", Balance: 12500000.0, Type: "Bank Account"},
			{ID: 6, Name: "Safaricom_KES_3", Currency: "KES", Balance: 450000.80, Type: "Mobile Money"},
			{ID: 7, Name: "Wells_USD_3", Currency: "USD", Balance: 22000.30, Type: "Bank Account"},
			{ID: 8, Name: "Zenith_NGN_2", Currency: "NGN", Balance: 8750000.50, Type: "Bank Account"},
			{ID: 9, Name: "ABSA_KES_4", Currency: "KES", Balance: 1200000.0, Type: "Bank Account"},
			{ID: 10, Name: "Access_NGN_3", Currency: "NGN", Balance: 5500000.75, Type: "Bank Account"},
		},
	}
}

// LoadConfig reads a treasury.toml, falling back to DefaultConfig when
// the file does not exist.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Anchor == "" {
		cfg.Anchor = "USD"
	}
	return cfg, nil
}

// RateTable builds the engine rate table from the configured pairs.
func (c Config) RateTable() *treasury.RateTable {
	rates := make(map[treasury.Pair]decimal.Decimal, len(c.Rates))
	for _, r := range c.Rates {
		rates[treasury.Pair{From: r.From, To: r.To}] = decimal.NewFromFloat(r.Rate)
	}
	return treasury.NewRateTable(c.Anchor, rates)
}

// SeedAccounts converts the configured account list into engine
// accounts.
func (c Config) SeedAccounts() []treasury.Account {
	out := make([]treasury.Account, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		out = append(out, treasury.Account{
			ID:       a.ID,
			Name:     a.Name,
			Currency: a.Currency,
			Balance:  decimal.NewFromFloat(a.Balance),
			Type:     a.Type,
		})
	}
	return out
}

// Store persists the two snapshot collections as ordered JSON lists in
// a directory. Timestamps round-trip as RFC 3339 text.
type Store struct {
	dir string
}

func NewStore(dir string) *Store { return &Store{dir: dir} }

func (s *Store) accountsPath() string {
	return filepath.Join(s.dir, "accounts.json")
}

func (s *Store) transactionsPath() string {
	return filepath.Join(s.dir, "transactions.json")
}

// LoadAccounts returns the snapshot account list. ok is false when no
// snapshot exists yet.
func (s *Store) LoadAccounts() (accounts []treasury.Account, ok bool, err error) {
	data, err := os.ReadFile(s.accountsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", s.accountsPath(), err)
	}
	return accounts, true, nil
}

// LoadTransactions returns the snapshot ledger history in insertion
// order. ok is false when no snapshot exists yet.
func (s *Store) LoadTransactions() (records []treasury.TransactionRecord, ok bool, err error) {
	data, err := os.ReadFile(s.transactionsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", s.transactionsPath(), err)
	}
	return records, true, nil
}

// Save writes both snapshots. Records must be in insertion order.
func (s *Store) Save(accounts []treasury.Account, records []treasury.TransactionRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(s.accountsPath(), accounts); err != nil {
		return err
	}
	return writeJSON(s.transactionsPath(), records)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
