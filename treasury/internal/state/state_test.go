package state

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odhiambo/treasury"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Accounts) != 10 {
		t.Errorf("default config has %d accounts, want 10", len(cfg.Accounts))
	}

	table := cfg.RateTable()
	if got := table.Rate("KES", "USD"); !got.Equal(decimal.NewFromFloat(0.0067)) {
		t.Errorf("Rate(KES, USD) = %s, want 0.0067", got)
	}
	if table.Anchor() != "USD" {
		t.Errorf("anchor = %s, want USD", table.Anchor())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if _, ok, err := store.LoadAccounts(); err != nil || ok {
		t.Fatalf("missing snapshot: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	accounts := []treasury.Account{
		{ID: 1, Name: "Mpesa_KES_1", Currency: "KES", Balance: decimal.NewFromFloat(2499000.50), Type: "Mobile Money"},
		{ID: 2, Name: "Bank_USD_1", Currency: "USD", Balance: decimal.NewFromFloat(15007.45), Type: "Bank Account"},
	}
	stamp := time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)
	records := []treasury.TransactionRecord{
		{
			ID:              "01ARZ3NDEKTSV4RRFFQ69G5FAV",
			FromAccount:     "Mpesa_KES_1",
			ToAccount:       "Bank_USD_1",
			FromCurrency:    "KES",
			ToCurrency:      "USD",
			Amount:          decimal.NewFromInt(1000),
			ConvertedAmount: decimal.NewFromFloat(6.70),
			FXRate:          decimal.NewFromFloat(0.0067),
			Note:            "supplier payout",
			Timestamp:       stamp,
			Status:          treasury.StatusCompleted,
		},
	}

	if err := store.Save(accounts, records); err != nil {
		t.Fatal(err)
	}

	gotAccounts, ok, err := store.LoadAccounts()
	if err != nil || !ok {
		t.Fatalf("LoadAccounts: ok=%v err=%v", ok, err)
	}
	if len(gotAccounts) != 2 || gotAccounts[0].Name != "Mpesa_KES_1" {
		t.Errorf("accounts did not round-trip: %+v", gotAccounts)
	}
	if !gotAccounts[0].Balance.Equal(accounts[0].Balance) {
		t.Errorf("balance = %s, want %s", gotAccounts[0].Balance, accounts[0].Balance)
	}

	gotRecords, ok, err := store.LoadTransactions()
	if err != nil || !ok {
		t.Fatalf("LoadTransactions: ok=%v err=%v", ok, err)
	}
	if len(gotRecords) != 1 {
		t.Fatalf("got %d records, want 1", len(gotRecords))
	}
	rec := gotRecords[0]
	if !rec.Timestamp.Equal(stamp) {
		t.Errorf("timestamp = %s, want %s", rec.Timestamp, stamp)
	}
	if !rec.ConvertedAmount.Equal(decimal.NewFromFloat(6.70)) {
		t.Errorf("converted amount = %s, want 6.70", rec.ConvertedAmount)
	}
	if rec.Status != treasury.StatusCompleted {
		t.Errorf("status = %s, want Completed", rec.Status)
	}
}
