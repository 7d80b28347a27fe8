package treasury

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// The stock ten-account book used across the engine tests.
func testSeedAccounts() []Account {
	return []Account{
		{ID: 1, Name: "Mpesa_KES_1", Currency: "KES", Balance: decimal.NewFromFloat(2500000.50), Type: "Mobile Money"},
		{ID: 2, Name: "Bank_USD_1", Currency: "USD", Balance: decimal.NewFromFloat(15000.75), Type: "Bank Account"},
		{ID: 3, Name: "Equity_KES_2", Currency: "KES", Balance: decimal.NewFromFloat(890000.25), Type: "Bank Account"},
		{ID: 4, Name: "Chase_USD_2", Currency: "USD", Balance: decimal.NewFromFloat(8500.0), Type: "Bank Account"},
		{ID: 5, Name: "GTBank_NGN_1", Currency: "NGN", Balance: decimal.NewFromFloat(12500000.0), Type: "Bank Account"},
		{ID: 6, Name: "Safaricom_KES_3", Currency: "KES", Balance: decimal.NewFromFloat(450000.80), Type: "Mobile Money"},
		{ID: 7, Name: "Wells_USD_3", Currency: "USD", Balance: decimal.NewFromFloat(22000.30), Type: "Bank Account"},
		{ID: 8, Name: "Zenith_NGN_2", Currency: "NGN", Balance: decimal.NewFromFloat(8750000.50), Type: "Bank Account"},
		{ID: 9, Name: "ABSA_KES_4", Currency: "KES", Balance: decimal.NewFromFloat(1200000.0), Type: "Bank Account"},
		{ID: 10, Name: "Access_NGN_3", Currency: "NGN", Balance: decimal.NewFromFloat(5500000.75), Type: "Bank Account"},
	}
}

var testClock = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestExecutor() (*Executor, *AccountStore, *Ledger) {
	store := NewAccountStore(testSeedAccounts())
	ledger := NewLedger(nil)
	exec := NewExecutor(store, ledger, NewRateTable("USD", testRates()))
	exec.Now = func() time.Time { return testClock }
	return exec, store, ledger
}

func TestExecuteCrossCurrency(t *testing.T) {
	exec, store, ledger := newTestExecutor()

	rec, err := exec.Execute(TransferRequest{FromID: 1, ToID: 2, Amount: "1000", Note: "supplier payout"})
	if err != nil {
		t.Fatal(err)
	}

	if !rec.FXRate.Equal(decimal.NewFromFloat(0.0067)) {
		t.Errorf("fx rate = %s, want 0.0067", rec.FXRate)
	}
	if !rec.ConvertedAmount.Equal(decimal.NewFromFloat(6.70)) {
		t.Errorf("converted amount = %s, want 6.70", rec.ConvertedAmount)
	}
	if rec.Status != StatusCompleted {
		t.Errorf("status = %s, want Completed", rec.Status)
	}
	if !rec.Timestamp.Equal(testClock) {
		t.Errorf("timestamp = %s, want %s", rec.Timestamp, testClock)
	}

	from, _ := store.Get(1)
	to, _ := store.Get(2)
	if !from.Balance.Equal(decimal.NewFromFloat(2499000.50)) {
		t.Errorf("source balance = %s, want 2499000.50", from.Balance)
	}
	if !to.Balance.Equal(decimal.NewFromFloat(15007.45)) {
		t.Errorf("destination balance = %s, want 15007.45", to.Balance)
	}

	// No other account moved.
	for _, acc := range store.Accounts() {
		if acc.ID == 1 || acc.ID == 2 {
			continue
		}
		seed := testSeedAccounts()[acc.ID-1]
		if !acc.Balance.Equal(seed.Balance) {
			t.Errorf("account %s balance changed to %s", acc.Name, acc.Balance)
		}
	}

	if ledger.Len() != 1 {
		t.Errorf("ledger has %d records, want 1", ledger.Len())
	}
}

func TestExecuteSameCurrency(t *testing.T) {
	exec, _, _ := newTestExecutor()

	rec, err := exec.Execute(TransferRequest{FromID: 1, ToID: 3, Amount: "250.50"})
	if err != nil {
		t.Fatal(err)
	}
	if !rec.FXRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("fx rate = %s, want 1", rec.FXRate)
	}
	if !rec.ConvertedAmount.Equal(rec.Amount) {
		t.Errorf("converted %s != amount %s for same-currency transfer", rec.ConvertedAmount, rec.Amount)
	}
}

func TestExecuteRejectionLeavesStateUntouched(t *testing.T) {
	exec, store, ledger := newTestExecutor()

	_, err := exec.Execute(TransferRequest{FromID: 1, ToID: 2, Amount: "-5"})
	var reject *RejectError
	if !errors.As(err, &reject) {
		t.Fatalf("err = %v, want *RejectError", err)
	}
	if len(reject.Reasons) != 1 || reject.Reasons[0] != "amount must be a number greater than 0" {
		t.Errorf("reasons = %q", reject.Reasons)
	}

	if ledger.Len() != 0 {
		t.Errorf("rejected request appended %d records", ledger.Len())
	}
	for i, acc := range store.Accounts() {
		if !acc.Balance.Equal(testSeedAccounts()[i].Balance) {
			t.Errorf("account %s balance changed to %s", acc.Name, acc.Balance)
		}
	}
}

func TestExecuteScheduled(t *testing.T) {
	exec, store, ledger := newTestExecutor()

	when := testClock.Add(72 * time.Hour)
	rec, err := exec.Execute(TransferRequest{FromID: 5, ToID: 8, Amount: "100000", ScheduledFor: &when})
	if err != nil {
		t.Fatal(err)
	}

	if rec.Status != StatusScheduled {
		t.Errorf("status = %s, want Scheduled", rec.Status)
	}
	if !rec.Timestamp.Equal(when) {
		t.Errorf("timestamp = %s, want the scheduled date %s", rec.Timestamp, when)
	}
	if ledger.Len() != 1 {
		t.Errorf("ledger has %d records, want 1", ledger.Len())
	}

	// Zero balance mutation at creation time.
	for i, acc := range store.Accounts() {
		if !acc.Balance.Equal(testSeedAccounts()[i].Balance) {
			t.Errorf("account %s balance changed to %s", acc.Name, acc.Balance)
		}
	}
}

func TestReleaseDue(t *testing.T) {
	exec, store, ledger := newTestExecutor()

	when := testClock.Add(24 * time.Hour)
	sched, err := exec.Execute(TransferRequest{FromID: 5, ToID: 8, Amount: "100000", ScheduledFor: &when})
	if err != nil {
		t.Fatal(err)
	}

	// Not due yet.
	if got := exec.ReleaseDue(testClock); len(got) != 0 {
		t.Fatalf("released %d records before the due date", len(got))
	}

	later := when.Add(time.Hour)
	released := exec.ReleaseDue(later)
	if len(released) != 1 {
		t.Fatalf("released %d records, want 1", len(released))
	}
	rel := released[0]
	if rel.ReleaseOf != sched.ID {
		t.Errorf("ReleaseOf = %s, want %s", rel.ReleaseOf, sched.ID)
	}
	if rel.Status != StatusCompleted {
		t.Errorf("release status = %s, want Completed", rel.Status)
	}

	from, _ := store.Get(5)
	to, _ := store.Get(8)
	if !from.Balance.Equal(decimal.NewFromFloat(12400000.0)) {
		t.Errorf("source balance = %s, want 12400000.00", from.Balance)
	}
	if !to.Balance.Equal(decimal.NewFromFloat(8850000.50)) {
		t.Errorf("destination balance = %s, want 8850000.50", to.Balance)
	}

	// The sweep is idempotent: nothing left to release, balances stable.
	if again := exec.ReleaseDue(later.Add(time.Hour)); len(again) != 0 {
		t.Errorf("second sweep released %d records", len(again))
	}
	if ledger.Len() != 2 {
		t.Errorf("ledger has %d records, want scheduled + release", ledger.Len())
	}
}

func TestReleaseDueSkipsUnderfundedSource(t *testing.T) {
	exec, store, _ := newTestExecutor()

	when := testClock.Add(24 * time.Hour)
	if _, err := exec.Execute(TransferRequest{FromID: 4, ToID: 7, Amount: "8000", ScheduledFor: &when}); err != nil {
		t.Fatal(err)
	}
	// Drain the source below the scheduled amount in the meantime.
	if _, err := exec.Execute(TransferRequest{FromID: 4, ToID: 7, Amount: "2000"}); err != nil {
		t.Fatal(err)
	}

	var warned bool
	exec.Warnf = func(string, ...any) { warned = true }

	if released := exec.ReleaseDue(when.Add(time.Hour)); len(released) != 0 {
		t.Fatalf("released an underfunded scheduled transfer")
	}
	if !warned {
		t.Error("expected a diagnostic for the skipped release")
	}

	// Refund and retry: the next sweep picks it up.
	if _, err := exec.Execute(TransferRequest{FromID: 7, ToID: 4, Amount: "5000"}); err != nil {
		t.Fatal(err)
	}
	if released := exec.ReleaseDue(when.Add(2 * time.Hour)); len(released) != 1 {
		t.Fatalf("retry sweep released %d records, want 1", len(released))
	}

	from, _ := store.Get(4)
	// 8500 - 2000 + 5000 - 8000
	if !from.Balance.Equal(decimal.NewFromFloat(3500.0)) {
		t.Errorf("source balance = %s, want 3500.00", from.Balance)
	}
}
