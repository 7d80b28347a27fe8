package treasury

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217 style code such as "KES" or "USD".
type Currency string

// Status marks whether a ledger record's balance movement has been
// applied (Completed) or recorded for a future date (Scheduled).
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusScheduled Status = "Scheduled"
)

// Account is one virtual treasury account. Balance is held in the
// account's own currency and is mutated only through an Executor.
type Account struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Currency Currency        `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Type     string          `json:"type"`
}

// TransferRequest asks to move Amount (in the source account's
// currency) from one account to another. Amount is carried as text;
// validation owns parsing so every surface reports the same reason for
// malformed input. A request is transient and never stored.
type TransferRequest struct {
	FromID       int64      `json:"from_id"`
	ToID         int64      `json:"to_id"`
	Amount       string     `json:"amount"`
	Note         string     `json:"note,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// TransactionRecord is one immutable entry in the ledger. Timestamp is
// the effective date: the moment of execution for immediate transfers,
// the requested future date for scheduled ones. ReleaseOf links a
// record created by a scheduled-transfer release back to the scheduled
// record it applied.
type TransactionRecord struct {
	ID              string          `json:"id"`
	FromAccount     string          `json:"fromAccount"`
	ToAccount       string          `json:"toAccount"`
	FromCurrency    Currency        `json:"fromCurrency"`
	ToCurrency      Currency        `json:"toCurrency"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	FXRate          decimal.Decimal `json:"fxRate"`
	Note            string          `json:"note,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
	Status          Status          `json:"status"`
	ReleaseOf       string          `json:"releaseOf,omitempty"`
}
