package treasury

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// RejectError carries the complete batch of validation failures for a
// transfer request. It never accompanies a state change; the caller
// may correct the request and resubmit.
type RejectError struct {
	Reasons []string
}

func (e *RejectError) Error() string {
	return "transfer rejected: " + strings.Join(e.Reasons, "; ")
}

// NewRecordID returns a fresh time-ordered record id.
func NewRecordID() string {
	return ulid.Make().String()
}

// Executor orchestrates validation, rate resolution, balance mutation
// and the ledger append as one synchronous step per request. State
// observed by readers never reflects a transfer that passed validation
// but has not fully committed.
type Executor struct {
	store  *AccountStore
	ledger *Ledger
	rates  *RateTable

	// Now is the clock used for effective dates. Defaults to time.Now.
	Now func() time.Time
	// Warnf receives non-fatal diagnostics, such as a due scheduled
	// transfer skipped for insufficient balance. Nil disables them.
	Warnf func(format string, args ...any)

	mu sync.Mutex
}

// NewExecutor wires an executor over the given collaborators.
func NewExecutor(store *AccountStore, ledger *Ledger, rates *RateTable) *Executor {
	return &Executor{store: store, ledger: ledger, rates: rates, Now: time.Now}
}

// Execute processes one transfer request. On rejection it returns a
// *RejectError and no state changes occur; otherwise it returns the
// record appended to the ledger. The post-validation path cannot fail:
// rate resolution always yields a number.
func (e *Executor) Execute(req TransferRequest) (*TransactionRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.Now()
	if reasons := Validate(req, e.store, now); len(reasons) > 0 {
		return nil, &RejectError{Reasons: reasons}
	}

	from, _ := e.store.Get(req.FromID)
	to, _ := e.store.Get(req.ToID)
	amount, _ := decimal.NewFromString(req.Amount)

	rate := e.rates.Rate(from.Currency, to.Currency)
	converted := amount.Mul(rate)
	if from.Currency != to.Currency {
		converted = converted.RoundBank(2)
	}

	rec := TransactionRecord{
		ID:              NewRecordID(),
		FromAccount:     from.Name,
		ToAccount:       to.Name,
		FromCurrency:    from.Currency,
		ToCurrency:      to.Currency,
		Amount:          amount,
		ConvertedAmount: converted,
		FXRate:          rate,
		Note:            req.Note,
		Timestamp:       now,
		Status:          StatusCompleted,
	}

	if req.ScheduledFor != nil {
		rec.Timestamp = *req.ScheduledFor
		rec.Status = StatusScheduled
	} else if err := e.store.ApplyDebitCredit(req.FromID, amount, req.ToID, converted); err != nil {
		return nil, fmt.Errorf("apply transfer: %w", err)
	}

	e.ledger.Append(rec)
	return &rec, nil
}

// ReleaseDue applies every scheduled transfer whose effective date has
// arrived and that has not been released yet. A scheduled record is
// immutable and keeps its status; each application appends a new
// Completed record carrying the scheduled record's id in ReleaseOf,
// which also makes the sweep idempotent. Due transfers whose source
// can no longer cover the amount are skipped with a diagnostic and
// picked up by a later sweep. Nothing runs this on a timer; callers
// drive it.
func (e *Executor) ReleaseDue(now time.Time) []TransactionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	released := make(map[string]bool)
	var due []TransactionRecord
	for _, rec := range e.ledger.History() {
		if rec.ReleaseOf != "" {
			released[rec.ReleaseOf] = true
		}
		if rec.Status == StatusScheduled && !rec.Timestamp.After(now) {
			due = append(due, rec)
		}
	}

	var applied []TransactionRecord
	for _, sched := range due {
		if released[sched.ID] {
			continue
		}
		fromID, fromOK := e.store.FindByName(sched.FromAccount)
		toID, toOK := e.store.FindByName(sched.ToAccount)
		if !fromOK || !toOK {
			e.warnf("release %s: account no longer present", sched.ID)
			continue
		}
		from, _ := e.store.Get(fromID)
		if from.Balance.LessThan(sched.Amount) {
			e.warnf("release %s: insufficient balance in %s", sched.ID, sched.FromAccount)
			continue
		}
		if err := e.store.ApplyDebitCredit(fromID, sched.Amount, toID, sched.ConvertedAmount); err != nil {
			e.warnf("release %s: %v", sched.ID, err)
			continue
		}

		rec := sched
		rec.ID = NewRecordID()
		rec.Timestamp = now
		rec.Status = StatusCompleted
		rec.ReleaseOf = sched.ID
		e.ledger.Append(rec)
		applied = append(applied, rec)
	}
	return applied
}

func (e *Executor) warnf(format string, args ...any) {
	if e.Warnf != nil {
		e.Warnf(format, args...)
	}
}
