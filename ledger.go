package treasury

import (
	"iter"
	"strings"
	"sync"
	"time"
)

// Filter is a conjunction of ledger query conditions. Zero-valued
// fields match everything.
type Filter struct {
	// Account matches records where either leg's account name contains
	// this substring.
	Account string
	// Currency matches records where either leg uses this currency.
	Currency Currency
	// Begin and End bound the record timestamp, inclusive.
	Begin, End time.Time
}

func (f Filter) matches(rec TransactionRecord) bool {
	if f.Account != "" &&
		!strings.Contains(rec.FromAccount, f.Account) &&
		!strings.Contains(rec.ToAccount, f.Account) {
		return false
	}
	if f.Currency != "" && rec.FromCurrency != f.Currency && rec.ToCurrency != f.Currency {
		return false
	}
	if !f.Begin.IsZero() && rec.Timestamp.Before(f.Begin) {
		return false
	}
	if !f.End.IsZero() && rec.Timestamp.After(f.End) {
		return false
	}
	return true
}

// Ledger is the append-only transfer history. Insertion order is the
// source of truth; reads present newest first.
type Ledger struct {
	mu      sync.RWMutex
	records []TransactionRecord
}

// NewLedger starts a ledger from records in insertion order (oldest
// first), as produced by History.
func NewLedger(records []TransactionRecord) *Ledger {
	return &Ledger{records: append([]TransactionRecord(nil), records...)}
}

// Append adds a record to the history.
func (l *Ledger) Append(rec TransactionRecord) {
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
}

// Len reports the number of records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// History returns a snapshot in insertion order, oldest first.
func (l *Ledger) History() []TransactionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]TransactionRecord(nil), l.records...)
}

// Records returns a newest-first snapshot of the history.
func (l *Ledger) Records() []TransactionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]TransactionRecord, len(l.records))
	for i, rec := range l.records {
		out[len(l.records)-1-i] = rec
	}
	return out
}

// Query returns a newest-first sequence of the records matching the
// filter. The sequence is a view over a snapshot taken at call time
// and can be iterated any number of times.
func (l *Ledger) Query(f Filter) iter.Seq[TransactionRecord] {
	snapshot := l.Records()
	return func(yield func(TransactionRecord) bool) {
		for _, rec := range snapshot {
			if !f.matches(rec) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}
