package treasury

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrAccountNotFound aborts a debit/credit that names an unknown
// account.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore owns the mutable set of accounts. Balances change only
// through ApplyDebitCredit; every read hands out copies. Access is
// serialized so concurrent callers cannot pass the sufficient-balance
// check against a stale snapshot and jointly overdraw a source.
type AccountStore struct {
	mu       sync.RWMutex
	order    []int64
	accounts map[int64]*Account
}

// NewAccountStore seeds the store from the given list. Seed order is
// preserved by Accounts; duplicate ids keep the first occurrence.
func NewAccountStore(seed []Account) *AccountStore {
	s := &AccountStore{accounts: make(map[int64]*Account, len(seed))}
	for _, acc := range seed {
		if _, ok := s.accounts[acc.ID]; ok {
			continue
		}
		s.order = append(s.order, acc.ID)
		held := acc
		s.accounts[acc.ID] = &held
	}
	return s
}

// Get returns a copy of the account with the given id.
func (s *AccountStore) Get(id int64) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

// FindByName returns the id of the account with the exact name.
func (s *AccountStore) FindByName(name string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if s.accounts[id].Name == name {
			return id, true
		}
	}
	return 0, false
}

// Accounts returns a copy of all accounts in seed order.
func (s *AccountStore) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.accounts[id])
	}
	return out
}

// ApplyDebitCredit debits fromID by amount and credits toID by
// converted as one indivisible step. If either id is unknown the whole
// operation aborts with ErrAccountNotFound and no mutation.
func (s *AccountStore) ApplyDebitCredit(fromID int64, amount decimal.Decimal, toID int64, converted decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, ok := s.accounts[fromID]
	if !ok {
		return ErrAccountNotFound
	}
	to, ok := s.accounts[toID]
	if !ok {
		return ErrAccountNotFound
	}
	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(converted)
	return nil
}

// TotalsByCurrency sums balances grouped by currency. The totals are
// recomputed on every call, never cached.
func (s *AccountStore) TotalsByCurrency() map[Currency]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make(map[Currency]decimal.Decimal)
	for _, acc := range s.accounts {
		totals[acc.Currency] = totals[acc.Currency].Add(acc.Balance)
	}
	return totals
}
