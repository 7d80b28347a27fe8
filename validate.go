package treasury

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Validate applies every transfer rule to the request against the
// given account snapshot and returns the complete batch of
// human-readable failure reasons. All rules are evaluated; nothing
// short-circuits, so a caller sees every applicable violation at once.
// An empty batch means the request is accepted. Validate mutates
// nothing.
func Validate(req TransferRequest, store *AccountStore, now time.Time) []string {
	var reasons []string

	from, fromOK := store.Get(req.FromID)
	if !fromOK {
		reasons = append(reasons, fmt.Sprintf("source account %d does not exist", req.FromID))
	}
	if _, ok := store.Get(req.ToID); !ok {
		reasons = append(reasons, fmt.Sprintf("destination account %d does not exist", req.ToID))
	}

	amount, amountErr := decimal.NewFromString(req.Amount)
	if amountErr != nil || !amount.IsPositive() {
		reasons = append(reasons, "amount must be a number greater than 0")
	}

	if req.ScheduledFor != nil {
		if req.ScheduledFor.IsZero() {
			reasons = append(reasons, "schedule date must not be empty")
		} else if !req.ScheduledFor.After(now) {
			reasons = append(reasons, "schedule date must be in the future")
		}
	}

	if req.FromID == req.ToID {
		reasons = append(reasons, "cannot transfer to the same account")
	}

	// Balance is compared in the source currency, before conversion.
	if fromOK && amountErr == nil && amount.IsPositive() && from.Balance.LessThan(amount) {
		reasons = append(reasons, fmt.Sprintf("insufficient balance in source account %s", from.Name))
	}

	return reasons
}
