package treasury

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// Pair is an ordered currency pair.
type Pair struct {
	From, To Currency
}

var one = decimal.NewFromInt(1)

// RateTable resolves an exchange rate between two currency codes from
// a configured pair table. Resolution tries, in order: a directly
// configured pair, the reciprocal of the configured reverse pair, and
// a cross rate composed through the anchor currency. The table never
// fails: an unresolvable pair yields a rate of 1 after reporting a
// diagnostic through Warnf. Rate reads no account state.
type RateTable struct {
	anchor   Currency
	rates    map[Pair]decimal.Decimal
	resolved *cache.Cache

	// Warnf receives a diagnostic when no resolution path exists for a
	// requested pair. Nil disables the diagnostic.
	Warnf func(format string, args ...any)
}

// NewRateTable builds a table around the given anchor currency. The
// rate map is copied.
func NewRateTable(anchor Currency, rates map[Pair]decimal.Decimal) *RateTable {
	table := make(map[Pair]decimal.Decimal, len(rates))
	for p, r := range rates {
		table[p] = r
	}
	return &RateTable{
		anchor:   anchor,
		rates:    table,
		resolved: cache.New(time.Hour, 2*time.Hour),
	}
}

// Anchor returns the reference currency used to compose cross rates.
func (t *RateTable) Anchor() Currency { return t.anchor }

// Rate returns the multiplicative factor converting one unit of from
// into units of to. Rate(c, c) is always 1.
func (t *RateTable) Rate(from, to Currency) decimal.Decimal {
	if from == to {
		return one
	}

	key := string(from) + "->" + string(to)
	if hit, ok := t.resolved.Get(key); ok {
		return hit.(decimal.Decimal)
	}

	rate, ok := t.resolve(from, to)
	if !ok {
		if t.Warnf != nil {
			t.Warnf("no fx rate found for %s to %s, using 1", from, to)
		}
		return one
	}
	t.resolved.Set(key, rate, cache.DefaultExpiration)
	return rate
}

func (t *RateTable) resolve(from, to Currency) (decimal.Decimal, bool) {
	if direct, ok := t.rates[Pair{From: from, To: to}]; ok {
		return direct, true
	}
	if reverse, ok := t.rates[Pair{From: to, To: from}]; ok && !reverse.IsZero() {
		return one.Div(reverse), true
	}
	toAnchor, haveLeg := t.rates[Pair{From: from, To: t.anchor}]
	fromAnchor, haveOther := t.rates[Pair{From: t.anchor, To: to}]
	if haveLeg && haveOther {
		return toAnchor.Mul(fromAnchor), true
	}
	return decimal.Decimal{}, false
}
