// Package reconcile derives the cash a pump operator still owes at the end of a
// shift. Operator input is never rejected: unreadable values fall back to a
// default and the substitution is logged.
package reconcile

import (
	"encoding/json"
	"log/slog"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/engine/change"
	"github.com/shopspring/decimal"
)

// StateKind classifies received cash against the expected figure
type StateKind string

const (
	StateShouldGiveChange StateKind = "should_give_change"
	StateShort            StateKind = "short"
	StateExact            StateKind = "exact"
)

// State is the classification plus the absolute difference
type State struct {
	Kind      StateKind       `json:"kind" yaml:"kind"`
	Magnitude decimal.Decimal `json:"magnitude" yaml:"magnitude"`
}

// Reconciler holds the collaborators of the cash computations
type Reconciler struct {
	maker  *change.Maker
	logger *slog.Logger
}

func NewReconciler(maker *change.Maker, logger *slog.Logger) *Reconciler {
	return &Reconciler{maker: maker, logger: logger}
}

var (
	unit = decimal.NewFromInt(shared.MinUnit)
	half = unit.Div(decimal.NewFromInt(2))
)

// RoundToCashable rounds to the nearest multiple of shared.MinUnit, ties upward
func RoundToCashable(gross decimal.Decimal) decimal.Decimal {
	return gross.Add(half).Div(unit).Floor().Mul(unit)
}

// Adjustment is the signed amount added by rounding
func Adjustment(gross decimal.Decimal) decimal.Decimal {
	return RoundToCashable(gross).Sub(gross)
}

// ExpectedCash is what remains to be produced in cash; negative when vendors over-deposited
func ExpectedCash(rounded, deposits decimal.Decimal) decimal.Decimal {
	return rounded.Sub(deposits)
}

// ChangeState compares the cash received with the cash expected
func ChangeState(received, expected decimal.Decimal) State {
	diff := received.Sub(expected)
	switch diff.Sign() {
	case 1:
		return State{Kind: StateShouldGiveChange, Magnitude: diff}
	case -1:
		return State{Kind: StateShort, Magnitude: diff.Neg()}
	default:
		return State{Kind: StateExact, Magnitude: decimal.Zero}
	}
}

// TotalDeposits sums deposits in local currency. Entries that cannot be
// converted count as zero.
func (r *Reconciler) TotalDeposits(deposits []shared.Money, rate decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i, deposit := range deposits {
		value, err := deposit.Convert(rate)
		if err != nil {
			r.logger.Warn("Deposit value replaced by zero", "index", i, "error", err)
			continue
		}
		total = total.Add(value)
	}
	return total
}

// Coerce reads an operator-entered number, substituting zero when unreadable
func (r *Reconciler) Coerce(field string, raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	value, ok := shared.ParseDecimal(raw)
	if !ok {
		r.logger.Warn("Non-numeric input replaced by zero", "field", field, "raw", string(raw))
		return decimal.Zero
	}
	return value
}

// ExchangeRate reads a rate, falling back when it is missing, unreadable or not positive
func (r *Reconciler) ExchangeRate(raw json.RawMessage, fallback decimal.Decimal) decimal.Decimal {
	if len(raw) == 0 {
		return fallback
	}
	value, ok := shared.ParseDecimal(raw)
	if !ok || !value.IsPositive() {
		r.logger.Warn("Exchange rate replaced by default", "raw", string(raw), "default", fallback.String())
		return fallback
	}
	return value
}
