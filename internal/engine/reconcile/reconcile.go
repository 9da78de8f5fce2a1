package reconcile

import (
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/engine/change"
	"github.com/shopspring/decimal"
)

// Input gathers the figures of one pump for one shift
type Input struct {
	GrossSales   decimal.Decimal
	Deposits     []shared.Money
	ExchangeRate decimal.Decimal
	ReceivedCash decimal.Decimal
}

// Result is the full reconciliation of one pump
type Result struct {
	GrossSales    decimal.Decimal      `json:"gross_sales" yaml:"gross_sales"`
	Rounded       decimal.Decimal      `json:"rounded" yaml:"rounded"`
	Adjustment    decimal.Decimal      `json:"adjustment" yaml:"adjustment"`
	HasAdjustment bool                 `json:"has_adjustment" yaml:"has_adjustment"`
	TotalDeposits decimal.Decimal      `json:"total_deposits" yaml:"total_deposits"`
	ExpectedCash  decimal.Decimal      `json:"expected_cash" yaml:"expected_cash"`
	ReceivedCash  decimal.Decimal      `json:"received_cash" yaml:"received_cash"`
	State         State                `json:"state" yaml:"state"`
	Change        []change.Combination `json:"change,omitempty" yaml:"change,omitempty"`
	HasRemainder  bool                 `json:"has_remainder" yaml:"has_remainder"`

	// ChangeUnavailable is set when the change due is too large to break into notes
	ChangeUnavailable bool `json:"change_unavailable,omitempty" yaml:"change_unavailable,omitempty"`
}

// Reconcile rounds gross sales, nets deposits and classifies the cash
// received. When change is due it also proposes how to hand it back.
func (r *Reconciler) Reconcile(in Input) Result {
	rounded := RoundToCashable(in.GrossSales)
	deposits := r.TotalDeposits(in.Deposits, in.ExchangeRate)
	expected := ExpectedCash(rounded, deposits)

	result := Result{
		GrossSales:    in.GrossSales,
		Rounded:       rounded,
		Adjustment:    rounded.Sub(in.GrossSales),
		TotalDeposits: deposits,
		ExpectedCash:  expected,
		ReceivedCash:  in.ReceivedCash,
		State:         ChangeState(in.ReceivedCash, expected),
	}
	result.HasAdjustment = !result.Adjustment.IsZero()

	if result.State.Kind == StateShouldGiveChange {
		combinations, err := r.maker.Combinations(result.State.Magnitude)
		if err != nil {
			r.logger.Warn("Change proposal skipped", "magnitude", result.State.Magnitude.String(), "error", err)
			result.ChangeUnavailable = true
			return result
		}
		result.Change = combinations
		result.HasRemainder = len(result.Change) > 0 && !result.Change[0].IsExact
	}
	return result
}
