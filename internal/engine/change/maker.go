package change

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// MaxCombinations bounds the ranked candidates returned by Maker
	MaxCombinations = 3
	// MaxAmount is the largest amount Maker breaks down into notes
	MaxAmount = 1_000_000_000_000
)

// ErrAmountTooLarge rejects amounts above MaxAmount
var ErrAmountTooLarge = errors.New("amount exceeds the change limit")

var maxAmount = decimal.NewFromInt(MaxAmount)

// Combination is one candidate way of handing back change
type Combination struct {
	Strategy    string          `json:"strategy" yaml:"strategy"`
	Breakdown   []Item          `json:"breakdown" yaml:"breakdown"`
	TotalNotes  int64           `json:"total_notes" yaml:"total_notes"`
	TotalAmount int64           `json:"total_amount" yaml:"total_amount"`
	Remainder   decimal.Decimal `json:"remainder" yaml:"remainder"`
	IsExact     bool            `json:"is_exact" yaml:"is_exact"`
}

// Maker ranks the breakdowns produced by its strategies
type Maker struct {
	strategies []Strategy
}

// NewMaker uses the given strategies in order; without any it uses
// Greedy, AvoidAwkwardRemainder and PreferMidNotes
func NewMaker(strategies ...Strategy) *Maker {
	if len(strategies) == 0 {
		strategies = []Strategy{Greedy{}, AvoidAwkwardRemainder{}, PreferMidNotes{}}
	}
	return &Maker{strategies: strategies}
}

// Deliverable splits amount into the part payable in notes and the part written off
func Deliverable(amount decimal.Decimal) (deliverable int64, writtenOff decimal.Decimal, err error) {
	if !amount.IsPositive() {
		return 0, decimal.Zero, nil
	}
	if amount.GreaterThan(maxAmount) {
		return 0, decimal.Zero, fmt.Errorf("%w: %s > %d", ErrAmountTooLarge, amount.String(), MaxAmount)
	}
	unit := decimal.NewFromInt(shared.MinUnit)
	floored := amount.Div(unit).Floor().Mul(unit)
	return floored.IntPart(), amount.Sub(floored), nil
}

// Combinations returns up to MaxCombinations distinct breakdowns of amount,
// fewest notes first, ties kept in strategy order
func (m *Maker) Combinations(amount decimal.Decimal) ([]Combination, error) {
	if !amount.IsPositive() {
		return []Combination{{Breakdown: []Item{}, Remainder: decimal.Zero, IsExact: true}}, nil
	}

	deliverable, writtenOff, err := Deliverable(amount)
	if err != nil {
		return nil, err
	}
	if deliverable == 0 {
		return []Combination{{Breakdown: []Item{}, Remainder: writtenOff, IsExact: false}}, nil
	}

	seen := make(map[string]struct{}, len(m.strategies))
	candidates := make([]Combination, 0, len(m.strategies))
	for _, strategy := range m.strategies {
		items := strategy.Breakdown(deliverable)
		key := signature(items)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		combination := Combination{
			Strategy:  strategy.Name(),
			Breakdown: items,
			Remainder: writtenOff,
			IsExact:   writtenOff.IsZero(),
		}
		for _, item := range items {
			combination.TotalNotes += item.Count
			combination.TotalAmount += item.Subtotal
		}
		candidates = append(candidates, combination)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].TotalNotes < candidates[j].TotalNotes
	})
	if len(candidates) > MaxCombinations {
		candidates = candidates[:MaxCombinations]
	}
	return candidates, nil
}

func signature(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Count == 0 {
			continue
		}
		parts = append(parts, strconv.Itoa(int(item.Denomination))+"x"+strconv.FormatInt(item.Count, 10))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
