package bundle

import (
	"github.com/easyplus-cash-ledger/internal/domain/shared"
)

// DefaultSmallThreshold is the largest denomination counted in the small-note pool
const DefaultSmallThreshold shared.Denomination = 100

// Step is one draw of notes from a deposit into a bundle
type Step struct {
	Vendor         string `json:"vendor" yaml:"vendor"`
	DepositLabel   string `json:"deposit_label" yaml:"deposit_label"`
	Take           int    `json:"take" yaml:"take"`
	SourceTotal    int    `json:"source_total" yaml:"source_total"`
	RemainingAfter int    `json:"remaining_after" yaml:"remaining_after"`
}

// Bundle is the ordered list of draws that forms one bundle
type Bundle struct {
	Number     int    `json:"number" yaml:"number"`
	Steps      []Step `json:"steps" yaml:"steps"`
	Count      int    `json:"count" yaml:"count"`
	IsComplete bool   `json:"is_complete" yaml:"is_complete"`
}

// Leftover is what a deposit still holds once every bundle is formed
type Leftover struct {
	Vendor       string `json:"vendor" yaml:"vendor"`
	DepositLabel string `json:"deposit_label" yaml:"deposit_label"`
	Bills        int    `json:"bills" yaml:"bills"`
}

// DenominationPlan is the bundling instructions of one denomination
type DenominationPlan struct {
	Denomination    shared.Denomination `json:"denomination" yaml:"denomination"`
	TotalBills      int                 `json:"total_bills" yaml:"total_bills"`
	CompleteBundles int                 `json:"complete_bundles" yaml:"complete_bundles"`
	LooseRemainder  int                 `json:"loose_remainder" yaml:"loose_remainder"`
	TotalValue      int64               `json:"total_value" yaml:"total_value"`
	BundleValue     int64               `json:"bundle_value" yaml:"bundle_value"`
	Bundles         []Bundle            `json:"bundles" yaml:"bundles"`
	Loose           []Leftover          `json:"loose" yaml:"loose"`
}

// SmallPool aggregates the denominations bundled together regardless of face value
type SmallPool struct {
	Threshold       shared.Denomination `json:"threshold" yaml:"threshold"`
	TotalBills      int                 `json:"total_bills" yaml:"total_bills"`
	CompleteBundles int                 `json:"complete_bundles" yaml:"complete_bundles"`
	LooseRemainder  int                 `json:"loose_remainder" yaml:"loose_remainder"`
	TotalValue      int64               `json:"total_value" yaml:"total_value"`
}

// Plan is the shift-level bundling summary
type Plan struct {
	Denominations   []DenominationPlan `json:"denominations" yaml:"denominations"`
	TotalBills      int                `json:"total_bills" yaml:"total_bills"`
	CompleteBundles int                `json:"complete_bundles" yaml:"complete_bundles"`
	TotalValue      int64              `json:"total_value" yaml:"total_value"`
	BundleValue     int64              `json:"bundle_value" yaml:"bundle_value"`
	SmallPool       SmallPool          `json:"small_pool" yaml:"small_pool"`
}

// Allocator forms bundles first-fit in discovery order
type Allocator struct {
	smallThreshold shared.Denomination
}

// NewAllocator uses DefaultSmallThreshold when threshold is not positive
func NewAllocator(smallThreshold shared.Denomination) *Allocator {
	if smallThreshold <= 0 {
		smallThreshold = DefaultSmallThreshold
	}
	return &Allocator{smallThreshold: smallThreshold}
}

// SmallThreshold returns the small-note pool threshold in use
func (a *Allocator) SmallThreshold() shared.Denomination {
	return a.smallThreshold
}

// PlanDenomination forms the bundles of d. Contributions of other
// denominations are ignored; the input is not modified.
func (a *Allocator) PlanDenomination(d shared.Denomination, contributions []Contribution) DenominationPlan {
	var sources []Contribution
	for _, c := range contributions {
		if c.Denomination == d && c.BillCount > 0 {
			sources = append(sources, c)
		}
	}

	plan := DenominationPlan{Denomination: d, Bundles: []Bundle{}, Loose: []Leftover{}}
	remaining := make([]int, len(sources))
	for i, s := range sources {
		remaining[i] = s.BillCount
		plan.TotalBills += s.BillCount
	}
	plan.CompleteBundles = plan.TotalBills / shared.BundleSize
	plan.LooseRemainder = plan.TotalBills % shared.BundleSize
	plan.TotalValue = int64(d) * int64(plan.TotalBills)
	plan.BundleValue = int64(d) * int64(plan.CompleteBundles*shared.BundleSize)

	for number := 1; number <= plan.CompleteBundles; number++ {
		b := Bundle{Number: number}
		for i := range sources {
			if b.Count == shared.BundleSize {
				break
			}
			if remaining[i] == 0 {
				continue
			}
			take := min(remaining[i], shared.BundleSize-b.Count)
			remaining[i] -= take
			b.Count += take
			b.Steps = append(b.Steps, Step{
				Vendor:         sources[i].Vendor,
				DepositLabel:   sources[i].DepositLabel,
				Take:           take,
				SourceTotal:    sources[i].BillCount,
				RemainingAfter: remaining[i],
			})
		}
		b.IsComplete = b.Count == shared.BundleSize
		plan.Bundles = append(plan.Bundles, b)
	}

	for i, s := range sources {
		if remaining[i] > 0 {
			plan.Loose = append(plan.Loose, Leftover{Vendor: s.Vendor, DepositLabel: s.DepositLabel, Bills: remaining[i]})
		}
	}
	return plan
}

// Plan forms the bundles of every denomination holding notes, largest first
func (a *Allocator) Plan(contributions []Contribution) Plan {
	plan := Plan{
		Denominations: []DenominationPlan{},
		SmallPool:     SmallPool{Threshold: a.smallThreshold},
	}
	for _, d := range shared.Denominations {
		dp := a.PlanDenomination(d, contributions)
		if dp.TotalBills == 0 {
			continue
		}
		plan.Denominations = append(plan.Denominations, dp)
		plan.TotalBills += dp.TotalBills
		plan.CompleteBundles += dp.CompleteBundles
		plan.TotalValue += dp.TotalValue
		plan.BundleValue += dp.BundleValue

		if d <= a.smallThreshold {
			plan.SmallPool.TotalBills += dp.TotalBills
			plan.SmallPool.TotalValue += dp.TotalValue
		}
	}
	plan.SmallPool.CompleteBundles = plan.SmallPool.TotalBills / shared.BundleSize
	plan.SmallPool.LooseRemainder = plan.SmallPool.TotalBills % shared.BundleSize
	return plan
}
