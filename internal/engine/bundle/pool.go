// Package bundle plans how the notes collected during a shift are grouped
// into bundles of shared.BundleSize notes for the bank deposit.
package bundle

import (
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
)

// Contribution is the notes of one denomination brought by one deposit
type Contribution struct {
	Vendor       string              `json:"vendor" yaml:"vendor"`
	DepositLabel string              `json:"deposit_label" yaml:"deposit_label"`
	Denomination shared.Denomination `json:"denomination" yaml:"denomination"`
	BillCount    int                 `json:"bill_count" yaml:"bill_count"`
	TotalValue   int64               `json:"total_value" yaml:"total_value"`
}

// Pool flattens saved deposits and the working deposit into contributions.
// Vendors come in ledger order, deposits in sequence order and
// denominations largest first; the working deposit comes last.
func Pool(ledger *deposit.VendorLedger, working *deposit.WorkingDeposit) []Contribution {
	var pooled []Contribution
	if ledger != nil {
		for _, vendor := range ledger.Vendors() {
			for _, entry := range ledger.Entries(vendor) {
				pooled = appendAmounts(pooled, vendor, entry.Label(), entry.Amounts)
			}
		}
	}
	if working != nil && working.Vendor != "" {
		pooled = appendAmounts(pooled, working.Vendor, working.Label(), working.Amounts)
	}
	return pooled
}

func appendAmounts(pooled []Contribution, vendor, label string, amounts shared.Amounts) []Contribution {
	for i, d := range shared.Denominations {
		bills := amounts[i].Bills()
		if bills == 0 {
			continue
		}
		pooled = append(pooled, Contribution{
			Vendor:       vendor,
			DepositLabel: label,
			Denomination: d,
			BillCount:    bills,
			TotalValue:   int64(d) * int64(bills),
		})
	}
	return pooled
}
