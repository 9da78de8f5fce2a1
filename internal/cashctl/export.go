package cashctl

import (
	"fmt"

	"github.com/easyplus-cash-ledger/internal/engine/bundle"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	bundlesSheet = "Bundles"
)

var (
	summaryHeader = []any{"Denomination", "Total bills", "Complete bundles", "Loose remainder", "Total value", "Bundle value"}
	bundlesHeader = []any{"Denomination", "Bundle", "Vendor", "Deposit", "Take", "Source total", "Remaining after", "Bundle count", "Complete"}
)

// exportPlan writes a workbook with one summary row per denomination and
// one row per draw on the Bundles sheet
func exportPlan(path string, plan bundle.Plan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if _, err := f.NewSheet(bundlesSheet); err != nil {
		return fmt.Errorf("failed to create bundles sheet: %w", err)
	}

	summary := [][]any{summaryHeader}
	for _, dp := range plan.Denominations {
		summary = append(summary, []any{
			int(dp.Denomination), dp.TotalBills, dp.CompleteBundles, dp.LooseRemainder, dp.TotalValue, dp.BundleValue,
		})
	}
	summary = append(summary,
		[]any{"Total", plan.TotalBills, plan.CompleteBundles, "", plan.TotalValue, plan.BundleValue},
		[]any{fmt.Sprintf("Small notes (<= %d)", plan.SmallPool.Threshold), plan.SmallPool.TotalBills,
			plan.SmallPool.CompleteBundles, plan.SmallPool.LooseRemainder, plan.SmallPool.TotalValue, ""},
	)
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}

	rows := [][]any{bundlesHeader}
	for _, dp := range plan.Denominations {
		for _, b := range dp.Bundles {
			for _, step := range b.Steps {
				rows = append(rows, []any{
					int(dp.Denomination), b.Number, step.Vendor, step.DepositLabel,
					step.Take, step.SourceTotal, step.RemainingAfter, b.Count, b.IsComplete,
				})
			}
		}
	}
	if err := writeRows(f, bundlesSheet, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
