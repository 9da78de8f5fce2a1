package cashctl

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/engine/bundle"
	"github.com/spf13/cobra"
)

type bundlesFlags struct {
	ledgerFile     string
	workingFile    string
	smallThreshold int
	xlsxFile       string
}

func newBundlesCommand(opts *options) *cobra.Command {
	flags := &bundlesFlags{}

	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "Plan the bank bundles of a saved vendor ledger",
		Long: `Reads a vendor ledger as stored by the cash API and prints, per
denomination, which deposits each bundle of 100 notes draws from. A working
deposit file ({"vendor": ..., "amounts": {...}}) is pooled after the saved
deposits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := readLedger(flags.ledgerFile)
			if err != nil {
				return err
			}

			var working *deposit.WorkingDeposit
			if flags.workingFile != "" {
				working, err = readWorking(flags.workingFile)
				if err != nil {
					return err
				}
			}

			allocator := bundle.NewAllocator(shared.Denomination(flags.smallThreshold))
			plan := allocator.Plan(bundle.Pool(ledger, working))

			if flags.xlsxFile != "" {
				if err := exportPlan(flags.xlsxFile, plan); err != nil {
					return err
				}
				opts.logger(cmd).Info("Bundling plan exported", "file", flags.xlsxFile)
			}
			return opts.write(cmd.OutOrStdout(), plan)
		},
	}

	cmd.Flags().StringVarP(&flags.ledgerFile, "file", "f", "", "Vendor ledger JSON file")
	cmd.Flags().StringVar(&flags.workingFile, "working-file", "", "Working deposit JSON file")
	cmd.Flags().IntVar(&flags.smallThreshold, "small-threshold", int(bundle.DefaultSmallThreshold), "Largest denomination counted as a small note")
	cmd.Flags().StringVar(&flags.xlsxFile, "xlsx", "", "Also write the plan to an Excel workbook")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readLedger(path string) (*deposit.VendorLedger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}
	ledger := deposit.NewVendorLedger()
	if err := json.Unmarshal(data, ledger); err != nil {
		return nil, fmt.Errorf("failed to decode ledger file %s: %w", path, err)
	}
	return ledger, nil
}

func readWorking(path string) (*deposit.WorkingDeposit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read working deposit file: %w", err)
	}
	var working deposit.WorkingDeposit
	if err := json.Unmarshal(data, &working); err != nil {
		return nil, fmt.Errorf("failed to decode working deposit file %s: %w", path, err)
	}
	if working.Vendor == "" && !working.Amounts.IsZero() {
		return nil, fmt.Errorf("working deposit file %s has notes but no vendor", path)
	}
	return &working, nil
}
