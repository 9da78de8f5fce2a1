package cashctl

import (
	"fmt"

	"github.com/easyplus-cash-ledger/internal/engine/change"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type changeOutput struct {
	Amount       decimal.Decimal      `json:"amount" yaml:"amount"`
	Deliverable  int64                `json:"deliverable" yaml:"deliverable"`
	WrittenOff   decimal.Decimal      `json:"written_off" yaml:"written_off"`
	Combinations []change.Combination `json:"combinations" yaml:"combinations"`
}

func newChangeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "change <amount>",
		Short: "Propose up to three ways of handing back an amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			combinations, err := change.NewMaker().Combinations(amount)
			if err != nil {
				return err
			}

			deliverable, writtenOff, _ := change.Deliverable(amount)
			return opts.write(cmd.OutOrStdout(), changeOutput{
				Amount:       amount,
				Deliverable:  deliverable,
				WrittenOff:   writtenOff,
				Combinations: combinations,
			})
		},
	}
}
