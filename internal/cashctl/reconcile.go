package cashctl

import (
	"encoding/json"
	"strings"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/engine/change"
	"github.com/easyplus-cash-ledger/internal/engine/reconcile"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// DefaultExchangeRate is used when --rate is missing or unusable
const DefaultExchangeRate = 134.5

type reconcileFlags struct {
	gross       string
	received    string
	rate        string
	defaultRate float64
	deposits    []string
}

func newReconcileCommand(opts *options) *cobra.Command {
	flags := &reconcileFlags{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile one pump's sales against the cash received",
		Long: `Rounds gross sales to the cashable unit, subtracts the deposits and
compares the result with the cash received. Deposits are plain numbers in
local currency or CUR:amount for foreign notes (USD:20). Unreadable numbers
count as zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reconciler := reconcile.NewReconciler(change.NewMaker(), opts.logger(cmd))

			result := reconciler.Reconcile(reconcile.Input{
				GrossSales:   reconciler.Coerce("gross_sales", rawNumber(flags.gross)),
				Deposits:     parseDeposits(flags.deposits),
				ExchangeRate: reconciler.ExchangeRate(rawNumber(flags.rate), decimal.NewFromFloat(flags.defaultRate)),
				ReceivedCash: reconciler.Coerce("received_cash", rawNumber(flags.received)),
			})
			return opts.write(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&flags.gross, "gross", "", "Gross sales shown by the pump")
	cmd.Flags().StringVar(&flags.received, "received", "", "Cash handed over by the attendant")
	cmd.Flags().StringVar(&flags.rate, "rate", "", "Foreign currency exchange rate")
	cmd.Flags().Float64Var(&flags.defaultRate, "default-rate", DefaultExchangeRate, "Rate used when --rate is missing or invalid")
	cmd.Flags().StringArrayVar(&flags.deposits, "deposit", nil, "Deposit taken from the pump (repeatable)")
	return cmd
}

// rawNumber wraps a flag value as a JSON string so it goes through the
// same lenient parsing as API input
func rawNumber(value string) json.RawMessage {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	raw, _ := json.Marshal(value)
	return raw
}

func parseDeposits(values []string) []shared.Money {
	deposits := make([]shared.Money, 0, len(values))
	for _, value := range values {
		deposits = append(deposits, parseDeposit(value))
	}
	return deposits
}

func parseDeposit(value string) shared.Money {
	value = strings.TrimSpace(value)
	if currency, amount, found := strings.Cut(value, ":"); found {
		parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil || strings.TrimSpace(currency) == "" {
			return shared.Malformed(value)
		}
		return shared.Foreign(currency, parsed)
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return shared.Malformed(value)
	}
	return shared.Local(parsed)
}
