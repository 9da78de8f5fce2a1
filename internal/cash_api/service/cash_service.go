package service

import (
	"encoding/json"
	"log/slog"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/engine/change"
	"github.com/easyplus-cash-ledger/internal/engine/reconcile"
	"github.com/shopspring/decimal"
)

// ReconcileRequest carries the operator's raw entries. Unreadable numbers
// are coerced rather than rejected.
type ReconcileRequest struct {
	GrossSales   json.RawMessage
	Deposits     []shared.Money
	ExchangeRate json.RawMessage
	ReceivedCash json.RawMessage
}

type cashService struct {
	maker       *change.Maker
	reconciler  *reconcile.Reconciler
	defaultRate decimal.Decimal
	logger      *slog.Logger
}

func NewCashService(logger *slog.Logger, defaultExchangeRate float64) CashService {
	maker := change.NewMaker()
	return &cashService{
		maker:       maker,
		reconciler:  reconcile.NewReconciler(maker, logger),
		defaultRate: decimal.NewFromFloat(defaultExchangeRate),
		logger:      logger,
	}
}

func (s *cashService) Change(amount decimal.Decimal) ([]change.Combination, error) {
	return s.maker.Combinations(amount)
}

func (s *cashService) Reconcile(req ReconcileRequest) reconcile.Result {
	result := s.reconciler.Reconcile(reconcile.Input{
		GrossSales:   s.reconciler.Coerce("gross_sales", req.GrossSales),
		Deposits:     req.Deposits,
		ExchangeRate: s.reconciler.ExchangeRate(req.ExchangeRate, s.defaultRate),
		ReceivedCash: s.reconciler.Coerce("received_cash", req.ReceivedCash),
	})

	s.logger.Debug("Reconciled pump",
		"expected_cash", result.ExpectedCash.String(),
		"state", result.State.Kind,
		"magnitude", result.State.Magnitude.String(),
	)
	return result
}
