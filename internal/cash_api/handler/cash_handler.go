package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/easyplus-cash-ledger/internal/cash_api/service"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/engine/change"
	"github.com/gin-gonic/gin"
)

// CashHandler serves the stateless change and reconciliation computations
type CashHandler struct {
	cashService service.CashService
	logger      *slog.Logger
}

func NewCashHandler(logger *slog.Logger, cashService service.CashService) *CashHandler {
	return &CashHandler{cashService: cashService, logger: logger}
}

// Change proposes up to three ways of handing back an amount
func (h *CashHandler) Change(c *gin.Context) {
	var req ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	amount, ok := shared.ParseDecimal(req.Amount)
	if !ok {
		RespondBadRequest(c, "Amount must be a number")
		return
	}

	combinations, err := h.cashService.Change(amount)
	if err != nil {
		if errors.Is(err, change.ErrAmountTooLarge) {
			RespondWithError(c, http.StatusBadRequest, "AMOUNT_OUT_OF_RANGE", err.Error())
			return
		}
		h.logger.Error("Failed to propose change", "amount", amount.String(), "error", err)
		RespondInternalError(c)
		return
	}

	deliverable, writtenOff, _ := change.Deliverable(amount)
	RespondOK(c, ChangeResponse{
		Amount:       amount,
		Deliverable:  deliverable,
		WrittenOff:   writtenOff,
		Combinations: combinations,
	})
}

// Reconcile never rejects operator figures: unreadable ones count as zero
func (h *CashHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result := h.cashService.Reconcile(service.ReconcileRequest{
		GrossSales:   req.GrossSales,
		Deposits:     req.Deposits,
		ExchangeRate: req.ExchangeRate,
		ReceivedCash: req.ReceivedCash,
	})
	RespondOK(c, result)
}
