package handler

import (
	"errors"
	"net/http"

	"github.com/easyplus-cash-ledger/internal/cash_api/service"
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// respondDomainError maps ledger errors to the API envelope. Anything
// unrecognised is an internal error.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidDenomination{}),
		errors.Is(err, shared.ErrNegativeCount),
		errors.Is(err, shared.ErrCountTooLarge),
		errors.Is(err, deposit.ErrInvalidVendor),
		errors.Is(err, deposit.ErrInvalidSessionKey):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, deposit.ErrNoActiveVendor):
		RespondUnprocessable(c, "NO_ACTIVE_VENDOR", err.Error())
	case errors.Is(err, deposit.ErrEmptyDeposit):
		RespondUnprocessable(c, "EMPTY_DEPOSIT", err.Error())
	case errors.Is(err, deposit.ErrDepositNotFound{}):
		RespondNotFound(c, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", err.Error())
	default:
		RespondInternalError(c)
	}
}
