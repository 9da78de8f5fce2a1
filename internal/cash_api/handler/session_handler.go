package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/easyplus-cash-ledger/internal/cash_api/service"
	"github.com/easyplus-cash-ledger/internal/domain/archive"
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler serves the denomination ledger of a (date, shift) session
type SessionHandler struct {
	ledgerService  service.LedgerService
	historyService service.HistoryService
	logger         *slog.Logger
}

// NewSessionHandler accepts a nil history service when no archive is configured
func NewSessionHandler(logger *slog.Logger, ledgerService service.LedgerService, historyService service.HistoryService) *SessionHandler {
	return &SessionHandler{
		ledgerService:  ledgerService,
		historyService: historyService,
		logger:         logger,
	}
}

func (h *SessionHandler) sessionKey(c *gin.Context) (deposit.SessionKey, bool) {
	var uri SessionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		RespondBadRequest(c, "Invalid session: "+err.Error())
		return deposit.SessionKey{}, false
	}
	key, err := deposit.NewSessionKey(uri.Date, uri.Shift)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return deposit.SessionKey{}, false
	}
	return key, true
}

// GetLedger returns saved deposits, the working deposit and the totals
func (h *SessionHandler) GetLedger(c *gin.Context) {
	key, ok := h.sessionKey(c)
	if !ok {
		return
	}
	state, err := h.ledgerService.GetSession(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("Failed to get session", "session_key", key.Key(), "error", err)
		respondDomainError(c, err)
		return
	}
	RespondOK(c, mapStateToResponse(state))
}

func (h *SessionHandler) SelectVendor(c *gin.Context) {
	key, ok := h.sessionKey(c)
	if !ok {
		return
	}
	var req SelectVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	state, err := h.ledgerService.SelectVendor(c.Request.Context(), key, req.Vendor)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, mapStateToResponse(state))
}

func (h *SessionHandler) RecordBill(c *gin.Context) {
	key, ok := h.sessionKey(c)
	if !ok {
		return
	}
	var req RecordBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledgerService.RecordBill(c.Request.Context(), key, req.Denomination, *req.Count)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response := RecordBillResponse{Ledger: mapStateToResponse(result.State)}
	if result.HasNext {
		next := int(result.NextFocus)
		response.NextFocus = &next
	}
	RespondOK(c, response)
}

func (h *SessionHandler) ClearWorking(c *gin.Context) {
	key, ok := h.sessionKey(c)
	if !ok {
		return
	}
	state, err := h.ledgerService.ClearWorking(c.Request.Context(), key)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, mapStateToResponse(state))
}

// SaveDeposit answers 201 for a new deposit and 200 when the id was already saved
func (h *SessionHandler) SaveDeposit(c *gin.Context) {
	key, ok := h.sessionKey(c)
	if !ok {
		return
	}
	var req SaveDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	depositID, err := uuid.Parse(req.DepositID)
	if err != nil {
		RespondBadRequest(c, "Invalid deposit ID")
		return
	}

	result, err := h.ledgerService.SaveDeposit(c.Request.Context(), key, req.Vendor, depositID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response := SaveDepositResponse{
		Deposit: mapEntryToResponse(result.Entry),
		Created: result.Created,
		Ledger:  mapStateToResponse(result.State),
	}
	if result.Created {
		RespondCreated(c, response)
		return
	}
	RespondOK(c, response)
}

func (h *SessionHandler) DeleteDeposit(c *gin.Context) {
	var uri DepositURI
	if err := c.ShouldBindUri(&uri); err != nil {
		RespondBadRequest(c, "Invalid deposit: "+err.Error())
		return
	}
	key, err := deposit.NewSessionKey(uri.Date, uri.Shift)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	state, err := h.ledgerService.DeleteDeposit(c.Request.Context(), key, uri.Vendor, uri.Sequence)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, mapStateToResponse(state))
}

// Sync retries persistence; 503 still carries the in-memory ledger
func (h *SessionHandler) Sync(c *gin.Context) {
	key, ok := h.sessionKey(c)
	if !ok {
		return
	}
	state, err := h.ledgerService.Sync(c.Request.Context(), key)
	if errors.Is(err, service.ErrStoreUnavailable) && state != nil {
		RespondWithDataAndError(c, http.StatusServiceUnavailable, mapStateToResponse(state), "STORE_UNAVAILABLE", err.Error())
		return
	}
	if err != nil {
		h.logger.Error("Failed to sync session", "session_key", key.Key(), "error", err)
		respondDomainError(c, err)
		return
	}
	RespondOK(c, mapStateToResponse(state))
}

// Bundles returns the bundling instructions for every note counted in the session
func (h *SessionHandler) Bundles(c *gin.Context) {
	key, ok := h.sessionKey(c)
	if !ok {
		return
	}
	var query BundlesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	plan, err := h.ledgerService.Bundles(c.Request.Context(), key, query.SmallThreshold)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	RespondOK(c, plan)
}

func (h *SessionHandler) History(c *gin.Context) {
	key, ok := h.sessionKey(c)
	if !ok {
		return
	}
	if h.historyService == nil {
		RespondWithError(c, http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Deposit archive is not configured")
		return
	}
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	records, total, err := h.historyService.ListSessionHistory(c.Request.Context(), key, pagination.Page, pagination.PageSize)
	if err != nil {
		h.logger.Error("Failed to list session history", "session_key", key.Key(), "error", err)
		RespondInternalError(c)
		return
	}

	history := make([]HistoryRecordResponse, 0, len(records))
	for _, r := range records {
		history = append(history, mapRecordToResponse(r))
	}
	RespondWithPaginatedData(c, http.StatusOK, history, pagination.Page, pagination.PageSize, int(total))
}

// HistoryEvent returns one archived event of the session
func (h *SessionHandler) HistoryEvent(c *gin.Context) {
	key, ok := h.sessionKey(c)
	if !ok {
		return
	}
	if h.historyService == nil {
		RespondWithError(c, http.StatusServiceUnavailable, "ARCHIVE_UNAVAILABLE", "Deposit archive is not configured")
		return
	}
	var uri HistoryEventURI
	if err := c.ShouldBindUri(&uri); err != nil {
		RespondBadRequest(c, "Invalid event: "+err.Error())
		return
	}
	eventID, err := uuid.Parse(uri.EventID)
	if err != nil {
		RespondBadRequest(c, "Event ID must be a UUID")
		return
	}

	record, err := h.historyService.GetSessionEvent(c.Request.Context(), key, eventID)
	if err != nil {
		if errors.Is(err, archive.ErrRecordNotFound{}) {
			RespondNotFound(c, err.Error())
			return
		}
		h.logger.Error("Failed to get archived event", "session_key", key.Key(), "event_id", eventID.String(), "error", err)
		RespondInternalError(c)
		return
	}
	RespondOK(c, mapRecordToResponse(record))
}
