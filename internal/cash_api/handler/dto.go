package handler

import (
	"encoding/json"
	"time"

	"github.com/easyplus-cash-ledger/internal/cash_api/service"
	"github.com/easyplus-cash-ledger/internal/domain/archive"
	"github.com/easyplus-cash-ledger/internal/domain/deposit"
	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/easyplus-cash-ledger/internal/engine/change"
	"github.com/shopspring/decimal"
)

// SessionURI addresses one (date, shift) ledger
type SessionURI struct {
	Date  string `uri:"date" binding:"required"`
	Shift string `uri:"shift" binding:"required"`
}

type HistoryEventURI struct {
	SessionURI
	EventID string `uri:"event_id" binding:"required"`
}

type DepositURI struct {
	SessionURI
	Vendor   string `uri:"vendor" binding:"required"`
	Sequence int    `uri:"sequence" binding:"required,min=1"`
}

type SelectVendorRequest struct {
	Vendor string `json:"vendor" binding:"required"`
}

// RecordBillRequest adds count loose notes; count 0 only moves the focus
type RecordBillRequest struct {
	Denomination int  `json:"denomination" binding:"required"`
	Count        *int `json:"count" binding:"required"`
}

// SaveDepositRequest carries a client-generated deposit id so retries are safe
type SaveDepositRequest struct {
	Vendor    string `json:"vendor" binding:"required"`
	DepositID string `json:"deposit_id" binding:"required,uuid"`
}

type BundlesQuery struct {
	SmallThreshold int `form:"small_threshold" binding:"min=0"`
}

type PaginationParams struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

type ChangeRequest struct {
	Amount json.RawMessage `json:"amount" binding:"required"`
}

// ReconcileRequest accepts numbers or numeric strings; deposits may be
// plain amounts or {"currency","amount"} objects
type ReconcileRequest struct {
	GrossSales   json.RawMessage `json:"gross_sales"`
	Deposits     []shared.Money  `json:"deposits"`
	ExchangeRate json.RawMessage `json:"exchange_rate,omitempty"`
	ReceivedCash json.RawMessage `json:"received_cash"`
}

type DepositResponse struct {
	ID        string         `json:"id"`
	Vendor    string         `json:"vendor"`
	Sequence  int            `json:"sequence"`
	Label     string         `json:"label"`
	Timestamp string         `json:"timestamp"`
	Amounts   shared.Amounts `json:"amounts"`
	Total     int64          `json:"total"`
}

type VendorResponse struct {
	Vendor   string            `json:"vendor"`
	Deposits []DepositResponse `json:"deposits"`
	Total    int64             `json:"total"`
}

type WorkingResponse struct {
	Vendor  string         `json:"vendor,omitempty"`
	Amounts shared.Amounts `json:"amounts"`
	Total   int64          `json:"total"`
}

type LedgerResponse struct {
	SessionKey      string           `json:"session_key"`
	Date            string           `json:"date"`
	Shift           string           `json:"shift"`
	Vendors         []VendorResponse `json:"vendors"`
	Working         WorkingResponse  `json:"working"`
	AllVendorsTotal int64            `json:"all_vendors_total"`
	Synced          bool             `json:"synced"`
	PendingEvents   int              `json:"pending_events"`
}

type RecordBillResponse struct {
	Ledger    LedgerResponse `json:"ledger"`
	NextFocus *int           `json:"next_focus"`
}

type SaveDepositResponse struct {
	Deposit DepositResponse `json:"deposit"`
	Created bool            `json:"created"`
	Ledger  LedgerResponse  `json:"ledger"`
}

type ChangeResponse struct {
	Amount       decimal.Decimal      `json:"amount"`
	Deliverable  int64                `json:"deliverable"`
	WrittenOff   decimal.Decimal      `json:"written_off"`
	Combinations []change.Combination `json:"combinations"`
}

type HistoryRecordResponse struct {
	EventID       string         `json:"event_id"`
	Type          string         `json:"type"`
	Vendor        string         `json:"vendor"`
	Sequence      int            `json:"sequence,omitempty"`
	DepositID     string         `json:"deposit_id"`
	Amounts       shared.Amounts `json:"amounts"`
	Total         int64          `json:"total"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	OccurredAt    string         `json:"occurred_at"`
	ArchivedAt    string         `json:"archived_at"`
}

func mapEntryToResponse(e deposit.Entry) DepositResponse {
	return DepositResponse{
		ID:        e.ID.String(),
		Vendor:    e.Vendor,
		Sequence:  e.Sequence,
		Label:     e.Label(),
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Amounts:   e.Amounts,
		Total:     e.Total,
	}
}

func mapStateToResponse(state *service.SessionState) LedgerResponse {
	response := LedgerResponse{
		SessionKey: state.Key.Key(),
		Date:       state.Key.Date,
		Shift:      state.Key.Shift,
		Vendors:    []VendorResponse{},
		Working: WorkingResponse{
			Vendor:  state.Working.Vendor,
			Amounts: state.Working.Amounts,
			Total:   state.Working.Total(),
		},
		AllVendorsTotal: state.AllVendorsTotal,
		Synced:          state.Synced,
		PendingEvents:   state.Pending,
	}

	for _, vendor := range state.Saved.Vendors() {
		v := VendorResponse{Vendor: vendor, Deposits: []DepositResponse{}, Total: state.VendorTotals[vendor]}
		for _, e := range state.Saved.Entries(vendor) {
			v.Deposits = append(v.Deposits, mapEntryToResponse(e))
		}
		response.Vendors = append(response.Vendors, v)
	}
	return response
}

func mapRecordToResponse(r *archive.Record) HistoryRecordResponse {
	return HistoryRecordResponse{
		EventID:       r.EventID.String(),
		Type:          string(r.Type),
		Vendor:        r.Vendor,
		Sequence:      r.Sequence,
		DepositID:     r.DepositID.String(),
		Amounts:       r.Amounts,
		Total:         r.Total,
		CorrelationID: r.CorrelationID,
		OccurredAt:    r.OccurredAt.Format(time.RFC3339),
		ArchivedAt:    r.ArchivedAt.Format(time.RFC3339),
	}
}
