package shared

// DepositEventType defines the ledger mutations published to the event bus
type DepositEventType string

const (
	DepositEventSaved          DepositEventType = "DEPOSIT_SAVED"
	DepositEventDeleted        DepositEventType = "DEPOSIT_DELETED"
	DepositEventWorkingCleared DepositEventType = "WORKING_CLEARED"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// Currency codes accepted on tagged deposit amounts
const (
	CurrencyLocal = "DZD"
	CurrencyUSD   = "USD"
)
