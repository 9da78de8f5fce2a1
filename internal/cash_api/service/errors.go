package service

import "errors"

// ErrStoreUnavailable reports that the session still holds changes the store has not accepted
var ErrStoreUnavailable = errors.New("ledger store unavailable")
