package deposit

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const sessionDateLayout = "2006-01-02"

var ErrInvalidSessionKey = errors.New("invalid session key")

// SessionKey identifies the ledger of one shift on one day
type SessionKey struct {
	Date  string
	Shift string
}

// NewSessionKey validates the date (YYYY-MM-DD) and shift name
func NewSessionKey(date, shift string) (SessionKey, error) {
	if _, err := time.Parse(sessionDateLayout, date); err != nil {
		return SessionKey{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidSessionKey, date)
	}
	if shift == "" || strings.ContainsFunc(shift, func(r rune) bool { return unicode.IsSpace(r) || r == '_' }) {
		return SessionKey{}, fmt.Errorf("%w: shift %q", ErrInvalidSessionKey, shift)
	}
	return SessionKey{Date: date, Shift: shift}, nil
}

// Key renders the persisted store key
func (k SessionKey) Key() string {
	return "deposits_" + k.Date + "_" + k.Shift
}

func (k SessionKey) String() string {
	return k.Key()
}
