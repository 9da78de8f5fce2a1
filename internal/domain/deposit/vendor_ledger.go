package deposit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// VendorLedger holds the saved deposits of every vendor of a session.
// Vendors keep the order in which they were first seen.
type VendorLedger struct {
	vendors []string
	entries map[string][]Entry
}

func NewVendorLedger() *VendorLedger {
	return &VendorLedger{entries: make(map[string][]Entry)}
}

// Vendors returns the known vendors in discovery order
func (l *VendorLedger) Vendors() []string {
	return append([]string(nil), l.vendors...)
}

// Entries returns a copy of the saved deposits of vendor in sequence order
func (l *VendorLedger) Entries(vendor string) []Entry {
	return append([]Entry(nil), l.entries[vendor]...)
}

// Len returns the number of saved deposits across vendors
func (l *VendorLedger) Len() int {
	n := 0
	for _, list := range l.entries {
		n += len(list)
	}
	return n
}

// Clone returns an independent copy
func (l *VendorLedger) Clone() *VendorLedger {
	clone := NewVendorLedger()
	for _, vendor := range l.vendors {
		clone.vendors = append(clone.vendors, vendor)
		clone.entries[vendor] = l.Entries(vendor)
	}
	return clone
}

func (l *VendorLedger) find(vendor string, id uuid.UUID) (Entry, bool) {
	for _, e := range l.entries[vendor] {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (l *VendorLedger) append(vendor string, id uuid.UUID, at time.Time, amounts shared.Amounts) Entry {
	if _, known := l.entries[vendor]; !known {
		l.vendors = append(l.vendors, vendor)
	}
	entry := Entry{
		ID:        id,
		Vendor:    vendor,
		Sequence:  len(l.entries[vendor]) + 1,
		Timestamp: at,
		Amounts:   amounts,
		Total:     amounts.Value(),
	}
	l.entries[vendor] = append(l.entries[vendor], entry)
	return entry
}

func (l *VendorLedger) remove(vendor string, sequence int) (Entry, error) {
	list := l.entries[vendor]
	if sequence < 1 || sequence > len(list) {
		return Entry{}, ErrDepositNotFound{Vendor: vendor, Sequence: sequence}
	}
	removed := list[sequence-1]
	remaining := make([]Entry, 0, len(list)-1)
	remaining = append(remaining, list[:sequence-1]...)
	remaining = append(remaining, list[sequence:]...)
	for i := range remaining {
		remaining[i].Sequence = i + 1
	}
	// The vendor stays known so discovery order is stable across deletions
	l.entries[vendor] = remaining
	return removed, nil
}

// storedEntry is the persisted shape of an Entry
type storedEntry struct {
	ID        uuid.UUID      `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Amounts   shared.Amounts `json:"amounts"`
	Total     int64          `json:"total"`
}

// MarshalJSON writes {"<vendor>": [entries...]} keeping vendor order
func (l *VendorLedger) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, vendor := range l.vendors {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(vendor))
		buf.WriteByte(':')
		stored := make([]storedEntry, 0, len(l.entries[vendor]))
		for _, e := range l.entries[vendor] {
			stored = append(stored, storedEntry{ID: e.ID, Timestamp: e.Timestamp, Amounts: e.Amounts, Total: e.Amounts.Value()})
		}
		list, err := json.Marshal(stored)
		if err != nil {
			return nil, err
		}
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the persisted object in key order. Totals are
// recomputed from amounts and sequence numbers follow list position.
func (l *VendorLedger) UnmarshalJSON(data []byte) error {
	decoded := NewVendorLedger()
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = *decoded
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("vendor ledger must be a JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		vendor := keyTok.(string)

		var stored []storedEntry
		if err := dec.Decode(&stored); err != nil {
			return fmt.Errorf("vendor %q: %w", vendor, err)
		}
		for _, s := range stored {
			id := s.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			decoded.append(vendor, id, s.Timestamp, s.Amounts)
		}
		if _, known := decoded.entries[vendor]; !known {
			decoded.vendors = append(decoded.vendors, vendor)
			decoded.entries[vendor] = nil
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*l = *decoded
	return nil
}
