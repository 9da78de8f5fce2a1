package deposit

import (
	"strconv"
	"time"

	"github.com/easyplus-cash-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

const workingLabel = "in progress"

func depositLabel(sequence int) string {
	if sequence == 0 {
		return workingLabel
	}
	return "deposit " + strconv.Itoa(sequence)
}

// Ledger is the denomination ledger of one session: the saved deposits of
// every vendor plus the working deposit of the selected vendor.
// It is not safe for concurrent use.
type Ledger struct {
	saved   *VendorLedger
	working WorkingDeposit
}

// NewLedger wraps saved deposits; a nil ledger starts empty
func NewLedger(saved *VendorLedger) *Ledger {
	if saved == nil {
		saved = NewVendorLedger()
	}
	return &Ledger{saved: saved}
}

// SelectVendor makes vendor active. Switching vendor starts an empty working deposit.
func (l *Ledger) SelectVendor(vendor string) error {
	if vendor == "" {
		return ErrInvalidVendor
	}
	if vendor != l.working.Vendor {
		l.working = WorkingDeposit{Vendor: vendor}
	}
	return nil
}

// RecordBill adds count loose notes of denomination to the working deposit.
// It returns the next denomination, in descending order, still without notes;
// ok is false when every later denomination already holds notes.
func (l *Ledger) RecordBill(denomination int, count int) (next shared.Denomination, ok bool, err error) {
	if l.working.Vendor == "" {
		return 0, false, ErrNoActiveVendor
	}
	d, err := shared.ParseDenomination(denomination)
	if err != nil {
		return 0, false, err
	}
	if count < 0 {
		return 0, false, shared.ErrNegativeCount
	}
	if count > 0 {
		if err := l.working.Amounts.AddLoose(d, count); err != nil {
			return 0, false, err
		}
	}

	i, _ := d.Index()
	for j := i + 1; j < shared.DenominationCount; j++ {
		if l.working.Amounts[j].Bills() == 0 {
			return shared.Denominations[j], true, nil
		}
	}
	return 0, false, nil
}

// SaveWorkingDeposit commits the working deposit of vendor under the
// client-generated id. Saving an id that already exists returns the stored
// entry with created set to false and leaves the ledger untouched.
func (l *Ledger) SaveWorkingDeposit(vendor string, id uuid.UUID, at time.Time) (entry Entry, created bool, err error) {
	if vendor == "" {
		return Entry{}, false, ErrInvalidVendor
	}
	if existing, found := l.saved.find(vendor, id); found {
		return existing, false, nil
	}
	if vendor != l.working.Vendor || l.working.Amounts.IsZero() {
		return Entry{}, false, ErrEmptyDeposit
	}

	entry = l.saved.append(vendor, id, at, l.working.Amounts)
	l.working.Amounts = shared.Amounts{}
	return entry, true, nil
}

// ClearWorkingDeposit resets the working deposit; saved deposits are untouched
func (l *Ledger) ClearWorkingDeposit() WorkingDeposit {
	cleared := l.working
	l.working.Amounts = shared.Amounts{}
	return cleared
}

// DeleteDeposit removes a saved deposit and renumbers the vendor's remaining deposits
func (l *Ledger) DeleteDeposit(vendor string, sequence int) (Entry, error) {
	return l.saved.remove(vendor, sequence)
}

// VendorTotal sums the saved deposits of vendor from their bill counts
func (l *Ledger) VendorTotal(vendor string) int64 {
	var total int64
	for _, e := range l.saved.entries[vendor] {
		total += e.Amounts.Value()
	}
	return total
}

// AllVendorsTotal sums VendorTotal over every known vendor
func (l *Ledger) AllVendorsTotal() int64 {
	var total int64
	for _, vendor := range l.saved.vendors {
		total += l.VendorTotal(vendor)
	}
	return total
}

// Working returns a copy of the working deposit
func (l *Ledger) Working() WorkingDeposit {
	return l.working
}

// Snapshot returns a copy of the saved deposits
func (l *Ledger) Snapshot() *VendorLedger {
	return l.saved.Clone()
}

// Rebase replaces the saved deposits with stored, then re-appends every
// deposit of the current ledger whose id stored does not hold. It returns
// the number of deposits carried over. The working deposit is kept.
func (l *Ledger) Rebase(stored *VendorLedger) int {
	if stored == nil {
		stored = NewVendorLedger()
	}
	carried := 0
	for _, vendor := range l.saved.vendors {
		for _, e := range l.saved.entries[vendor] {
			if _, found := stored.find(vendor, e.ID); found {
				continue
			}
			stored.append(vendor, e.ID, e.Timestamp, e.Amounts)
			carried++
		}
	}
	l.saved = stored
	return carried
}
