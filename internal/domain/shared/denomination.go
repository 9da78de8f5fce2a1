package shared

import "strconv"

// Denomination is a face value in the local currency's smallest tenderable unit
type Denomination int

// DenominationCount is the size of the fixed denomination set
const DenominationCount = 8

const (
	// MinUnit is the smallest denomination in circulation; change below it is written off
	MinUnit = 5
	// BundleSize is the number of notes in one bundle, whatever the denomination
	BundleSize = 100
	// MaxBillsPerDenomination caps the notes of one denomination in a single deposit
	MaxBillsPerDenomination = 1_000_000
)

// Denominations lists the fixed denomination set in descending order
var Denominations = [DenominationCount]Denomination{1000, 500, 250, 100, 50, 25, 10, 5}

// ParseDenomination validates a raw face value against the fixed set
func ParseDenomination(value int) (Denomination, error) {
	d := Denomination(value)
	if _, ok := d.Index(); !ok {
		return 0, ErrInvalidDenomination{Value: value}
	}
	return d, nil
}

// Index returns the position of d in Denominations
func (d Denomination) Index() (int, bool) {
	for i, candidate := range Denominations {
		if candidate == d {
			return i, true
		}
	}
	return -1, false
}

func (d Denomination) String() string {
	return strconv.Itoa(int(d))
}
