package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// BillCount holds the notes of one denomination as full bundles plus loose notes
type BillCount struct {
	BundleCount int `json:"bundleCount" bson:"bundle_count"`
	LooseCount  int `json:"looseCount" bson:"loose_count"`
}

// Bills returns the total number of physical notes
func (b BillCount) Bills() int {
	return b.BundleCount*BundleSize + b.LooseCount
}

// normalized folds loose notes into bundles once they reach BundleSize
func (b BillCount) normalized() BillCount {
	if b.LooseCount >= BundleSize {
		b.BundleCount += b.LooseCount / BundleSize
		b.LooseCount %= BundleSize
	}
	return b
}

// Amounts holds a bill count per denomination, indexed like Denominations
type Amounts [DenominationCount]BillCount

// Get returns the bill count recorded for d
func (a Amounts) Get(d Denomination) BillCount {
	i, ok := d.Index()
	if !ok {
		return BillCount{}
	}
	return a[i]
}

// AddLoose adds loose notes of d and normalizes the result into bundles
func (a *Amounts) AddLoose(d Denomination, count int) error {
	i, ok := d.Index()
	if !ok {
		return ErrInvalidDenomination{Value: int(d)}
	}
	if count < 0 {
		return ErrNegativeCount
	}
	if held := a[i].Bills(); count > MaxBillsPerDenomination-held {
		return fmt.Errorf("%w: %d notes of %d on top of %d, limit %d", ErrCountTooLarge, count, d, held, MaxBillsPerDenomination)
	}
	a[i].LooseCount += count
	a[i] = a[i].normalized()
	return nil
}

// Bills returns the number of notes of d
func (a Amounts) Bills(d Denomination) int {
	return a.Get(d).Bills()
}

// Value returns the face value of every note held
func (a Amounts) Value() int64 {
	var total int64
	for i, d := range Denominations {
		total += int64(d) * int64(a[i].Bills())
	}
	return total
}

// IsZero reports whether no note is held
func (a Amounts) IsZero() bool {
	return a.Value() == 0
}

// MarshalJSON renders the persisted {"<denom>": {bundleCount, looseCount}} object,
// largest denomination first, skipping empty denominations
func (a Amounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for i, d := range Denominations {
		if a[i] == (BillCount{}) {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(strconv.Quote(d.String()))
		buf.WriteByte(':')
		count, err := json.Marshal(a[i])
		if err != nil {
			return nil, err
		}
		buf.Write(count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the persisted object, rejecting unknown denominations
func (a *Amounts) UnmarshalJSON(data []byte) error {
	var raw map[string]BillCount
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var decoded Amounts
	for key, count := range raw {
		value, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid denomination key %q: %w", key, err)
		}
		d, err := ParseDenomination(value)
		if err != nil {
			return err
		}
		if count.BundleCount < 0 || count.LooseCount < 0 {
			return fmt.Errorf("denomination %d: %w", value, ErrNegativeCount)
		}
		if count.BundleCount > MaxBillsPerDenomination/BundleSize ||
			count.LooseCount > MaxBillsPerDenomination ||
			count.Bills() > MaxBillsPerDenomination {
			return fmt.Errorf("denomination %d: %w", value, ErrCountTooLarge)
		}
		i, _ := d.Index()
		decoded[i] = count.normalized()
	}
	*a = decoded
	return nil
}
