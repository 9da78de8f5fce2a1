// Package change computes how to hand back change with the fixed
// denomination set when nothing below shared.MinUnit can be tendered.
package change

import "github.com/easyplus-cash-ledger/internal/domain/shared"

// Item is one line of a breakdown
type Item struct {
	Denomination shared.Denomination `json:"denomination" yaml:"denomination"`
	Count        int64               `json:"count" yaml:"count"`
	Subtotal     int64               `json:"subtotal" yaml:"subtotal"`
}

// Strategy turns a deliverable amount (a multiple of shared.MinUnit) into notes
type Strategy interface {
	Name() string
	Breakdown(deliverable int64) []Item
}

// counts is a note count per denomination, indexed like shared.Denominations
type counts [shared.DenominationCount]int64

// greedyFrom takes as many notes as possible starting at index from
func (c *counts) greedyFrom(from int, remaining int64) int64 {
	for i := from; i < shared.DenominationCount; i++ {
		d := int64(shared.Denominations[i])
		c[i] += remaining / d
		remaining %= d
	}
	return remaining
}

func (c counts) items() []Item {
	var out []Item
	for i, n := range c {
		if n == 0 {
			continue
		}
		d := shared.Denominations[i]
		out = append(out, Item{Denomination: d, Count: n, Subtotal: n * int64(d)})
	}
	return out
}

// Greedy takes the largest note first at every step
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (Greedy) Breakdown(deliverable int64) []Item {
	var c counts
	c.greedyFrom(0, deliverable)
	return c.items()
}

// AvoidAwkwardRemainder holds back one large note (100 and up) whenever taking
// it would leave less than 25 to finish, then completes with notes of 50 and below
type AvoidAwkwardRemainder struct{}

const (
	largeNoteFloor   = 100
	awkwardRemainder = 25
	smallNoteCeiling = 50
)

func (AvoidAwkwardRemainder) Name() string { return "avoid_awkward_remainder" }

func (AvoidAwkwardRemainder) Breakdown(deliverable int64) []Item {
	var c counts
	remaining := deliverable
	for i, denom := range shared.Denominations {
		d := int64(denom)
		if d < largeNoteFloor {
			break
		}
		n := remaining / d
		if left := remaining - n*d; n > 0 && left > 0 && left < awkwardRemainder {
			n--
		}
		c[i] += n
		remaining -= n * d
	}
	for i, denom := range shared.Denominations {
		if denom <= smallNoteCeiling {
			c.greedyFrom(i, remaining)
			break
		}
	}
	return c.items()
}

// PreferMidNotes swaps half of the 1000 notes for pairs of 500 notes
type PreferMidNotes struct{}

func (PreferMidNotes) Name() string { return "prefer_mid_notes" }

func (PreferMidNotes) Breakdown(deliverable int64) []Item {
	var c counts
	thousands := deliverable / 1000
	swapped := thousands / 2
	c[0] = thousands - swapped
	c[1] = 2 * swapped
	c.greedyFrom(1, deliverable-thousands*1000)
	return c.items()
}
