package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedMoney      = errors.New("malformed money value")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// MoneyKind tags the variant held by a Money value
type MoneyKind int

const (
	MoneyMalformed MoneyKind = iota
	MoneyLocal
	MoneyForeign
)

// Money is a deposit amount: local currency, a tagged foreign amount, or
// an input that could not be read as either
type Money struct {
	kind     MoneyKind
	currency string
	amount   decimal.Decimal
	raw      string
}

// Local builds a local-currency amount
func Local(amount decimal.Decimal) Money {
	return Money{kind: MoneyLocal, currency: CurrencyLocal, amount: amount}
}

// Foreign builds a foreign-currency amount; the local currency code yields a Local value
func Foreign(currency string, amount decimal.Decimal) Money {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == CurrencyLocal {
		return Local(amount)
	}
	return Money{kind: MoneyForeign, currency: currency, amount: amount}
}

// Malformed keeps the raw input of a value that is neither local nor foreign
func Malformed(raw string) Money {
	return Money{kind: MoneyMalformed, raw: raw}
}

func (m Money) Kind() MoneyKind         { return m.kind }
func (m Money) Currency() string        { return m.currency }
func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Raw() string             { return m.raw }

// Convert returns the value in local currency; USD amounts are multiplied by rate
func (m Money) Convert(rate decimal.Decimal) (decimal.Decimal, error) {
	switch m.kind {
	case MoneyLocal:
		return m.amount, nil
	case MoneyForeign:
		if m.currency != CurrencyUSD {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, m.currency)
		}
		return m.amount.Mul(rate), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMalformedMoney, m.raw)
	}
}

type taggedMoney struct {
	Currency string          `json:"currency"`
	Amount   json.RawMessage `json:"amount"`
}

// UnmarshalJSON never fails: unreadable input becomes a Malformed value
func (m *Money) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var tagged taggedMoney
		if err := json.Unmarshal(trimmed, &tagged); err == nil {
			if amount, ok := ParseDecimal(tagged.Amount); ok {
				*m = Foreign(tagged.Currency, amount)
				return nil
			}
		}
		*m = Malformed(string(trimmed))
		return nil
	}
	if amount, ok := ParseDecimal(trimmed); ok {
		*m = Local(amount)
		return nil
	}
	*m = Malformed(string(trimmed))
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	switch m.kind {
	case MoneyLocal:
		return json.Marshal(m.amount)
	case MoneyForeign:
		return json.Marshal(struct {
			Currency string          `json:"currency"`
			Amount   decimal.Decimal `json:"amount"`
		}{m.currency, m.amount})
	default:
		if json.Valid([]byte(m.raw)) {
			return json.RawMessage(m.raw), nil
		}
		return json.Marshal(m.raw)
	}
}

// ParseDecimal reads a JSON number or a numeric JSON string
func ParseDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return decimal.Zero, false
	}
	text := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return decimal.Zero, false
		}
		text = strings.TrimSpace(text)
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}
