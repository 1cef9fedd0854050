// Package currency holds the static table of display currencies. Amounts are
// entered in US dollars and scaled by a fixed multiplier; no live exchange
// rates are consulted.
package currency

import (
	"fmt"
	"sort"
	"strings"
)

// Currency describes one selectable display currency.
type Currency struct {
	Code       string  `json:"code" yaml:"code"`
	Symbol     string  `json:"symbol" yaml:"symbol"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"` // units per 1 USD
}

var table = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Multiplier: 1},
	"INR": {Code: "INR", Symbol: "₹", Multiplier: 83},
	"AED": {Code: "AED", Symbol: "د.إ", Multiplier: 3.67},
}

// Lookup returns the currency for a code such as "usd" or "INR".
func Lookup(code string) (Currency, error) {
	c, ok := table[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Currency{}, fmt.Errorf("unsupported currency %q, expected one of %s", code, strings.Join(Codes(), ", "))
	}
	return c, nil
}

// Codes returns the supported currency codes in alphabetical order.
func Codes() []string {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// All returns every supported currency ordered by code.
func All() []Currency {
	codes := Codes()
	all := make([]Currency, len(codes))
	for i, code := range codes {
		all[i] = table[code]
	}
	return all
}

// Convert scales a US dollar amount into this currency.
func (c Currency) Convert(usd float64) float64 {
	return usd * c.Multiplier
}
