package core

import (
	"strings"
	"unicode/utf8"
)

// Transaction types reported by the ledger API.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

// timeWidth is the fixed width of an "HH:mm:ss" wall-clock time.
const timeWidth = 8

type (
	// Transaction is a single ledger record as served by the ledger API.
	// Amount is signed: positive values are deposits, negative values payments.
	Transaction struct {
		Date        string  `json:"date"`
		Time        string  `json:"time"`
		Description string  `json:"description"`
		Vendor      string  `json:"vendor"`
		Amount      float64 `json:"amount"`
		Type        string  `json:"type"`
	}
)

// IsCredit reports whether the record carries the exact "credit" tag.
// Every other value, including an empty one, is presented as a debit.
func (t Transaction) IsCredit() bool {
	return t.Type == TypeCredit
}

// IsDeposit reports whether the amount is strictly positive.
func (t Transaction) IsDeposit() bool {
	return t.Amount > 0
}

// IsPayment reports whether the amount is strictly negative.
func (t Transaction) IsPayment() bool {
	return t.Amount < 0
}

// NormalizeTime left-pads s with zeros to a minimum width of eight characters.
// It does not parse the value: "9:5:0" becomes "0009:5:0".
func NormalizeTime(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= timeWidth {
		return s
	}
	return strings.Repeat("0", timeWidth-n) + s
}

// NormalizeAll returns a copy of records with every Time normalized.
func NormalizeAll(records []Transaction) []Transaction {
	out := make([]Transaction, len(records))
	for i, r := range records {
		r.Time = NormalizeTime(r.Time)
		out[i] = r
	}
	return out
}
