// Package render turns a record set into the table and KPI views and writes
// them as HTML or export formats.
package render

import (
	"fmt"

	"ledgerview/internal/core"
)

// Formatter renders a money amount for display.
type Formatter interface {
	Format(v float64) string
}

// RowView is one table row, fully formatted.
type RowView struct {
	Date        string
	Description string
	Vendor      string
	Amount      string
	AmountClass string // "neg" or "pos"
	Badge       string // "badge credit" or "badge debit"
	Type        string
	Time        string
}

// TableView is the table body. Rows keep input order.
type TableView struct {
	Rows  []RowView
	Empty bool
}

// KPIView holds the four KPI cards and their subtexts.
type KPIView struct {
	Balance     string
	Deposits    string
	Payments    string
	Count       int
	DepositsSub string
	PaymentsSub string
}

// LedgerView is what the ledger partial renders.
type LedgerView struct {
	Table TableView
	KPIs  KPIView
}

// Table builds one row per record without re-sorting.
func Table(records []core.Transaction, money Formatter) TableView {
	view := TableView{Rows: make([]RowView, 0, len(records)), Empty: len(records) == 0}
	for _, t := range records {
		amountClass := "pos"
		if t.Amount < 0 {
			amountClass = "neg"
		}
		badge := "badge debit"
		if t.IsCredit() {
			badge = "badge credit"
		}
		view.Rows = append(view.Rows, RowView{
			Date:        t.Date,
			Description: t.Description,
			Vendor:      t.Vendor,
			Amount:      money.Format(t.Amount),
			AmountClass: amountClass,
			Badge:       badge,
			Type:        t.Type,
			Time:        t.Time,
		})
	}
	return view
}

// KPIs recomputes the summary cards over the full record set.
func KPIs(records []core.Transaction, money Formatter) KPIView {
	s := core.Summarize(records)
	return KPIView{
		Balance:     money.Format(s.Balance),
		Deposits:    money.Format(s.Deposits),
		Payments:    money.Format(s.Payments),
		Count:       s.Count,
		DepositsSub: fmt.Sprintf("%d deposit(s)", s.DepositCount),
		PaymentsSub: fmt.Sprintf("%d payment(s)", s.PaymentCount),
	}
}

// Ledger builds both views.
func Ledger(records []core.Transaction, money Formatter) LedgerView {
	return LedgerView{Table: Table(records, money), KPIs: KPIs(records, money)}
}
