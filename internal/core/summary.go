package core

// Summary holds the KPI values derived from a set of records.
type Summary struct {
	Balance      float64 // sum of all amounts, sign preserved
	Deposits     float64 // sum of amounts > 0
	Payments     float64 // sum of amounts < 0
	Count        int
	DepositCount int
	PaymentCount int
}

// Summarize recomputes the KPIs over the full record set.
// Zero amounts add to Balance and Count but to neither subtotal.
func Summarize(records []Transaction) Summary {
	s := Summary{Count: len(records)}
	for _, r := range records {
		s.Balance += r.Amount
		switch {
		case r.IsDeposit():
			s.Deposits += r.Amount
			s.DepositCount++
		case r.IsPayment():
			s.Payments += r.Amount
			s.PaymentCount++
		}
	}
	return s
}
