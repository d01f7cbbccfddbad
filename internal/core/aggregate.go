package core

import "math"

// Aggregate computes the derived totals for a ledger. Pure function: bad
// values contribute zero instead of poisoning the sums, and remaining may go
// negative when the user overspends.
func Aggregate(l Ledger) Totals {
	salary := l.Salary
	if math.IsNaN(salary) || math.IsInf(salary, 0) {
		salary = 0
	}

	var total float64
	for _, e := range l.Entries {
		if !e.IsExpense() {
			continue
		}
		if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			continue
		}
		total += e.Amount
	}

	return Totals{
		Salary:        salary,
		TotalExpenses: total,
		Remaining:     salary - total,
	}
}
