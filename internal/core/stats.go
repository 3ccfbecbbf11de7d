package core

// CategoryExpense is one category's summed expense amount.
type CategoryExpense struct {
	Category string `json:"category"`
	Amount   Money  `json:"amount"`
}

// DashboardStats is the aggregate view over all transactions: totals,
// net balance and the per-category expense breakdown in first-seen
// category order.
type DashboardStats struct {
	TotalIncome      Money             `json:"totalIncome"`
	TotalExpense     Money             `json:"totalExpense"`
	NetBalance       Money             `json:"netBalance"`
	CategoryExpenses []CategoryExpense `json:"categoryExpenses"`
}

// ComputeStats scans every transaction once and accumulates the
// dashboard totals in cents, so no rounding error can build up during
// summation. Callers pass transactions in insertion order; that order
// determines the ordering of the category breakdown.
func ComputeStats(ts []Transaction) DashboardStats {
	stats := DashboardStats{
		CategoryExpenses: make([]CategoryExpense, 0),
	}

	byCategory := make(map[string]int)
	for _, t := range ts {
		if t.Type == Income {
			stats.TotalIncome.Cents += t.Amount.Cents
			continue
		}
		stats.TotalExpense.Cents += t.Amount.Cents
		idx, seen := byCategory[t.Category]
		if !seen {
			byCategory[t.Category] = len(stats.CategoryExpenses)
			stats.CategoryExpenses = append(stats.CategoryExpenses, CategoryExpense{Category: t.Category})
			idx = len(stats.CategoryExpenses) - 1
		}
		stats.CategoryExpenses[idx].Amount.Cents += t.Amount.Cents
	}

	stats.NetBalance.Cents = stats.TotalIncome.Cents - stats.TotalExpense.Cents
	return stats
}
