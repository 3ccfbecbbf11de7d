package core

import "testing"

func TestComputeStats(t *testing.T) {
	ts := []Transaction{
		tx(1, Income, 10000, "salary", "", NewDate(2024, 1, 1)),
		tx(2, Expense, 4000, "food", "", NewDate(2024, 1, 2)),
		tx(3, Expense, 1000, "food", "", NewDate(2024, 1, 3)),
		tx(4, Expense, 500, "fuel", "", NewDate(2024, 1, 4)),
	}

	stats := ComputeStats(ts)

	if stats.TotalIncome.Cents != 10000 {
		t.Fatalf("totalIncome = %d, want 10000", stats.TotalIncome.Cents)
	}
	if stats.TotalExpense.Cents != 5500 {
		t.Fatalf("totalExpense = %d, want 5500", stats.TotalExpense.Cents)
	}
	if stats.NetBalance.Cents != 4500 {
		t.Fatalf("netBalance = %d, want 4500", stats.NetBalance.Cents)
	}

	if len(stats.CategoryExpenses) != 2 {
		t.Fatalf("expected 2 expense categories, got %d", len(stats.CategoryExpenses))
	}
	// First-seen order, not sorted.
	if stats.CategoryExpenses[0].Category != "food" || stats.CategoryExpenses[0].Amount.Cents != 5000 {
		t.Fatalf("categoryExpenses[0] = %+v, want food/5000", stats.CategoryExpenses[0])
	}
	if stats.CategoryExpenses[1].Category != "fuel" || stats.CategoryExpenses[1].Amount.Cents != 500 {
		t.Fatalf("categoryExpenses[1] = %+v, want fuel/500", stats.CategoryExpenses[1])
	}
}

func TestComputeStatsNegativeBalance(t *testing.T) {
	ts := []Transaction{
		tx(1, Income, 1000, "salary", "", NewDate(2024, 1, 1)),
		tx(2, Expense, 2500, "rent", "", NewDate(2024, 1, 2)),
	}
	stats := ComputeStats(ts)
	if stats.NetBalance.Cents != -1500 {
		t.Fatalf("netBalance = %d, want -1500", stats.NetBalance.Cents)
	}
	if stats.NetBalance.String() != "-15.00" {
		t.Fatalf("netBalance renders as %q", stats.NetBalance.String())
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.TotalIncome.Cents != 0 || stats.TotalExpense.Cents != 0 || stats.NetBalance.Cents != 0 {
		t.Fatalf("empty set should yield zero totals, got %+v", stats)
	}
	if stats.CategoryExpenses == nil || len(stats.CategoryExpenses) != 0 {
		t.Fatal("categoryExpenses should be an empty slice, not nil")
	}
}
