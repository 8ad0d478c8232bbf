// Package finance derives reporting metrics from the normalized
// transaction set. Everything here is a pure function over in-memory
// collections: no side effects, no caching, recomputed from scratch on
// every call.
package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

// CategorySeries pairs actual spend against budget for one category.
type CategorySeries struct {
	Name   string
	Color  string
	Actual decimal.Decimal
	Budget decimal.Decimal
}

// ExpenseSlice is one wedge of the expense breakdown.
type ExpenseSlice struct {
	Name  string
	Color string
	Value decimal.Decimal
}

// MonthPoint holds income and expense totals for one calendar month.
type MonthPoint struct {
	Month    time.Month
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// Summary is the full set of derived metrics for a reporting period.
type Summary struct {
	TotalIncome    decimal.Decimal
	TotalExpenses  decimal.Decimal
	NetIncome      decimal.Decimal
	BudgetVariance decimal.Decimal

	IncomeCount       int
	ExpenseCount      int
	UnclassifiedCount int

	ByCategory       []CategorySeries
	ExpenseBreakdown []ExpenseSlice
	Trend            [12]MonthPoint
}

// Compute derives the summary for the target year. Income and expense
// membership follows the category-type lookup on each transaction's
// CategoryID; raw account prefixes play no part here. Inputs are never
// mutated and identical inputs always produce identical output.
func Compute(transactions []ledger.Transaction, categories []ledger.Category, budget []ledger.BudgetItem, year int) *Summary {
	byID := make(map[uuid.UUID]*ledger.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	s := &Summary{
		TotalIncome:    decimal.Zero,
		TotalExpenses:  decimal.Zero,
		NetIncome:      decimal.Zero,
		BudgetVariance: decimal.Zero,
	}
	for m := range s.Trend {
		s.Trend[m] = MonthPoint{
			Month:    time.Month(m + 1),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
	}

	actualByCategory := make(map[uuid.UUID]decimal.Decimal, len(categories))

	for i := range transactions {
		t := &transactions[i]
		amount := amountFor(t)

		var category *ledger.Category
		if t.CategoryID != nil {
			category = byID[*t.CategoryID]
			actualByCategory[*t.CategoryID] = actualByCategory[*t.CategoryID].Add(amount)
		} else {
			s.UnclassifiedCount++
		}
		if category == nil {
			continue
		}

		var isIncome bool
		switch category.Type {
		case ledger.CategoryIncome:
			isIncome = true
			s.IncomeCount++
			s.TotalIncome = s.TotalIncome.Add(amount)
		case ledger.CategoryExpense:
			s.ExpenseCount++
			s.TotalExpenses = s.TotalExpenses.Add(amount)
		default:
			continue
		}

		if date, ok := ledger.ParseDate(t.EcritureDate); ok && date.Year() == year {
			point := &s.Trend[int(date.Month())-1]
			if isIncome {
				point.Income = point.Income.Add(amount)
			} else {
				point.Expenses = point.Expenses.Add(amount)
			}
		}
	}

	s.NetIncome = s.TotalIncome.Sub(s.TotalExpenses)

	expenseBudget := decimal.Zero
	budgetByCategory := make(map[uuid.UUID]decimal.Decimal, len(budget))
	for _, b := range budget {
		budgetByCategory[b.CategoryID] = budgetByCategory[b.CategoryID].Add(b.BudgetAmount)
		if c := byID[b.CategoryID]; c != nil && c.Type == ledger.CategoryExpense {
			expenseBudget = expenseBudget.Add(b.BudgetAmount)
		}
	}
	s.BudgetVariance = s.TotalExpenses.Sub(expenseBudget)

	s.ByCategory = make([]CategorySeries, 0, len(categories))
	for _, c := range categories {
		actual := actualByCategory[c.ID]
		s.ByCategory = append(s.ByCategory, CategorySeries{
			Name:   c.Name,
			Color:  c.Color,
			Actual: actual,
			Budget: budgetByCategory[c.ID],
		})

		if c.Type == ledger.CategoryExpense && actual.IsPositive() {
			s.ExpenseBreakdown = append(s.ExpenseBreakdown, ExpenseSlice{
				Name:  c.Name,
				Color: c.Color,
				Value: actual,
			})
		}
	}

	return s
}

// amountFor is abs(credit - debit) with absent legs treated as zero. Rows
// imported from a single signed amount column carry neither leg, so the
// derived magnitude stands in for them.
func amountFor(t *ledger.Transaction) decimal.Decimal {
	if t.Debit == nil && t.Credit == nil {
		return t.Amount
	}
	return t.CreditValue().Sub(t.DebitValue()).Abs()
}

