package core

import (
	"hash/fnv"
	"sort"
)

// CategoryTotal is one slice of the category breakdown for a month.
type CategoryTotal struct {
	Category string
	Total    Money
	Color    string
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Total      Money
	ByCategory []CategoryTotal
}

// palette holds the dashboard slice colors. Categories map into it by a
// stable hash of the name, so a category keeps its color no matter in
// which order the expenses were entered.
var palette = []string{
	"#44FF07",
	"#FED60A",
	"#0AB6FF",
	"#3700FF",
	"#FB13F3",
	"#FF5733",
	"#33FFBD",
	"#B07CFF",
}

// CategoryColor assigns a display color by hashing the category name
// into the fixed palette.
func CategoryColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return palette[int(h.Sum32())%len(palette)]
}

// SummarizeByCategory groups expenses by category and sums their
// amounts. Grouping is case-sensitive and an empty category falls back
// to DefaultCategory; no normalization is applied, so "food" and "Food"
// are distinct groups. The result is ordered by total descending, then
// name, and is empty (not nil-checked) for an empty input.
func SummarizeByCategory(expenses []Expense) []CategoryTotal {
	sums := make(map[string]int64)
	for _, e := range expenses {
		category := e.Category
		if category == "" {
			category = DefaultCategory
		}
		sums[category] += e.Amount.Cents
	}

	totals := make([]CategoryTotal, 0, len(sums))
	for category, cents := range sums {
		totals = append(totals, CategoryTotal{
			Category: category,
			Total:    Money{Cents: cents},
			Color:    CategoryColor(category),
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total.Cents != totals[j].Total.Cents {
			return totals[i].Total.Cents > totals[j].Total.Cents
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}
