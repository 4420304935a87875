package domain

import (
	"slices"
	"strings"
)

// StatusRow is one domain's result within a round.
type StatusRow struct {
	Domain  string  `json:"domain"`
	Outcome Outcome `json:"outcome"`
}

// Round holds one row per configured domain, sorted by SortRows.
type Round []StatusRow

// Counts tallies rows per outcome.
type Counts struct {
	Healthy     int `json:"healthy"`
	Erroring    int `json:"erroring"`
	Unreachable int `json:"unreachable"`
}

func (r Round) Counts() Counts {
	var c Counts
	for _, row := range r {
		switch row.Outcome {
		case Healthy:
			c.Healthy++
		case Erroring:
			c.Erroring++
		default:
			c.Unreachable++
		}
	}
	return c
}

// AllHealthy reports whether every row is Healthy.
func (r Round) AllHealthy() bool {
	for _, row := range r {
		if row.Outcome != Healthy {
			return false
		}
	}
	return true
}

// SortRows orders rows by domain name, case-insensitively. Rows whose names
// differ only by case keep their relative order.
func SortRows(rows []StatusRow) {
	slices.SortStableFunc(rows, func(a, b StatusRow) int {
		return strings.Compare(strings.ToLower(a.Domain), strings.ToLower(b.Domain))
	})
}
