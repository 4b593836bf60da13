package core

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// PodiumSize is the number of ranked donors shown on the podium.
const PodiumSize = 3

// SortKey selects the grid ordering.
type SortKey string

const (
	SortNone   SortKey = ""
	SortAmount SortKey = "amount"
	SortRecent SortKey = "recent"
	SortName   SortKey = "name"
)

// ParseSortKey maps a user-supplied key onto a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortAmount, SortRecent, SortName:
		return k, nil
	default:
		return SortNone, fmt.Errorf("unknown sort key %q", s)
	}
}

// fold returns the caseless form of s. A Caser holds state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func foldName(d Donor) string {
	return fold(d.DisplayName())
}

// SortDonors returns a new slice ordered by key. Every ordering is stable, so
// equal keys keep input order.
func SortDonors(donors []Donor, key SortKey) []Donor {
	out := append([]Donor(nil), donors...)
	switch key {
	case SortAmount:
		slices.SortStableFunc(out, func(a, b Donor) int {
			return compareInt64(b.Amount.Cents, a.Amount.Cents)
		})
	case SortRecent:
		slices.SortStableFunc(out, func(a, b Donor) int {
			// undated records sink to the bottom
			switch {
			case a.Date.IsEmpty() && b.Date.IsEmpty():
				return 0
			case a.Date.IsEmpty():
				return 1
			case b.Date.IsEmpty():
				return -1
			}
			return b.Date.Compare(a.Date.Time)
		})
	case SortName:
		slices.SortStableFunc(out, func(a, b Donor) int {
			return strings.Compare(foldName(a), foldName(b))
		})
	}
	return out
}

// FilterDonors keeps donors whose display name contains query, ignoring case.
// A blank query keeps everyone.
func FilterDonors(donors []Donor, query string) []Donor {
	q := fold(strings.TrimSpace(query))
	out := make([]Donor, 0, len(donors))
	for _, d := range donors {
		if q == "" || strings.Contains(foldName(d), q) {
			out = append(out, d)
		}
	}
	return out
}

// TopDonors returns the n largest donations, first-seen winning ties.
func TopDonors(donors []Donor, n int) []Donor {
	sorted := SortDonors(donors, SortAmount)
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Placement is a ranked donor in podium display order.
type Placement struct {
	Rank  int
	Donor Donor
}

// PodiumOrder arranges ranked donors as [2nd, 1st, 3rd] so the winner sits
// in the middle. Missing ranks are omitted.
func PodiumOrder(top []Donor) []Placement {
	out := make([]Placement, 0, PodiumSize)
	for _, rank := range []int{2, 1, 3} {
		if rank <= len(top) {
			out = append(out, Placement{Rank: rank, Donor: top[rank-1]})
		}
	}
	return out
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
