package data

import (
	"golang.org/x/exp/slices"
)

// kindOrder places opens and balance assertions before other entries of the
// same day, and documents and closes after them.
var kindOrder = map[Kind]int{
	KindOpen:     -2,
	KindBalance:  -1,
	KindDocument: 1,
	KindClose:    2,
}

// Compare orders entries by date, kind and source line.
func Compare(a, b Entry) int {
	if c := a.EntryDate().Compare(b.EntryDate()); c != 0 {
		return c
	}
	if oa, ob := kindOrder[a.Kind()], kindOrder[b.Kind()]; oa != ob {
		return oa - ob
	}
	return a.EntryMeta().Lineno - b.EntryMeta().Lineno
}

// Sort sorts entries in place into ledger order. The sort is stable so entries
// from different files on the same line keep their load order.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, Compare)
}
