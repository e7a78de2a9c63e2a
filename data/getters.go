package data

import (
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Accounts returns the accounts an entry references, in order of appearance.
func Accounts(entry Entry) []string {
	switch e := entry.(type) {
	case *Transaction:
		accounts := make([]string, 0, len(e.Postings))
		for _, p := range e.Postings {
			if !slices.Contains(accounts, p.Account) {
				accounts = append(accounts, p.Account)
			}
		}
		return accounts
	case *Open:
		return []string{e.Account}
	case *Close:
		return []string{e.Account}
	case *Balance:
		return []string{e.Account}
	case *Document:
		return []string{e.Account}
	case *Note:
		return []string{e.Account}
	case *Pad:
		return []string{e.Account, e.SourceAccount}
	case *Custom:
		var accounts []string
		for _, v := range e.Values {
			if v.Type == CustomAccount {
				accounts = append(accounts, v.Account)
			}
		}
		return accounts
	}
	return nil
}

// Tags returns the tags of entries that carry them.
func Tags(entry Entry) []string {
	switch e := entry.(type) {
	case *Transaction:
		return e.Tags
	case *Document:
		return e.Tags
	}
	return nil
}

// Links returns the links of entries that carry them.
func Links(entry Entry) []string {
	switch e := entry.(type) {
	case *Transaction:
		return e.Links
	case *Document:
		return e.Links
	}
	return nil
}

// FilterKind returns the entries of the given kind, typed.
func FilterKind[T Entry](entries []Entry) []T {
	var out []T
	for _, entry := range entries {
		if e, ok := entry.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

// MinMaxDates returns the first and last date among entries of the given
// kinds (all kinds when none are given). ok is false when nothing matched.
func MinMaxDates(entries []Entry, kinds ...Kind) (first, last time.Time, ok bool) {
	for _, entry := range entries {
		if len(kinds) > 0 && !slices.Contains(kinds, entry.Kind()) {
			continue
		}
		d := entry.EntryDate()
		if !ok {
			first, last, ok = d, d, true
			continue
		}
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	return first, last, ok
}

// ActiveYears returns the distinct years of entries, most recent first.
func ActiveYears(entries []Entry) []int {
	seen := map[int]bool{}
	for _, entry := range entries {
		seen[entry.EntryDate().Year()] = true
	}
	years := maps.Keys(seen)
	slices.SortFunc(years, func(a, b int) int { return b - a })
	return years
}

// AllTags returns the sorted set of tags used by transactions.
func AllTags(entries []Entry) []string {
	seen := map[string]bool{}
	for _, txn := range FilterKind[*Transaction](entries) {
		for _, tag := range txn.Tags {
			seen[tag] = true
		}
	}
	return sortedKeys(seen)
}

// AllPayees returns the sorted set of non-empty transaction payees.
func AllPayees(entries []Entry) []string {
	seen := map[string]bool{}
	for _, txn := range FilterKind[*Transaction](entries) {
		if txn.Payee != "" {
			seen[txn.Payee] = true
		}
	}
	return sortedKeys(seen)
}

// AllAccounts returns the sorted set of accounts referenced by entries.
func AllAccounts(entries []Entry) []string {
	seen := map[string]bool{}
	for _, entry := range entries {
		for _, account := range Accounts(entry) {
			seen[account] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
