// Package prices maintains a dated index of commodity prices with forward-fill
// lookups (most recent price on or before a given date).
//
// Every price is stored in both directions: adding X in USD also creates the
// inferred USD in X series. Same-currency lookups always return a rate of 1.
package prices

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beanreport/data"
)

// Pair is a (base, quote) currency pair: one unit of Base costs Rate Quote.
type Pair struct {
	Base  string
	Quote string
}

func (p Pair) String() string { return p.Base + "/" + p.Quote }

// Point is a dated rate.
type Point struct {
	Date time.Time
	Rate decimal.Decimal
}

type series struct {
	points   []Point
	inferred bool
}

// Map holds price series per currency pair.
type Map struct {
	series map[Pair]*series
	// quotes maps a base currency to every currency it has a series against.
	quotes map[string][]string
}

// New creates an empty price map.
func New() *Map {
	return &Map{
		series: make(map[Pair]*series),
		quotes: make(map[string][]string),
	}
}

// PriceError reports a price directive that could not be added to the map.
type PriceError struct {
	Meta    data.Meta
	Message string
	Entry   data.Entry
}

func (e *PriceError) Error() string {
	if e.Meta.Filename != "" {
		return fmt.Sprintf("%s:%d: %s", e.Meta.Filename, e.Meta.Lineno, e.Message)
	}
	return e.Message
}

// Build collects all Price entries into a map. Prices the map rejects are
// left out and reported.
func Build(entries []data.Entry) (*Map, []error) {
	m := New()
	var errs []error
	for _, p := range data.FilterKind[*data.Price](entries) {
		if err := m.Add(p.Date, p.Currency, p.Amount.Currency, p.Amount.Number); err != nil {
			errs = append(errs, &PriceError{Meta: p.EntryMeta(), Message: err.Error(), Entry: p})
		}
	}
	m.sort()
	return m, errs
}

// Add records that one unit of base costs rate quote on date, and the inverse.
// Zero rates are rejected with an error. Call order does not matter; series
// are kept sorted by date with the latest addition winning on the same day.
func (m *Map) Add(date time.Time, base, quote string, rate decimal.Decimal) error {
	if rate.IsZero() {
		return fmt.Errorf("price rate must be non-zero: %s %s %s on %s", base, quote, rate, date.Format(data.DateLayout))
	}
	m.add(Pair{base, quote}, Point{date, rate}, false)
	m.add(Pair{quote, base}, Point{date, decimal.NewFromInt(1).Div(rate)}, true)
	return nil
}

func (m *Map) add(pair Pair, point Point, inferred bool) {
	s, ok := m.series[pair]
	if !ok {
		s = &series{inferred: inferred}
		m.series[pair] = s
		m.quotes[pair.Base] = append(m.quotes[pair.Base], pair.Quote)
	}
	if !inferred {
		s.inferred = false
	}
	n := len(s.points)
	if n > 0 && !s.points[n-1].Date.After(point.Date) {
		if s.points[n-1].Date.Equal(point.Date) {
			s.points[n-1] = point
			return
		}
		s.points = append(s.points, point)
		return
	}
	i, found := slices.BinarySearchFunc(s.points, point.Date, func(p Point, d time.Time) int { return p.Date.Compare(d) })
	if found {
		s.points[i] = point
		return
	}
	s.points = slices.Insert(s.points, i, point)
}

func (m *Map) sort() {
	for _, quotes := range m.quotes {
		slices.Sort(quotes)
	}
}

// Lookup returns the most recent rate for base in quote on or before date.
// A zero date returns the latest rate.
func (m *Map) Lookup(base, quote string, date time.Time) (Point, bool) {
	if base == quote {
		return Point{Date: date, Rate: decimal.NewFromInt(1)}, true
	}
	s, ok := m.series[Pair{base, quote}]
	if !ok || len(s.points) == 0 {
		return Point{}, false
	}
	if date.IsZero() {
		return s.points[len(s.points)-1], true
	}
	i, found := slices.BinarySearchFunc(s.points, date, func(p Point, d time.Time) int { return p.Date.Compare(d) })
	if found {
		return s.points[i], true
	}
	if i == 0 {
		return Point{}, false
	}
	return s.points[i-1], true
}

// Rate returns the conversion rate from one currency to another on date,
// following a chain of pairs when no direct series exists.
func (m *Map) Rate(from, to string, date time.Time) (decimal.Decimal, bool) {
	if p, ok := m.Lookup(from, to, date); ok {
		return p.Rate, true
	}
	path, ok := m.findPath(from, to, date)
	if !ok {
		return decimal.Zero, false
	}
	rate := decimal.NewFromInt(1)
	for _, step := range path {
		rate = rate.Mul(step)
	}
	return rate, true
}

// findPath performs a breadth-first search over pairs that have a price on or
// before date and returns the rates along the shortest chain.
func (m *Map) findPath(from, to string, date time.Time) ([]decimal.Decimal, bool) {
	type queueItem struct {
		currency string
		rates    []decimal.Decimal
	}
	queue := []queueItem{{currency: from}}
	visited := map[string]bool{from: true}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for _, next := range m.quotes[item.currency] {
			if visited[next] {
				continue
			}
			p, ok := m.Lookup(item.currency, next, date)
			if !ok {
				continue
			}
			rates := append(slices.Clone(item.rates), p.Rate)
			if next == to {
				return rates, true
			}
			visited[next] = true
			queue = append(queue, queueItem{currency: next, rates: rates})
		}
	}
	return nil, false
}

// Convert converts an amount into target on date. ok is false when no
// conversion path exists.
func (m *Map) Convert(amount data.Amount, target string, date time.Time) (data.Amount, bool) {
	rate, ok := m.Rate(amount.Currency, target, date)
	if !ok {
		return data.Amount{}, false
	}
	return data.Amount{Number: amount.Number.Mul(rate), Currency: target}, true
}

// ForwardPairs returns the pairs that have at least one recorded (not
// inferred) price, sorted.
func (m *Map) ForwardPairs() []Pair {
	var pairs []Pair
	for pair, s := range m.series {
		if !s.inferred {
			pairs = append(pairs, pair)
		}
	}
	slices.SortFunc(pairs, comparePairs)
	return pairs
}

// Pairs returns every pair, recorded or inferred, sorted.
func (m *Map) Pairs() []Pair {
	pairs := maps.Keys(m.series)
	slices.SortFunc(pairs, comparePairs)
	return pairs
}

// All returns every point of a pair in date order.
func (m *Map) All(base, quote string) []Point {
	s, ok := m.series[Pair{base, quote}]
	if !ok {
		return nil
	}
	return slices.Clone(s.points)
}

func comparePairs(a, b Pair) int {
	if a.Base != b.Base {
		if a.Base < b.Base {
			return -1
		}
		return 1
	}
	switch {
	case a.Quote < b.Quote:
		return -1
	case a.Quote > b.Quote:
		return 1
	}
	return 0
}
