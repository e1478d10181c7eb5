package aggregate

import (
	"sort"
	"strconv"

	"flightpulse/pkg/contracts/domain"
)

// Reducer identifies how cell values are combined.
type Reducer int

const (
	// Count reduces a cell to the number of rows that landed in it.
	Count Reducer = iota
	// Mean reduces a cell to the arithmetic mean of the row values.
	Mean
)

// Matrix is a dense pivot result. Cells is row-major with one row per
// RowKeys entry; cells no row contributed to hold zero.
type Matrix struct {
	RowKeys []string    `json:"rows"`
	ColKeys []string    `json:"columns"`
	Cells   [][]float64 `json:"cells"`
}

// IsEmpty reports whether the matrix has no cells at all.
func (m Matrix) IsEmpty() bool {
	return len(m.RowKeys) == 0 || len(m.ColKeys) == 0
}

// KeyFunc extracts an axis label from a row. Returning ok=false excludes the
// row from the pivot, which is how rows missing the axis field drop out.
type KeyFunc func(domain.Flight) (key string, ok bool)

// ValueFunc extracts the value being aggregated from a row.
type ValueFunc func(domain.Flight) float64

// Pivot builds a two-dimensional aggregation of flights. Axis keys appear in
// first-occurrence order and are then canonicalized: weekday axes reorder to
// Monday through Sunday keeping only days present, numeric axes sort
// numerically, anything else sorts lexically. Cells without contributing
// rows are zero-filled. A nil valueFn is only valid with the Count reducer.
func Pivot(flights []domain.Flight, rowFn, colFn KeyFunc, valueFn ValueFunc, reducer Reducer) Matrix {
	type cell struct {
		sum   float64
		count int
	}

	cells := make(map[string]map[string]*cell)
	var rowOrder, colOrder []string
	rowSeen := make(map[string]struct{})
	colSeen := make(map[string]struct{})

	for _, f := range flights {
		rk, ok := rowFn(f)
		if !ok {
			continue
		}
		ck, ok := colFn(f)
		if !ok {
			continue
		}

		if _, seen := rowSeen[rk]; !seen {
			rowSeen[rk] = struct{}{}
			rowOrder = append(rowOrder, rk)
		}
		if _, seen := colSeen[ck]; !seen {
			colSeen[ck] = struct{}{}
			colOrder = append(colOrder, ck)
		}

		row := cells[rk]
		if row == nil {
			row = make(map[string]*cell)
			cells[rk] = row
		}
		c := row[ck]
		if c == nil {
			c = &cell{}
			row[ck] = c
		}
		c.count++
		if valueFn != nil {
			c.sum += valueFn(f)
		}
	}

	if len(rowOrder) == 0 || len(colOrder) == 0 {
		return Matrix{RowKeys: []string{}, ColKeys: []string{}, Cells: [][]float64{}}
	}

	rowKeys := canonicalAxis(rowOrder)
	colKeys := canonicalAxis(colOrder)

	out := make([][]float64, len(rowKeys))
	for i, rk := range rowKeys {
		out[i] = make([]float64, len(colKeys))
		for j, ck := range colKeys {
			c := cells[rk][ck]
			if c == nil {
				continue
			}
			switch reducer {
			case Mean:
				out[i][j] = c.sum / float64(c.count)
			default:
				out[i][j] = float64(c.count)
			}
		}
	}

	return Matrix{RowKeys: rowKeys, ColKeys: colKeys, Cells: out}
}

// weekdayOrder is the canonical Monday-first axis order.
var weekdayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// canonicalAxis normalizes an axis's key order. Weekday axes reindex on the
// Monday-first week keeping only days present; fully numeric axes sort
// numerically; everything else sorts lexically.
func canonicalAxis(keys []string) []string {
	if allWeekdays(keys) {
		present := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			present[k] = struct{}{}
		}
		out := make([]string, 0, len(keys))
		for _, day := range weekdayOrder {
			if _, ok := present[day]; ok {
				out = append(out, day)
			}
		}
		return out
	}

	out := make([]string, len(keys))
	copy(out, keys)

	if allNumeric(keys) {
		sort.Slice(out, func(i, j int) bool {
			a, _ := strconv.Atoi(out[i])
			b, _ := strconv.Atoi(out[j])
			return a < b
		})
		return out
	}

	sort.Strings(out)
	return out
}

func allWeekdays(keys []string) bool {
	days := make(map[string]struct{}, len(weekdayOrder))
	for _, d := range weekdayOrder {
		days[d] = struct{}{}
	}
	for _, k := range keys {
		if _, ok := days[k]; !ok {
			return false
		}
	}
	return len(keys) > 0
}

func allNumeric(keys []string) bool {
	for _, k := range keys {
		if _, err := strconv.Atoi(k); err != nil {
			return false
		}
	}
	return len(keys) > 0
}

// Entry is one key/value pair of an ordered aggregation result.
type Entry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// GroupReduce aggregates a single value per group key, in first-occurrence
// order. Rows whose key accessor reports absent are skipped.
func GroupReduce(flights []domain.Flight, keyFn KeyFunc, valueFn ValueFunc, reducer Reducer) []Entry {
	type group struct {
		sum   float64
		count int
	}

	groups := make(map[string]*group)
	var order []string

	for _, f := range flights {
		k, ok := keyFn(f)
		if !ok {
			continue
		}
		g := groups[k]
		if g == nil {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		g.count++
		if valueFn != nil {
			g.sum += valueFn(f)
		}
	}

	out := make([]Entry, 0, len(order))
	for _, k := range order {
		g := groups[k]
		v := float64(g.count)
		if reducer == Mean {
			v = g.sum / float64(g.count)
		}
		out = append(out, Entry{Key: k, Value: v})
	}
	return out
}

// TopN returns the n largest entries by value. Ties keep the earlier entry
// first, so results are stable for equal values.
func TopN(entries []Entry, n int) []Entry {
	return rank(entries, n, func(a, b Entry) bool { return a.Value > b.Value })
}

// BottomN returns the n smallest entries by value, ties resolved the same
// way as TopN.
func BottomN(entries []Entry, n int) []Entry {
	return rank(entries, n, func(a, b Entry) bool { return a.Value < b.Value })
}

func rank(entries []Entry, n int, less func(a, b Entry) bool) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// EntryMap converts ordered entries to a plain map for JSON payloads that
// do not need ordering.
func EntryMap(entries []Entry) map[string]float64 {
	m := make(map[string]float64, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}
