package reports

import (
	"sort"
	"strings"
	"time"

	"assetdesk/internal/domain/filter"
)

// Value classes in sort order. Values that do not parse as the column type
// and missing values sort last in both directions, in that order.
const (
	rankTyped = iota
	rankUnparsed
	rankMissing
)

// sortRows sorts rows in place by column, keeping the input order of equal rows.
func sortRows(rows []filter.Row, col Column, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][col.Key], rows[j][col.Key]
		ra, rb := rank(col.Type, a), rank(col.Type, b)
		if ra != rb {
			return ra < rb
		}
		if ra == rankMissing {
			return false
		}

		c := compareValues(col.Type, ra, a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func missing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func rank(t ColumnType, v any) int {
	if missing(v) {
		return rankMissing
	}
	ok := true
	switch t {
	case ColumnNumber, ColumnMoney:
		_, ok = filter.Number(v)
	case ColumnDate:
		_, ok = filter.ParseTime(v)
	case ColumnBoolean:
		_, ok = v.(bool)
	}
	if !ok {
		return rankUnparsed
	}
	return rankTyped
}

// compareValues compares two values of the same rank. Unparsed values
// compare as case-insensitive text.
func compareValues(t ColumnType, r int, a, b any) int {
	if r == rankTyped {
		switch t {
		case ColumnNumber, ColumnMoney:
			x, _ := filter.Number(a)
			y, _ := filter.Number(b)
			return compareFloat(x, y)
		case ColumnDate:
			x, _ := filter.ParseTime(a)
			y, _ := filter.ParseTime(b)
			return compareTime(x, y)
		case ColumnBoolean:
			x, y := a.(bool), b.(bool)
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(strings.ToLower(filter.Text(a)), strings.ToLower(filter.Text(b)))
}

func compareFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compareTime(x, y time.Time) int {
	switch {
	case x.Before(y):
		return -1
	case x.After(y):
		return 1
	}
	return 0
}
