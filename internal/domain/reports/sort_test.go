package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"assetdesk/internal/domain/filter"
)

func sortedKeys(rows []filter.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r["k"].(string)
	}
	return out
}

func TestSortRows(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		typ  ColumnType
		desc bool
		vals []any
		want []string
	}{
		{
			name: "numbers before unparsed before missing",
			typ:  ColumnNumber,
			vals: []any{"n/a", 10.0, nil, "2", "abc", 1.5},
			want: []string{"5", "3", "1", "4", "0", "2"},
		},
		{
			name: "descending keeps unparsed and missing last",
			typ:  ColumnMoney,
			desc: true,
			vals: []any{"n/a", 10.0, "", "2", "abc", 1.5},
			want: []string{"1", "3", "5", "0", "4", "2"},
		},
		{
			name: "dates",
			typ:  ColumnDate,
			vals: []any{day(3), "soon", "2024-01-02T00:00:00Z", nil, day(1)},
			want: []string{"4", "2", "0", "1", "3"},
		},
		{
			name: "booleans",
			typ:  ColumnBoolean,
			vals: []any{true, "maybe", false, true},
			want: []string{"2", "0", "3", "1"},
		},
		{
			name: "text is case insensitive and stable",
			typ:  ColumnText,
			vals: []any{"b", "A", "a", "C"},
			want: []string{"1", "2", "0", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]filter.Row, len(tt.vals))
			for i, v := range tt.vals {
				rows[i] = filter.Row{"k": string(rune('0' + i)), "v": v}
			}
			sortRows(rows, Column{Key: "v", Type: tt.typ}, tt.desc)
			assert.Equal(t, tt.want, sortedKeys(rows))
		})
	}
}

func TestCompareValuesIsTransitiveAcrossRanks(t *testing.T) {
	// Under a text fallback these form a cycle: 9 < 10 < "1x" < 9.
	vals := []any{10.0, "1x", 9.0}
	col := Column{Key: "v", Type: ColumnNumber}

	for _, perm := range [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {1, 2, 0}} {
		rows := make([]filter.Row, len(perm))
		for i, p := range perm {
			rows[i] = filter.Row{"v": vals[p]}
		}
		sortRows(rows, col, false)
		got := []any{rows[0]["v"], rows[1]["v"], rows[2]["v"]}
		assert.Equal(t, []any{9.0, 10.0, "1x"}, got)
	}
}
