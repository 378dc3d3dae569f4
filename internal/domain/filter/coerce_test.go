package filter

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{"12.5", 12.5, true},
		{"  7 ", 7, true},
		{"", 0, true},
		{"1e3", 1000, true},
		{"0b101", 5, true},
		{"0o17", 15, true},
		{"-Infinity", math.Inf(-1), true},
		{"inf", 0, false},
		{"NaN", 0, false},
		{"12abc", 0, false},
		{json.Number("3.25"), 3.25, true},
		{false, 0, true},
		{int64(9), 9, true},
		{math.NaN(), 0, false},
		{nil, 0, false},
		{[]any{1}, 0, false},
	}

	for _, tt := range tests {
		got, ok := toNumber(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %#v", tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "input %#v", tt.in)
		}
	}
}

func TestToTime(t *testing.T) {
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in           any
		want         time.Time
		wantDateOnly bool
		wantOK       bool
	}{
		{"2024-05-06", day, true, true},
		{"06-05-2024", day, true, true},
		{"06/05/2024", day, true, true},
		{"2024-05-06 13:30:00", day.Add(13*time.Hour + 30*time.Minute), false, true},
		{"2024-05-06T13:30:00", day.Add(13*time.Hour + 30*time.Minute), false, true},
		{"1714953600000", day, false, true},
		{"20240506", time.Time{}, false, false},
		{"", time.Time{}, false, false},
		{time.Time{}, time.Time{}, false, false},
		{true, time.Time{}, false, false},
	}

	for _, tt := range tests {
		got, dateOnly, ok := toTime(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %#v", tt.in)
		if tt.wantOK {
			assert.True(t, tt.want.Equal(got), "input %#v: got %s", tt.in, got)
			assert.Equal(t, tt.wantDateOnly, dateOnly, "input %#v", tt.in)
		}
	}
}

func TestToValues(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, toValues(" a, ,b "))
	assert.Equal(t, []string{"a, b"}, toValues([]any{"a, b"}))
	assert.Equal(t, []string{"1", "true"}, toValues([]any{1, true, nil}))
	assert.Nil(t, toValues(nil))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, isEmpty(nil))
	assert.True(t, isEmpty("  "))
	assert.True(t, isEmpty([]any{}))
	assert.True(t, isEmpty(map[string]any{"from": "", "to": ""}))
	assert.True(t, isEmpty(map[string]any{"property": "Color", "values": []any{}}))
	assert.True(t, isEmpty(PropertyValue{Property: "Color"}))
	assert.False(t, isEmpty(0))
	assert.False(t, isEmpty(false))
	assert.False(t, isEmpty(map[string]any{"from": "2024-01-01"}))
}
