package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func TestItemValidate(t *testing.T) {
	valid := func() *Item {
		return &Item{
			Name:               "TV",
			InitialValue:       1000,
			PurchaseDate:       Date(2025, time.January, 1),
			YearlyDepreciation: 0.2,
		}
	}

	tests := []struct {
		name    string
		mutate  func(i *Item)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Item) {}},
		{name: "zero initial value", mutate: func(i *Item) { i.InitialValue = 0 }},
		{name: "missing name", mutate: func(i *Item) { i.Name = "" }, wantErr: true},
		{name: "negative initial value", mutate: func(i *Item) { i.InitialValue = -1 }, wantErr: true},
		{name: "negative depreciation", mutate: func(i *Item) { i.YearlyDepreciation = -0.1 }, wantErr: true},
		{name: "full depreciation", mutate: func(i *Item) { i.YearlyDepreciation = 1 }, wantErr: true},
		{name: "negative minimum", mutate: func(i *Item) { i.MinimumValue = float(-5) }, wantErr: true},
		{name: "pct above one", mutate: func(i *Item) { i.MinimumValuePct = float(1.5) }, wantErr: true},
		{name: "pct of one", mutate: func(i *Item) { i.MinimumValuePct = float(1) }},
		{name: "missing purchase date", mutate: func(i *Item) { i.PurchaseDate = time.Time{} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid()
			tt.mutate(item)
			err := item.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidItem))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestItemUsers(t *testing.T) {
	item := &Item{Users: []string{"a", "b"}}

	item.AddUser("b")
	assert.Equal(t, []string{"a", "b"}, item.Users)

	item.AddUser("c")
	assert.True(t, item.HasUser("c"))

	item.RemoveUser("a")
	assert.Equal(t, []string{"b", "c"}, item.Users)
	assert.False(t, item.HasUser("a"))
}

func TestFlatRemoveMember(t *testing.T) {
	flat := &Flat{Members: []string{"a", "b", "c"}}
	flat.RemoveMember("b")
	assert.Equal(t, []string{"a", "c"}, flat.Members)
	assert.False(t, flat.HasMember("b"))
}

func TestDaysBetween(t *testing.T) {
	start := Date(2025, time.January, 1)

	assert.Equal(t, 365, DaysBetween(start, Date(2026, time.January, 1)))
	assert.Equal(t, 0, DaysBetween(start, start.Add(23*time.Hour)))
	assert.Equal(t, -1, DaysBetween(start, Date(2024, time.December, 31)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-01")
	require.NoError(t, err)
	assert.Equal(t, Date(2026, time.January, 1), d)
	assert.Equal(t, "2026-01-01", FormatDate(d))

	_, err = ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("01/01/2026")
	assert.Error(t, err)
}
