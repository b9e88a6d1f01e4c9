package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockBadge(t *testing.T) {
	testCases := []struct {
		qty  int
		want Badge
	}{
		{qty: -3, want: BadgeDanger},
		{qty: 0, want: BadgeDanger},
		{qty: 1, want: BadgeWarning},
		{qty: 5, want: BadgeWarning},
		{qty: 6, want: BadgeSuccess},
		{qty: 500, want: BadgeSuccess},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, StockBadge(tc.qty), "qty=%d", tc.qty)
	}
}

func TestPage_Clamp(t *testing.T) {
	testCases := []struct {
		name string
		in   Page
		want Page
	}{
		{name: "defaults", in: Page{}, want: Page{Offset: 0, Limit: DefaultLimit}},
		{name: "negative offset", in: Page{Offset: -4, Limit: 20}, want: Page{Offset: 0, Limit: 20}},
		{name: "negative limit", in: Page{Limit: -1}, want: Page{Limit: 1}},
		{name: "limit above max", in: Page{Offset: 30, Limit: 1000}, want: Page{Offset: 30, Limit: MaxLimit}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Clamp())
		})
	}
}

func TestLikeTerm(t *testing.T) {
	assert.Equal(t, "", likeTerm("   "))
	assert.Equal(t, "%pilot%", likeTerm(" Pilot "))
	assert.Equal(t, `%50\%\_off%`, likeTerm("50%_OFF"))
}
