package bidrules

import (
	"testing"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestMinDecrement(t *testing.T) {
	tests := []struct {
		name     string
		lowest   int64
		expected int64
	}{
		{"low tier", 12000, 200},
		{"low tier boundary", 15000, 200},
		{"just above low tier", 15001, 1000},
		{"mid tier", 50000, 1000},
		{"mid tier boundary", 100000, 1000},
		{"just above mid tier", 100001, 2000},
		{"high tier", 500000, 2000},
		{"tiny lowest", 300, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinDecrement(dec(tt.lowest))
			check.True(t, got.Equal(dec(tt.expected)))
		})
	}
}

func TestCheckPrice_Decrement(t *testing.T) {
	tests := []struct {
		name     string
		proposed int64
		lowest   int64
		wantKind string // empty means admissible
	}{
		{"low tier insufficient", 11850, 12000, KindInsufficientDecrement},
		{"low tier exact decrement", 11800, 12000, ""},
		{"low tier deeper cut", 11000, 12000, ""},
		{"mid tier insufficient", 49500, 50000, KindInsufficientDecrement},
		{"mid tier exact decrement", 49000, 50000, ""},
		{"high tier insufficient", 498500, 500000, KindInsufficientDecrement},
		{"high tier exact decrement", 498000, 500000, ""},
		{"equal to lowest", 12000, 12000, KindInsufficientDecrement},
		{"above lowest", 13000, 12000, KindInsufficientDecrement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CheckPrice(dec(tt.proposed), Market{Lowest: decPtr(tt.lowest)})
			if tt.wantKind == "" {
				check.Nil(t, v)
				return
			}
			if check.NotNil(t, v) {
				check.Equal(t, tt.wantKind, v.Kind)
			}
		})
	}
}

func TestCheckPrice_DecrementContext(t *testing.T) {
	v := CheckPrice(dec(11850), Market{Lowest: decPtr(12000)})
	if v == nil {
		t.Fatal("expected a violation")
	}
	check.Equal(t, KindInsufficientDecrement, v.Kind)
	check.True(t, v.CurrentLowestBid.Equal(dec(12000)))
	check.True(t, v.RequiredBid.Equal(dec(11800)))
	check.True(t, v.MinDecrement.Equal(dec(200)))
}

func TestCheckPrice_NoCompetingBid(t *testing.T) {
	// With an empty market any positive price is admissible.
	check.Nil(t, CheckPrice(dec(50000), Market{}))
	check.Nil(t, CheckPrice(dec(1), Market{}))
}

func TestCheckPrice_BudgetFloor(t *testing.T) {
	v := CheckPrice(dec(9000), Market{MinBudget: decPtr(10000)})
	if v == nil {
		t.Fatal("expected a violation")
	}
	check.Equal(t, KindBelowMinBudget, v.Kind)
	check.True(t, v.MinBudget.Equal(dec(10000)))

	check.Nil(t, CheckPrice(dec(10000), Market{MinBudget: decPtr(10000)}))
}

func TestCheckPrice_DuplicatePrice(t *testing.T) {
	m := Market{
		Lowest: decPtr(50000),
		Prices: []decimal.Decimal{dec(50000), dec(48000)},
	}
	v := CheckPrice(dec(48000), m)
	if v == nil {
		t.Fatal("expected a violation")
	}
	check.Equal(t, KindDuplicatePrice, v.Kind)
	check.True(t, v.SuggestedPrice.Equal(dec(48001)))
}

func TestCheckPrice_Ordering(t *testing.T) {
	// A price violating both the decrement rule and the budget floor must
	// report the decrement violation, the first rule in evaluation order.
	m := Market{Lowest: decPtr(12000), MinBudget: decPtr(50000)}
	v := CheckPrice(dec(11900), m)
	if v == nil {
		t.Fatal("expected a violation")
	}
	check.Equal(t, KindInsufficientDecrement, v.Kind)

	// Below budget beats duplicate price.
	m = Market{MinBudget: decPtr(10000), Prices: []decimal.Decimal{dec(9000)}}
	v = CheckPrice(dec(9000), m)
	if v == nil {
		t.Fatal("expected a violation")
	}
	check.Equal(t, KindBelowMinBudget, v.Kind)
}

func TestCheckPrice_Idempotent(t *testing.T) {
	// The engine holds no state: the same invalid price yields the same
	// violation every time.
	m := Market{Lowest: decPtr(12000)}
	first := CheckPrice(dec(11850), m)
	second := CheckPrice(dec(11850), m)
	if first == nil || second == nil {
		t.Fatal("expected violations")
	}
	check.Equal(t, first.Kind, second.Kind)
	check.True(t, first.RequiredBid.Equal(*second.RequiredBid))
}

func TestCheckRevisable(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		updateCount int
		wantKind    string
	}{
		{"pending with no updates", "pending", 0, ""},
		{"pending with room left", "pending", 2, ""},
		{"update limit reached", "pending", 3, KindUpdateLimitExceeded},
		{"accepted bid", "accepted", 0, KindBidFinalized},
		{"rejected bid", "rejected", 1, KindBidFinalized},
		{"finalized beats update limit", "accepted", 3, KindBidFinalized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CheckRevisable(tt.status, tt.updateCount, 3)
			if tt.wantKind == "" {
				check.Nil(t, v)
				return
			}
			if check.NotNil(t, v) {
				check.Equal(t, tt.wantKind, v.Kind)
			}
		})
	}
}

func TestCheckRevisable_FinalizedReportsStatus(t *testing.T) {
	v := CheckRevisable("accepted", 0, 3)
	if v == nil {
		t.Fatal("expected a violation")
	}
	check.Equal(t, "accepted", v.Status)
}

func TestDuplicateBidder(t *testing.T) {
	v := DuplicateBidder("BuildRight Ltd")
	check.Equal(t, KindDuplicateBid, v.Kind)
}
