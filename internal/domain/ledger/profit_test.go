package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineUnitPrice(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		amount    string
		quantity  string
		want      string
	}{
		{"source price wins when present", "200", "1500", "10", "200"},
		{"backfilled from amount over quantity", "0", "1500", "10", "150"},
		{"backfill rounds at four decimals", "0", "100", "3", "33.3333"},
		{"zero quantity backfill yields zero", "0", "100", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineUnitPrice(d(tt.unitPrice), d(tt.amount), d(tt.quantity))
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestLineProfit(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		unitCost  string
		quantity  string
		want      string
	}{
		{"positive margin", "200", "150", "10", "500"},
		{"loss-making line", "100", "150", "10", "-500"},
		{"sales return inverts the sign", "200", "150", "-5", "-250"},
		{"fractional margin rounds at four decimals", "10.00005", "10", "1", "0.0001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineProfit(d(tt.unitPrice), d(tt.unitCost), d(tt.quantity))
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestIncentive(t *testing.T) {
	t.Run("one percent of purchases for eligible categories", func(t *testing.T) {
		got := Incentive(d("123456"), true)
		assert.True(t, d("1235").Equal(got), "got %s", got)
	})
	t.Run("settles to whole units half away from zero", func(t *testing.T) {
		got := Incentive(d("150"), true)
		assert.True(t, d("2").Equal(got), "got %s", got)
	})
	t.Run("zero for ineligible suppliers", func(t *testing.T) {
		got := Incentive(d("123456"), false)
		assert.True(t, got.IsZero())
	})
}

func TestWalkingDiscount(t *testing.T) {
	tests := []struct {
		name  string
		sales string
		rate  string
		want  string
	}{
		{"plain percentage", "10000", "2", "200"},
		{"fractional rate settles to whole units", "10000", "2.5", "250"},
		{"half rounds away from zero", "50", "1", "1"},
		{"zero rate yields zero", "10000", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WalkingDiscount(d(tt.sales), d(tt.rate))
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestKeyProfit(t *testing.T) {
	got := KeyProfit(d("500"), d("10"), d("20"), d("30"), d("40"))
	assert.True(t, d("400").Equal(got), "got %s", got)
}
