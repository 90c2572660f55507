package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPointsEarnedTiers(t *testing.T) {
	cases := []struct {
		total  string
		points int
	}{
		{"0", 0},
		{"4.99", 0},
		{"5", 10},
		{"40.99", 10},
		{"41", 20},
		{"75.99", 20},
		{"76", 50},
		{"500", 50},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.points, PointsEarned(d(tc.total)), "total=%s", tc.total)
	}
}

func TestPointsEarnedMonotonic(t *testing.T) {
	prev := 0
	for cents := int64(0); cents <= 10000; cents += 7 {
		p := PointsEarned(decimal.New(cents, -2))
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestCalculateDiscountOrderMatters(t *testing.T) {
	// Creator percent applies to the account-discounted base: 10% of
	// (100 - 10) is 9, not 10.
	q := Calculate(QuoteInput{
		Subtotal:        d("100"),
		IsAccountHolder: true,
		CreatorPercent:  d("10"),
	})

	assert.True(t, q.AccountDiscount.Equal(d("10")), "account discount = %s", q.AccountDiscount)
	assert.True(t, q.CreatorDiscount.Equal(d("9")), "creator discount = %s", q.CreatorDiscount)
	assert.True(t, q.Total.Equal(d("81")), "total = %s", q.Total)
	assert.Equal(t, 50, q.PointsEarned)
}

func TestCalculateGuestEarnsNoPoints(t *testing.T) {
	q := Calculate(QuoteInput{Subtotal: d("200")})

	assert.True(t, q.AccountDiscount.IsZero())
	assert.True(t, q.Total.Equal(d("200")))
	assert.Equal(t, 0, q.PointsEarned)
}

func TestCalculateStoreCreditClamped(t *testing.T) {
	// Credit balance exceeds what is owed; only the remainder is used.
	q := Calculate(QuoteInput{
		Subtotal:             d("50"),
		IsAccountHolder:      true,
		UseStoreCredit:       true,
		StoreCreditAvailable: d("100"),
	})

	assert.True(t, q.StoreCreditUsed.Equal(d("45")), "used = %s", q.StoreCreditUsed)
	assert.True(t, q.Total.IsZero())
}

func TestCalculateStoreCreditPartial(t *testing.T) {
	q := Calculate(QuoteInput{
		Subtotal:             d("100"),
		UseStoreCredit:       true,
		StoreCreditAvailable: d("12.50"),
	})

	assert.True(t, q.StoreCreditUsed.Equal(d("12.50")))
	assert.True(t, q.Total.Equal(d("87.50")))
}

func TestCalculateStoreCreditRequestedButEmpty(t *testing.T) {
	q := Calculate(QuoteInput{
		Subtotal:             d("30"),
		UseStoreCredit:       true,
		StoreCreditAvailable: decimal.Zero,
	})

	assert.True(t, q.StoreCreditUsed.IsZero())
	assert.True(t, q.Total.Equal(d("30")))
}

func TestCalculateFullCodeAndCreditReachZero(t *testing.T) {
	// A 100% creator code already zeroes the remainder, so no credit is
	// consumed and the order is still valid at exactly zero due.
	q := Calculate(QuoteInput{
		Subtotal:             d("80"),
		IsAccountHolder:      true,
		CreatorPercent:       d("100"),
		UseStoreCredit:       true,
		StoreCreditAvailable: d("25"),
	})

	assert.True(t, q.StoreCreditUsed.IsZero())
	assert.True(t, q.Total.IsZero())
	assert.Equal(t, 0, q.PointsEarned)
}

func TestCalculateTotalNeverNegative(t *testing.T) {
	subtotals := []string{"0", "0.01", "4.99", "5", "41", "76", "99.99", "1234.56"}
	percents := []string{"0", "5", "10", "50", "100"}
	credits := []string{"0", "1", "40", "10000"}

	for _, s := range subtotals {
		for _, p := range percents {
			for _, c := range credits {
				for _, account := range []bool{false, true} {
					q := Calculate(QuoteInput{
						Subtotal:             d(s),
						IsAccountHolder:      account,
						CreatorPercent:       d(p),
						UseStoreCredit:       true,
						StoreCreditAvailable: d(c),
					})

					assert.False(t, q.Total.IsNegative(),
						"subtotal=%s percent=%s credit=%s account=%v total=%s",
						s, p, c, account, q.Total)
					assert.False(t, q.StoreCreditUsed.GreaterThan(d(c)),
						"credit used exceeds balance")

					owedBeforeCredit := q.Subtotal.Sub(q.AccountDiscount).Sub(q.CreatorDiscount)
					assert.False(t, q.StoreCreditUsed.GreaterThan(owedBeforeCredit),
						"credit used exceeds post-discount remainder")
				}
			}
		}
	}
}

func TestQuoteDiscount(t *testing.T) {
	q := Calculate(QuoteInput{
		Subtotal:        d("100"),
		IsAccountHolder: true,
		CreatorPercent:  d("20"),
	})

	assert.True(t, q.Discount().Equal(d("28")), "discount = %s", q.Discount())
}

func TestTierByPoints(t *testing.T) {
	tier, ok := TierByPoints(150)
	require.True(t, ok)
	assert.True(t, tier.Credit.Equal(d("10")))

	_, ok = TierByPoints(120)
	assert.False(t, ok)
}

func TestTiersTable(t *testing.T) {
	tiers := Tiers()
	require.Len(t, tiers, 4)

	expected := map[int]string{100: "5", 150: "10", 200: "20", 250: "25"}
	for _, tier := range tiers {
		credit, ok := expected[tier.Points]
		require.True(t, ok, "unexpected tier %d", tier.Points)
		assert.True(t, tier.Credit.Equal(d(credit)))
	}
}
