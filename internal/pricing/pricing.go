// Package pricing holds the checkout pricing calculator and the loyalty
// points rules. Everything here is pure; persistence and lookups live in
// the store and service layers.
package pricing

import "github.com/shopspring/decimal"

// Account holders get a flat 10% off the subtotal before any other
// reduction is applied.
var accountDiscountRate = decimal.New(10, -2)

var (
	pointsTierHigh = decimal.NewFromInt(76)
	pointsTierMid  = decimal.NewFromInt(41)
	pointsTierLow  = decimal.NewFromInt(5)

	oneHundred = decimal.NewFromInt(100)
)

// PointsEarned maps an order's final charged total to a points award.
// It is evaluated once at order creation and the result is stored on the
// order; it is never recomputed afterwards.
func PointsEarned(total decimal.Decimal) int {
	switch {
	case total.GreaterThanOrEqual(pointsTierHigh):
		return 50
	case total.GreaterThanOrEqual(pointsTierMid):
		return 20
	case total.GreaterThanOrEqual(pointsTierLow):
		return 10
	default:
		return 0
	}
}

// QuoteInput carries everything the calculator needs. CreatorPercent is
// zero when no code is applied; StoreCreditAvailable is the profile balance
// at quote time (zero for guests).
type QuoteInput struct {
	Subtotal             decimal.Decimal
	IsAccountHolder      bool
	CreatorPercent       decimal.Decimal
	UseStoreCredit       bool
	StoreCreditAvailable decimal.Decimal
}

// Quote is the priced breakdown of a cart.
type Quote struct {
	Subtotal        decimal.Decimal
	AccountDiscount decimal.Decimal
	CreatorDiscount decimal.Decimal
	StoreCreditUsed decimal.Decimal
	Total           decimal.Decimal
	PointsEarned    int
}

// Discount is the combined account plus creator reduction, which is what
// the order's discount column stores.
func (q Quote) Discount() decimal.Decimal {
	return q.AccountDiscount.Add(q.CreatorDiscount)
}

// Calculate prices a cart. The sequence is fixed and order-dependent: the
// creator percentage applies to the subtotal already reduced by the account
// discount, and store credit is clamped to whatever remains after both, so
// the total can never go negative.
func Calculate(in QuoteInput) Quote {
	q := Quote{
		Subtotal:        in.Subtotal,
		AccountDiscount: decimal.Zero,
		CreatorDiscount: decimal.Zero,
		StoreCreditUsed: decimal.Zero,
	}

	if in.IsAccountHolder {
		q.AccountDiscount = in.Subtotal.Mul(accountDiscountRate)
	}

	base := in.Subtotal.Sub(q.AccountDiscount)
	if in.CreatorPercent.IsPositive() {
		q.CreatorDiscount = base.Mul(in.CreatorPercent).Div(oneHundred)
	}

	remaining := base.Sub(q.CreatorDiscount)
	if in.UseStoreCredit && in.StoreCreditAvailable.IsPositive() && remaining.IsPositive() {
		q.StoreCreditUsed = decimal.Min(in.StoreCreditAvailable, remaining)
	}

	q.Total = remaining.Sub(q.StoreCreditUsed)
	if q.Total.IsNegative() {
		q.Total = decimal.Zero
	}

	// Guests have no profile to credit, so they earn nothing regardless
	// of the tier the total falls into.
	if in.IsAccountHolder {
		q.PointsEarned = PointsEarned(q.Total)
	}

	return q
}

// RedemptionTier is an atomic points-cost / credit-value pair.
type RedemptionTier struct {
	Points int             `json:"points"`
	Credit decimal.Decimal `json:"credit"`
}

var redemptionTiers = []RedemptionTier{
	{Points: 100, Credit: decimal.NewFromInt(5)},
	{Points: 150, Credit: decimal.NewFromInt(10)},
	{Points: 200, Credit: decimal.NewFromInt(20)},
	{Points: 250, Credit: decimal.NewFromInt(25)},
}

// Tiers returns the fixed redemption table.
func Tiers() []RedemptionTier {
	out := make([]RedemptionTier, len(redemptionTiers))
	copy(out, redemptionTiers)
	return out
}

// TierByPoints looks up the tier with the exact points cost.
func TierByPoints(points int) (RedemptionTier, bool) {
	for _, t := range redemptionTiers {
		if t.Points == points {
			return t, true
		}
	}
	return RedemptionTier{}, false
}
