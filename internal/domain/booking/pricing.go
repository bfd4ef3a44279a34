package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/lodgical/service-reservation/internal/domain/calendar"
)

// PriceQuote is the breakdown returned by the pricing collaborator. Amounts
// are in minor units (cents).
type PriceQuote struct {
	Base     int64  `json:"base"`
	Fees     int64  `json:"fees"`
	Taxes    int64  `json:"taxes"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

// PricingOracle is the external pricing collaborator. It is assumed
// synchronous and side-effect-free; failures propagate as PricingUnavailable.
type PricingOracle interface {
	// Quote returns the price breakdown for booking the resource over the
	// interval with the given party size.
	Quote(ctx context.Context, resourceID uuid.UUID, interval calendar.Interval, partySize int) (PriceQuote, error)
}

// StandardPricingOracle is the default in-process pricing implementation used
// when no remote oracle is wired.
type StandardPricingOracle struct {
	nightlyRateCents int64
	feePercent       int64
	taxPercent       int64
	currency         string
}

// NewStandardPricingOracle creates a StandardPricingOracle with the given
// nightly rate and percentage knobs.
func NewStandardPricingOracle(nightlyRateCents, feePercent, taxPercent int64, currency string) *StandardPricingOracle {
	return &StandardPricingOracle{
		nightlyRateCents: nightlyRateCents,
		feePercent:       feePercent,
		taxPercent:       taxPercent,
		currency:         currency,
	}
}

// Quote computes a price breakdown.
//
// Pricing formula:
//   - Base: nightly rate x nights, plus 10% of the rate per guest beyond two
//   - Fees: feePercent of base (platform service fee)
//   - Taxes: taxPercent of base
func (o *StandardPricingOracle) Quote(_ context.Context, _ uuid.UUID, interval calendar.Interval, partySize int) (PriceQuote, error) {
	nights := int64(interval.Nights())
	base := o.nightlyRateCents * nights
	if partySize > 2 {
		base += o.nightlyRateCents * nights * int64(partySize-2) / 10
	}
	fees := base * o.feePercent / 100
	taxes := base * o.taxPercent / 100

	return PriceQuote{
		Base:     base,
		Fees:     fees,
		Taxes:    taxes,
		Total:    base + fees + taxes,
		Currency: o.currency,
	}, nil
}
