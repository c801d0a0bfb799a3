package engine

import (
	"github.com/shopspring/decimal"

	"walletwise-api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// hasMonetaryValue reports whether an offer type carries direct monetary
// value in this engine. Miles, vouchers, and reward points may still surface
// as a benefit in the formatted reason, but they never move the ranking.
func hasMonetaryValue(offer *models.Offer) bool {
	switch offer.Type {
	case models.OfferCashback:
		return offer.ValueType == "" || offer.ValueType == models.ValuePercentage
	case models.OfferFlatDiscount:
		return offer.ValueType == "" || offer.ValueType == models.ValueAmount
	default:
		return false
	}
}

// computeValue returns the capped monetary value of an eligible offer for the
// given method and cart total. Callers must have run the eligibility rules
// first; this function only does arithmetic. Never negative.
func computeValue(offer *models.Offer, method *models.PaymentMethod, cart models.CartContext) decimal.Decimal {
	var result decimal.Decimal
	switch offer.Type {
	case models.OfferCashback:
		result = offer.Value.Div(hundred).Mul(cart.CartTotal)
		if cap, ok := capFor(offer, method.Type); ok {
			result = decimal.Min(result, cap)
		}
	case models.OfferFlatDiscount:
		result = offer.Value
	default:
		return decimal.Zero
	}
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}

// capFor selects the discount cap for a non-EMI transaction, in priority
// order: the credit-specific cap for credit cards, the debit-specific cap for
// debit cards, otherwise the general cap. A general cap that merely
// duplicates the EMI cap is ignored, since EMI caps must not bound direct
// savings.
func capFor(offer *models.Offer, methodType models.MethodType) (decimal.Decimal, bool) {
	if methodType == models.MethodCreditCard && !offer.MaxDiscountCredit.IsZero() {
		return offer.MaxDiscountCredit, true
	}
	if methodType == models.MethodDebitCard && !offer.MaxDiscountDebit.IsZero() {
		return offer.MaxDiscountDebit, true
	}
	if offer.MaxDiscount.IsZero() {
		return decimal.Zero, false
	}
	if !offer.MaxDiscountEMI.IsZero() && offer.MaxDiscount.Equal(offer.MaxDiscountEMI) && containsFold(offer.ApplicableOn, "EMI") {
		return decimal.Zero, false
	}
	return offer.MaxDiscount, true
}
