package engine

import (
	"fmt"

	"walletwise-api/internal/models"
)

const rupee = "₹"

// format renders the chosen method and offer into the result the API returns.
// Warnings are appended to the reason only; they never change the selection.
func (e *Engine) format(r *methodResult, cart models.CartContext) models.RecommendationResult {
	res := models.RecommendationResult{
		PaymentMethodID: r.method.ID,
		Name:            r.method.Name,
		Savings:         r.savings,
	}
	switch {
	case r.offer != nil:
		res.OfferType = string(r.offer.Type)
		res.OfferDisplay = displayOffer(r.offer, r.method.Type)
		res.Reason = savingsReason(r, res.OfferDisplay, cart)
	case r.benefit != nil:
		res.OfferType = string(r.benefit.Type)
		res.OfferDisplay = displayOffer(r.benefit, r.method.Type)
		res.Reason = fallbackReason(r)
	default:
		res.OfferType = "standard_payment"
		res.OfferDisplay = "Standard Payment"
		res.Reason = fallbackReason(r)
	}
	res.Reason = e.appendWarnings(res.Reason, r, cart)
	return res
}

// displayOffer builds the concise user-facing offer string, e.g.
// "10% Cashback up to ₹150" or "₹50 Off". Validity periods are never shown.
func displayOffer(offer *models.Offer, methodType models.MethodType) string {
	switch offer.Type {
	case models.OfferCashback:
		s := fmt.Sprintf("%s%% Cashback", offer.Value)
		if cap, ok := capFor(offer, methodType); ok {
			s += fmt.Sprintf(" up to %s%s", rupee, cap)
		}
		return s
	case models.OfferFlatDiscount:
		return fmt.Sprintf("%s%s Off", rupee, offer.Value)
	case models.OfferMiles:
		return fmt.Sprintf("%sx Miles", offer.Value)
	default:
		if offer.Description != "" {
			return offer.Description
		}
		return "Special Offer"
	}
}

func savingsReason(r *methodResult, display string, cart models.CartContext) string {
	if cart.Category != "" {
		return fmt.Sprintf("Offers the highest savings of %s%s for '%s' with its '%s' offer.",
			rupee, r.savings, cart.Category, display)
	}
	return fmt.Sprintf("Offers the highest savings of %s%s with its '%s' offer.", rupee, r.savings, display)
}

func fallbackReason(r *methodResult) string {
	var s string
	if r.method.Type == models.MethodUPI {
		s = "No offers yield direct savings for this purchase; UPI is a reasonable standard choice."
	} else {
		s = fmt.Sprintf("No offers yield direct savings for this purchase; %s is a reasonable choice with low credit utilization.", r.method.Name)
	}
	if r.benefit != nil {
		s += fmt.Sprintf(" A non-monetary benefit is available: '%s'.", displayOffer(r.benefit, r.method.Type))
	}
	return s
}

// appendWarnings adds the constraint notes the recommendation must carry:
// high credit utilization, or a wallet balance short of the cart total.
func (e *Engine) appendWarnings(reason string, r *methodResult, cart models.CartContext) string {
	if r.method.Type == models.MethodCreditCard && r.method.UsagePercentage.GreaterThan(e.cfg.UtilizationWarningPercent) {
		reason += fmt.Sprintf(" Note: credit utilization is high at %s%%.", r.method.UsagePercentage)
	}
	if (r.method.Type == models.MethodWallet || r.method.Type == models.MethodGiftCard) &&
		r.method.WalletBalance.LessThan(cart.CartTotal) {
		reason += fmt.Sprintf(" Note: wallet balance of %s%s is less than the cart total of %s%s.",
			rupee, r.method.WalletBalance, rupee, cart.CartTotal)
	}
	return reason
}
