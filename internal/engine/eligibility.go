package engine

import (
	"strings"

	"walletwise-api/internal/models"
)

const allCategories = "All Categories"

// isEligible applies the applicability rules in order, short-circuiting to
// ineligible. fallbackMode skips the category rule only; min spend, specific
// card, period, and EMI exclusivity always apply.
func isEligible(offer *models.Offer, method *models.PaymentMethod, cart models.CartContext, fallbackMode bool) bool {
	if !fallbackMode && !categoryEligible(offer, cart) {
		return false
	}
	if offer.MinSpend.IsPositive() && cart.CartTotal.LessThan(offer.MinSpend) {
		return false
	}
	if !specificCardMatches(offer, method) {
		return false
	}
	if !periodValid(offer) {
		return false
	}
	if emiOnly(offer) {
		return false
	}
	return true
}

// categoryEligible implements the category pass: an offer qualifies when it
// has no category affinity at all, when its affinity covers all categories,
// or when it case-insensitively contains the purchase category.
func categoryEligible(offer *models.Offer, cart models.CartContext) bool {
	if len(offer.CategoryAffinity) == 0 {
		return true
	}
	for _, c := range offer.CategoryAffinity {
		if strings.EqualFold(c, allCategories) {
			return true
		}
		if cart.Category != "" && strings.EqualFold(c, cart.Category) {
			return true
		}
	}
	return false
}

// specificCardMatches checks card-specific offers against the method name.
// Bank feeds abbreviate "Credit Card" to "CC", so both spellings match.
func specificCardMatches(offer *models.Offer, method *models.PaymentMethod) bool {
	if offer.SpecificCardType == "" {
		return true
	}
	if method.Name == offer.SpecificCardType {
		return true
	}
	return method.Name == strings.Replace(offer.SpecificCardType, " CC", " Credit Card", 1)
}

// periodValid treats a transaction date as inside the offer period unless the
// period text is explicitly invalid. Bank feeds carry free-text periods
// ("June 2025", "Ongoing") that are not worth a calendar parser; the catalog
// marks dead offers as expired instead.
func periodValid(offer *models.Offer) bool {
	return !strings.Contains(strings.ToLower(offer.Period), "expired")
}

// emiOnly reports whether the offer applies only to EMI transactions: its
// conditions name EMI and it defines no non-EMI cap. Such offers contribute
// nothing to direct savings, and MaxDiscountEMI must never be used as a cap
// for non-EMI amounts.
func emiOnly(offer *models.Offer) bool {
	if !containsFold(offer.ApplicableOn, "EMI") {
		return false
	}
	return offer.MaxDiscountCredit.IsZero() && offer.MaxDiscountDebit.IsZero()
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
