// Package registry associates catalog offers with a user's saved payment
// methods, by bank, card-type compatibility, or exact card name. It operates
// on a copy of the method snapshot so the stored profile is never mutated.
package registry

import (
	"strings"

	"walletwise-api/internal/catalog"
	"walletwise-api/internal/models"
)

// AttachOffers returns a copy of the methods with matching catalog offers
// appended after each method's own offers. Input order is preserved; it is
// semantically significant downstream.
func AttachOffers(methods []models.PaymentMethod, cat *catalog.Catalog) []models.PaymentMethod {
	out := make([]models.PaymentMethod, len(methods))
	for i, m := range methods {
		out[i] = m
		out[i].Offers = append([]models.Offer(nil), m.Offers...)
		if m.BankName == "" {
			continue
		}
		cardTypes := cat.CardTypes(m.BankName)
		for _, offer := range cat.Offers() {
			if offer.BankSource != m.BankName {
				continue
			}
			if matches(&m, &offer, cardTypes) {
				out[i].Offers = append(out[i].Offers, offer)
			}
		}
	}
	return out
}

// matches decides whether one catalog offer belongs on one method. An offer
// tied to a specific card requires a name match (bank feeds abbreviate
// "Credit Card" as "CC"); otherwise the bank entry's card types must be
// compatible with the method type.
func matches(m *models.PaymentMethod, offer *models.Offer, cardTypes []string) bool {
	if offer.SpecificCardType != "" {
		if m.Name == offer.SpecificCardType {
			return true
		}
		return m.Name == strings.Replace(offer.SpecificCardType, " CC", " Credit Card", 1)
	}
	switch m.Type {
	case models.MethodCreditCard:
		return anyContains(cardTypes, "credit card")
	case models.MethodDebitCard:
		return anyContains(cardTypes, "debit card")
	default:
		// Bank card offers never attach to UPI, wallets, or gift cards.
		return false
	}
}

func anyContains(values []string, target string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), target) {
			return true
		}
	}
	return false
}
