package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"walletwise-api/internal/models"
)

// Adapter normalizes one bank's raw record shape into a canonical Offer.
type Adapter interface {
	// Handles reports whether this adapter owns the given bank's records.
	Handles(bank string) bool
	// Normalize converts one raw record. The returned offer must have its
	// type, value, and synthesized description populated; unrecognized
	// records default to type "other" with zero value.
	Normalize(entry RawBankEntry, rec RawOffer, id string) (models.Offer, error)
}

var (
	cashbackPercentRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)% cashback`)
	upToAmountRe      = regexp.MustCompile(`(?i)up to \x{20B9}(\d+)`)
	rupeeAmountRe     = regexp.MustCompile(`\x{20B9}(\d+)`)
)

// genericAdapter sniffs the common feed shapes: explicit percent fields,
// voucher/reward markers, and cashback or flat-off figures buried in
// free-text benefit fields.
type genericAdapter struct{}

func (a *genericAdapter) Handles(string) bool { return true }

func (a *genericAdapter) Normalize(entry RawBankEntry, rec RawOffer, id string) (models.Offer, error) {
	offer := baseOffer(rec, id)
	freeText := rec.Benefits
	if freeText == "" {
		freeText = rec.Extra
	}

	switch {
	case rec.DiscountPercent.IsPositive():
		offer.Type = models.OfferCashback
		offer.ValueType = models.ValuePercentage
		offer.Value = rec.DiscountPercent
		offer.Description = fmt.Sprintf("%s%% off", rec.DiscountPercent)

	case strings.Contains(strings.ToLower(rec.OfferType), "voucher"):
		offer.Type = models.OfferVoucher
		offer.Description = rec.OfferType

	case strings.Contains(strings.ToLower(freeText), "cashback"):
		offer.Type = models.OfferCashback
		offer.ValueType = models.ValuePercentage
		if m := cashbackPercentRe.FindStringSubmatch(freeText); m != nil {
			v, err := decimal.NewFromString(m[1])
			if err != nil {
				return models.Offer{}, fmt.Errorf("bad cashback percent %q: %w", m[1], err)
			}
			offer.Value = v
		}
		offer.Description = freeText
		// Some feeds only state the cap in prose.
		if m := upToAmountRe.FindStringSubmatch(rec.Extra); m != nil && offer.MaxDiscount.IsZero() {
			cap, err := decimal.NewFromString(m[1])
			if err == nil {
				offer.MaxDiscount = cap
			}
		}

	case strings.Contains(strings.ToLower(rec.Extra), "flat") || strings.Contains(strings.ToLower(rec.Extra), "off"):
		offer.Type = models.OfferFlatDiscount
		offer.ValueType = models.ValueAmount
		if m := rupeeAmountRe.FindStringSubmatch(rec.Extra); m != nil {
			v, err := decimal.NewFromString(m[1])
			if err != nil {
				return models.Offer{}, fmt.Errorf("bad flat amount %q: %w", m[1], err)
			}
			offer.Value = v
		}
		offer.Description = rec.Extra

	case strings.Contains(strings.ToLower(rec.OfferType), "rewards") || strings.Contains(strings.ToLower(rec.Details), "points"):
		offer.Type = models.OfferBonusReward
		offer.ValueType = models.ValuePoints
		offer.Description = rec.OfferType
		if offer.Description == "" {
			offer.Description = "Bonus Rewards"
		}

	default:
		offer.Description = firstNonEmpty(rec.OfferType, rec.Details, "Special Offer")
	}

	offer.Description = synthesizeDescription(offer, entry, rec)
	return offer, nil
}

// hdfcAdapter owns HDFC Bank records. The Millennia card buries its rate in
// card-specific percent fields and carries no category list in the feed, so
// a broad shopping affinity is assumed.
type hdfcAdapter struct{}

func (a *hdfcAdapter) Handles(bank string) bool { return bank == "HDFC Bank" }

func (a *hdfcAdapter) Normalize(entry RawBankEntry, rec RawOffer, id string) (models.Offer, error) {
	if rec.Card != "HDFC Millennia" {
		return (&genericAdapter{}).Normalize(entry, rec, id)
	}

	offer := baseOffer(rec, id)
	offer.Type = models.OfferCashback
	offer.ValueType = models.ValuePercentage
	switch {
	case rec.CashbackPercentAmazon.IsPositive():
		offer.Value = rec.CashbackPercentAmazon
		offer.Description = fmt.Sprintf("%s%% cashback on Amazon", offer.Value)
		offer.CategoryAffinity = []string{"Shopping", "Amazon Prime", "Electronics", "Mobiles"}
	case rec.CashbackPercentGiftCard.IsPositive():
		offer.Value = rec.CashbackPercentGiftCard
		offer.Description = fmt.Sprintf("%s%% cashback on Gift Cards", offer.Value)
		offer.CategoryAffinity = []string{"Shopping"}
	default:
		offer.Description = "Cashback offer"
	}
	offer.Description = synthesizeDescription(offer, entry, rec)
	return offer, nil
}

// baseOffer copies the fields every shape shares.
func baseOffer(rec RawOffer, id string) models.Offer {
	return models.Offer{
		ID:                id,
		Type:              models.OfferOther,
		Value:             decimal.Zero,
		MinSpend:          rec.MinSpend,
		MaxDiscount:       rec.MaxDiscount,
		MaxDiscountCredit: rec.MaxDiscountCredit,
		MaxDiscountDebit:  rec.MaxDiscountDebit,
		MaxDiscountEMI:    rec.MaxDiscountEMI,
		Period:            rec.Period,
		CategoryAffinity:  rec.Categories,
		ApplicableOn:      rec.ApplicableOn,
		SpecificCardType:  rec.Card,
	}
}

// synthesizeDescription appends min spend and the cap relevant to the bank
// entry's card types. The validity period is deliberately left out; display
// strings never show it.
func synthesizeDescription(offer models.Offer, entry RawBankEntry, rec RawOffer) string {
	desc := offer.Description
	if offer.MinSpend.IsPositive() {
		desc += fmt.Sprintf(", min spend %s%s", rupee, offer.MinSpend)
	}
	cardTypes := make([]string, 0, len(entry.CardTypes))
	for _, ct := range entry.CardTypes {
		cardTypes = append(cardTypes, strings.ToLower(ct))
	}
	switch {
	case containsSubstring(cardTypes, "credit card") && offer.MaxDiscountCredit.IsPositive():
		desc += fmt.Sprintf(", max discount %s%s (Credit)", rupee, offer.MaxDiscountCredit)
	case containsSubstring(cardTypes, "debit card") && offer.MaxDiscountDebit.IsPositive():
		desc += fmt.Sprintf(", max discount %s%s (Debit)", rupee, offer.MaxDiscountDebit)
	case offer.MaxDiscountEMI.IsPositive() && containsSubstring(rec.ApplicableOn, "emi"):
		// EMI caps are not shown in the concise string.
	case offer.MaxDiscount.IsPositive():
		desc += fmt.Sprintf(", max discount %s%s", rupee, offer.MaxDiscount)
	}
	return strings.TrimSpace(desc)
}

const rupee = "₹"

func containsSubstring(values []string, target string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), target) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
