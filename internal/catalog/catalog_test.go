package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"walletwise-api/internal/models"
)

func loadOne(t *testing.T, entry RawBankEntry) models.Offer {
	t.Helper()
	cat := NewLoader(nil).Load([]RawBankEntry{entry})
	offers := cat.Offers()
	if len(offers) != 1 {
		t.Fatalf("Expected 1 offer, got %d (warnings: %+v)", len(offers), cat.Warnings())
	}
	return offers[0]
}

func TestLoad_HDFCMillenniaAmazonCashback(t *testing.T) {
	offer := loadOne(t, RawBankEntry{
		Bank:      "HDFC Bank",
		CardTypes: []string{"Credit Card"},
		Offers: []RawOffer{{
			Card:                  "HDFC Millennia",
			CashbackPercentAmazon: decimal.NewFromInt(5),
		}},
	})

	if offer.Type != models.OfferCashback {
		t.Errorf("Expected cashback, got %s", offer.Type)
	}
	if !offer.Value.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected value 5, got %s", offer.Value)
	}
	if len(offer.CategoryAffinity) == 0 || offer.CategoryAffinity[0] != "Shopping" {
		t.Errorf("Expected shopping affinity, got %v", offer.CategoryAffinity)
	}
	if offer.SpecificCardType != "HDFC Millennia" {
		t.Errorf("Expected card-specific offer, got %q", offer.SpecificCardType)
	}
	if offer.BankSource != "HDFC Bank" {
		t.Errorf("Expected bank source set, got %q", offer.BankSource)
	}
	if offer.ID != "bank_offer_hdfc_bank_1" {
		t.Errorf("Unexpected offer ID %q", offer.ID)
	}
}

func TestLoad_HDFCMillenniaGiftCardFallback(t *testing.T) {
	offer := loadOne(t, RawBankEntry{
		Bank: "HDFC Bank",
		Offers: []RawOffer{{
			Card:                    "HDFC Millennia",
			CashbackPercentGiftCard: decimal.NewFromInt(2),
		}},
	})

	if !offer.Value.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected value 2, got %s", offer.Value)
	}
	if len(offer.CategoryAffinity) != 1 || offer.CategoryAffinity[0] != "Shopping" {
		t.Errorf("Expected Shopping-only affinity, got %v", offer.CategoryAffinity)
	}
}

func TestLoad_DiscountPercentField(t *testing.T) {
	offer := loadOne(t, RawBankEntry{
		Bank: "ICICI Bank",
		Offers: []RawOffer{{
			Card:            "ICICI Coral",
			DiscountPercent: decimal.NewFromInt(10),
			MinSpend:        decimal.NewFromInt(500),
		}},
	})

	if offer.Type != models.OfferCashback || offer.ValueType != models.ValuePercentage {
		t.Errorf("Expected percentage cashback, got %s/%s", offer.Type, offer.ValueType)
	}
	if !offer.Value.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected value 10, got %s", offer.Value)
	}
	if !strings.Contains(offer.Description, "min spend ₹500") {
		t.Errorf("Description must carry the min spend, got %q", offer.Description)
	}
}

func TestLoad_FreeTextCashbackSniffing(t *testing.T) {
	offer := loadOne(t, RawBankEntry{
		Bank: "Axis Bank",
		Offers: []RawOffer{{
			Card:     "Axis Ace",
			Benefits: "Get 7.5% cashback on utility bills",
			Extra:    "up to ₹300 per statement cycle",
		}},
	})

	if offer.Type != models.OfferCashback {
		t.Errorf("Expected cashback sniffed from free text, got %s", offer.Type)
	}
	if !offer.Value.Equal(decimal.NewFromFloat(7.5)) {
		t.Errorf("Expected value 7.5, got %s", offer.Value)
	}
	if !offer.MaxDiscount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected cap 300 extracted from prose, got %s", offer.MaxDiscount)
	}
}

func TestLoad_FlatDiscountFromExtra(t *testing.T) {
	offer := loadOne(t, RawBankEntry{
		Bank: "SBI",
		Offers: []RawOffer{{
			Card:  "SBI SimplyCLICK",
			Extra: "Flat ₹100 off on orders above ₹999",
		}},
	})

	if offer.Type != models.OfferFlatDiscount || offer.ValueType != models.ValueAmount {
		t.Errorf("Expected flat discount, got %s/%s", offer.Type, offer.ValueType)
	}
	if !offer.Value.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected value 100, got %s", offer.Value)
	}
}

func TestLoad_VoucherAndRewardMarkers(t *testing.T) {
	cat := NewLoader(nil).Load([]RawBankEntry{{
		Bank: "Kotak Bank",
		Offers: []RawOffer{
			{Card: "Kotak League", OfferType: "Gift Voucher worth ₹500"},
			{Card: "Kotak Royale", OfferType: "5X Rewards on dining"},
		},
	}})

	offers := cat.Offers()
	if len(offers) != 2 {
		t.Fatalf("Expected 2 offers, got %d", len(offers))
	}
	if offers[0].Type != models.OfferVoucher {
		t.Errorf("Expected voucher, got %s", offers[0].Type)
	}
	if offers[1].Type != models.OfferBonusReward || offers[1].ValueType != models.ValuePoints {
		t.Errorf("Expected bonus reward, got %s/%s", offers[1].Type, offers[1].ValueType)
	}
}

func TestLoad_UnrecognizedRecordDefaultsWithWarning(t *testing.T) {
	cat := NewLoader(nil).Load([]RawBankEntry{{
		Bank:   "Yes Bank",
		Offers: []RawOffer{{Card: "Yes First"}},
	}})

	offers := cat.Offers()
	if len(offers) != 1 {
		t.Fatalf("Expected the record kept, got %d offers", len(offers))
	}
	if offers[0].Type != models.OfferOther || !offers[0].Value.IsZero() {
		t.Errorf("Expected defaulted other/zero, got %s/%s", offers[0].Type, offers[0].Value)
	}
	if len(cat.Warnings()) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(cat.Warnings()))
	}
	if cat.Warnings()[0].Bank != "Yes Bank" {
		t.Errorf("Warning must name the bank, got %q", cat.Warnings()[0].Bank)
	}
}

func TestLoad_SkipsBanklessEntry(t *testing.T) {
	cat := NewLoader(nil).Load([]RawBankEntry{
		{Offers: []RawOffer{{DiscountPercent: decimal.NewFromInt(10)}}},
		{Bank: "ICICI Bank", Offers: []RawOffer{{DiscountPercent: decimal.NewFromInt(5)}}},
	})

	if len(cat.Offers()) != 1 {
		t.Fatalf("Expected bankless entry skipped, got %d offers", len(cat.Offers()))
	}
	if len(cat.Warnings()) != 1 {
		t.Errorf("Expected 1 warning for the skipped entry, got %d", len(cat.Warnings()))
	}
}

func TestLoad_CardTypesIndexed(t *testing.T) {
	cat := NewLoader(nil).Load([]RawBankEntry{{
		Bank:      "ICICI Bank",
		CardTypes: []string{"Credit Card", "Debit Card"},
	}})

	types := cat.CardTypes("ICICI Bank")
	if len(types) != 2 || types[0] != "Credit Card" {
		t.Errorf("Unexpected card types %v", types)
	}
	if cat.CardTypes("Unknown Bank") != nil {
		t.Error("Unknown bank must have no card types")
	}
}

func TestSynthesizeDescription_EMICapHidden(t *testing.T) {
	offer := loadOne(t, RawBankEntry{
		Bank:      "Bajaj Finserv",
		CardTypes: []string{"EMI Card"},
		Offers: []RawOffer{{
			Card:            "Bajaj EMI Card",
			DiscountPercent: decimal.NewFromInt(10),
			MaxDiscountEMI:  decimal.NewFromInt(1500),
			ApplicableOn:    []string{"EMI"},
		}},
	})

	if strings.Contains(offer.Description, "1500") {
		t.Errorf("EMI cap must not surface in the description, got %q", offer.Description)
	}
}
