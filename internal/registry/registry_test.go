package registry

import (
	"testing"

	"github.com/shopspring/decimal"

	"walletwise-api/internal/catalog"
	"walletwise-api/internal/models"
)

func buildCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	return catalog.NewLoader(nil).Load([]catalog.RawBankEntry{
		{
			Bank:      "ICICI Bank",
			CardTypes: []string{"Credit Card"},
			Offers: []catalog.RawOffer{
				{Card: "Amazon Pay ICICI CC", DiscountPercent: decimal.NewFromInt(5)},
			},
		},
		{
			Bank:      "HDFC Bank",
			CardTypes: []string{"Credit Card", "Debit Card"},
			Offers: []catalog.RawOffer{
				{DiscountPercent: decimal.NewFromInt(10)},
			},
		},
	})
}

func TestAttachOffers_SpecificCardNameWithCCNormalization(t *testing.T) {
	methods := []models.PaymentMethod{
		{ID: "pm_1", Name: "Amazon Pay ICICI Credit Card", Type: models.MethodCreditCard, BankName: "ICICI Bank"},
		{ID: "pm_2", Name: "ICICI Coral Credit Card", Type: models.MethodCreditCard, BankName: "ICICI Bank"},
	}

	out := AttachOffers(methods, buildCatalog(t))

	if len(out[0].Offers) != 1 {
		t.Errorf("Expected CC abbreviation to match the full card name, got %d offers", len(out[0].Offers))
	}
	if len(out[1].Offers) != 0 {
		t.Errorf("Card-specific offer must not attach to a different card, got %d offers", len(out[1].Offers))
	}
}

func TestAttachOffers_BankWideOfferByCardType(t *testing.T) {
	methods := []models.PaymentMethod{
		{ID: "pm_credit", Name: "HDFC Regalia", Type: models.MethodCreditCard, BankName: "HDFC Bank"},
		{ID: "pm_debit", Name: "HDFC EasyShop", Type: models.MethodDebitCard, BankName: "HDFC Bank"},
		{ID: "pm_wallet", Name: "HDFC PayZapp", Type: models.MethodWallet, BankName: "HDFC Bank"},
	}

	out := AttachOffers(methods, buildCatalog(t))

	if len(out[0].Offers) != 1 {
		t.Errorf("Expected bank-wide offer on credit card, got %d", len(out[0].Offers))
	}
	if len(out[1].Offers) != 1 {
		t.Errorf("Expected bank-wide offer on debit card, got %d", len(out[1].Offers))
	}
	if len(out[2].Offers) != 0 {
		t.Errorf("Bank card offers must never attach to wallets, got %d", len(out[2].Offers))
	}
}

func TestAttachOffers_SkipsMethodsWithoutBank(t *testing.T) {
	methods := []models.PaymentMethod{
		{ID: "pm_upi", Name: "UPI", Type: models.MethodUPI},
	}

	out := AttachOffers(methods, buildCatalog(t))
	if len(out[0].Offers) != 0 {
		t.Errorf("Bankless method must get no catalog offers, got %d", len(out[0].Offers))
	}
}

func TestAttachOffers_OwnOffersComeFirstAndInputIsNotMutated(t *testing.T) {
	own := models.Offer{ID: "own_offer", Type: models.OfferFlatDiscount, Value: decimal.NewFromInt(50)}
	methods := []models.PaymentMethod{
		{ID: "pm", Name: "HDFC Regalia", Type: models.MethodCreditCard, BankName: "HDFC Bank",
			Offers: []models.Offer{own}},
	}

	out := AttachOffers(methods, buildCatalog(t))

	if len(out[0].Offers) != 2 {
		t.Fatalf("Expected own offer plus one catalog offer, got %d", len(out[0].Offers))
	}
	if out[0].Offers[0].ID != "own_offer" {
		t.Errorf("Own offers must precede catalog offers, got %s first", out[0].Offers[0].ID)
	}
	if len(methods[0].Offers) != 1 {
		t.Errorf("Input snapshot mutated: %d offers", len(methods[0].Offers))
	}
}
