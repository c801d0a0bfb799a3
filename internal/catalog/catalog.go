// Package catalog ingests raw bank offer feeds and normalizes them into the
// canonical Offer shape. Bank feeds are heterogeneous per-bank JSON records
// with inconsistent fields; each bank's quirks are isolated behind an Adapter
// so they stay independently testable.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"walletwise-api/internal/models"
)

// RawOffer is one offer record as it appears in a bank feed. Field coverage
// varies wildly between banks; most of these are optional.
type RawOffer struct {
	Card                    string          `json:"card,omitempty"`
	OfferType               string          `json:"offerType,omitempty"`
	DiscountPercent         decimal.Decimal `json:"discountPercent,omitempty"`
	CashbackPercentAmazon   decimal.Decimal `json:"cashbackPercentAmazon,omitempty"`
	CashbackPercentGiftCard decimal.Decimal `json:"cashbackPercentGiftCard,omitempty"`
	MinSpend                decimal.Decimal `json:"minSpend,omitempty"`
	MaxDiscount             decimal.Decimal `json:"maxDiscount,omitempty"`
	MaxDiscountCredit       decimal.Decimal `json:"maxDiscountCredit,omitempty"`
	MaxDiscountDebit        decimal.Decimal `json:"maxDiscountDebit,omitempty"`
	MaxDiscountEMI          decimal.Decimal `json:"maxDiscountEMI,omitempty"`
	Period                  string          `json:"period,omitempty"`
	ApplicableOn            []string        `json:"applicableOn,omitempty"`
	Categories              []string        `json:"categories,omitempty"`
	Benefits                string          `json:"benefits,omitempty"`
	Extra                   string          `json:"extra,omitempty"`
	Details                 string          `json:"details,omitempty"`
}

// RawBankEntry groups a bank's offers with the card types they apply to.
type RawBankEntry struct {
	Bank      string     `json:"bank"`
	CardTypes []string   `json:"cardTypes"`
	Offers    []RawOffer `json:"offers"`
}

// Warning records a malformed or unrecognized record encountered during a
// load. The load never aborts on one bad record; it is skipped or defaulted.
type Warning struct {
	Bank    string
	Index   int
	Message string
}

// Catalog is the immutable result of a load: canonical offers plus the
// card-type index the registry needs to attach offers to payment methods.
type Catalog struct {
	offers    []models.Offer
	cardTypes map[string][]string
	warnings  []Warning
}

// Offers returns all canonical offers in feed order.
func (c *Catalog) Offers() []models.Offer { return c.offers }

// CardTypes returns the card types a bank's offers apply to.
func (c *Catalog) CardTypes(bank string) []string { return c.cardTypes[bank] }

// Warnings returns the parse warnings collected during the load.
func (c *Catalog) Warnings() []Warning { return c.warnings }

// Loader normalizes raw bank entries through its adapter chain. The first
// adapter that handles a bank wins; the generic adapter handles everything.
type Loader struct {
	adapters []Adapter
	logger   *zap.Logger
}

// NewLoader creates a loader with the default adapter chain.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		adapters: []Adapter{&hdfcAdapter{}, &genericAdapter{}},
		logger:   logger,
	}
}

// Load normalizes all entries into a catalog. Malformed entries are skipped
// with a warning; unrecognized records default to type "other" with zero
// value rather than aborting the load.
func (l *Loader) Load(entries []RawBankEntry) *Catalog {
	c := &Catalog{cardTypes: make(map[string][]string)}
	seq := 0
	for _, entry := range entries {
		if entry.Bank == "" {
			c.warn(l.logger, Warning{Message: "bank entry without a bank name, skipping"})
			continue
		}
		c.cardTypes[entry.Bank] = entry.CardTypes
		adapter := l.adapterFor(entry.Bank)
		for i, rec := range entry.Offers {
			seq++
			id := offerID(entry.Bank, seq)
			offer, err := adapter.Normalize(entry, rec, id)
			if err != nil {
				c.warn(l.logger, Warning{Bank: entry.Bank, Index: i, Message: err.Error()})
				continue
			}
			if offer.Type == models.OfferOther && offer.Value.IsZero() && strings.HasPrefix(offer.Description, "Special Offer") {
				c.warn(l.logger, Warning{Bank: entry.Bank, Index: i, Message: "unrecognized offer shape, defaulted to type other"})
			}
			offer.BankSource = entry.Bank
			c.offers = append(c.offers, offer)
		}
	}
	l.logger.Info("offer catalog loaded",
		zap.Int("offers", len(c.offers)),
		zap.Int("banks", len(c.cardTypes)),
		zap.Int("warnings", len(c.warnings)))
	return c
}

// LoadFile reads a feed file and normalizes it.
func (l *Loader) LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read offer feed: %w", err)
	}
	var entries []RawBankEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse offer feed: %w", err)
	}
	return l.Load(entries), nil
}

func (l *Loader) adapterFor(bank string) Adapter {
	for _, a := range l.adapters {
		if a.Handles(bank) {
			return a
		}
	}
	return l.adapters[len(l.adapters)-1]
}

func (c *Catalog) warn(logger *zap.Logger, w Warning) {
	c.warnings = append(c.warnings, w)
	logger.Warn("catalog parse warning",
		zap.String("bank", w.Bank),
		zap.Int("index", w.Index),
		zap.String("message", w.Message))
}

func offerID(bank string, seq int) string {
	slug := strings.ToLower(strings.Join(strings.Fields(bank), "_"))
	return fmt.Sprintf("bank_offer_%s_%d", slug, seq)
}
