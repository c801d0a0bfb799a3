// Package engine implements the deterministic payment-method recommendation
// pipeline: filter each method's offers by eligibility, compute the capped
// monetary value of each, pick the single best offer per method, then pick the
// best method across all methods under the exclusion and tie-break policy.
//
// The engine is pure: it performs no I/O, holds no locks, and given the same
// method snapshot and cart context always returns the same result. Callers own
// fetching the profile and catalog beforehand and must not mutate the snapshot
// concurrently with a call.
package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"walletwise-api/internal/models"
)

// ErrInvalidInput is returned for requests the engine cannot evaluate at all
// (empty method list, negative cart total).
var ErrInvalidInput = errors.New("invalid input")

// ErrNoEligibleMethod is returned when every saved method is on the exclusion
// list, so no recommendation can be produced without violating the exclusion
// policy.
var ErrNoEligibleMethod = errors.New("no eligible payment method")

// Config holds the business-rule constants. The exclusion list and the
// utilization threshold are deployment policy, not algorithm, so they are
// injected rather than hardcoded.
type Config struct {
	// ExcludedMethodNames are method names that must never win, regardless
	// of savings.
	ExcludedMethodNames []string
	// UtilizationWarningPercent is the credit utilization above which the
	// recommendation reason carries a warning. The warning never changes
	// the selection.
	UtilizationWarningPercent decimal.Decimal
}

// DefaultConfig returns the rules the product ships with.
func DefaultConfig() Config {
	return Config{
		ExcludedMethodNames:       []string{"Amazon Pay"},
		UtilizationWarningPercent: decimal.NewFromInt(80),
	}
}

// Engine evaluates recommendation requests. Safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates an engine with the given rule configuration. Zero config fields
// fall back to defaults.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.ExcludedMethodNames == nil {
		cfg.ExcludedMethodNames = def.ExcludedMethodNames
	}
	if cfg.UtilizationWarningPercent.IsZero() {
		cfg.UtilizationWarningPercent = def.UtilizationWarningPercent
	}
	return &Engine{cfg: cfg}
}

// methodResult is the outcome of evaluating one payment method: its best
// monetary offer (nil when nothing yields positive savings) and, separately,
// a non-monetary benefit that survived the eligibility rules. The benefit
// never affects ranking; it only enriches formatting.
type methodResult struct {
	method  models.PaymentMethod
	index   int
	offer   *models.Offer
	savings decimal.Decimal
	benefit *models.Offer
}

// Recommend picks the payment method that maximizes monetary savings for the
// cart, applying category gating, the fallback scan, the exclusion list, and
// the tie-break policy. Methods must be supplied in the user's stored order;
// that order is the final tie-break.
func (e *Engine) Recommend(methods []models.PaymentMethod, cart models.CartContext) (models.RecommendationResult, error) {
	if len(methods) == 0 {
		return models.RecommendationResult{}, fmt.Errorf("%w: no payment methods supplied", ErrInvalidInput)
	}
	if cart.CartTotal.IsNegative() {
		return models.RecommendationResult{}, fmt.Errorf("%w: cart total must not be negative", ErrInvalidInput)
	}

	results := e.evaluateAll(methods, cart, false)

	// Fallback scan: if category gating left every method at zero savings,
	// re-evaluate with the category check suppressed. All other eligibility
	// rules still apply.
	if !anyPositiveSavings(results) {
		results = e.evaluateAll(methods, cart, true)
	}

	if winner := e.pickBySavings(results); winner != nil {
		return e.format(winner, cart), nil
	}

	// No positive savings anywhere, even after the fallback scan: pick a
	// reasonable default instead of failing.
	fallback, err := e.pickDefault(results)
	if err != nil {
		return models.RecommendationResult{}, err
	}
	return e.format(fallback, cart), nil
}

// evaluateAll computes the best offer per method. fallbackMode suppresses the
// category check only.
func (e *Engine) evaluateAll(methods []models.PaymentMethod, cart models.CartContext, fallbackMode bool) []methodResult {
	results := make([]methodResult, 0, len(methods))
	for i, m := range methods {
		r := methodResult{method: m, index: i, savings: decimal.Zero}
		best := -1
		bestRank := 0
		for j := range m.Offers {
			offer := &m.Offers[j]
			if !isEligible(offer, &m, cart, fallbackMode) {
				continue
			}
			if !hasMonetaryValue(offer) {
				if r.benefit == nil {
					r.benefit = offer
				}
				continue
			}
			v := computeValue(offer, &m, cart)
			if !v.IsPositive() {
				continue
			}
			rank := offerTypeRank(offer.Type)
			// Strictly greater wins; on an exact tie prefer cashback
			// over flat_discount over anything else, then earlier
			// insertion order.
			if best < 0 || v.GreaterThan(r.savings) || (v.Equal(r.savings) && rank < bestRank) {
				best = j
				bestRank = rank
				r.savings = v
			}
		}
		if best >= 0 {
			r.offer = &m.Offers[best]
		}
		results = append(results, r)
	}
	return results
}

// pickBySavings returns the non-excluded method with the strictly highest
// positive savings. Ties go to the preferred method type, then to input order.
func (e *Engine) pickBySavings(results []methodResult) *methodResult {
	var winner *methodResult
	for i := range results {
		r := &results[i]
		if e.isExcluded(r.method.Name) || r.offer == nil || !r.savings.IsPositive() {
			continue
		}
		switch {
		case winner == nil:
			winner = r
		case r.savings.GreaterThan(winner.savings):
			winner = r
		case r.savings.Equal(winner.savings) && methodTypeRank(r.method.Type) < methodTypeRank(winner.method.Type):
			winner = r
		}
	}
	return winner
}

// pickDefault selects a method when no offer anywhere yields savings: a UPI
// method if one exists, otherwise the method with the lowest credit
// utilization. Input order breaks ties. Excluded methods never win here
// either.
func (e *Engine) pickDefault(results []methodResult) (*methodResult, error) {
	for i := range results {
		r := &results[i]
		if r.method.Type == models.MethodUPI && !e.isExcluded(r.method.Name) {
			return r, nil
		}
	}
	var chosen *methodResult
	for i := range results {
		r := &results[i]
		if e.isExcluded(r.method.Name) {
			continue
		}
		if chosen == nil || r.method.UsagePercentage.LessThan(chosen.method.UsagePercentage) {
			chosen = r
		}
	}
	if chosen == nil {
		return nil, ErrNoEligibleMethod
	}
	return chosen, nil
}

func (e *Engine) isExcluded(name string) bool {
	for _, n := range e.cfg.ExcludedMethodNames {
		if n == name {
			return true
		}
	}
	return false
}

func anyPositiveSavings(results []methodResult) bool {
	for i := range results {
		if results[i].savings.IsPositive() {
			return true
		}
	}
	return false
}

// offerTypeRank orders offer types for the per-method tie-break: cashback
// beats flat_discount beats everything else.
func offerTypeRank(t models.OfferType) int {
	switch t {
	case models.OfferCashback:
		return 0
	case models.OfferFlatDiscount:
		return 1
	default:
		return 2
	}
}

// methodTypeRank orders method types for the cross-method tie-break:
// credit card > debit card > UPI > wallet > gift card.
func methodTypeRank(t models.MethodType) int {
	switch t {
	case models.MethodCreditCard:
		return 0
	case models.MethodDebitCard:
		return 1
	case models.MethodUPI:
		return 2
	case models.MethodWallet:
		return 3
	case models.MethodGiftCard:
		return 4
	default:
		return 5
	}
}
