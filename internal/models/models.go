package models

import "github.com/shopspring/decimal"

// OfferType classifies what kind of benefit an offer grants.
type OfferType string

const (
	OfferCashback     OfferType = "cashback"
	OfferMiles        OfferType = "miles"
	OfferFlatDiscount OfferType = "flat_discount"
	OfferVoucher      OfferType = "voucher"
	OfferBonusReward  OfferType = "bonus_reward"
	OfferOther        OfferType = "other"
)

// ValueType clarifies what Offer.Value means for a given offer.
type ValueType string

const (
	ValuePercentage ValueType = "percentage"
	ValueAmount     ValueType = "amount"
	ValueMultiplier ValueType = "multiplier"
	ValuePoints     ValueType = "points"
)

// MethodType is the kind of payment instrument.
type MethodType string

const (
	MethodCreditCard MethodType = "credit_card"
	MethodDebitCard  MethodType = "debit_card"
	MethodUPI        MethodType = "upi"
	MethodWallet     MethodType = "wallet"
	MethodGiftCard   MethodType = "gift_card"
)

// Offer is a canonical offer produced by the catalog loader. Offers are
// immutable after load; payment methods reference them, they never own them.
//
// Monetary fields use decimal; a zero value on an optional field
// (MinSpend, MaxDiscount*) means the source record did not define it.
type Offer struct {
	ID          string    `json:"id"`
	Description string    `json:"description"` // synthesized display text, validity period excluded
	Type        OfferType `json:"type"`
	// Value semantics depend on (Type, ValueType): percentage of cart total
	// for cashback, fixed currency amount for flat_discount, multiplier for
	// miles, points for bonus_reward.
	Value             decimal.Decimal `json:"value"`
	ValueType         ValueType       `json:"value_type,omitempty"`
	MinSpend          decimal.Decimal `json:"min_spend,omitempty"`
	MaxDiscount       decimal.Decimal `json:"max_discount,omitempty"`
	MaxDiscountCredit decimal.Decimal `json:"max_discount_credit,omitempty"`
	MaxDiscountDebit  decimal.Decimal `json:"max_discount_debit,omitempty"`
	MaxDiscountEMI    decimal.Decimal `json:"max_discount_emi,omitempty"`
	Period            string          `json:"period,omitempty"`
	CategoryAffinity  []string        `json:"category_affinity,omitempty"`
	ApplicableOn      []string        `json:"applicable_on,omitempty"` // e.g. "EMI"
	SpecificCardType  string          `json:"specific_card_type,omitempty"`
	BankSource        string          `json:"bank_source,omitempty"`
}

// PaymentMethod is one saved instrument in a user's profile. Offers are
// attached by the registry at snapshot time and are never mutated per request.
//
// UsagePercentage (0-100) is meaningful only for credit cards and
// WalletBalance only for wallets and gift cards.
type PaymentMethod struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            MethodType      `json:"type"`
	BankName        string          `json:"bank_name,omitempty"`
	Last4Digits     string          `json:"last4_digits,omitempty"`
	UPIID           string          `json:"upi_id,omitempty"`
	UsagePercentage decimal.Decimal `json:"usage_percentage,omitempty"`
	WalletBalance   decimal.Decimal `json:"wallet_balance,omitempty"`
	Offers          []Offer         `json:"offers,omitempty"` // insertion order, significant for tie-breaks
}

// CartContext describes the purchase being decided. Request-scoped.
type CartContext struct {
	CartTotal decimal.Decimal `json:"cart_total"`
	Category  string          `json:"category,omitempty"`
}

// RecommendationResult is the engine's answer: which method to pay with and why.
type RecommendationResult struct {
	PaymentMethodID string          `json:"payment_method_id"`
	Name            string          `json:"name"`
	OfferType       string          `json:"offer_type"`
	OfferDisplay    string          `json:"offer_display"`
	Reason          string          `json:"reason"`
	Savings         decimal.Decimal `json:"savings"`
}

// Transaction records a purchase made with a recommended method, for the
// savings history.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	MethodID     string          `json:"method_id"`
	MethodName   string          `json:"method_name"`
	OfferApplied string          `json:"offer_applied,omitempty"`
	Savings      decimal.Decimal `json:"savings"`
	CreatedAt    string          `json:"created_at,omitempty"` // RFC3339
}

// RecommendationRequest is the request body for POST /recommendations.
type RecommendationRequest struct {
	UserID    string          `json:"user_id"`
	CartTotal decimal.Decimal `json:"cart_total"`
	Category  string          `json:"category,omitempty"`
}

// CreatePaymentMethodRequest is the request body for adding a saved method.
type CreatePaymentMethodRequest struct {
	Name          string          `json:"name"`
	Type          MethodType      `json:"type"`
	BankName      string          `json:"bank_name,omitempty"`
	Last4Digits   string          `json:"last4_digits,omitempty"`
	UPIID         string          `json:"upi_id,omitempty"`
	WalletBalance decimal.Decimal `json:"wallet_balance,omitempty"`
}

// PaymentMethodsResponse lists a user's saved methods in stored order.
type PaymentMethodsResponse struct {
	UserID         string          `json:"user_id"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
}

// TransactionsResponse lists a user's recorded transactions.
type TransactionsResponse struct {
	UserID       string        `json:"user_id"`
	Transactions []Transaction `json:"transactions"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
