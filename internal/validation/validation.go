package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"walletwise-api/internal/models"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

var maxCartTotal = decimal.NewFromInt(10_000_000)

// ValidateRecommendationRequest checks a recommendation request before it
// reaches the engine: the engine itself rejects negative totals too, but the
// handler should fail fast with a field-level message.
func ValidateRecommendationRequest(req models.RecommendationRequest) error {
	if req.UserID == "" {
		return &ValidationError{
			Field:   "user_id",
			Message: "is required",
		}
	}

	if req.CartTotal.IsNegative() {
		return &ValidationError{
			Field:   "cart_total",
			Message: "must be non-negative",
		}
	}

	if req.CartTotal.GreaterThan(maxCartTotal) {
		return &ValidationError{
			Field:   "cart_total",
			Message: "exceeds maximum allowed amount",
		}
	}

	if len(req.Category) > 100 {
		return &ValidationError{
			Field:   "category",
			Message: "cannot exceed 100 characters",
		}
	}

	return nil
}

var hundred = decimal.NewFromInt(100)

// ValidatePaymentMethod checks a method before it is saved to a profile.
func ValidatePaymentMethod(m models.PaymentMethod) error {
	if m.Name == "" {
		return &ValidationError{
			Field:   "name",
			Message: "is required",
		}
	}

	switch m.Type {
	case models.MethodCreditCard, models.MethodDebitCard, models.MethodUPI,
		models.MethodWallet, models.MethodGiftCard:
	default:
		return &ValidationError{
			Field:   "type",
			Message: "must be one of credit_card, debit_card, upi, wallet, gift_card",
		}
	}

	if m.UsagePercentage.IsNegative() || m.UsagePercentage.GreaterThan(hundred) {
		return &ValidationError{
			Field:   "usage_percentage",
			Message: "must be between 0 and 100",
		}
	}

	if !m.UsagePercentage.IsZero() && m.Type != models.MethodCreditCard {
		return &ValidationError{
			Field:   "usage_percentage",
			Message: "is only meaningful for credit cards",
		}
	}

	if m.WalletBalance.IsNegative() {
		return &ValidationError{
			Field:   "wallet_balance",
			Message: "must be non-negative",
		}
	}

	if !m.WalletBalance.IsZero() && m.Type != models.MethodWallet && m.Type != models.MethodGiftCard {
		return &ValidationError{
			Field:   "wallet_balance",
			Message: "is only meaningful for wallets and gift cards",
		}
	}

	if m.Last4Digits != "" && len(m.Last4Digits) != 4 {
		return &ValidationError{
			Field:   "last4_digits",
			Message: "must be exactly 4 digits",
		}
	}

	return nil
}

// ValidateTransaction checks a transaction record before it is persisted.
func ValidateTransaction(txn models.Transaction) error {
	if txn.UserID == "" {
		return &ValidationError{
			Field:   "user_id",
			Message: "is required",
		}
	}

	if txn.Amount.IsNegative() {
		return &ValidationError{
			Field:   "amount",
			Message: "must be non-negative",
		}
	}

	if txn.Amount.GreaterThan(maxCartTotal) {
		return &ValidationError{
			Field:   "amount",
			Message: "exceeds maximum allowed amount",
		}
	}

	if txn.MethodID == "" {
		return &ValidationError{
			Field:   "method_id",
			Message: "is required",
		}
	}

	if txn.Savings.IsNegative() {
		return &ValidationError{
			Field:   "savings",
			Message: "must be non-negative",
		}
	}

	return nil
}

func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}
