package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"walletwise-api/internal/cache"
	"walletwise-api/internal/catalog"
	"walletwise-api/internal/database"
	"walletwise-api/internal/engine"
	"walletwise-api/internal/events"
	"walletwise-api/internal/features"
	"walletwise-api/internal/models"
	"walletwise-api/internal/registry"
	"walletwise-api/internal/validation"
)

// Service provides business logic for the payment recommendation API. It
// assembles the per-request snapshot (stored methods plus attached catalog
// offers) and hands it to the pure engine; all mutation happens here, never
// inside the engine.
type Service struct {
	db       *database.DB
	catalog  *catalog.Catalog
	engine   *engine.Engine
	cache    cache.Cache
	cacheTTL time.Duration
	events   *events.Manager
	features *features.Manager
	logger   *zap.Logger
}

// Options holds the optional collaborators.
type Options struct {
	Cache    cache.Cache
	CacheTTL time.Duration
	Events   *events.Manager
	Features *features.Manager
	Logger   *zap.Logger
}

// NewService creates a new service instance with no cache or events.
func NewService(db *database.DB, cat *catalog.Catalog, eng *engine.Engine) *Service {
	return NewServiceWithOptions(db, cat, eng, Options{})
}

// NewServiceWithOptions creates a new service instance with custom options.
func NewServiceWithOptions(db *database.DB, cat *catalog.Catalog, eng *engine.Engine, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fm := opts.Features
	if fm == nil {
		fm = features.NewManager()
	}
	em := opts.Events
	if em == nil {
		em = events.NewManager(false)
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{
		db:       db,
		catalog:  cat,
		engine:   eng,
		cache:    opts.Cache,
		cacheTTL: ttl,
		events:   em,
		features: fm,
		logger:   logger,
	}
}

// Recommend produces the best payment method for the given cart. The engine
// is deterministic, so results are safe to cache; the short TTL bounds the
// staleness window after a profile edit.
func (s *Service) Recommend(ctx context.Context, req models.RecommendationRequest) (models.RecommendationResult, error) {
	if err := validation.ValidateRecommendationRequest(req); err != nil {
		return models.RecommendationResult{}, err
	}

	cacheKey := fmt.Sprintf("rec:%s:%s:%s", req.UserID, req.CartTotal, req.Category)
	if s.cacheEnabled() {
		var cached models.RecommendationResult
		if err := cache.GetJSON(ctx, s.cache, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	methods, err := s.db.GetPaymentMethods(ctx, req.UserID)
	if err != nil {
		return models.RecommendationResult{}, fmt.Errorf("failed to load payment methods: %w", err)
	}

	snapshot := registry.AttachOffers(methods, s.catalog)
	cart := models.CartContext{CartTotal: req.CartTotal, Category: req.Category}

	result, err := s.engine.Recommend(snapshot, cart)
	if err != nil {
		return models.RecommendationResult{}, err
	}

	s.logger.Info("recommendation produced",
		zap.String("user_id", req.UserID),
		zap.String("method_id", result.PaymentMethodID),
		zap.String("savings", result.Savings.String()))
	s.events.PublishRecommendationMade(ctx, req.UserID, cart, result)

	if s.cacheEnabled() {
		if err := cache.SetJSON(ctx, s.cache, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache recommendation", zap.Error(err))
		}
	}

	return result, nil
}

// GetPaymentMethods returns a user's saved methods in stored order, with
// their catalog offers attached.
func (s *Service) GetPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	methods, err := s.db.GetPaymentMethods(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment methods: %w", err)
	}
	return registry.AttachOffers(methods, s.catalog), nil
}

// AddPaymentMethod saves a new method at the end of the user's stored order.
func (s *Service) AddPaymentMethod(ctx context.Context, userID string, req models.CreatePaymentMethodRequest) (models.PaymentMethod, error) {
	m := models.PaymentMethod{
		ID:       "pm_" + uuid.New().String(),
		Name:     req.Name,
		Type:     req.Type,
		BankName: req.BankName,
	}
	switch req.Type {
	case models.MethodCreditCard, models.MethodDebitCard:
		m.Last4Digits = req.Last4Digits
	case models.MethodUPI:
		m.UPIID = req.UPIID
	case models.MethodWallet, models.MethodGiftCard:
		m.WalletBalance = req.WalletBalance
	}

	if err := validation.ValidatePaymentMethod(m); err != nil {
		return models.PaymentMethod{}, err
	}

	if err := s.db.InsertPaymentMethod(ctx, userID, m); err != nil {
		return models.PaymentMethod{}, err
	}

	s.events.PublishPaymentMethodAdded(ctx, userID, m.ID, m.Name)
	return m, nil
}

// RemovePaymentMethod deletes a saved method. Returns false when the method
// does not exist.
func (s *Service) RemovePaymentMethod(ctx context.Context, userID, methodID string) (bool, error) {
	removed, err := s.db.DeletePaymentMethod(ctx, userID, methodID)
	if err != nil {
		return false, err
	}
	if removed {
		s.events.PublishPaymentMethodRemoved(ctx, userID, methodID)
	}
	return removed, nil
}

// RecordTransaction logs a purchase in the savings history.
func (s *Service) RecordTransaction(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	if txn.ID == "" {
		txn.ID = "txn_" + uuid.New().String()
	}
	if txn.CreatedAt == "" {
		txn.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := validation.ValidateTransaction(txn); err != nil {
		return models.Transaction{}, err
	}

	if err := s.db.InsertTransaction(ctx, txn); err != nil {
		return models.Transaction{}, err
	}

	s.events.PublishTransactionRecorded(ctx, txn)
	return txn, nil
}

// GetTransactions returns a user's recorded transactions, newest first.
func (s *Service) GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.db.GetTransactions(ctx, userID)
}

// Offers lists the loaded canonical offer catalog.
func (s *Service) Offers() []models.Offer {
	return s.catalog.Offers()
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.features.IsEnabled(features.FeatureCacheEnabled)
}
