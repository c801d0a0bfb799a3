package events

import (
	"context"
	"sync"
	"time"

	"walletwise-api/internal/models"
)

// EventType represents the type of event.
type EventType string

const (
	// EventRecommendationMade is emitted after the engine produces a result
	EventRecommendationMade EventType = "recommendation.made"
	// EventPaymentMethodAdded is emitted when a method is saved to a profile
	EventPaymentMethodAdded EventType = "payment_method.added"
	// EventPaymentMethodRemoved is emitted when a method is removed
	EventPaymentMethodRemoved EventType = "payment_method.removed"
	// EventTransactionRecorded is emitted when a purchase is logged
	EventTransactionRecorded EventType = "transaction.recorded"
	// EventCatalogLoaded is emitted once after the startup feed load
	EventCatalogLoaded EventType = "catalog.loaded"
)

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// RecommendationMadeData contains data for recommendation events.
type RecommendationMadeData struct {
	UserID string
	Cart   models.CartContext
	Result models.RecommendationResult
}

// PaymentMethodData contains data for method add/remove events.
type PaymentMethodData struct {
	UserID   string
	MethodID string
	Name     string
}

// TransactionRecordedData contains data for transaction events.
type TransactionRecordedData struct {
	Transaction models.Transaction
}

// CatalogLoadedData contains data for the catalog load event.
type CatalogLoadedData struct {
	Offers   int
	Warnings int
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Manager manages event handlers and event publishing.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	enabled  bool
}

// NewManager creates a new event manager.
func NewManager(enabled bool) *Manager {
	return &Manager{
		handlers: make(map[EventType][]Handler),
		enabled:  enabled,
	}
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish publishes an event to all subscribed handlers.
func (m *Manager) Publish(ctx context.Context, eventType EventType, data interface{}) {
	if !m.enabled {
		return
	}

	m.mu.RLock()
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	// Execute handlers asynchronously to avoid blocking
	for _, handler := range handlers {
		go func(h Handler) {
			if err := h(ctx, event); err != nil {
				_ = err
			}
		}(handler)
	}
}

// PublishRecommendationMade publishes a recommendation event.
func (m *Manager) PublishRecommendationMade(ctx context.Context, userID string, cart models.CartContext, result models.RecommendationResult) {
	m.Publish(ctx, EventRecommendationMade, RecommendationMadeData{
		UserID: userID,
		Cart:   cart,
		Result: result,
	})
}

// PublishPaymentMethodAdded publishes a method-added event.
func (m *Manager) PublishPaymentMethodAdded(ctx context.Context, userID, methodID, name string) {
	m.Publish(ctx, EventPaymentMethodAdded, PaymentMethodData{UserID: userID, MethodID: methodID, Name: name})
}

// PublishPaymentMethodRemoved publishes a method-removed event.
func (m *Manager) PublishPaymentMethodRemoved(ctx context.Context, userID, methodID string) {
	m.Publish(ctx, EventPaymentMethodRemoved, PaymentMethodData{UserID: userID, MethodID: methodID})
}

// PublishTransactionRecorded publishes a transaction event.
func (m *Manager) PublishTransactionRecorded(ctx context.Context, txn models.Transaction) {
	m.Publish(ctx, EventTransactionRecorded, TransactionRecordedData{Transaction: txn})
}

// PublishCatalogLoaded publishes the startup catalog load event.
func (m *Manager) PublishCatalogLoaded(ctx context.Context, offers, warnings int) {
	m.Publish(ctx, EventCatalogLoaded, CatalogLoadedData{Offers: offers, Warnings: warnings})
}

// Shutdown shuts down the event manager.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = false
	m.handlers = make(map[EventType][]Handler)
}
