package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"walletwise-api/internal/engine"
	"walletwise-api/internal/models"
	"walletwise-api/internal/service"
	"walletwise-api/internal/validation"
)

// Handler provides HTTP handlers for the API.
type Handler struct {
	service     *service.Service
	maxBodySize int64
}

// NewHandlerOptions holds options for creating a handler.
type NewHandlerOptions struct {
	MaxBodySize int64
}

// DefaultHandlerOptions returns default handler options.
func DefaultHandlerOptions() NewHandlerOptions {
	return NewHandlerOptions{
		MaxBodySize: 1 << 20, // 1MB default
	}
}

// NewHandler creates a new handler instance.
func NewHandler(svc *service.Service) *Handler {
	return NewHandlerWithOptions(svc, DefaultHandlerOptions())
}

// NewHandlerWithOptions creates a new handler instance with custom options.
func NewHandlerWithOptions(svc *service.Service, opts NewHandlerOptions) *Handler {
	return &Handler{
		service:     svc,
		maxBodySize: opts.MaxBodySize,
	}
}

// Routes mounts all API routes on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/recommendations", h.GetRecommendation)
	r.Get("/offers", h.ListOffers)
	r.Post("/transactions", h.RecordTransaction)
	r.Route("/users/{user_id}", func(r chi.Router) {
		r.Get("/payment-methods", h.ListPaymentMethods)
		r.Post("/payment-methods", h.AddPaymentMethod)
		r.Delete("/payment-methods/{method_id}", h.RemovePaymentMethod)
		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.RecordUserTransaction)
	})
}

// GetRecommendation handles POST /recommendations
func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req models.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	req.UserID = validation.SanitizeString(req.UserID)
	req.Category = validation.SanitizeString(req.Category)

	result, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ListPaymentMethods handles GET /users/{user_id}/payment-methods
func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID := validation.SanitizeString(chi.URLParam(r, "user_id"))
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	methods, err := h.service.GetPaymentMethods(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.PaymentMethodsResponse{
		UserID:         userID,
		PaymentMethods: methods,
	})
}

// AddPaymentMethod handles POST /users/{user_id}/payment-methods
func (h *Handler) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	userID := validation.SanitizeString(chi.URLParam(r, "user_id"))
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var req models.CreatePaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	req.Name = validation.SanitizeString(req.Name)
	req.BankName = validation.SanitizeString(req.BankName)
	req.Last4Digits = validation.SanitizeString(req.Last4Digits)
	req.UPIID = validation.SanitizeString(req.UPIID)

	m, err := h.service.AddPaymentMethod(r.Context(), userID, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, m)
}

// RemovePaymentMethod handles DELETE /users/{user_id}/payment-methods/{method_id}
func (h *Handler) RemovePaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID := validation.SanitizeString(chi.URLParam(r, "user_id"))
	methodID := validation.SanitizeString(chi.URLParam(r, "method_id"))
	if userID == "" || methodID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id and method_id are required")
		return
	}

	removed, err := h.service.RemovePaymentMethod(r.Context(), userID, methodID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if !removed {
		h.respondError(w, http.StatusNotFound, "payment method not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordTransaction handles POST /transactions
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var txn models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	txn.UserID = validation.SanitizeString(txn.UserID)
	txn.Category = validation.SanitizeString(txn.Category)
	txn.MethodID = validation.SanitizeString(txn.MethodID)
	txn.MethodName = validation.SanitizeString(txn.MethodName)
	txn.OfferApplied = validation.SanitizeString(txn.OfferApplied)

	recorded, err := h.service.RecordTransaction(r.Context(), txn)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, recorded)
}

// RecordUserTransaction handles POST /users/{user_id}/transactions. Same as
// RecordTransaction, with the user taken from the path instead of the body.
func (h *Handler) RecordUserTransaction(w http.ResponseWriter, r *http.Request) {
	userID := validation.SanitizeString(chi.URLParam(r, "user_id"))
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var txn models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	txn.UserID = userID
	txn.Category = validation.SanitizeString(txn.Category)
	txn.MethodID = validation.SanitizeString(txn.MethodID)
	txn.MethodName = validation.SanitizeString(txn.MethodName)
	txn.OfferApplied = validation.SanitizeString(txn.OfferApplied)

	recorded, err := h.service.RecordTransaction(r.Context(), txn)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, recorded)
}

// ListTransactions handles GET /users/{user_id}/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := validation.SanitizeString(chi.URLParam(r, "user_id"))
	if userID == "" {
		h.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	txns, err := h.service.GetTransactions(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.TransactionsResponse{
		UserID:       userID,
		Transactions: txns,
	})
}

// ListOffers handles GET /offers
func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Offers())
}

// respondServiceError maps service errors onto HTTP statuses: validation and
// bad-input errors are the client's fault, an all-excluded profile cannot be
// served, anything else is a 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var vErr *validation.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, engine.ErrInvalidInput):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNoEligibleMethod):
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response with the given status code and message.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
