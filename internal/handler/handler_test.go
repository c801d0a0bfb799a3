package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"walletwise-api/internal/catalog"
	"walletwise-api/internal/database"
	"walletwise-api/internal/engine"
	"walletwise-api/internal/models"
	"walletwise-api/internal/service"
)

func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	dbPath := "./test_" + uuid.New().String() + ".db"
	db, err := database.NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cat := catalog.NewLoader(nil).Load([]catalog.RawBankEntry{{
		Bank:      "HDFC Bank",
		CardTypes: []string{"Credit Card"},
		Offers: []catalog.RawOffer{{
			DiscountPercent:   decimal.NewFromInt(10),
			MaxDiscountCredit: decimal.NewFromInt(150),
		}},
	}})

	svc := service.NewService(db, cat, engine.New(engine.DefaultConfig()))
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Group(h.Routes)
	srv := httptest.NewServer(r)

	cleanup := func() {
		srv.Close()
		db.Close()
		os.Remove(dbPath)
	}
	return srv, cleanup
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func addCard(t *testing.T, srv *httptest.Server, userID string) models.PaymentMethod {
	t.Helper()
	resp := postJSON(t, srv.URL+"/users/"+userID+"/payment-methods", models.CreatePaymentMethodRequest{
		Name:        "HDFC Regalia",
		Type:        models.MethodCreditCard,
		BankName:    "HDFC Bank",
		Last4Digits: "1234",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 adding card, got %d", resp.StatusCode)
	}
	var m models.PaymentMethod
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("Failed to decode method: %v", err)
	}
	return m
}

func TestGetRecommendation_Success(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	userID := uuid.New().String()
	addCard(t, srv, userID)

	resp := postJSON(t, srv.URL+"/recommendations", models.RecommendationRequest{
		UserID:    userID,
		CartTotal: decimal.NewFromInt(3000),
		Category:  "Electronics",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var result models.RecommendationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Name != "HDFC Regalia" {
		t.Errorf("Expected HDFC Regalia recommended, got %s", result.Name)
	}
	if !result.Savings.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected savings 150, got %s", result.Savings)
	}
	if result.Reason == "" || result.OfferDisplay == "" {
		t.Error("Expected a populated reason and offer display")
	}
}

func TestGetRecommendation_EmptyBody(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Post(srv.URL+"/recommendations", "application/json", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty body, got %d", resp.StatusCode)
	}
}

func TestGetRecommendation_InvalidJSON(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Post(srv.URL+"/recommendations", "application/json",
		bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid JSON, got %d", resp.StatusCode)
	}
}

func TestGetRecommendation_NegativeTotal(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	resp := postJSON(t, srv.URL+"/recommendations", models.RecommendationRequest{
		UserID:    uuid.New().String(),
		CartTotal: decimal.NewFromInt(-100),
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative total, got %d", resp.StatusCode)
	}
	var errResp models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if errResp.Error == "" {
		t.Error("Expected an error message in the body")
	}
}

func TestGetRecommendation_AllMethodsExcluded(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	userID := uuid.New().String()
	resp := postJSON(t, srv.URL+"/users/"+userID+"/payment-methods", models.CreatePaymentMethodRequest{
		Name: "Amazon Pay",
		Type: models.MethodWallet,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/recommendations", models.RecommendationRequest{
		UserID:    userID,
		CartTotal: decimal.NewFromInt(100),
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 when every method is excluded, got %d", resp.StatusCode)
	}
}

func TestPaymentMethodLifecycle(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	userID := uuid.New().String()
	added := addCard(t, srv, userID)

	resp, err := http.Get(srv.URL + "/users/" + userID + "/payment-methods")
	if err != nil {
		t.Fatalf("List request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 listing methods, got %d", resp.StatusCode)
	}
	var list models.PaymentMethodsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(list.PaymentMethods) != 1 || list.PaymentMethods[0].ID != added.ID {
		t.Fatalf("Expected the added method listed, got %+v", list.PaymentMethods)
	}
	// The bank-wide catalog offer is attached on read.
	if len(list.PaymentMethods[0].Offers) != 1 {
		t.Errorf("Expected 1 attached catalog offer, got %d", len(list.PaymentMethods[0].Offers))
	}

	req, err := http.NewRequest(http.MethodDelete,
		srv.URL+"/users/"+userID+"/payment-methods/"+added.ID, nil)
	if err != nil {
		t.Fatalf("Failed to build delete request: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Delete request failed: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204 on delete, got %d", delResp.StatusCode)
	}

	delResp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Second delete request failed: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 on repeated delete, got %d", delResp.StatusCode)
	}
}

func TestAddPaymentMethod_InvalidType(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	resp := postJSON(t, srv.URL+"/users/user-1/payment-methods", models.CreatePaymentMethodRequest{
		Name: "Mystery",
		Type: "crypto",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid type, got %d", resp.StatusCode)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	userID := uuid.New().String()
	resp := postJSON(t, srv.URL+"/transactions", models.Transaction{
		UserID:     userID,
		Amount:     decimal.NewFromInt(2500),
		Category:   "Electronics",
		MethodID:   "pm_test",
		MethodName: "HDFC Regalia",
		Savings:    decimal.NewFromInt(150),
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 recording transaction, got %d", resp.StatusCode)
	}
	var recorded models.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&recorded); err != nil {
		t.Fatalf("Failed to decode transaction: %v", err)
	}
	if recorded.ID == "" {
		t.Error("Expected a generated transaction ID")
	}

	listResp, err := http.Get(srv.URL + "/users/" + userID + "/transactions")
	if err != nil {
		t.Fatalf("List request failed: %v", err)
	}
	defer listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 listing transactions, got %d", listResp.StatusCode)
	}
	var list models.TransactionsResponse
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(list.Transactions) != 1 || list.Transactions[0].ID != recorded.ID {
		t.Errorf("Expected the recorded transaction listed, got %+v", list.Transactions)
	}
}

func TestRecordUserTransaction_UserTakenFromPath(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	userID := uuid.New().String()
	resp := postJSON(t, srv.URL+"/users/"+userID+"/transactions", models.Transaction{
		UserID:     "ignored-body-user",
		Amount:     decimal.NewFromInt(500),
		MethodID:   "pm_test",
		MethodName: "UPI",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var recorded models.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&recorded); err != nil {
		t.Fatalf("Failed to decode transaction: %v", err)
	}
	if recorded.UserID != userID {
		t.Errorf("Expected path user %s, got %s", userID, recorded.UserID)
	}
}

func TestRecordTransaction_MissingMethodID(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	resp := postJSON(t, srv.URL+"/transactions", models.Transaction{
		UserID: "user-1",
		Amount: decimal.NewFromInt(100),
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing method_id, got %d", resp.StatusCode)
	}
}

func TestListOffers(t *testing.T) {
	srv, cleanup := setupTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/offers")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var offers []models.Offer
	if err := json.NewDecoder(resp.Body).Decode(&offers); err != nil {
		t.Fatalf("Failed to decode offers: %v", err)
	}
	if len(offers) != 1 {
		t.Errorf("Expected 1 catalog offer, got %d", len(offers))
	}
}
