package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneylogger/moneylogger/internal/expense/application"
	"github.com/moneylogger/moneylogger/internal/expense/domain"
	"github.com/moneylogger/moneylogger/internal/expense/infrastructure"
	"github.com/moneylogger/moneylogger/internal/log"
)

type handlerFixture struct {
	transactions    *infrastructure.MockTransactionRepository
	categories      *infrastructure.MockCategoryRepository
	handler         *TransactionHandler
	categoryHandler *CategoryHandler
}

func newHandlerFixture() *handlerFixture {
	categories := infrastructure.NewMockCategoryRepository()
	transactions := infrastructure.NewMockTransactionRepository(categories)
	logger := log.New(slog.LevelError)
	return &handlerFixture{
		transactions:    transactions,
		categories:      categories,
		handler:         NewTransactionHandler(application.NewTransactionService(transactions, categories, logger), respondJSON, respondError),
		categoryHandler: NewCategoryHandler(application.NewCategoryService(categories, logger), respondJSON, respondError),
	}
}

func authenticatedRequest(t *testing.T, userID, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(context.WithValue(req.Context(), "userID", userID))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestCreateTransaction_Created(t *testing.T) {
	f := newHandlerFixture()
	req := authenticatedRequest(t, "user-a", http.MethodPost, "/api/transactions", map[string]interface{}{
		"amount":  "49.99",
		"details": "Groceries",
	})
	rr := httptest.NewRecorder()

	f.handler.CreateTransaction(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.NotNil(t, data["id"])
	assert.Equal(t, "Groceries", data["details"])

	stored, err := f.transactions.FindByID(int64(data["id"].(float64)))
	require.NoError(t, err)
	assert.Equal(t, "user-a", stored.CreatedBy)
}

func TestCreateTransaction_WithIDRejected(t *testing.T) {
	f := newHandlerFixture()
	req := authenticatedRequest(t, "user-a", http.MethodPost, "/api/transactions", map[string]interface{}{
		"id":      7,
		"amount":  "10.00",
		"details": "Groceries",
	})
	rr := httptest.NewRecorder()

	f.handler.CreateTransaction(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateTransaction_MissingAmountRejected(t *testing.T) {
	f := newHandlerFixture()
	req := authenticatedRequest(t, "user-a", http.MethodPost, "/api/transactions", map[string]interface{}{
		"details": "Groceries",
	})
	rr := httptest.NewRecorder()

	f.handler.CreateTransaction(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateTransaction_InvalidBodyRejected(t *testing.T) {
	f := newHandlerFixture()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString("{not json"))
	req = req.WithContext(context.WithValue(req.Context(), "userID", "user-a"))
	rr := httptest.NewRecorder()

	f.handler.CreateTransaction(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateTransaction_NoUserIsUnauthorized(t *testing.T) {
	f := newHandlerFixture()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString("{}"))
	rr := httptest.NewRecorder()

	f.handler.CreateTransaction(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateTransaction_ForeignCategoryRejected(t *testing.T) {
	f := newHandlerFixture()
	foreign := &domain.Category{Name: "Theirs", CreatedBy: "user-b"}
	require.NoError(t, f.categories.Create(foreign))

	req := authenticatedRequest(t, "user-a", http.MethodPost, "/api/transactions", map[string]interface{}{
		"amount":   "10.00",
		"details":  "Groceries",
		"category": map[string]interface{}{"id": foreign.ID},
	})
	rr := httptest.NewRecorder()

	f.handler.CreateTransaction(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "invalid category reference", body["message"])
}

func TestUpdateTransaction_IDMismatchRejected(t *testing.T) {
	f := newHandlerFixture()
	req := authenticatedRequest(t, "user-a", http.MethodPut, "/api/transactions/5", map[string]interface{}{
		"id":      6,
		"amount":  "10.00",
		"details": "Groceries",
	})
	req.SetPathValue("id", "5")
	rr := httptest.NewRecorder()

	f.handler.UpdateTransaction(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateTransaction_MissingBodyIDRejected(t *testing.T) {
	f := newHandlerFixture()
	req := authenticatedRequest(t, "user-a", http.MethodPut, "/api/transactions/5", map[string]interface{}{
		"amount":  "10.00",
		"details": "Groceries",
	})
	req.SetPathValue("id", "5")
	rr := httptest.NewRecorder()

	f.handler.UpdateTransaction(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateTransaction_ForeignTransactionForbidden(t *testing.T) {
	f := newHandlerFixture()
	stored := &domain.Transaction{
		Amount:    decimal.RequireFromString("10.00"),
		Details:   "Theirs",
		CreatedBy: "user-b",
	}
	require.NoError(t, f.transactions.Create(stored))

	req := authenticatedRequest(t, "user-a", http.MethodPut, fmt.Sprintf("/api/transactions/%d", stored.ID), map[string]interface{}{
		"id":      stored.ID,
		"amount":  "99.00",
		"details": "Hijacked",
	})
	req.SetPathValue("id", fmt.Sprintf("%d", stored.ID))
	rr := httptest.NewRecorder()

	f.handler.UpdateTransaction(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestPartialUpdateTransaction_ChangesOnlyDetails(t *testing.T) {
	f := newHandlerFixture()
	stored := &domain.Transaction{
		Amount:    decimal.RequireFromString("10.00"),
		Details:   "Old details",
		CreatedBy: "user-a",
	}
	require.NoError(t, f.transactions.Create(stored))

	req := authenticatedRequest(t, "user-a", http.MethodPatch, fmt.Sprintf("/api/transactions/%d", stored.ID), map[string]interface{}{
		"id":      stored.ID,
		"details": "New details",
	})
	req.SetPathValue("id", fmt.Sprintf("%d", stored.ID))
	rr := httptest.NewRecorder()

	f.handler.PartialUpdateTransaction(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	updated, err := f.transactions.FindByID(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "New details", updated.Details)
	assert.True(t, updated.Amount.Equal(decimal.RequireFromString("10.00")))
}

func TestGetTransaction_MissingIsNotFound(t *testing.T) {
	f := newHandlerFixture()
	req := authenticatedRequest(t, "user-a", http.MethodGet, "/api/transactions/42", nil)
	req.SetPathValue("id", "42")
	rr := httptest.NewRecorder()

	f.handler.GetTransaction(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetTransaction_InvalidIDRejected(t *testing.T) {
	f := newHandlerFixture()
	req := authenticatedRequest(t, "user-a", http.MethodGet, "/api/transactions/abc", nil)
	req.SetPathValue("id", "abc")
	rr := httptest.NewRecorder()

	f.handler.GetTransaction(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteTransaction_NoContent(t *testing.T) {
	f := newHandlerFixture()
	stored := &domain.Transaction{
		Amount:    decimal.RequireFromString("10.00"),
		Details:   "Doomed",
		CreatedBy: "user-a",
	}
	require.NoError(t, f.transactions.Create(stored))

	req := authenticatedRequest(t, "user-a", http.MethodDelete, fmt.Sprintf("/api/transactions/%d", stored.ID), nil)
	req.SetPathValue("id", fmt.Sprintf("%d", stored.ID))
	rr := httptest.NewRecorder()

	f.handler.DeleteTransaction(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	_, err := f.transactions.FindByID(stored.ID)
	assert.Error(t, err)
}

func TestGetTransactions_ListsOnlyOwnRowsWithTotalCount(t *testing.T) {
	f := newHandlerFixture()
	for i := 0; i < 3; i++ {
		require.NoError(t, f.transactions.Create(&domain.Transaction{
			Amount:    decimal.RequireFromString("10.00"),
			Details:   fmt.Sprintf("Mine %d", i),
			CreatedBy: "user-a",
		}))
	}
	require.NoError(t, f.transactions.Create(&domain.Transaction{
		Amount:    decimal.RequireFromString("10.00"),
		Details:   "Someone else's",
		CreatedBy: "user-b",
	}))

	req := authenticatedRequest(t, "user-a", http.MethodGet, "/api/transactions", nil)
	rr := httptest.NewRecorder()

	f.handler.GetTransactions(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "3", rr.Header().Get("X-Total-Count"))
	body := decodeBody(t, rr)
	assert.Len(t, body["data"], 3)
}

func TestGetTransactions_BadFilterValueRejected(t *testing.T) {
	f := newHandlerFixture()
	req := authenticatedRequest(t, "user-a", http.MethodGet, "/api/transactions?amount.greaterThan=banana", nil)
	rr := httptest.NewRecorder()

	f.handler.GetTransactions(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCountTransactions_ScopedToOwner(t *testing.T) {
	f := newHandlerFixture()
	require.NoError(t, f.transactions.Create(&domain.Transaction{
		Amount:    decimal.RequireFromString("10.00"),
		Details:   "Mine",
		CreatedBy: "user-a",
	}))
	require.NoError(t, f.transactions.Create(&domain.Transaction{
		Amount:    decimal.RequireFromString("10.00"),
		Details:   "Theirs",
		CreatedBy: "user-b",
	}))

	req := authenticatedRequest(t, "user-a", http.MethodGet, "/api/transactions/count", nil)
	rr := httptest.NewRecorder()

	f.handler.CountTransactions(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, float64(1), body["data"])
}

func TestGetTotalAmount_SumsOwnRows(t *testing.T) {
	f := newHandlerFixture()
	require.NoError(t, f.transactions.Create(&domain.Transaction{
		Amount:    decimal.RequireFromString("10.10"),
		Details:   "Income",
		CreatedBy: "user-a",
	}))
	require.NoError(t, f.transactions.Create(&domain.Transaction{
		Amount:    decimal.RequireFromString("-2.60"),
		Details:   "Coffee",
		CreatedBy: "user-a",
	}))

	req := authenticatedRequest(t, "user-a", http.MethodGet, "/api/transactions/totalAmount", nil)
	rr := httptest.NewRecorder()

	f.handler.GetTotalAmount(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "7.5", body["data"])
}
