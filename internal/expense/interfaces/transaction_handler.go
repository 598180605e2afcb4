package interfaces

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/moneylogger/moneylogger/internal/expense/application"
	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/domain"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
)

type TransactionServiceInterface interface {
	Save(userID string, transaction *domain.Transaction) (*domain.Transaction, error)
	PartialUpdate(userID string, id int64, patch application.TransactionPatch) (*domain.Transaction, error)
	FindOne(userID string, id int64) (*domain.Transaction, error)
	Delete(userID string, id int64) error
	FindByCriteria(userID string, c *criteria.TransactionCriteria, page criteria.Pageable) ([]domain.Transaction, error)
	CountByCriteria(userID string, c *criteria.TransactionCriteria) (int64, error)
	GetTotalAmount(userID string) (decimal.Decimal, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *TransactionHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	if respondJSON == nil || respondError == nil {
		log.Fatal("Respond functions must not be nil")
		return nil
	}
	return &TransactionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if dto.ID != nil {
		h.respondError(w, http.StatusBadRequest, "A new transaction cannot already have an id")
		return
	}

	transaction, err := toTransactionEntity(&dto)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.service.Save(userID, transaction)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create transaction")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully created.",
		"data":    toTransactionDTO(saved),
	})
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if dto.ID == nil {
		h.respondError(w, http.StatusBadRequest, "Transaction id is required")
		return
	}
	if *dto.ID != id {
		h.respondError(w, http.StatusBadRequest, "Transaction id does not match the URL")
		return
	}

	transaction, err := toTransactionEntity(&dto)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.service.Save(userID, transaction)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update transaction")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully updated.",
		"data":    toTransactionDTO(saved),
	})
}

func (h *TransactionHandler) PartialUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if dto.ID == nil {
		h.respondError(w, http.StatusBadRequest, "Transaction id is required")
		return
	}
	if *dto.ID != id {
		h.respondError(w, http.StatusBadRequest, "Transaction id does not match the URL")
		return
	}

	patch := application.TransactionPatch{
		Amount:  dto.Amount,
		Details: dto.Details,
	}
	if dto.Category != nil {
		ref := &domain.CategoryRef{Name: dto.Category.Name}
		if dto.Category.ID != nil {
			ref.ID = *dto.Category.ID
		}
		patch.Category = ref
	}

	updated, err := h.service.PartialUpdate(userID, id, patch)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update transaction")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully updated.",
		"data":    toTransactionDTO(updated),
	})
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	transaction, err := h.service.FindOne(userID, id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get transaction")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toTransactionDTO(transaction),
	})
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	if err := h.service.Delete(userID, id); err != nil {
		h.respondServiceError(w, err, "Failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionCriteria, err := parseTransactionCriteria(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageable, err := parsePageable(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.service.FindByCriteria(userID, transactionCriteria, pageable)
	if err != nil {
		h.respondServiceError(w, err, "Failed to list transactions")
		return
	}
	total, err := h.service.CountByCriteria(userID, transactionCriteria)
	if err != nil {
		h.respondServiceError(w, err, "Failed to list transactions")
		return
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toTransactionDTOs(transactions),
	})
}

func (h *TransactionHandler) CountTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionCriteria, err := parseTransactionCriteria(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	total, err := h.service.CountByCriteria(userID, transactionCriteria)
	if err != nil {
		h.respondServiceError(w, err, "Failed to count transactions")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   total,
	})
}

func (h *TransactionHandler) GetTotalAmount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	total, err := h.service.GetTotalAmount(userID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get total amount")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   total,
	})
}

func (h *TransactionHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, financeErrors.ErrAccessDenied):
		h.respondError(w, http.StatusForbidden, "Access denied")
	case financeErrors.IsNotFound(err):
		h.respondError(w, http.StatusNotFound, err.Error())
	case financeErrors.IsValidationError(err), financeErrors.IsInvalidReference(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Println(fallback+":", err.Error())
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
