package interfaces

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/moneylogger/moneylogger/internal/expense/application"
	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/domain"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
)

type CategoryServiceInterface interface {
	Save(userID string, category *domain.Category) (*domain.Category, error)
	PartialUpdate(userID string, id int64, patch application.CategoryPatch) (*domain.Category, error)
	FindOne(userID string, id int64) (*domain.Category, error)
	Delete(userID string, id int64) error
	FindByCriteria(userID string, c *criteria.CategoryCriteria, page criteria.Pageable) ([]domain.Category, error)
	CountByCriteria(userID string, c *criteria.CategoryCriteria) (int64, error)
}

type CategoryHandler struct {
	service      CategoryServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewCategoryHandler(
	service CategoryServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *CategoryHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	if respondJSON == nil || respondError == nil {
		log.Fatal("Respond functions must not be nil")
		return nil
	}
	return &CategoryHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if dto.ID != nil {
		h.respondError(w, http.StatusBadRequest, "A new category cannot already have an id")
		return
	}

	category, err := toCategoryEntity(&dto)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.service.Save(userID, category)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create category")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully created.",
		"data":    toCategoryDTO(saved),
	})
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if dto.ID == nil {
		h.respondError(w, http.StatusBadRequest, "Category id is required")
		return
	}
	if *dto.ID != id {
		h.respondError(w, http.StatusBadRequest, "Category id does not match the URL")
		return
	}

	category, err := toCategoryEntity(&dto)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := h.service.Save(userID, category)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update category")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully updated.",
		"data":    toCategoryDTO(saved),
	})
}

func (h *CategoryHandler) PartialUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	var dto CategoryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if dto.ID == nil {
		h.respondError(w, http.StatusBadRequest, "Category id is required")
		return
	}
	if *dto.ID != id {
		h.respondError(w, http.StatusBadRequest, "Category id does not match the URL")
		return
	}

	updated, err := h.service.PartialUpdate(userID, id, application.CategoryPatch{Name: dto.Name})
	if err != nil {
		h.respondServiceError(w, err, "Failed to update category")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully updated.",
		"data":    toCategoryDTO(updated),
	})
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	category, err := h.service.FindOne(userID, id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get category")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toCategoryDTO(category),
	})
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	if err := h.service.Delete(userID, id); err != nil {
		h.respondServiceError(w, err, "Failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	categoryCriteria, err := parseCategoryCriteria(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageable, err := parsePageable(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := h.service.FindByCriteria(userID, categoryCriteria, pageable)
	if err != nil {
		h.respondServiceError(w, err, "Failed to list categories")
		return
	}
	total, err := h.service.CountByCriteria(userID, categoryCriteria)
	if err != nil {
		h.respondServiceError(w, err, "Failed to list categories")
		return
	}

	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toCategoryDTOs(categories),
	})
}

func (h *CategoryHandler) CountCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	categoryCriteria, err := parseCategoryCriteria(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	total, err := h.service.CountByCriteria(userID, categoryCriteria)
	if err != nil {
		h.respondServiceError(w, err, "Failed to count categories")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   total,
	})
}

func (h *CategoryHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
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
