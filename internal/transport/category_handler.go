package transport

import (
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryRequest represents the create/update payload
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse wraps a single category
type CategoryResponse struct {
	middleware.Envelope
	Category *domain.Category `json:"category"`
}

// CategoryListResponse wraps the category listing
type CategoryListResponse struct {
	middleware.Envelope
	Categories []*domain.Category `json:"categories"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers the category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/v1/category", func(r chi.Router) {
		r.Get("/get-category", h.List)
		r.Get("/single-category/{slug}", h.GetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/create-category", h.Create)
			r.Put("/update-category/{id}", h.Update)
			r.Delete("/delete-category/{id}", h.Delete)
		})
	})
}

func validateCategoryName(name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		return "Name is required", false
	}
	if len(name) > 100 {
		return "Name can not be longer than 100 characters", false
	}
	return "", true
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := validateCategoryName(req.Name); !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	category, err := h.categoryService.Create(r.Context(), req.Name)
	if err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "Category already exists")
			return
		}
		h.logger.Error("Category creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, CategoryResponse{
		Envelope: middleware.Envelope{Success: true, Message: "Category created successfully"},
		Category: category,
	})
}

// Update handles category renaming. An unknown id yields 400, matching
// the original API.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := validateCategoryName(req.Name); !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, req.Name)
	if err != nil {
		switch err {
		case repository.ErrCategoryNotFound:
			middleware.RespondWithError(w, http.StatusBadRequest, "Category not found")
		case repository.ErrCategoryAlreadyExists:
			middleware.RespondWithError(w, http.StatusConflict, "Category already exists")
		default:
			h.logger.Error("Category update failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoryResponse{
		Envelope: middleware.Envelope{Success: true, Message: "Category updated successfully"},
		Category: category,
	})
}

// Delete handles category deletion; unknown id yields 400 like Update
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusBadRequest, "Category not found")
			return
		}
		h.logger.Error("Category deletion failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.Envelope{
		Success: true,
		Message: "Category deleted successfully",
	})
}

// List returns all categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		h.logger.Error("Category listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoryListResponse{
		Envelope:   middleware.Envelope{Success: true},
		Categories: categories,
	})
}

// GetBySlug returns a single category
func (h *CategoryHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.categoryService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("Category lookup failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoryResponse{
		Envelope: middleware.Envelope{Success: true},
		Category: category,
	})
}
