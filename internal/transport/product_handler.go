package transport

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxMultipartMemory bounds in-memory multipart parsing; photos above
// domain.MaxPhotoSize are rejected before being read.
const maxMultipartMemory = 4 << 20

// ProductResponse wraps a single product
type ProductResponse struct {
	middleware.Envelope
	Product *domain.Product `json:"product"`
}

// ProductListResponse wraps a product listing
type ProductListResponse struct {
	middleware.Envelope
	Products []*domain.Product `json:"products"`
}

// ProductCountResponse wraps the catalog size
type ProductCountResponse struct {
	middleware.Envelope
	Total int `json:"total"`
}

// CategoryProductsResponse wraps a category together with its products
type CategoryProductsResponse struct {
	middleware.Envelope
	Category *domain.Category  `json:"category"`
	Products []*domain.Product `json:"products"`
}

// FilterRequest represents the product-filters payload: an optional
// category-id set and an optional [min, max] price pair
type FilterRequest struct {
	Categories []string  `json:"categories"`
	Price      []float64 `json:"price"`
}

// TokenResponse wraps a gateway client token
type TokenResponse struct {
	middleware.Envelope
	ClientToken string `json:"clientToken"`
}

// PaymentRequest represents the checkout payload
type PaymentRequest struct {
	Nonce string      `json:"nonce"`
	Cart  []cart.Line `json:"cart"`
}

// OrderResponse wraps a single order
type OrderResponse struct {
	middleware.Envelope
	Order *domain.Order `json:"order"`
}

// ProductHandler handles HTTP requests for catalog and checkout operations
type ProductHandler struct {
	productService service.ProductService
	orderService   service.OrderService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, orderService service.OrderService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		orderService:   orderService,
		logger:         logger,
	}
}

// RegisterRoutes registers the product and checkout routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/v1/product", func(r chi.Router) {
		r.Get("/get-product", h.ListAll)
		r.Get("/get-product/{slug}", h.GetBySlug)
		r.Get("/product-photo/{pid}", h.Photo)
		r.Get("/product-list/{page}", h.ListPage)
		r.Get("/product-count", h.Count)
		r.Post("/product-filters", h.Filter)
		r.Get("/search/{keyword}/{page}", h.Search)
		r.Get("/related-product/{pid}/{cid}", h.Related)
		r.Get("/product-category/{slug}", h.ByCategory)

		r.Get("/braintree/token", h.BraintreeToken)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/braintree/payment", h.BraintreePayment)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/create-product", h.Create)
			r.Put("/update-product/{pid}", h.Update)
			r.Delete("/delete-product/{pid}", h.Delete)
		})
	})
}

// parseProductForm validates the multipart fields in order, stopping at
// the first failure
func parseProductForm(r *http.Request) (service.ProductInput, string, bool) {
	var input service.ProductInput

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return input, "invalid multipart form", false
	}

	name := r.FormValue("name")
	if strings.TrimSpace(name) == "" {
		return input, "Name is required", false
	}
	if len(name) > 100 {
		return input, "Name can not be longer than 100 characters", false
	}

	description := r.FormValue("description")
	if strings.TrimSpace(description) == "" {
		return input, "Description is required", false
	}
	if len(description) > 500 {
		return input, "Description can not be longer than 500 characters", false
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil || !price.IsPositive() {
		return input, "Price must be a number greater than zero", false
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity <= 0 {
		return input, "Quantity must be a positive whole number", false
	}

	shipping := r.FormValue("shipping")
	if shipping != "0" && shipping != "1" {
		return input, "Shipping must be either 0 or 1", false
	}

	categoryID, err := uuid.Parse(r.FormValue("category"))
	if err != nil {
		return input, "Category is not a valid id", false
	}

	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		if header.Size > domain.MaxPhotoSize {
			return input, "Photo should be less than 1MB in size", false
		}
		photo, err := io.ReadAll(io.LimitReader(file, domain.MaxPhotoSize+1))
		if err != nil || len(photo) > domain.MaxPhotoSize {
			return input, "Photo should be less than 1MB in size", false
		}
		input.Photo = photo
		input.PhotoContentType = header.Header.Get("Content-Type")
		if input.PhotoContentType == "" {
			input.PhotoContentType = http.DetectContentType(photo)
		}
	} else if err != http.ErrMissingFile {
		return input, "invalid photo upload", false
	}

	input.Name = name
	input.Description = description
	input.Price = price
	input.Quantity = quantity
	input.Shipping = shipping == "1"
	input.CategoryID = categoryID

	return input, "", true
}

func (h *ProductHandler) respondProductError(w http.ResponseWriter, err error) {
	switch err {
	case repository.ErrProductNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
	case repository.ErrProductAlreadyExists:
		middleware.RespondWithError(w, http.StatusConflict, "Product with this name already exists")
	case repository.ErrCategoryNotFound:
		middleware.RespondWithError(w, http.StatusBadRequest, "Category does not exist")
	default:
		h.logger.Error("Product operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Create handles product creation (multipart)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, msg, ok := parseProductForm(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, ProductResponse{
		Envelope: middleware.Envelope{Success: true, Message: "Product created successfully"},
		Product:  product,
	})
}

// Update handles product updates (multipart)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	input, msg, ok := parseProductForm(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{
		Envelope: middleware.Envelope{Success: true, Message: "Product updated successfully"},
		Product:  product,
	})
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, middleware.Envelope{
		Success: true,
		Message: "Product deleted successfully",
	})
}

// ListAll returns the newest products without photos
func (h *ProductHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListAll(r.Context())
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Envelope: middleware.Envelope{Success: true},
		Products: products,
	})
}

// GetBySlug returns a single product
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{
		Envelope: middleware.Envelope{Success: true},
		Product:  product,
	})
}

// Photo streams a product's photo with its stored content type
func (h *ProductHandler) Photo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	photo, contentType, err := h.productService.Photo(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound || err == repository.ErrPhotoNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "Photo not found")
			return
		}
		h.respondProductError(w, err)
		return
	}

	if contentType == "" {
		contentType = http.DetectContentType(photo)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(photo)
}

// parsePage validates a positive-integer page argument
func parsePage(raw string) (int, bool) {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// ListPage returns one fixed-size page of products
func (h *ProductHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(chi.URLParam(r, "page"))
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Page must be a positive number")
		return
	}

	products, err := h.productService.List(r.Context(), page)
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Envelope: middleware.Envelope{Success: true},
		Products: products,
	})
}

// Count returns the total product count
func (h *ProductHandler) Count(w http.ResponseWriter, r *http.Request) {
	total, err := h.productService.Count(r.Context())
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductCountResponse{
		Envelope: middleware.Envelope{Success: true},
		Total:    total,
	})
}

// Filter applies the category-set and price-range predicates
func (h *ProductHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Filter decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryIDs := make([]uuid.UUID, 0, len(req.Categories))
	for _, raw := range req.Categories {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		categoryIDs = append(categoryIDs, id)
	}

	var priceRange *repository.PriceRange
	if len(req.Price) > 0 {
		if len(req.Price) != 2 {
			middleware.RespondWithError(w, http.StatusBadRequest, "Price range must be exactly two numbers")
			return
		}
		priceRange = &repository.PriceRange{
			Min: decimal.NewFromFloat(req.Price[0]),
			Max: decimal.NewFromFloat(req.Price[1]),
		}
	}

	products, err := h.productService.Filter(r.Context(), categoryIDs, priceRange)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Envelope: middleware.Envelope{Success: true},
		Products: products,
	})
}

// Search finds products by keyword, paginated
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	if keyword == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "Keyword is required")
		return
	}
	if len(keyword) > 100 {
		middleware.RespondWithError(w, http.StatusBadRequest, "Keyword is too long")
		return
	}

	page, ok := parsePage(chi.URLParam(r, "page"))
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "Page must be a positive number")
		return
	}

	products, err := h.productService.Search(r.Context(), keyword, page)
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Envelope: middleware.Envelope{Success: true},
		Products: products,
	})
}

// Related returns other products from the same category
func (h *ProductHandler) Related(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	categoryID, err := uuid.Parse(chi.URLParam(r, "cid"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	products, err := h.productService.Related(r.Context(), productID, categoryID)
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Envelope: middleware.Envelope{Success: true},
		Products: products,
	})
}

// ByCategory returns a category and its products
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category, products, err := h.productService.ByCategorySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.respondProductError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoryProductsResponse{
		Envelope: middleware.Envelope{Success: true},
		Category: category,
		Products: products,
	})
}

// BraintreeToken returns a client token for the browser payment SDK
func (h *ProductHandler) BraintreeToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.orderService.ClientToken(r.Context())
	if err != nil {
		h.logger.Error("Client token generation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to generate client token")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, TokenResponse{
		Envelope:    middleware.Envelope{Success: true},
		ClientToken: token,
	})
}

// BraintreePayment charges the cart and records the order
func (h *ProductHandler) BraintreePayment(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
		return
	}

	var req PaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Payment decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Nonce == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "Payment nonce is required")
		return
	}

	order, err := h.orderService.Checkout(r.Context(), buyerID, req.Cart, req.Nonce)
	if err != nil {
		switch err {
		case service.ErrEmptyCart:
			middleware.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusBadRequest, "Cart contains an unknown product")
		default:
			h.logger.Error("Payment failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Payment failed")
		}
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("buyer_id", buyerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{
		Envelope: middleware.Envelope{Success: true, Message: "Payment completed successfully"},
		Order:    order,
	})
}
