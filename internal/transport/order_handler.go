package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStatusRequest represents the status update payload
type OrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderListResponse wraps an order listing
type OrderListResponse struct {
	middleware.Envelope
	Orders []*domain.Order `json:"orders"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers the order routes on an already-authenticated
// subrouter. They live under the auth prefix, matching the original API
// layout, so AuthHandler passes its protected group here.
func (h *OrderHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Get("/orders", h.ListMine)

	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Get("/all-orders", h.ListAll)
		r.Put("/order-status/{orderId}", h.UpdateStatus)
	})
}

// ListMine returns the authenticated buyer's orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized access")
		return
	}

	orders, err := h.orderService.ListByBuyer(r.Context(), buyerID)
	if err != nil {
		h.logger.Error("Order listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{
		Envelope: middleware.Envelope{Success: true},
		Orders:   orders,
	})
}

// ListAll returns every order for the admin dashboard
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Order listing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{
		Envelope: middleware.Envelope{Success: true},
		Orders:   orders,
	})
}

// UpdateStatus sets an order's status to any enumerated value
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req OrderStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order status decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		switch err {
		case service.ErrInvalidOrderStatus:
			middleware.RespondWithError(w, http.StatusBadRequest, "Invalid order status is provided")
		case repository.ErrOrderNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "Order not found")
		default:
			h.logger.Error("Order status update failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{
		Envelope: middleware.Envelope{Success: true, Message: "Order status updated successfully"},
		Order:    order,
	})
}
