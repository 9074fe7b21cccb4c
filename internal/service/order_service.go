package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidOrderStatus = errors.New("invalid order status is provided")
	ErrEmptyCart          = errors.New("cart is empty")
)

// OrderService defines the interface for order and checkout business logic
type OrderService interface {
	ClientToken(ctx context.Context) (string, error)
	Checkout(ctx context.Context, buyerID uuid.UUID, lines []cart.Line, nonce string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	gateway     payment.Gateway
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	gateway payment.Gateway,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
	}
}

// ClientToken returns a gateway token for the browser SDK
func (s *orderService) ClientToken(ctx context.Context) (string, error) {
	return s.gateway.ClientToken(ctx)
}

// Checkout charges the cart total against the payment nonce and, on
// success, records an order snapshotting the cart. The total is the sum of
// unit prices; quantity does not enter the sum (see DESIGN.md).
func (s *orderService) Checkout(ctx context.Context, buyerID uuid.UUID, lines []cart.Line, nonce string) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.productRepo.FindBySlug(ctx, line.Slug)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}

	total := domain.NormalizePrice(cart.Total(lines))

	result, err := s.gateway.Sale(ctx, total, nonce)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:            uuid.New(),
		BuyerID:       buyerID,
		Status:        domain.StatusNotProcessed,
		PaymentOK:     result.Success,
		TransactionID: result.TransactionID,
		Amount:        total,
		Items:         items,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	return order, nil
}

// ListByBuyer retrieves a buyer's orders, newest first
func (s *orderService) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListByBuyer(ctx, buyerID)
}

// ListAll retrieves every order, newest first
func (s *orderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.ListAll(ctx)
}

// UpdateStatus sets an order's status to any enumerated value; there are
// no disallowed transitions
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(ctx, orderID)
}
