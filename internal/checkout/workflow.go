// Package checkout implements the order placement and cancellation workflow:
// validate every line against the catalog, snapshot item data, persist the
// order under a sequential number, then mutate stock/sales counters and clear
// the cart.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gurilao-dev/loja/models"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrProductUnavailable marks a line whose product is missing or inactive.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock marks a line whose quantity exceeds current stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrEmptyOrder rejects a checkout without lines.
	ErrEmptyOrder = errors.New("order must contain at least one item")
)

type ProductStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	AdjustStock(ctx context.Context, id primitive.ObjectID, stockDelta, salesDelta int) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
}

type CartStore interface {
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type SequenceStore interface {
	Next(ctx context.Context, name string) (int64, error)
}

type Workflow struct {
	products ProductStore
	orders   OrderStore
	carts    CartStore
	sequence SequenceStore
}

func NewWorkflow(products ProductStore, orders OrderStore, carts CartStore, sequence SequenceStore) *Workflow {
	return &Workflow{
		products: products,
		orders:   orders,
		carts:    carts,
		sequence: sequence,
	}
}

// PlaceOrder runs the checkout sequence for a customer. Every line is checked
// before any write: a missing, inactive or under-stocked product aborts the
// whole operation with no stock touched. On success the order record holds an
// immutable snapshot of each product's name, primary image and unit price.
//
// The stock decrement and cart clear are not transactional with the order
// insert; a failure there is logged and surfaced without compensation.
func (w *Workflow) PlaceOrder(ctx context.Context, customer *models.User, input *models.CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	// Pass 1: validate everything, snapshot nothing permanent yet.
	seen := make(map[primitive.ObjectID]bool, len(input.Items))
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	subtotal := 0.0

	for _, line := range input.Items {
		productID, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, ErrProductUnavailable)
		}
		if seen[productID] {
			return nil, fmt.Errorf("duplicate product %s in order", line.ProductID)
		}
		seen[productID] = true

		product, err := w.products.GetByID(ctx, productID)
		if err != nil || !product.IsActive {
			return nil, fmt.Errorf("product %s: %w", line.ProductID, ErrProductUnavailable)
		}
		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("product %s (available %d): %w",
				product.Name, product.Stock, ErrInsufficientStock)
		}

		itemTotal := product.Price * float64(line.Quantity)
		subtotal += itemTotal

		orderItems = append(orderItems, models.OrderItem{
			Product:      product.ID,
			ProductName:  product.Name,
			ProductImage: product.PrimaryImageURL(),
			Quantity:     line.Quantity,
			UnitPrice:    product.Price,
			TotalPrice:   itemTotal,
		})
	}

	shipping := models.ShippingFor(subtotal)

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodDinheiro
	}
	if !models.IsValidPaymentMethod(paymentMethod) {
		return nil, fmt.Errorf("invalid payment method %q", paymentMethod)
	}

	shippingAddress := models.ShippingAddress{CEP: customer.CEP}
	if input.ShippingAddress != nil {
		shippingAddress = *input.ShippingAddress
	}

	seq, err := w.sequence.Next(ctx, "order_number")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	order := &models.Order{
		OrderNumber: models.FormatOrderNumber(seq),
		Customer:    customer.ID,
		CustomerInfo: models.CustomerInfo{
			Name:  customer.Name,
			Email: customer.Email,
			Phone: customer.Phone,
			CPF:   customer.CPF,
		},
		Items:           orderItems,
		Subtotal:        subtotal,
		Shipping:        shipping,
		Total:           subtotal + shipping,
		Status:          models.OrderStatusPendente,
		PaymentStatus:   models.PaymentStatusPendente,
		PaymentMethod:   paymentMethod,
		ShippingAddress: shippingAddress,
		Notes:           input.Notes,
	}

	if err := w.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	// Pass 2: guarded atomic decrements. A failure here leaves the order in
	// place and is reported, not rolled back.
	for _, item := range order.Items {
		if err := w.products.AdjustStock(ctx, item.Product, -item.Quantity, item.Quantity); err != nil {
			log.Error().
				Err(err).
				Str("order", order.OrderNumber).
				Str("product", item.Product.Hex()).
				Msg("stock decrement failed after order persisted")
			return order, fmt.Errorf("order %s created but stock update failed: %w", order.OrderNumber, err)
		}
	}

	if err := w.carts.Clear(ctx, customer.ID); err != nil {
		// The order stands; an uncleaned cart only means stale lines.
		log.Warn().Err(err).Str("order", order.OrderNumber).Msg("failed to clear cart after checkout")
	}

	return order, nil
}

// RestoreStock reverses the stock/sales mutation of a cancelled order by
// exactly the ordered quantities, regardless of elapsed time.
func (w *Workflow) RestoreStock(ctx context.Context, order *models.Order) error {
	for _, item := range order.Items {
		if err := w.products.AdjustStock(ctx, item.Product, item.Quantity, -item.Quantity); err != nil {
			log.Error().
				Err(err).
				Str("order", order.OrderNumber).
				Str("product", item.Product.Hex()).
				Msg("stock restore failed during cancellation")
			return fmt.Errorf("failed to restore stock for order %s: %w", order.OrderNumber, err)
		}
	}
	return nil
}
