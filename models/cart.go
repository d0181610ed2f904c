package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Quantity int                `json:"quantity" bson:"quantity"`
	AddedAt  time.Time          `json:"added_at" bson:"added_at"`
}

// Cart is the per-user mutable item list. One cart per user; created lazily
// on first add and cleared on order placement.
type Cart struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User        primitive.ObjectID `json:"user" bson:"user"`
	Items       []CartItem         `json:"items" bson:"items"`
	TotalItems  int                `json:"total_items" bson:"total_items"`
	TotalPrice  float64            `json:"total_price" bson:"total_price"`
	LastUpdated time.Time          `json:"last_updated" bson:"last_updated"`
}

// CartViewItem is a cart line joined with its live product and the line total
// at the product's current price.
type CartViewItem struct {
	ID        primitive.ObjectID `json:"id"`
	Product   *Product           `json:"product"`
	Quantity  int                `json:"quantity"`
	ItemTotal float64            `json:"item_total"`
	AddedAt   time.Time          `json:"added_at"`
}

type CartView struct {
	ID          primitive.ObjectID `json:"id"`
	User        primitive.ObjectID `json:"user"`
	Items       []CartViewItem     `json:"items"`
	TotalItems  int                `json:"total_items"`
	TotalPrice  float64            `json:"total_price"`
	LastUpdated time.Time          `json:"last_updated"`
}

// BuildCartView joins the cart lines with their current products, silently
// dropping lines whose product is missing or has gone inactive, and computes
// totals from current prices. Cart totals are never snapshots.
func BuildCartView(cart *Cart, products map[primitive.ObjectID]*Product) *CartView {
	view := &CartView{
		ID:          cart.ID,
		User:        cart.User,
		Items:       []CartViewItem{},
		LastUpdated: cart.LastUpdated,
	}

	for _, item := range cart.Items {
		product, ok := products[item.Product]
		if !ok || !product.IsActive {
			continue
		}

		itemTotal := product.Price * float64(item.Quantity)
		view.Items = append(view.Items, CartViewItem{
			ID:        item.ID,
			Product:   product,
			Quantity:  item.Quantity,
			ItemTotal: itemTotal,
			AddedAt:   item.AddedAt,
		})
		view.TotalItems += item.Quantity
		view.TotalPrice += itemTotal
	}

	return view
}

// RecomputeTotals recalculates the persisted totals from the given product
// prices, skipping lines without a matching active product. It returns true
// when the stored totals or item list changed.
func (c *Cart) RecomputeTotals(products map[primitive.ObjectID]*Product) bool {
	activeItems := make([]CartItem, 0, len(c.Items))
	totalItems := 0
	totalPrice := 0.0

	for _, item := range c.Items {
		product, ok := products[item.Product]
		if !ok || !product.IsActive {
			continue
		}
		activeItems = append(activeItems, item)
		totalItems += item.Quantity
		totalPrice += product.Price * float64(item.Quantity)
	}

	changed := totalItems != c.TotalItems ||
		totalPrice != c.TotalPrice ||
		len(activeItems) != len(c.Items)

	c.Items = activeItems
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice

	return changed
}

type AddCartItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}
