package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func cartFixture() (*Cart, map[primitive.ObjectID]*Product) {
	active := &Product{ID: primitive.NewObjectID(), Name: "Fita Isolante", Price: 50.0, IsActive: true}
	inactive := &Product{ID: primitive.NewObjectID(), Name: "Cabo Antigo", Price: 20.0, IsActive: false}

	cart := &Cart{
		ID:   primitive.NewObjectID(),
		User: primitive.NewObjectID(),
		Items: []CartItem{
			{ID: primitive.NewObjectID(), Product: active.ID, Quantity: 3},
			{ID: primitive.NewObjectID(), Product: inactive.ID, Quantity: 2},
			{ID: primitive.NewObjectID(), Product: primitive.NewObjectID(), Quantity: 1}, // deleted product
		},
	}
	return cart, map[primitive.ObjectID]*Product{
		active.ID:   active,
		inactive.ID: inactive,
	}
}

func TestBuildCartViewDropsUnavailableLines(t *testing.T) {
	cart, products := cartFixture()

	view := BuildCartView(cart, products)

	assert.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.TotalItems)
	assert.Equal(t, 150.0, view.TotalPrice)
	assert.Equal(t, 150.0, view.Items[0].ItemTotal)
}

func TestBuildCartViewUsesCurrentPrices(t *testing.T) {
	cart, products := cartFixture()

	// The price changed since the item was added; totals follow the catalog.
	for _, p := range products {
		if p.IsActive {
			p.Price = 60.0
		}
	}

	view := BuildCartView(cart, products)
	assert.Equal(t, 180.0, view.TotalPrice)
}

func TestRecomputeTotalsReportsChange(t *testing.T) {
	cart, products := cartFixture()

	changed := cart.RecomputeTotals(products)
	assert.True(t, changed)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, 150.0, cart.TotalPrice)

	// A second pass over the same catalog is a no-op.
	changed = cart.RecomputeTotals(products)
	assert.False(t, changed)
}

func TestRecomputeTotalsEmptyCart(t *testing.T) {
	cart := &Cart{Items: []CartItem{}}
	changed := cart.RecomputeTotals(map[primitive.ObjectID]*Product{})
	assert.False(t, changed)
	assert.Equal(t, 0, cart.TotalItems)
	assert.Equal(t, 0.0, cart.TotalPrice)
}
