package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/Gurilao-dev/loja/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProductStore struct {
	products map[primitive.ObjectID]*models.Product
	adjusted []adjustment
}

type adjustment struct {
	id         primitive.ObjectID
	stockDelta int
	salesDelta int
}

func (f *fakeProductStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (f *fakeProductStore) AdjustStock(_ context.Context, id primitive.ObjectID, stockDelta, salesDelta int) error {
	p, ok := f.products[id]
	if !ok {
		return errors.New("not found")
	}
	if stockDelta < 0 && p.Stock < -stockDelta {
		return errors.New("insufficient stock")
	}
	p.Stock += stockDelta
	p.Sales += int64(salesDelta)
	f.adjusted = append(f.adjusted, adjustment{id: id, stockDelta: stockDelta, salesDelta: salesDelta})
	return nil
}

type fakeOrderStore struct {
	created []*models.Order
}

func (f *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	f.created = append(f.created, order)
	return nil
}

type fakeCartStore struct {
	cleared []primitive.ObjectID
	err     error
}

func (f *fakeCartStore) Clear(_ context.Context, userID primitive.ObjectID) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

type fakeSequenceStore struct {
	seq int64
}

func (f *fakeSequenceStore) Next(_ context.Context, _ string) (int64, error) {
	f.seq++
	return f.seq, nil
}

func newFixture() (*Workflow, *fakeProductStore, *fakeOrderStore, *fakeCartStore, *fakeSequenceStore) {
	products := &fakeProductStore{products: map[primitive.ObjectID]*models.Product{}}
	orders := &fakeOrderStore{}
	carts := &fakeCartStore{}
	sequence := &fakeSequenceStore{}
	return NewWorkflow(products, orders, carts, sequence), products, orders, carts, sequence
}

func addProduct(f *fakeProductStore, price float64, stock int) *models.Product {
	p := &models.Product{
		ID:       primitive.NewObjectID(),
		Name:     "Disjuntor Bipolar 32A",
		Price:    price,
		Stock:    stock,
		IsActive: true,
		Images:   []models.ProductImage{{URL: "/uploads/products/a.jpg", IsPrimary: true}},
	}
	f.products[p.ID] = p
	return p
}

func testCustomer() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Maria Silva",
		Email: "maria@example.com",
		CEP:   "01001-000",
	}
}

func TestPlaceOrderComputesTotals(t *testing.T) {
	wf, products, orders, carts, _ := newFixture()
	p := addProduct(products, 50.0, 10)

	order, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{{ProductID: p.ID.Hex(), Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, 150.0, order.Subtotal)
	assert.Equal(t, 0.0, order.Shipping) // above the free shipping threshold
	assert.Equal(t, 150.0, order.Total)
	assert.Equal(t, models.OrderStatusPendente, order.Status)
	assert.Equal(t, models.PaymentStatusPendente, order.PaymentStatus)
	assert.Len(t, orders.created, 1)
	assert.Len(t, carts.cleared, 1)

	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, int64(3), p.Sales)
}

func TestPlaceOrderShippingBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		price    float64
		quantity int
		shipping float64
	}{
		{"below threshold", 40.0, 2, 15.0},
		{"exactly at threshold", 100.0, 1, 15.0},
		{"above threshold", 60.0, 2, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wf, products, _, _, _ := newFixture()
			p := addProduct(products, tc.price, 100)

			order, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
				Items: []models.CreateOrderItemInput{{ProductID: p.ID.Hex(), Quantity: tc.quantity}},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.shipping, order.Shipping)
			assert.Equal(t, order.Subtotal+order.Shipping, order.Total)
		})
	}
}

func TestPlaceOrderInsufficientStockLeavesCountersUntouched(t *testing.T) {
	wf, products, orders, carts, _ := newFixture()
	ok := addProduct(products, 10.0, 100)
	scarce := addProduct(products, 10.0, 2)

	_, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{
			{ProductID: ok.ID.Hex(), Quantity: 1},
			{ProductID: scarce.ID.Hex(), Quantity: 5},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Validation failed on the second line; the first must not be touched.
	assert.Empty(t, products.adjusted)
	assert.Equal(t, 100, ok.Stock)
	assert.Equal(t, 2, scarce.Stock)
	assert.Empty(t, orders.created)
	assert.Empty(t, carts.cleared)
}

func TestPlaceOrderRejectsInactiveProduct(t *testing.T) {
	wf, products, _, _, _ := newFixture()
	p := addProduct(products, 10.0, 100)
	p.IsActive = false

	_, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{{ProductID: p.ID.Hex(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestPlaceOrderRejectsUnknownProduct(t *testing.T) {
	wf, _, _, _, _ := newFixture()

	_, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestPlaceOrderRejectsDuplicateLines(t *testing.T) {
	wf, products, _, _, _ := newFixture()
	p := addProduct(products, 10.0, 100)

	_, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{
			{ProductID: p.ID.Hex(), Quantity: 1},
			{ProductID: p.ID.Hex(), Quantity: 2},
		},
	})
	assert.Error(t, err)
	assert.Equal(t, 100, p.Stock)
}

func TestPlaceOrderRejectsEmptyOrder(t *testing.T) {
	wf, _, _, _, _ := newFixture()

	_, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestPlaceOrderSequentialNumbers(t *testing.T) {
	wf, products, _, _, _ := newFixture()
	p := addProduct(products, 10.0, 100)

	first, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{{ProductID: p.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)
	second, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{{ProductID: p.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, "PED000001", first.OrderNumber)
	assert.Equal(t, "PED000002", second.OrderNumber)
}

func TestPlaceOrderSnapshotSurvivesProductEdits(t *testing.T) {
	wf, products, _, _, _ := newFixture()
	p := addProduct(products, 25.0, 100)

	order, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{{ProductID: p.ID.Hex(), Quantity: 2}},
	})
	require.NoError(t, err)

	p.Name = "renamed"
	p.Price = 99.99
	p.Images = nil

	item := order.Items[0]
	assert.Equal(t, "Disjuntor Bipolar 32A", item.ProductName)
	assert.Equal(t, 25.0, item.UnitPrice)
	assert.Equal(t, "/uploads/products/a.jpg", item.ProductImage)
	assert.Equal(t, 50.0, item.TotalPrice)
}

func TestPlaceOrderDefaultsPaymentAndAddress(t *testing.T) {
	wf, products, _, _, _ := newFixture()
	p := addProduct(products, 10.0, 100)
	customer := testCustomer()

	order, err := wf.PlaceOrder(context.Background(), customer, &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{{ProductID: p.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentMethodDinheiro, order.PaymentMethod)
	assert.Equal(t, customer.CEP, order.ShippingAddress.CEP)
}

func TestPlaceOrderCartClearFailureDoesNotFailOrder(t *testing.T) {
	wf, products, orders, carts, _ := newFixture()
	carts.err = errors.New("cart gone")
	p := addProduct(products, 10.0, 100)

	order, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{{ProductID: p.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Len(t, orders.created, 1)
}

func TestRestoreStockReversesExactQuantities(t *testing.T) {
	wf, products, _, _, _ := newFixture()
	p := addProduct(products, 10.0, 50)

	order, err := wf.PlaceOrder(context.Background(), testCustomer(), &models.CreateOrderInput{
		Items: []models.CreateOrderItemInput{{ProductID: p.ID.Hex(), Quantity: 8}},
	})
	require.NoError(t, err)
	require.Equal(t, 42, p.Stock)
	require.Equal(t, int64(8), p.Sales)

	require.NoError(t, wf.RestoreStock(context.Background(), order))
	assert.Equal(t, 50, p.Stock)
	assert.Equal(t, int64(0), p.Sales)
}
