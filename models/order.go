package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPendente   OrderStatus = "pendente"
	OrderStatusConfirmado OrderStatus = "confirmado"
	OrderStatusPreparando OrderStatus = "preparando"
	OrderStatusEnviado    OrderStatus = "enviado"
	OrderStatusEntregue   OrderStatus = "entregue"
	OrderStatusCancelado  OrderStatus = "cancelado"
)

func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPendente, OrderStatusConfirmado, OrderStatusPreparando,
		OrderStatusEnviado, OrderStatusEntregue, OrderStatusCancelado:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPendente  PaymentStatus = "pendente"
	PaymentStatusPago      PaymentStatus = "pago"
	PaymentStatusCancelado PaymentStatus = "cancelado"
	PaymentStatusEstornado PaymentStatus = "estornado"
)

func IsValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPendente, PaymentStatusPago, PaymentStatusCancelado, PaymentStatusEstornado:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodDinheiro PaymentMethod = "dinheiro"
	PaymentMethodCartao   PaymentMethod = "cartao"
	PaymentMethodPix      PaymentMethod = "pix"
	PaymentMethodBoleto   PaymentMethod = "boleto"
)

func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodDinheiro, PaymentMethodCartao, PaymentMethodPix, PaymentMethodBoleto:
		return true
	}
	return false
}

// OrderItem is an immutable snapshot of the product at purchase time. Later
// catalog edits never alter it.
type OrderItem struct {
	Product      primitive.ObjectID `json:"product" bson:"product"`
	ProductName  string             `json:"product_name" bson:"product_name"`
	ProductImage string             `json:"product_image" bson:"product_image"`
	Quantity     int                `json:"quantity" bson:"quantity"`
	UnitPrice    float64            `json:"unit_price" bson:"unit_price"`
	TotalPrice   float64            `json:"total_price" bson:"total_price"`
	Discount     float64            `json:"discount" bson:"discount"`
}

type CustomerInfo struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
	CPF   string `json:"cpf" bson:"cpf"`
}

type ShippingAddress struct {
	Street       string `json:"street" bson:"street"`
	Number       string `json:"number" bson:"number"`
	Complement   string `json:"complement" bson:"complement"`
	Neighborhood string `json:"neighborhood" bson:"neighborhood"`
	City         string `json:"city" bson:"city"`
	State        string `json:"state" bson:"state"`
	CEP          string `json:"cep" bson:"cep"`
}

type Order struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber       string             `json:"order_number" bson:"order_number"`
	Customer          primitive.ObjectID `json:"customer" bson:"customer"`
	CustomerInfo      CustomerInfo       `json:"customer_info" bson:"customer_info"`
	Items             []OrderItem        `json:"items" bson:"items"`
	Subtotal          float64            `json:"subtotal" bson:"subtotal"`
	Discount          float64            `json:"discount" bson:"discount"`
	Shipping          float64            `json:"shipping" bson:"shipping"`
	Total             float64            `json:"total" bson:"total"`
	Status            OrderStatus        `json:"status" bson:"status"`
	PaymentStatus     PaymentStatus      `json:"payment_status" bson:"payment_status"`
	PaymentMethod     PaymentMethod      `json:"payment_method" bson:"payment_method"`
	ShippingAddress   ShippingAddress    `json:"shipping_address" bson:"shipping_address"`
	Notes             string             `json:"notes" bson:"notes"`
	EstimatedDelivery *time.Time         `json:"estimated_delivery,omitempty" bson:"estimated_delivery,omitempty"`
	DeliveredAt       *time.Time         `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	CanceledAt        *time.Time         `json:"canceled_at,omitempty" bson:"canceled_at,omitempty"`
	CancelReason      string             `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// FreeShippingThreshold is the flat rule: orders above it ship free,
// everything else pays FlatShippingFee.
const (
	FreeShippingThreshold = 100.0
	FlatShippingFee       = 15.0
)

// ShippingFor applies the flat threshold rule to a subtotal.
func ShippingFor(subtotal float64) float64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// FormatOrderNumber renders a sequence value as the public order number.
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("PED%06d", seq)
}

type CreateOrderInput struct {
	Items           []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingAddress *ShippingAddress       `json:"shipping_address"`
	PaymentMethod   PaymentMethod          `json:"payment_method"`
	Notes           string                 `json:"notes"`
}

type CreateOrderItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type UpdateOrderStatusInput struct {
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CancelReason  string        `json:"cancel_reason"`
}

// OrderListQuery carries the admin order filters.
type OrderListQuery struct {
	Status    OrderStatus
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int64
	Limit     int64
}
