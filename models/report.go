package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SalesBucketKey is the grouping key of a time-bucketed sales rollup.
// Week/Day are zero unless the report was grouped that way.
type SalesBucketKey struct {
	Year  int `json:"year" bson:"year"`
	Month int `json:"month,omitempty" bson:"month,omitempty"`
	Week  int `json:"week,omitempty" bson:"week,omitempty"`
	Day   int `json:"day,omitempty" bson:"day,omitempty"`
}

type SalesBucket struct {
	Key               SalesBucketKey `json:"key" bson:"_id"`
	TotalRevenue      float64        `json:"total_revenue" bson:"total_revenue"`
	TotalOrders       int64          `json:"total_orders" bson:"total_orders"`
	AverageOrderValue float64        `json:"average_order_value" bson:"average_order_value"`
}

// TopProduct is one row of the best-sellers report, aggregated from order
// item snapshots.
type TopProduct struct {
	ProductID     primitive.ObjectID `json:"product_id" bson:"_id"`
	ProductName   string             `json:"product_name" bson:"product_name"`
	TotalQuantity int64              `json:"total_quantity" bson:"total_quantity"`
	TotalRevenue  float64            `json:"total_revenue" bson:"total_revenue"`
}

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	TotalUsers     int64   `json:"total_users"`
	TotalProducts  int64   `json:"total_products"`
	TotalOrders    int64   `json:"total_orders"`
	TotalRevenue   float64 `json:"total_revenue"`
	PendingOrders  int64   `json:"pending_orders"`
	UnreadMessages int64   `json:"unread_messages"`
}

// QuickStats is the lightweight polling endpoint payload.
type QuickStats struct {
	TodayOrders      int64   `json:"today_orders"`
	TodayRevenue     float64 `json:"today_revenue"`
	PendingOrders    int64   `json:"pending_orders"`
	LowStockProducts int64   `json:"low_stock_products"`
	UnreadMessages   int64   `json:"unread_messages"`
}
