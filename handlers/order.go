package handlers

import (
	"net/http"
	"time"

	"github.com/Gurilao-dev/loja/internal/checkout"
	"github.com/Gurilao-dev/loja/middleware"
	"github.com/Gurilao-dev/loja/models"
	"github.com/Gurilao-dev/loja/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderHandler struct {
	orders   *store.MongoOrderStore
	workflow *checkout.Workflow
}

func NewOrderHandler(orders *store.MongoOrderStore, workflow *checkout.Workflow) *OrderHandler {
	return &OrderHandler{orders: orders, workflow: workflow}
}

func (h *OrderHandler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.Middleware) {
	group := r.Group("/orders", mw.RequireAuth())
	group.POST("", h.Create)
	group.GET("/my-orders", h.MyOrders)
	group.GET("/:id", h.Get)

	admin := group.Group("", mw.RequireAdmin())
	admin.GET("", h.List)
	admin.PATCH("/:id/status", h.UpdateStatus)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var input models.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	order, err := h.workflow.PlaceOrder(c.Request.Context(), user, &input)
	if err != nil {
		if order != nil {
			// Order persisted, a later step failed. Surface it but hand the
			// order back so the customer is not charged twice.
			log.Error().Err(err).Str("order", order.OrderNumber).Msg("checkout finished with errors")
			respondCreated(c, "Pedido criado com pendências", gin.H{"order": order})
			return
		}
		respondStoreError(c, err, "Produto não encontrado")
		return
	}

	log.Info().
		Str("order", order.OrderNumber).
		Str("customer", user.ID.Hex()).
		Float64("total", order.Total).
		Msg("order placed")
	respondCreated(c, "Pedido criado com sucesso", gin.H{"order": order})
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	page, limit := pageParams(c, 10)
	status := models.OrderStatus(c.Query("status"))

	user := middleware.CurrentUser(c)
	orders, total, err := h.orders.ListByCustomer(c.Request.Context(), user.ID, status, limit, (page-1)*limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"orders":     orders,
		"pagination": paginationMeta(page, limit, total),
	})
}

// Get returns a single order, visible to its owner or to admins.
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Pedido não encontrado")
		return
	}

	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	var order *models.Order
	if user.IsAdmin() {
		order, err = h.orders.GetByID(ctx, id)
	} else {
		order, err = h.orders.GetForCustomer(ctx, id, user.ID)
	}
	if err != nil {
		respondStoreError(c, err, "Pedido não encontrado")
		return
	}

	respondOK(c, "", gin.H{"order": order})
}

func (h *OrderHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 20)
	query := &models.OrderListQuery{
		Status: models.OrderStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	if t, ok := parseDate(c.Query("startDate")); ok {
		query.StartDate = &t
	}
	if t, ok := parseDate(c.Query("endDate")); ok {
		end := t.Add(24*time.Hour - time.Nanosecond)
		query.EndDate = &end
	}

	orders, total, err := h.orders.List(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"orders":     orders,
		"pagination": paginationMeta(page, limit, total),
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Pedido não encontrado")
		return
	}

	var input models.UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	order, err := h.orders.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Pedido não encontrado")
		return
	}

	set := bson.M{}

	if input.Status != "" {
		if !models.IsValidOrderStatus(input.Status) {
			respondError(c, http.StatusBadRequest, "Status inválido")
			return
		}
		set["status"] = input.Status

		switch input.Status {
		case models.OrderStatusEntregue:
			set["delivered_at"] = time.Now()
		case models.OrderStatusCancelado:
			if order.Status == models.OrderStatusCancelado {
				respondError(c, http.StatusBadRequest, "Pedido já está cancelado")
				return
			}
			set["canceled_at"] = time.Now()
			if input.CancelReason != "" {
				set["cancel_reason"] = input.CancelReason
			}
			if err := h.workflow.RestoreStock(ctx, order); err != nil {
				respondInternalError(c, err)
				return
			}
		}
	}

	if input.PaymentStatus != "" {
		if !models.IsValidPaymentStatus(input.PaymentStatus) {
			respondError(c, http.StatusBadRequest, "Status de pagamento inválido")
			return
		}
		set["payment_status"] = input.PaymentStatus
	}

	if len(set) == 0 {
		respondError(c, http.StatusBadRequest, "Nenhuma alteração informada")
		return
	}

	updated, err := h.orders.UpdateStatus(ctx, id, set)
	if err != nil {
		respondStoreError(c, err, "Pedido não encontrado")
		return
	}

	log.Info().
		Str("order", updated.OrderNumber).
		Str("status", string(updated.Status)).
		Msg("order status updated")
	respondOK(c, "Pedido atualizado com sucesso", gin.H{"order": updated})
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
