package handlers

import (
	"net/http"
	"time"

	"github.com/Gurilao-dev/loja/middleware"
	"github.com/Gurilao-dev/loja/models"
	"github.com/Gurilao-dev/loja/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const lowStockThreshold = 10

type AdminHandler struct {
	users    *store.MongoUserStore
	products *store.MongoProductStore
	orders   *store.MongoOrderStore
	messages *store.MongoMessageStore
}

func NewAdminHandler(users *store.MongoUserStore, products *store.MongoProductStore, orders *store.MongoOrderStore, messages *store.MongoMessageStore) *AdminHandler {
	return &AdminHandler{
		users:    users,
		products: products,
		orders:   orders,
		messages: messages,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.Middleware) {
	group := r.Group("/admin", mw.RequireAuth(), mw.RequireAdmin())
	group.GET("/dashboard", h.Dashboard)
	group.GET("/users", h.Users)
	group.PUT("/users/:id", h.UpdateUser)
	group.PATCH("/users/:id/toggle-status", h.ToggleUser)
	group.GET("/reports/sales", h.SalesReport)
	group.GET("/products", h.Products)
	group.GET("/chat/conversations", h.Conversations)
	group.GET("/quick-stats", h.QuickStats)
}

// Dashboard aggregates the landing-page numbers. Each block is fetched
// independently; the first failure aborts the response.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	stats := models.DashboardStats{}
	var err error

	if stats.TotalUsers, err = h.users.CountByType(ctx, models.UserTypeCliente); err != nil {
		respondInternalError(c, err)
		return
	}
	if stats.TotalProducts, err = h.products.CountActive(ctx); err != nil {
		respondInternalError(c, err)
		return
	}
	if stats.TotalOrders, err = h.orders.Count(ctx); err != nil {
		respondInternalError(c, err)
		return
	}
	if stats.TotalRevenue, err = h.orders.Revenue(ctx, time.Time{}); err != nil {
		respondInternalError(c, err)
		return
	}
	if stats.PendingOrders, err = h.orders.CountByStatus(ctx, models.OrderStatusPendente); err != nil {
		respondInternalError(c, err)
		return
	}
	if stats.UnreadMessages, err = h.messages.CountUnread(ctx); err != nil {
		respondInternalError(c, err)
		return
	}

	recentOrders, err := h.orders.Recent(ctx, 5)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	topProducts, err := h.products.TopBySales(ctx, 5)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	sixMonthsAgo := time.Now().AddDate(0, -6, 0)
	monthlySales, err := h.orders.MonthlySales(ctx, sixMonthsAgo)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"stats":         stats,
		"recent_orders": recentOrders,
		"top_products":  topProducts,
		"monthly_sales": monthlySales,
	})
}

func (h *AdminHandler) Users(c *gin.Context) {
	page, limit := pageParams(c, 20)
	sort := bson.D{{Key: "created_at", Value: -1}}

	users, total, err := h.users.List(
		c.Request.Context(),
		c.Query("search"),
		models.UserType(c.Query("type")),
		sort,
		limit,
		(page-1)*limit,
	)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"users":      users,
		"pagination": paginationMeta(page, limit, total),
	})
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Usuário não encontrado")
		return
	}

	var input models.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondStoreError(c, err, "Usuário não encontrado")
		return
	}

	respondOK(c, "Usuário atualizado com sucesso", gin.H{"user": user})
}

func (h *AdminHandler) ToggleUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Usuário não encontrado")
		return
	}

	caller := middleware.CurrentUser(c)
	if caller.ID == id {
		respondError(c, http.StatusBadRequest, "Você não pode desativar sua própria conta")
		return
	}

	user, err := h.users.ToggleActive(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Usuário não encontrado")
		return
	}

	message := "Usuário desativado com sucesso"
	if user.IsActive {
		message = "Usuário ativado com sucesso"
	}
	log.Info().Str("user", id.Hex()).Bool("active", user.IsActive).Msg("user status toggled")
	respondOK(c, message, gin.H{"user": user})
}

// SalesReport buckets revenue by day, week or month over an optional date
// range, with the period's best sellers alongside.
func (h *AdminHandler) SalesReport(c *gin.Context) {
	groupBy := c.DefaultQuery("groupBy", "day")
	switch groupBy {
	case "day", "week", "month":
	default:
		respondError(c, http.StatusBadRequest, "Agrupamento inválido (day, week, month)")
		return
	}

	var start, end *time.Time
	if t, ok := parseDate(c.Query("startDate")); ok {
		start = &t
	}
	if t, ok := parseDate(c.Query("endDate")); ok {
		e := t.Add(24*time.Hour - time.Nanosecond)
		end = &e
	}

	ctx := c.Request.Context()
	buckets, err := h.orders.SalesReport(ctx, start, end, groupBy)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	topProducts, err := h.orders.TopProducts(ctx, start, end, 10)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"sales":        buckets,
		"top_products": topProducts,
	})
}

// Products lists the catalog without the public is_active restriction.
func (h *AdminHandler) Products(c *gin.Context) {
	page, limit := pageParams(c, 20)
	query := &models.ProductListQuery{
		Search:          c.Query("search"),
		Category:        c.Query("category"),
		SortBy:          c.DefaultQuery("sortBy", "created_at"),
		SortOrder:       c.DefaultQuery("sortOrder", "desc"),
		Page:            page,
		Limit:           limit,
		IncludeInactive: true,
	}
	switch c.Query("isActive") {
	case "true":
		active := true
		query.IsActive = &active
	case "false":
		active := false
		query.IsActive = &active
	}

	products, total, err := h.products.List(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"products":   products,
		"pagination": paginationMeta(page, limit, total),
	})
}

func (h *AdminHandler) Conversations(c *gin.Context) {
	page, limit := pageParams(c, 20)

	conversations, total, err := h.messages.AllConversations(c.Request.Context(), c.Query("search"), limit, (page-1)*limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"conversations": conversations,
		"pagination":    paginationMeta(page, limit, total),
	})
}

func (h *AdminHandler) QuickStats(c *gin.Context) {
	ctx := c.Request.Context()
	midnight := startOfDay(time.Now())

	stats := models.QuickStats{}
	var err error

	if stats.TodayOrders, err = h.orders.CountSince(ctx, midnight); err != nil {
		respondInternalError(c, err)
		return
	}
	if stats.TodayRevenue, err = h.orders.Revenue(ctx, midnight); err != nil {
		respondInternalError(c, err)
		return
	}
	if stats.PendingOrders, err = h.orders.CountByStatus(ctx, models.OrderStatusPendente); err != nil {
		respondInternalError(c, err)
		return
	}
	if stats.LowStockProducts, err = h.products.CountLowStock(ctx, lowStockThreshold); err != nil {
		respondInternalError(c, err)
		return
	}
	if stats.UnreadMessages, err = h.messages.CountUnread(ctx); err != nil {
		respondInternalError(c, err)
		return
	}

	respondOK(c, "", gin.H{"stats": stats})
}

// startOfDay returns midnight of t's calendar day in t's own location, so
// "today" follows the store's timezone rather than UTC.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
