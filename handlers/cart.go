package handlers

import (
	"net/http"
	"time"

	"github.com/Gurilao-dev/loja/middleware"
	"github.com/Gurilao-dev/loja/models"
	"github.com/Gurilao-dev/loja/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartHandler struct {
	carts    *store.MongoCartStore
	products *store.MongoProductStore
}

func NewCartHandler(carts *store.MongoCartStore, products *store.MongoProductStore) *CartHandler {
	return &CartHandler{carts: carts, products: products}
}

func (h *CartHandler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.Middleware) {
	group := r.Group("/cart", mw.RequireAuth())
	group.GET("", h.Get)
	group.POST("/add", h.Add)
	group.PUT("/update/:itemId", h.UpdateItem)
	group.DELETE("/remove/:itemId", h.RemoveItem)
	group.DELETE("/clear", h.Clear)
}

// Get returns the cart joined with live products. Lines whose product went
// missing or inactive are dropped and the stored totals refreshed in place.
func (h *CartHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	cart, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	products, err := h.loadProducts(c, cart)
	if err != nil {
		return
	}

	if cart.RecomputeTotals(products) {
		if err := h.carts.Save(ctx, cart); err != nil {
			log.Warn().Err(err).Str("user", user.ID.Hex()).Msg("failed to refresh cart totals")
		}
	}

	respondOK(c, "", gin.H{"cart": models.BuildCartView(cart, products)})
}

func (h *CartHandler) Add(c *gin.Context) {
	var input models.AddCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		respondError(c, http.StatusNotFound, "Produto não encontrado")
		return
	}

	ctx := c.Request.Context()
	product, err := h.products.GetByID(ctx, productID)
	if err != nil {
		respondStoreError(c, err, "Produto não encontrado")
		return
	}
	if !product.IsActive {
		respondError(c, http.StatusNotFound, "Produto não encontrado")
		return
	}

	user := middleware.CurrentUser(c)
	cart, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	// Merge with an existing line for the same product.
	existing := -1
	for i := range cart.Items {
		if cart.Items[i].Product == productID {
			existing = i
			break
		}
	}

	wanted := quantity
	if existing >= 0 {
		wanted += cart.Items[existing].Quantity
	}
	if wanted > product.Stock {
		respondError(c, http.StatusBadRequest, "Estoque insuficiente")
		return
	}

	if existing >= 0 {
		cart.Items[existing].Quantity = wanted
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ID:       primitive.NewObjectID(),
			Product:  productID,
			Quantity: quantity,
			AddedAt:  time.Now(),
		})
	}

	if err := h.saveWithTotals(c, cart); err != nil {
		return
	}
	respondOK(c, "Produto adicionado ao carrinho", gin.H{"cart": cart})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var input models.UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Quantidade inválida")
		return
	}

	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Item não encontrado no carrinho")
		return
	}

	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)
	cart, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	index := -1
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			index = i
			break
		}
	}
	if index < 0 {
		respondError(c, http.StatusNotFound, "Item não encontrado no carrinho")
		return
	}

	product, err := h.products.GetByID(ctx, cart.Items[index].Product)
	if err != nil {
		respondStoreError(c, err, "Produto não encontrado")
		return
	}
	if input.Quantity > product.Stock {
		respondError(c, http.StatusBadRequest, "Estoque insuficiente")
		return
	}

	cart.Items[index].Quantity = input.Quantity

	if err := h.saveWithTotals(c, cart); err != nil {
		return
	}
	respondOK(c, "Carrinho atualizado", gin.H{"cart": cart})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Item não encontrado no carrinho")
		return
	}

	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)
	cart, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	kept := cart.Items[:0]
	found := false
	for _, item := range cart.Items {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		respondError(c, http.StatusNotFound, "Item não encontrado no carrinho")
		return
	}
	cart.Items = kept

	if err := h.saveWithTotals(c, cart); err != nil {
		return
	}
	respondOK(c, "Item removido do carrinho", gin.H{"cart": cart})
}

func (h *CartHandler) Clear(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.carts.Clear(c.Request.Context(), user.ID); err != nil {
		respondInternalError(c, err)
		return
	}
	respondOK(c, "Carrinho esvaziado", nil)
}

// loadProducts fetches every product referenced by the cart in one query.
// On failure it answers the request itself and returns a non-nil error.
func (h *CartHandler) loadProducts(c *gin.Context, cart *models.Cart) (map[primitive.ObjectID]*models.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.Product)
	}

	products, err := h.products.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		respondInternalError(c, err)
		return nil, err
	}
	return products, nil
}

func (h *CartHandler) saveWithTotals(c *gin.Context, cart *models.Cart) error {
	products, err := h.loadProducts(c, cart)
	if err != nil {
		return err
	}
	cart.RecomputeTotals(products)

	if err := h.carts.Save(c.Request.Context(), cart); err != nil {
		respondInternalError(c, err)
		return err
	}
	return nil
}
