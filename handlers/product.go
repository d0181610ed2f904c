package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Gurilao-dev/loja/middleware"
	"github.com/Gurilao-dev/loja/models"
	"github.com/Gurilao-dev/loja/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductHandler struct {
	products *store.MongoProductStore
	reviews  *store.MongoReviewStore
	uploader *ImageUploader
}

func NewProductHandler(products *store.MongoProductStore, reviews *store.MongoReviewStore, uploader *ImageUploader) *ProductHandler {
	return &ProductHandler{products: products, reviews: reviews, uploader: uploader}
}

func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.Middleware) {
	group := r.Group("/products")
	group.GET("", h.List)
	group.GET("/meta/categories", h.Categories)
	group.GET("/:id", h.Get)
	group.POST("/:id/reviews", mw.RequireAuth(), h.AddReview)

	admin := group.Group("", mw.RequireAuth(), mw.RequireAdmin())
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	admin.PATCH("/:id/toggle-status", h.ToggleStatus)
}

func (h *ProductHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 20)
	query := &models.ProductListQuery{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
		Page:      page,
		Limit:     limit,
	}
	if v := c.Query("minPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			query.MinPrice = &f
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			query.MaxPrice = &f
		}
	}

	ctx := c.Request.Context()
	products, total, err := h.products.List(ctx, query)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	enriched := make([]*models.ProductWithReviews, 0, len(products))
	for _, product := range products {
		enriched = append(enriched, h.withReviews(ctx, product, 5))
	}

	respondOK(c, "", gin.H{
		"products":   enriched,
		"pagination": paginationMeta(page, limit, total),
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Produto não encontrado")
		return
	}

	ctx := c.Request.Context()
	product, err := h.products.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Produto não encontrado")
		return
	}

	if err := h.products.IncrementViews(ctx, id); err != nil {
		log.Warn().Err(err).Str("product", id.Hex()).Msg("failed to count product view")
	}

	respondOK(c, "", gin.H{"product": h.withReviews(ctx, product, 0)})
}

// withReviews joins a product with its review average and latest reviews.
// Review failures degrade to the bare product rather than failing the read.
func (h *ProductHandler) withReviews(ctx context.Context, product *models.Product, limit int64) *models.ProductWithReviews {
	enriched := &models.ProductWithReviews{Product: *product, Reviews: []*models.Review{}}

	reviews, err := h.reviews.ListByProduct(ctx, product.ID, limit)
	if err != nil {
		log.Warn().Err(err).Str("product", product.ID.Hex()).Msg("failed to load reviews")
		return enriched
	}
	average, err := h.reviews.AverageRating(ctx, product.ID)
	if err != nil {
		log.Warn().Err(err).Str("product", product.ID.Hex()).Msg("failed to load review average")
		return enriched
	}

	enriched.Reviews = reviews
	enriched.ReviewCount = len(reviews)
	enriched.ReviewAverage = average
	return enriched
}

func (h *ProductHandler) Create(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	description := strings.TrimSpace(c.PostForm("description"))
	category := c.PostForm("category")

	if name == "" || description == "" {
		respondError(c, http.StatusBadRequest, "Nome e descrição são obrigatórios")
		return
	}
	if !models.IsValidCategory(category) {
		respondError(c, http.StatusBadRequest, "Categoria inválida")
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		respondError(c, http.StatusBadRequest, "Preço inválido")
		return
	}
	stock, err := strconv.Atoi(c.PostForm("stock"))
	if err != nil || stock < 0 {
		respondError(c, http.StatusBadRequest, "Estoque inválido")
		return
	}

	imagePaths, err := h.saveUploadedImages(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	product := &models.Product{
		Name:           name,
		Description:    description,
		Price:          price,
		Stock:          stock,
		Category:       category,
		Subcategory:    c.PostForm("subcategory"),
		Brand:          c.PostForm("brand"),
		Model:          c.PostForm("model"),
		Images:         imagesFromPaths(imagePaths, name),
		Specifications: parseSpecifications(c.PostForm("specifications")),
		Tags:           parseTags(c.PostForm("tags")),
		IsActive:       true,
	}

	if err := h.products.Create(c.Request.Context(), product); err != nil {
		respondInternalError(c, err)
		return
	}

	log.Info().Str("product", product.ID.Hex()).Str("name", product.Name).Msg("product created")
	respondCreated(c, "Produto criado com sucesso", gin.H{"product": product})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Produto não encontrado")
		return
	}

	ctx := c.Request.Context()
	existing, err := h.products.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Produto não encontrado")
		return
	}

	set := bson.M{}
	if name := strings.TrimSpace(c.PostForm("name")); name != "" {
		set["name"] = name
	}
	if description := strings.TrimSpace(c.PostForm("description")); description != "" {
		set["description"] = description
	}
	if category := c.PostForm("category"); category != "" {
		if !models.IsValidCategory(category) {
			respondError(c, http.StatusBadRequest, "Categoria inválida")
			return
		}
		set["category"] = category
	}
	if v := c.PostForm("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			respondError(c, http.StatusBadRequest, "Preço inválido")
			return
		}
		set["price"] = price
	}
	if v := c.PostForm("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			respondError(c, http.StatusBadRequest, "Estoque inválido")
			return
		}
		set["stock"] = stock
	}
	if tags := parseTags(c.PostForm("tags")); len(tags) > 0 {
		set["tags"] = tags
	}
	if v := c.PostForm("specifications"); v != "" {
		set["specifications"] = parseSpecifications(v)
	}

	// Merge kept images with freshly uploaded ones.
	newPaths, err := h.saveUploadedImages(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	images := keptImages(c.PostForm("existingImages"), existing)
	images = append(images, imagesFromPaths(newPaths, existing.Name)...)
	if len(images) > 0 {
		set["images"] = images
	}

	product, err := h.products.Update(ctx, id, set)
	if err != nil {
		respondStoreError(c, err, "Produto não encontrado")
		return
	}

	respondOK(c, "Produto atualizado com sucesso", gin.H{"product": product})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Produto não encontrado")
		return
	}

	ctx := c.Request.Context()
	product, err := h.products.GetByID(ctx, id)
	if err != nil {
		respondStoreError(c, err, "Produto não encontrado")
		return
	}

	for _, image := range product.Images {
		h.uploader.Remove(image.URL)
	}

	if err := h.products.Delete(ctx, id); err != nil {
		respondStoreError(c, err, "Produto não encontrado")
		return
	}
	if err := h.reviews.DeleteByProduct(ctx, id); err != nil {
		log.Warn().Err(err).Str("product", id.Hex()).Msg("failed to delete product reviews")
	}

	log.Info().Str("product", id.Hex()).Msg("product removed")
	respondOK(c, "Produto removido com sucesso", nil)
}

func (h *ProductHandler) ToggleStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Produto não encontrado")
		return
	}

	product, err := h.products.ToggleActive(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Produto não encontrado")
		return
	}

	message := "Produto desativado com sucesso"
	if product.IsActive {
		message = "Produto ativado com sucesso"
	}
	respondOK(c, message, gin.H{"product": product})
}

func (h *ProductHandler) AddReview(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Produto não encontrado")
		return
	}

	var input models.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	if _, err := h.products.GetByID(ctx, id); err != nil {
		respondStoreError(c, err, "Produto não encontrado")
		return
	}

	user := middleware.CurrentUser(c)
	review := &models.Review{
		Product:    id,
		User:       user.ID,
		UserName:   user.Name,
		Rating:     input.Rating,
		Title:      input.Title,
		Comment:    input.Comment,
		IsApproved: true,
	}

	if err := h.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondError(c, http.StatusConflict, "Você já avaliou este produto")
			return
		}
		respondInternalError(c, err)
		return
	}

	respondCreated(c, "Avaliação adicionada com sucesso", gin.H{"review": review})
}

func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.products.Categories(c.Request.Context())
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondOK(c, "", gin.H{"categories": categories})
}

func (h *ProductHandler) saveUploadedImages(c *gin.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	files := form.File["images"]
	if len(files) == 0 {
		return nil, nil
	}
	return h.uploader.Save(c, files)
}

func imagesFromPaths(paths []string, alt string) []models.ProductImage {
	images := make([]models.ProductImage, 0, len(paths))
	for i, p := range paths {
		images = append(images, models.ProductImage{
			URL:       p,
			Alt:       alt,
			IsPrimary: i == 0,
		})
	}
	return images
}

func keptImages(existingJSON string, product *models.Product) []models.ProductImage {
	if existingJSON == "" {
		return append([]models.ProductImage{}, product.Images...)
	}
	var urls []string
	if err := json.Unmarshal([]byte(existingJSON), &urls); err != nil {
		return append([]models.ProductImage{}, product.Images...)
	}

	keep := make(map[string]bool, len(urls))
	for _, u := range urls {
		keep[u] = true
	}
	kept := make([]models.ProductImage, 0, len(product.Images))
	for _, img := range product.Images {
		if keep[img.URL] {
			kept = append(kept, img)
		}
	}
	return kept
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseSpecifications(raw string) models.ProductSpecifications {
	var specs models.ProductSpecifications
	if raw == "" {
		return specs
	}
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		log.Warn().Err(err).Msg("ignoring malformed specifications payload")
	}
	return specs
}
