package handlers

import (
	"errors"

	"github.com/Gurilao-dev/loja/auth"
	"github.com/Gurilao-dev/loja/models"
	"github.com/Gurilao-dev/loja/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultAdminEmail    = "lojaadmin@loja.app"
	defaultAdminPassword = "password123"
)

// SetupHandler bootstraps a fresh installation: default admin account and a
// sample catalog. Both endpoints are idempotent.
type SetupHandler struct {
	users    *store.MongoUserStore
	products *store.MongoProductStore
}

func NewSetupHandler(users *store.MongoUserStore, products *store.MongoProductStore) *SetupHandler {
	return &SetupHandler{users: users, products: products}
}

func (h *SetupHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/setup")
	group.POST("/admin", h.CreateAdmin)
	group.POST("/products", h.SeedProducts)
}

func (h *SetupHandler) CreateAdmin(c *gin.Context) {
	ctx := c.Request.Context()

	if _, err := h.users.GetByEmail(ctx, defaultAdminEmail); err == nil {
		respondOK(c, "Usuário admin já existe", gin.H{"email": defaultAdminEmail})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondInternalError(c, err)
		return
	}

	hash, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	admin := &models.User{
		Name:     "Administrador da Loja",
		Email:    defaultAdminEmail,
		Password: hash,
		Phone:    "(11) 99999-9999",
		Type:     models.UserTypeAdmin,
		IsActive: true,
	}
	if err := h.users.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondOK(c, "Usuário admin já existe", gin.H{"email": defaultAdminEmail})
			return
		}
		respondInternalError(c, err)
		return
	}

	log.Info().Str("email", defaultAdminEmail).Msg("default admin created")
	respondCreated(c, "Usuário admin criado com sucesso", gin.H{"email": defaultAdminEmail})
}

func (h *SetupHandler) SeedProducts(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.products.Count(ctx)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if count > 0 {
		respondOK(c, "Catálogo já possui produtos", gin.H{"count": count})
		return
	}

	samples := sampleProducts()
	if err := h.products.CreateMany(ctx, samples); err != nil {
		respondInternalError(c, err)
		return
	}

	log.Info().Int("count", len(samples)).Msg("sample catalog seeded")
	respondCreated(c, "Produtos de exemplo criados", gin.H{"count": len(samples)})
}

func sampleProducts() []*models.Product {
	return []*models.Product{
		{
			Name:        "Fita Isolante 3M Imperial 18mm X 20m Preta",
			Description: "Fita isolante de alta qualidade da 3M, ideal para isolamento elétrico e vedação. Resistente à umidade e temperatura.",
			Price:       46.38,
			Stock:       50,
			Category:    "eletrica",
			Brand:       "3M",
			Images: []models.ProductImage{
				{URL: "/uploads/products/fita-isolante-3m.jpg", Alt: "Fita Isolante 3M Imperial", IsPrimary: true},
			},
			Specifications: models.ProductSpecifications{Dimensions: "18mm x 20m", Color: "Preta"},
			Tags:           []string{"fita", "isolante", "3M", "eletrica"},
			IsActive:       true,
			Sales:          150,
		},
		{
			Name:        "Isoflex Fita Isolante Anti Chama 19mm x 20m",
			Description: "Fita isolante anti-chama da Isoflex, perfeita para instalações elétricas residenciais e comerciais.",
			Price:       43.12,
			Stock:       75,
			Category:    "eletrica",
			Brand:       "Isoflex",
			Images: []models.ProductImage{
				{URL: "/uploads/products/isoflex-fita.jpg", Alt: "Isoflex Fita Isolante", IsPrimary: true},
			},
			Specifications: models.ProductSpecifications{Dimensions: "19mm x 20m", Color: "Azul"},
			Tags:           []string{"fita", "isolante", "isoflex", "anti-chama"},
			IsActive:       true,
			Sales:          89,
		},
		{
			Name:        "Fita Isolante 3M Scotch 35+ 19mm X 20m Amarela",
			Description: "Fita isolante premium da 3M Scotch, com excelente aderência e durabilidade. Ideal para uso profissional.",
			Price:       38.75,
			Stock:       30,
			Category:    "eletrica",
			Brand:       "3M Scotch",
			Images: []models.ProductImage{
				{URL: "/uploads/products/scotch-35.jpg", Alt: "Fita Isolante 3M Scotch 35+", IsPrimary: true},
			},
			Specifications: models.ProductSpecifications{Dimensions: "19mm x 20m", Color: "Amarela"},
			Tags:           []string{"fita", "isolante", "3M", "scotch", "amarela"},
			IsActive:       true,
			Sales:          67,
		},
		{
			Name:        "Cabo Flexível 2,5mm² 100m Amarelo",
			Description: "Cabo flexível de cobre para instalações elétricas residenciais e comerciais. Isolação em PVC.",
			Price:       189.90,
			Stock:       25,
			Category:    "cabos",
			Images: []models.ProductImage{
				{URL: "/uploads/products/cabo-flexivel.jpg", Alt: "Cabo Flexível 2,5mm²", IsPrimary: true},
			},
			Specifications: models.ProductSpecifications{Material: "Cobre", Dimensions: "2,5mm² x 100m", Color: "Amarelo"},
			Tags:           []string{"cabo", "flexivel", "cobre", "eletrica"},
			IsActive:       true,
			Sales:          45,
		},
		{
			Name:        "Disjuntor Bipolar 32A Siemens",
			Description: "Disjuntor termomagnético bipolar de 32A da Siemens. Proteção contra sobrecarga e curto-circuito.",
			Price:       78.50,
			Stock:       40,
			Category:    "eletrica",
			Brand:       "Siemens",
			Images: []models.ProductImage{
				{URL: "/uploads/products/disjuntor-siemens.jpg", Alt: "Disjuntor Bipolar 32A", IsPrimary: true},
			},
			Specifications: models.ProductSpecifications{Voltage: "220V", Power: "32A"},
			Tags:           []string{"disjuntor", "siemens", "proteção", "eletrica"},
			IsActive:       true,
			Sales:          32,
		},
	}
}
