package handlers

import (
	"errors"
	"net/http"

	"github.com/Gurilao-dev/loja/auth"
	"github.com/Gurilao-dev/loja/middleware"
	"github.com/Gurilao-dev/loja/models"
	"github.com/Gurilao-dev/loja/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AuthHandler struct {
	users  *store.MongoUserStore
	tokens *auth.TokenService
}

func NewAuthHandler(users *store.MongoUserStore, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.Middleware) {
	group := r.Group("/auth")
	group.POST("/register", h.Register)
	group.POST("/login", h.Login)
	group.GET("/verify", mw.RequireAuth(), h.Verify)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}

	ctx := c.Request.Context()

	if _, err := h.users.GetByEmailOrCPF(ctx, input.Email, input.CPF); err == nil {
		respondError(c, http.StatusConflict, "Usuário já existe com este email ou CPF")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondInternalError(c, err)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	userType := input.Type
	if userType == "" {
		userType = models.UserTypeCliente
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hash,
		Phone:    input.Phone,
		CPF:      input.CPF,
		CEP:      input.CEP,
		Type:     userType,
		IsActive: true,
	}

	if err := h.users.Create(ctx, user); err != nil {
		respondStoreError(c, err, "Usuário não encontrado")
		return
	}

	token, err := h.tokens.Generate(user.ID.Hex())
	if err != nil {
		respondInternalError(c, err)
		return
	}

	log.Info().Str("user", user.ID.Hex()).Str("email", user.Email).Msg("user registered")
	respondCreated(c, "Usuário criado com sucesso", gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), input.Email)
	if err != nil || !auth.CheckPassword(user.Password, input.Password) {
		// Same answer for unknown email and wrong password.
		respondError(c, http.StatusUnauthorized, "Email ou senha incorretos")
		return
	}

	if !user.IsActive {
		respondError(c, http.StatusUnauthorized, "Conta desativada. Entre em contato com o suporte.")
		return
	}

	token, err := h.tokens.Generate(user.ID.Hex())
	if err != nil {
		respondInternalError(c, err)
		return
	}

	respondOK(c, "Login realizado com sucesso", gin.H{"user": user, "token": token})
}

// Verify re-validates the caller's token and echoes the resolved user.
func (h *AuthHandler) Verify(c *gin.Context) {
	user := middleware.CurrentUser(c)
	respondOK(c, "", gin.H{"user": user})
}
