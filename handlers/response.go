package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Gurilao-dev/loja/internal/checkout"
	"github.com/Gurilao-dev/loja/store"
	"github.com/gin-gonic/gin"
)

// Every endpoint answers with the same envelope:
// {success, message?, data?, error?}.

func respondOK(c *gin.Context, message string, data gin.H) {
	respond(c, http.StatusOK, message, data)
}

func respondCreated(c *gin.Context, message string, data gin.H) {
	respond(c, http.StatusCreated, message, data)
}

func respond(c *gin.Context, status int, message string, data gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func respondInternalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "Erro interno do servidor",
		"error":   err.Error(),
	})
}

// respondStoreError maps the shared error taxonomy onto HTTP statuses.
func respondStoreError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, store.ErrDuplicate):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrProductUnavailable):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrInsufficientStock):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondInternalError(c, err)
	}
}

func pageParams(c *gin.Context, defaultLimit int64) (page, limit int64) {
	page = parsePositive(c.DefaultQuery("page", "1"), 1)
	limit = parsePositive(c.DefaultQuery("limit", ""), defaultLimit)
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func parsePositive(s string, fallback int64) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func paginationMeta(page, limit, total int64) gin.H {
	pages := int64(0)
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"pages": pages,
	}
}
