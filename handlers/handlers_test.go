package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Gurilao-dev/loja/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(url string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", url, nil)
	return c
}

func TestPageParamsDefaults(t *testing.T) {
	c := testContext("/api/products")
	page, limit := pageParams(c, 20)
	assert.Equal(t, int64(1), page)
	assert.Equal(t, int64(20), limit)
}

func TestPageParamsParsesAndCaps(t *testing.T) {
	c := testContext("/api/products?page=3&limit=500")
	page, limit := pageParams(c, 20)
	assert.Equal(t, int64(3), page)
	assert.Equal(t, int64(100), limit)
}

func TestPageParamsRejectsGarbage(t *testing.T) {
	c := testContext("/api/products?page=abc&limit=-5")
	page, limit := pageParams(c, 20)
	assert.Equal(t, int64(1), page)
	assert.Equal(t, int64(20), limit)
}

func TestPaginationMeta(t *testing.T) {
	meta := paginationMeta(2, 20, 45)
	assert.Equal(t, int64(3), meta["pages"])
	assert.Equal(t, int64(45), meta["total"])
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"fita", "isolante"}, parseTags("fita, isolante"))
	assert.Equal(t, []string{"cabo"}, parseTags(" cabo ,, "))
	assert.Nil(t, parseTags(""))
}

func TestKeptImagesFiltersByURL(t *testing.T) {
	product := &models.Product{Images: []models.ProductImage{
		{URL: "/uploads/products/a.jpg", IsPrimary: true},
		{URL: "/uploads/products/b.jpg"},
	}}

	kept := keptImages(`["/uploads/products/b.jpg"]`, product)
	assert.Len(t, kept, 1)
	assert.Equal(t, "/uploads/products/b.jpg", kept[0].URL)

	// No selection means keep everything.
	assert.Len(t, keptImages("", product), 2)
	// Malformed payloads fall back to keeping everything.
	assert.Len(t, keptImages("{bad", product), 2)
}

func TestStartOfDayUsesLocalMidnight(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2026, 8, 28, 1, 30, 0, 0, saoPaulo)

	midnight := startOfDay(now)

	assert.Equal(t, 0, midnight.Hour())
	assert.Equal(t, 28, midnight.Day())
	assert.Equal(t, saoPaulo, midnight.Location())
	// UTC truncation would land on the previous local day at 21:00.
	assert.NotEqual(t, now.Truncate(24*time.Hour), midnight)
}

func TestChatSearchRequiresQueryParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ChatHandler{}

	// The parameter is named "query"; anything else is a missing term.
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/chat/search?q=fita", nil)
	handler.Search(c)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/chat/search", nil)
	handler.Search(c)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestParseDate(t *testing.T) {
	d, ok := parseDate("2026-08-28")
	assert.True(t, ok)
	assert.Equal(t, 2026, d.Year())

	_, ok = parseDate("28/08/2026")
	assert.False(t, ok)
	_, ok = parseDate("")
	assert.False(t, ok)
}
