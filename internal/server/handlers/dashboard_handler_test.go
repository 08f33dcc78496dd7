package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windowContext(t *testing.T, rawQuery string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req, err := http.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	require.NoError(t, err)
	c.Request = req
	return c, rec
}

func TestDateWindow_ExplicitRange(t *testing.T) {
	c, _ := windowContext(t, "from=2024-01-01&to=2024-01-31")

	from, to, ok := dateWindow(c)
	require.True(t, ok)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	// End day is inclusive.
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), to)
}

func TestDateWindow_DefaultsToCurrentMonth(t *testing.T) {
	c, _ := windowContext(t, "")

	from, to, ok := dateWindow(c)
	require.True(t, ok)

	now := time.Now()
	assert.Equal(t, now.Year(), from.Year())
	assert.Equal(t, now.Month(), from.Month())
	assert.Equal(t, 1, from.Day())
	assert.False(t, to.Before(from))
}

func TestDateWindow_MalformedDate(t *testing.T) {
	c, rec := windowContext(t, "from=31/01/2024")

	_, _, ok := dateWindow(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDateWindow_InvertedRange(t *testing.T) {
	c, rec := windowContext(t, "from=2024-02-01&to=2024-01-01")

	_, _, ok := dateWindow(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fazenda-santa-rita", slugify("  Fazenda Santa Rita "))
	assert.Equal(t, "sítio-boa-vista", slugify("Sítio  Boa   Vista"))
	assert.Equal(t, "", slugify("   "))
}
