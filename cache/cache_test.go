package cache

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCache_ReadWriteClear(t *testing.T) {
	p := New(t.TempDir(), time.Hour)

	_, found := p.Read("/")
	assert.False(t, found)

	require.NoError(t, p.Write("/", "<html>ok</html>"))
	html, found := p.Read("/")
	assert.True(t, found)
	assert.Equal(t, "<html>ok</html>", html)
	assert.NotEqual(t, p.Path("/"), p.Path("/?theme=dark"))

	p.Invalidate()
	_, found = p.Read("/")
	assert.False(t, found)
}

func TestPageCache_Expired(t *testing.T) {
	p := New(t.TempDir(), time.Minute)
	require.NoError(t, p.Write("/", "old"))

	past := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(p.Path("/"), past, past))

	_, found := p.Read("/")
	assert.False(t, found)

	require.NoError(t, p.ClearOld())
	_, err := os.Stat(p.Path("/"))
	assert.True(t, os.IsNotExist(err))
}

func setupTestRouter(p *PageCache, renders *int, bypass bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", Middleware(p, func(c *gin.Context) bool { return bypass }), func(c *gin.Context) {
		*renders++
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<html>clinica</html>"))
	})
	return router
}

func get(router *gin.Engine) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_MissThenHit(t *testing.T) {
	p := New(t.TempDir(), time.Hour)
	renders := 0
	router := setupTestRouter(p, &renders, false)

	w := get(router)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = get(router)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, "<html>clinica</html>", w.Body.String())
	assert.Equal(t, 1, renders)

	p.Invalidate()
	w = get(router)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 2, renders)
}

func TestMiddleware_Bypass(t *testing.T) {
	p := New(t.TempDir(), time.Hour)
	renders := 0
	router := setupTestRouter(p, &renders, true)

	get(router)
	w := get(router)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, 2, renders)
	_, found := p.Read("/")
	assert.False(t, found)
}

func TestMiddleware_QueryStringsShareOneEntry(t *testing.T) {
	dir := t.TempDir()
	p := New(dir, time.Hour)
	renders := 0
	router := setupTestRouter(p, &renders, false)

	for _, path := range []string{"/?x=1", "/?x=2", "/?utm_source=instagram", "/"} {
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 1, renders)
	files, err := filepath.Glob(filepath.Join(dir, "page_*.html"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestMiddleware_InvalidatedWhileRendering(t *testing.T) {
	p := New(t.TempDir(), time.Hour)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", Middleware(p, nil), func(c *gin.Context) {
		// a snapshot lands after the old data was read
		p.Invalidate()
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<html>antigo</html>"))
	})

	w := get(router)
	assert.Equal(t, "<html>antigo</html>", w.Body.String())
	_, found := p.Read("/")
	assert.False(t, found, "a page rendered before the invalidation is not stored")
}

func TestPageCache_WriteIfCurrent(t *testing.T) {
	p := New(t.TempDir(), time.Hour)

	gen := p.Generation()
	stored, err := p.WriteIfCurrent("/", "a", gen)
	require.NoError(t, err)
	assert.True(t, stored)

	p.Invalidate()
	stored, err = p.WriteIfCurrent("/", "b", gen)
	require.NoError(t, err)
	assert.False(t, stored)
	_, found := p.Read("/")
	assert.False(t, found)
}
