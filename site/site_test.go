package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"odontologia/admin"
	"odontologia/cache"
	"odontologia/content"
	"odontologia/identity"
	"odontologia/models"
)

type stubProvider struct{}

func (stubProvider) SignIn(ctx context.Context, email, password string) (identity.Principal, error) {
	if email == "admin@clinica.com" && password == "segredo" {
		return identity.Principal{UID: "uid-1", Email: email}, nil
	}
	return identity.Principal{}, identity.ErrBadCredentials
}

func setupTestSync(t *testing.T, start bool) *content.Sync {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.SiteDocument{}))

	s := content.NewSync(content.NewSQLStore(db, nil), nil)
	if !start {
		return s
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		s.Close()
		cancel()
	})
	require.NoError(t, s.Start(ctx))
	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, s.WaitReady(waitCtx))
	return s
}

func setupTestRouter(t *testing.T, sync *content.Sync, pages *cache.PageCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("test-session", cookie.NewStore([]byte("secret"))))

	tmpl, err := Templates("https://odontologiapedro.com.br")
	require.NoError(t, err)
	router.SetHTMLTemplate(tmpl)

	admin.NewAdminModule(sync, stubProvider{}, nil, nil, admin.Options{}).RegisterRoutes(router)
	NewSiteModule(sync, pages, nil, "https://odontologiapedro.com.br/").RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signIn(t *testing.T, router *gin.Engine) []*http.Cookie {
	form := url.Values{"email": {"admin@clinica.com"}, "password": {"segredo"}}
	req, _ := http.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code)
	return w.Result().Cookies()
}

func TestIndex_RendersSections(t *testing.T) {
	router := setupTestRouter(t, setupTestSync(t, true), nil)

	w := get(router, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	for _, id := range []string{`id="sobre"`, `id="tratamentos"`, `id="equipe"`, `id="depoimentos"`, `id="galeria"`, `id="contato"`} {
		assert.Contains(t, body, id)
	}
	assert.Contains(t, body, "Limpeza e Prevenção")
	assert.Contains(t, body, "Dra. Tatiane Baptista Simão")
	assert.Contains(t, body, "CRO 125483")
	assert.Contains(t, body, "https://lh3.googleusercontent.com/d/1gdlLXgPiLiK7Zk58aSFBwpLzdI5KKGjV")
	assert.Contains(t, body, "Excelência em Odontologia.<br>")
	assert.Contains(t, body, "https://wa.me/5517996682637")
	assert.Contains(t, body, "R. Gislei Antonio Merloti, 1120 - São José, Mirassol - SP, 15130-242")
	assert.Contains(t, body, `class="theme-light"`)
	assert.Contains(t, body, "--primary: #0D2C54")
	assert.Contains(t, body, "px-5 max-w-6xl")
	assert.NotContains(t, body, "contenteditable")
	assert.NotContains(t, body, "/static/editor.js")
	assert.Contains(t, body, "data-open-login")
}

func TestIndex_FollowsSettings(t *testing.T) {
	sync := setupTestSync(t, true)
	router := setupTestRouter(t, sync, nil)
	ctx := context.Background()

	require.NoError(t, sync.SetTheme(ctx, models.ThemeDark))
	require.NoError(t, sync.SetLayout(ctx, models.LayoutCompact))
	require.NoError(t, sync.SetPrimaryColor(ctx, "#AA3300"))
	require.NoError(t, sync.SetText(ctx, models.SlotAbout, "Cuidado **completo**"))

	body := get(router, "/").Body.String()
	assert.Contains(t, body, `class="theme-dark"`)
	assert.Contains(t, body, "px-4 max-w-5xl")
	assert.Contains(t, body, "--primary: #AA3300")
	assert.Contains(t, body, "<strong>completo</strong>")
}

func TestIndex_EditMode(t *testing.T) {
	router := setupTestRouter(t, setupTestSync(t, true), nil)
	cookies := signIn(t, router)

	body := get(router, "/", cookies...).Body.String()
	assert.Contains(t, body, "/static/editor.js")
	assert.Contains(t, body, "data-admin-panel")
	assert.NotContains(t, body, "contenteditable", "signed in but edit mode still off")

	req, _ := http.NewRequest("POST", "/admin/edit-mode", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	cookies = w.Result().Cookies()

	body = get(router, "/", cookies...).Body.String()
	assert.Contains(t, body, `contenteditable="true" data-edit-text="hero-title"`)
	assert.Contains(t, body, `data-delete-list="services"`)
	assert.Contains(t, body, `data-add-list="galleryImages"`)
	assert.Contains(t, body, `data-upload-dir="images/hero"`)
	assert.Contains(t, body, `data-add-form="dentists"`)
	assert.Contains(t, body, `data-add-form="services"`)
	assert.Contains(t, body, `data-add-form="testimonials"`)
	assert.Contains(t, body, `name="rating"`)
	assert.NotContains(t, body, `data-add-form="galleryImages"`, "gallery items start from an upload")
}

func TestIndex_Loading(t *testing.T) {
	router := setupTestRouter(t, setupTestSync(t, false), nil)

	w := get(router, "/")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "loading-screen")
	assert.NotContains(t, w.Body.String(), `id="tratamentos"`)
}

func TestIndex_PageCache(t *testing.T) {
	sync := setupTestSync(t, true)
	pages := cache.New(t.TempDir(), time.Hour)
	router := setupTestRouter(t, sync, pages)

	w := get(router, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = get(router, "/")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	require.NoError(t, sync.SetText(context.Background(), models.SlotHeroLead, "Novo texto de chamada"))
	assert.Eventually(t, func() bool {
		w := get(router, "/")
		return w.Header().Get("X-Cache") == "MISS" && strings.Contains(w.Body.String(), "Novo texto de chamada")
	}, 2*time.Second, 20*time.Millisecond, "snapshot invalidates the cache")
}

func TestIndex_PageCacheBypassedForAdmin(t *testing.T) {
	pages := cache.New(t.TempDir(), time.Hour)
	router := setupTestRouter(t, setupTestSync(t, true), pages)
	cookies := signIn(t, router)

	w := get(router, "/", cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), "data-admin-panel")

	w = get(router, "/")
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"), "admin page is never stored")
	assert.NotContains(t, w.Body.String(), "data-admin-panel")
}

func TestContentJSON(t *testing.T) {
	router := setupTestRouter(t, setupTestSync(t, true), nil)

	w := get(router, "/api/content")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready":true`)
	assert.Contains(t, w.Body.String(), `"galleryImages"`)
}

func TestHealthz(t *testing.T) {
	router := setupTestRouter(t, setupTestSync(t, false), nil)

	w := get(router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ready":false`)
}

func TestSitemap(t *testing.T) {
	router := setupTestRouter(t, setupTestSync(t, true), nil)

	w := get(router, "/sitemap.xml")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, w.Body.String(), "<loc>https://odontologiapedro.com.br/</loc>")
}

func TestStatic(t *testing.T) {
	router := setupTestRouter(t, setupTestSync(t, true), nil)

	w := get(router, "/static/site.css")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "--primary")
}

func TestStream(t *testing.T) {
	sync := setupTestSync(t, true)
	router := setupTestRouter(t, sync, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", "/api/content/stream", nil)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = sync.SetText(context.Background(), models.SlotHeroTitle, "Ao vivo")
	}()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.GreaterOrEqual(t, strings.Count(body, "event:content"), 2)
	assert.Contains(t, body, "Ao vivo")
}

func TestThemeClass(t *testing.T) {
	tests := []struct {
		theme models.Theme
		want  string
	}{
		{models.ThemeLight, "theme-light"},
		{models.ThemeDark, "theme-dark"},
		{models.ThemePastel, "theme-pastel"},
		{"", "theme-light"},
	}
	for _, tt := range tests {
		view := PageView{Data: models.SiteData{Theme: tt.theme}}
		assert.Equal(t, tt.want, view.ThemeClass())
	}
}

func TestRootStyle_RejectsBadColor(t *testing.T) {
	view := PageView{Data: models.SiteData{PrimaryColor: "red;}body{display:none", HeroTitleFontSize: 80}}
	assert.Equal(t, "--primary: #0D2C54; --hero-title-size: 80px;", string(view.RootStyle()))
}
