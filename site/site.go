package site

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"odontologia/admin"
	"odontologia/analytics"
	"odontologia/cache"
	"odontologia/common"
	"odontologia/content"
	"odontologia/models"
	"odontologia/web"
)

type SiteModule struct {
	sync      *content.Sync
	pages     *cache.PageCache
	analytics *analytics.AnalyticsModule
	domain    string
	logger    *slog.Logger
}

func NewSiteModule(sync *content.Sync, pages *cache.PageCache, analyticsModule *analytics.AnalyticsModule, domain string) *SiteModule {
	s := &SiteModule{
		sync:      sync,
		pages:     pages,
		analytics: analyticsModule,
		domain:    strings.TrimSuffix(domain, "/"),
		logger:    slog.Default().With("module", "site"),
	}
	if pages != nil {
		sync.Subscribe(func(models.SiteData) { pages.Invalidate() })
	}
	return s
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	page := []gin.HandlerFunc{s.trackVisit}
	if s.pages != nil {
		page = append(page, cache.Middleware(s.pages, admin.IsSignedIn))
	}
	router.GET("/", append(page, s.index)...)
	router.GET("/sitemap.xml", s.sitemap)
	router.GET("/healthz", s.healthz)
	router.GET("/api/content", s.contentJSON)
	router.GET("/api/content/stream", s.stream)

	static, _ := fs.Sub(web.StaticFS, "static")
	router.StaticFS("/static", http.FS(static))
}

// Templates parses the embedded page templates.
func Templates(domain string) (*template.Template, error) {
	return template.New("").Funcs(FuncMap(domain)).ParseFS(web.TemplatesFS, "templates/*.html")
}

func FuncMap(domain string) template.FuncMap {
	return template.FuncMap{
		"img": common.NormalizeImageURL,
		"markdown": func(text string) template.HTML {
			return template.HTML(renderMarkdown(text))
		},
		"inline": func(text string) template.HTML {
			return template.HTML(renderInline(text))
		},
		"now": func() time.Time {
			return time.Now()
		},
		"domain": func() string {
			return domain
		},
	}
}

// PageView is the data of the index template.
type PageView struct {
	Data      models.SiteData
	Editor    admin.EditorState
	Loading   bool
	Container string
	Domain    string
}

// ThemeClass is the root class of the page for the current theme.
func (v PageView) ThemeClass() string {
	switch v.Data.Theme {
	case models.ThemeDark:
		return "theme-dark"
	case models.ThemePastel:
		return "theme-pastel"
	}
	return "theme-light"
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// RootStyle sets the CSS variables driven by the document.
func (v PageView) RootStyle() template.CSS {
	color := v.Data.PrimaryColor
	if !hexColorRe.MatchString(color) {
		color = models.DefaultSiteData().PrimaryColor
	}
	return template.CSS(fmt.Sprintf("--primary: %s; --hero-title-size: %dpx;", color, v.Data.HeroTitleFontSize))
}

func (v PageView) Text(slot string) string {
	return v.Data.Text(slot)
}

func (s *SiteModule) trackVisit(c *gin.Context) {
	if !admin.IsSignedIn(c) {
		s.analytics.TrackVisit(c)
	}
	c.Next()
}

func (s *SiteModule) index(c *gin.Context) {
	data := s.sync.Data()
	view := PageView{
		Data:      data,
		Editor:    admin.State(c),
		Loading:   !s.sync.Ready(),
		Container: data.Layout.ContainerClass(),
		Domain:    s.domain,
	}

	if view.Loading {
		// never cached: the first snapshot is still on its way
		c.Header("Retry-After", "1")
		c.HTML(http.StatusServiceUnavailable, "index.html", view)
		return
	}

	c.HTML(http.StatusOK, "index.html", view)
}

func (s *SiteModule) contentJSON(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ready": s.sync.Ready(),
		"data":  s.sync.Data(),
	})
}

func (s *SiteModule) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"ready":  s.sync.Ready(),
	})
}

// stream sends the document as a server-sent event every time a snapshot
// is applied. Only the newest pending snapshot is kept for slow clients.
func (s *SiteModule) stream(c *gin.Context) {
	updates := make(chan models.SiteData, 1)
	cancel := s.sync.Subscribe(func(d models.SiteData) {
		for {
			select {
			case updates <- d:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("content", s.sync.Data())
	c.Writer.Flush()

	ctx := c.Request.Context()
	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()
	for {
		select {
		case d := <-updates:
			c.SSEvent("content", d)
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
		case <-ctx.Done():
			if ctx.Err() != context.Canceled {
				s.logger.Debug("content stream closed", "error", ctx.Err())
			}
			return
		}
		c.Writer.Flush()
	}
}

func (s *SiteModule) sitemap(c *gin.Context) {
	domain := s.domain
	if domain == "" {
		domain = "http://localhost:8080"
	}

	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	sitemap.WriteString("  <url>\n")
	sitemap.WriteString("    <loc>" + template.HTMLEscapeString(domain) + "/</loc>\n")
	sitemap.WriteString("    <changefreq>weekly</changefreq>\n")
	sitemap.WriteString("    <priority>1.0</priority>\n")
	sitemap.WriteString("  </url>\n")

	sitemap.WriteString("</urlset>\n")

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, sitemap.String())
}
