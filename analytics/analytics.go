package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Eventos registrados pela página pública
const (
	EventVisit        = "visit"
	EventContactClick = "contact_click"
)

var knownEvents = map[string]bool{
	EventVisit:        true,
	EventContactClick: true,
}

// SiteEvent representa um evento de visita ou de clique na página da clínica
type SiteEvent struct {
	ID        uint      `gorm:"primary_key;autoIncrement"`
	CookieID  string    `gorm:"not null;index"`
	Event     string    `gorm:"not null;default:'visit';index"`
	Section   *string   // nullable - seção da página, quando o evento vem de um botão
	IP        string    `gorm:"not null"`
	Lingua    *string   // nullable
	Navegador *string   // nullable
	CreatedAt time.Time `gorm:"index"`
}

// AnalyticsModule gerencia o tracking de analytics
type AnalyticsModule struct {
	db       *gorm.DB
	throttle time.Duration
	now      func() time.Time
	save     func(event SiteEvent)
}

// NewAnalyticsModule cria uma nova instância do módulo de analytics.
// Retorna nil (analytics desabilitado) quando db é nil.
func NewAnalyticsModule(db *gorm.DB) *AnalyticsModule {
	if db == nil {
		slog.Info("analytics DB is nil, analytics will be disabled")
		return nil
	}

	if err := db.AutoMigrate(&SiteEvent{}); err != nil {
		slog.Error("error migrating site_events table", "error", err)
		return nil
	}

	a := &AnalyticsModule{db: db, throttle: 30 * time.Minute, now: time.Now}
	// Salvar no banco de forma assíncrona para não impactar o tempo de resposta
	a.save = func(event SiteEvent) {
		go a.create(event)
	}
	slog.Info("analytics module initialized")
	return a
}

func (a *AnalyticsModule) create(event SiteEvent) {
	if err := a.db.Create(&event).Error; err != nil {
		slog.Error("error saving analytics event", "event", event.Event, "error", err)
	}
}

func (a *AnalyticsModule) RegisterRoutes(router *gin.Engine) {
	if a == nil {
		return
	}
	router.POST("/api/events", a.trackEventPost)
}

// TrackVisit registra uma visita à página.
// Só registra se a última visita do mesmo visitante foi há mais de 30 minutos.
func (a *AnalyticsModule) TrackVisit(c *gin.Context) {
	a.Track(c, EventVisit, "")
}

// Track registra um evento com o mesmo throttling de TrackVisit.
func (a *AnalyticsModule) Track(c *gin.Context, event, section string) {
	if a == nil || a.db == nil {
		return // Analytics desabilitado
	}

	cookieID := a.getOrCreateCookieID(c)

	since := a.now().Add(-a.throttle)
	query := a.db.Where("cookie_id = ? AND event = ? AND created_at > ?", cookieID, event, since)
	if section != "" {
		query = query.Where("section = ?", section)
	}
	var recent SiteEvent
	if err := query.First(&recent).Error; err == nil {
		return
	}

	var sectionPtr *string
	if section != "" {
		sectionPtr = &section
	}

	a.save(SiteEvent{
		CookieID:  cookieID,
		Event:     event,
		Section:   sectionPtr,
		IP:        getClientIP(c),
		Lingua:    extractLanguage(c),
		Navegador: extractBrowser(c.Request.UserAgent()),
		CreatedAt: a.now(),
	})
}

func (a *AnalyticsModule) trackEventPost(c *gin.Context) {
	var body struct {
		Event   string `json:"event"`
		Section string `json:"section"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !knownEvents[body.Event] || len(body.Section) > 64 {
		c.JSON(400, gin.H{"error": "Evento inválido"})
		return
	}

	a.Track(c, body.Event, body.Section)
	c.Status(204)
}

// getOrCreateCookieID obtém ou cria um cookie ID único para o visitante
func (a *AnalyticsModule) getOrCreateCookieID(c *gin.Context) string {
	cookieName := "odontologia_visitor_id"

	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	// Criar novo ID baseado em timestamp + IP + User-Agent
	data := a.now().String() + c.ClientIP() + c.Request.UserAgent()
	hash := sha256.Sum256([]byte(data))
	cookieID := hex.EncodeToString(hash[:])

	c.SetCookie(
		cookieName,
		cookieID,
		60*60*24*365*2, // 2 anos
		"/",
		"",
		false,
		true,
	)

	return cookieID
}

// getClientIP obtém o IP real do cliente, considerando proxies
func getClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For pode ter múltiplos IPs, pegar o primeiro
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}

	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}

	return c.ClientIP()
}

// extractBrowser extrai o nome do navegador do User-Agent
func extractBrowser(userAgent string) *string {
	if userAgent == "" {
		return nil
	}

	ua := strings.ToLower(userAgent)
	var browser string

	// Ordem importa - verificar navegadores mais específicos primeiro
	switch {
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "opr") || strings.Contains(ua, "opera"):
		browser = "Opera"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	default:
		browser = "Other"
	}

	return &browser
}

// extractLanguage extrai o idioma preferido do Accept-Language header
func extractLanguage(c *gin.Context) *string {
	acceptLang := c.GetHeader("Accept-Language")
	if acceptLang == "" {
		return nil
	}

	// Accept-Language format: "pt-BR,pt;q=0.9,en;q=0.8"
	lang := strings.TrimSpace(strings.Split(acceptLang, ",")[0])
	lang = strings.Split(lang, ";")[0]
	return &lang
}

// DayVisits representa o número de eventos em um dia específico
type DayVisits struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// GetVisitsByDay retorna o número de eventos por dia dos últimos N dias
func (a *AnalyticsModule) GetVisitsByDay(event string, days int) []DayVisits {
	if a == nil || a.db == nil || days <= 0 {
		return []DayVisits{}
	}

	now := a.now()
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))

	var results []struct {
		Date  string
		Count int64
	}

	a.db.Model(&SiteEvent{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("event = ? AND created_at >= ?", event, startDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results)

	counts := make(map[string]int64, len(results))
	for _, r := range results {
		counts[r.Date] = r.Count
	}

	// Todos os dias dos últimos N dias, inclusive os sem eventos
	dayVisits := make([]DayVisits, days)
	for i := 0; i < days; i++ {
		date := startDate.AddDate(0, 0, i).Format("2006-01-02")
		dayVisits[i] = DayVisits{Date: date, Count: counts[date]}
	}

	return dayVisits
}

// CountEvents retorna o total de eventos dos últimos N dias
func (a *AnalyticsModule) CountEvents(event string, days int) int64 {
	if a == nil || a.db == nil {
		return 0
	}

	var count int64
	a.db.Model(&SiteEvent{}).
		Where("event = ? AND created_at >= ?", event, a.now().AddDate(0, 0, -days)).
		Count(&count)
	return count
}
