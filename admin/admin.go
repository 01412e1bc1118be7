package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"odontologia/analytics"
	"odontologia/content"
	"odontologia/identity"
	"odontologia/metrics"
	"odontologia/storage"
)

const (
	msgBadCredentials  = "E-mail ou senha incorretos."
	msgGenericError    = "Ocorreu um erro. Tente novamente."
	msgTooManyAttempts = "Muitas tentativas. Aguarde um minuto e tente novamente."
	msgUnauthorized    = "Faça login para editar o site."
)

type Options struct {
	LoginRPS   float64
	LoginBurst int
}

type AdminModule struct {
	sync      *content.Sync
	provider  identity.Provider
	uploader  storage.Uploader
	analytics *analytics.AnalyticsModule
	limiter   *ipLimiter
	logger    *slog.Logger
}

func NewAdminModule(sync *content.Sync, provider identity.Provider, uploader storage.Uploader, analyticsModule *analytics.AnalyticsModule, opts Options) *AdminModule {
	if uploader == nil {
		uploader = storage.Manual{}
	}
	return &AdminModule{
		sync:      sync,
		provider:  provider,
		uploader:  uploader,
		analytics: analyticsModule,
		limiter:   newIPLimiter("login", opts.LoginRPS, opts.LoginBurst),
		logger:    slog.Default().With("module", "admin"),
	}
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", a.loginPage)
	router.POST("/login", a.limiter.Middleware(), a.loginPost)
	router.GET("/logout", a.logout)
	router.GET("/admin", a.adminRoot)
	router.POST("/admin/edit-mode", a.requireAuth, a.toggleEditMode)

	api := router.Group("/admin/api")
	api.Use(a.requireAuth)
	{
		api.GET("/session", a.session)
		api.PUT("/content/:slot", a.updateText)
		api.PUT("/settings", a.updateSettings)
		api.PUT("/social", a.updateSocial)
		api.PUT("/hero-image", a.updateHeroImage)
		api.POST("/undo", a.undo)
		api.DELETE("/undo", a.dismissUndo)
		api.POST("/upload", a.upload)
		api.GET("/visits", a.visits)
		api.POST("/:collection", a.addItem)
		api.PATCH("/:collection/:id", a.updateItem)
		api.DELETE("/:collection/:id", a.deleteItem)
	}
}

func (a *AdminModule) requireAuth(c *gin.Context) {
	st := State(c)
	if !st.SignedIn {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
		return
	}

	c.Set("editor", st)
	c.Next()
}

func (a *AdminModule) adminRoot(c *gin.Context) {
	if IsSignedIn(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

func (a *AdminModule) loginPage(c *gin.Context) {
	if IsSignedIn(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// wantsJSON is true for the login modal, which posts with fetch.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func (a *AdminModule) loginFailed(c *gin.Context, status int, msg, email string) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.HTML(status, "login.html", gin.H{
		"error": msg,
		"email": email,
	})
}

func (a *AdminModule) loginPost(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	principal, err := a.provider.SignIn(c.Request.Context(), email, password)
	if errors.Is(err, identity.ErrBadCredentials) {
		metrics.LoginAttempts.WithLabelValues("bad_credentials").Inc()
		a.loginFailed(c, http.StatusUnauthorized, msgBadCredentials, email)
		return
	}
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		a.logger.Error("sign-in failed", "email", email, "error", err)
		a.loginFailed(c, http.StatusInternalServerError, msgGenericError, email)
		return
	}

	st := State(c)
	st.SignIn(principal)
	if err := saveState(c, st); err != nil {
		a.logger.Error("failed to save session", "error", err)
		a.loginFailed(c, http.StatusInternalServerError, msgGenericError, email)
		return
	}
	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	a.logger.Info("admin signed in", "email", principal.Email)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, st)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (a *AdminModule) logout(c *gin.Context) {
	st := State(c)
	st.SignOut()
	if err := saveState(c, st); err != nil {
		a.logger.Error("failed to clear session", "error", err)
	}

	c.Redirect(http.StatusFound, "/")
}

func (a *AdminModule) toggleEditMode(c *gin.Context) {
	st := State(c)
	st.ToggleEditMode()
	if err := saveState(c, st); err != nil {
		a.logger.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenericError})
		return
	}

	c.JSON(http.StatusOK, st)
}

func (a *AdminModule) session(c *gin.Context) {
	st := State(c)
	message, pending := a.sync.PendingUndo()
	c.JSON(http.StatusOK, gin.H{
		"editor":      st,
		"undoPending": pending,
		"undoMessage": message,
		"uploads":     a.uploader.Backend(),
	})
}

func (a *AdminModule) visits(c *gin.Context) {
	if a.analytics == nil {
		c.JSON(http.StatusOK, gin.H{"analyticsEnabled": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analyticsEnabled": true,
		"visitsByDay":      a.analytics.GetVisitsByDay(analytics.EventVisit, 15),
		"contactClicks":    a.analytics.CountEvents(analytics.EventContactClick, 30),
	})
}
