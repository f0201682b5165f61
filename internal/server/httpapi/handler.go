// Package httpapi exposes the complaint form, the signup/login pages, the
// session-protected admin page and the token-protected JSON API over gin.
package httpapi

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/dmitrijs2005/complaintdesk/internal/logging"
	"github.com/dmitrijs2005/complaintdesk/internal/server/services"
	"github.com/dmitrijs2005/complaintdesk/internal/server/sessions"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options tune the HTTP surface.
type Options struct {
	// CookieSecure marks the sid and token cookies Secure (HTTPS only).
	CookieSecure bool
	// MaxUploadSize caps the complaint request body, in bytes.
	MaxUploadSize int64
	// UploadDir, when set, is served under /uploads.
	UploadDir string
	// TrustedProxies lists proxies whose X-Forwarded-For is believed when
	// determining the client address. Empty trusts none.
	TrustedProxies []string
}

type Handler struct {
	auth       *services.AuthService
	complaints *services.ComplaintService
	logger     logging.Logger
	opts       Options
	cookies    sessions.CookieOptions
	templates  *template.Template
}

func NewHandler(authSvc *services.AuthService, complaintSvc *services.ComplaintService, logger logging.Logger, opts Options) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Handler{
		auth:       authSvc,
		complaints: complaintSvc,
		logger:     logger.With("module", "http"),
		opts:       opts,
		cookies: sessions.CookieOptions{
			Secure:   opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		},
		templates: tmpl,
	}, nil
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	if err := r.SetTrustedProxies(h.opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.SetHTMLTemplate(h.templates)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", h.homePage)
	r.POST("/", h.submitComplaint)

	r.GET("/signup", h.signupPage)
	r.POST("/signup", h.signup)

	r.GET("/login", h.loginPage)
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)

	admin := r.Group("/admin", h.requireSession())
	admin.GET("", h.adminPage)

	api := r.Group("/api", h.requireToken())
	api.GET("/complaints", h.listComplaints)

	if h.opts.UploadDir != "" {
		uploads := r.Group("/uploads", noSniff())
		uploads.StaticFS("/", gin.Dir(h.opts.UploadDir, false))
	}

	return r, nil
}

// page is the data handed to every template.
type page struct {
	Title      string
	Error      string
	Form       formValues
	Session    *sessions.Session
	Complaints []services.ComplaintView
}

// formValues echoes non-secret fields back into a re-rendered form.
type formValues struct {
	Name     string
	Email    string
	Location string
	Message  string
}

func (h *Handler) render(c *gin.Context, status int, name string, p page) {
	c.HTML(status, name, p)
}
