// Package server is the HTTP surface of the portfolio: the public page, the
// contact form and the owner's admin area.
package server

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/editor"
	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/render"
	"github.com/Zachkp/folio/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Site is the fixed copy shown around the editable sections.
type Site struct {
	Title   string
	Name    string
	Tagline string
	About   string
}

// Credentials configure the owner login.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string
}

type Options struct {
	Portfolio *portfolio.Portfolio
	Contact   *contact.Service
	// Visits is optional; without it no page views are recorded.
	Visits         store.VisitLog
	VisitRetention time.Duration
	Admin          Credentials
	Site           Site
	Mode           string
	StaticDir      string
	Logger         *zap.Logger
}

type Server struct {
	engine    *gin.Engine
	portfolio *portfolio.Portfolio
	sections  *render.Cache
	editor    *editor.Controller
	contact   *contact.Service
	visits    store.VisitLog
	retention time.Duration
	admin     *adminAuth
	site      Site
	log       *zap.Logger
	now       func() time.Time
}

func New(opts Options) (*Server, error) {
	if opts.Portfolio == nil || opts.Contact == nil {
		return nil, errors.New("server: portfolio and contact service are required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("server")

	switch opts.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	}

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	admin, err := newAdminAuth(opts.Admin, log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		portfolio: opts.Portfolio,
		sections:  render.NewCache(renderer, opts.Portfolio),
		editor:    editor.NewController(opts.Portfolio, opts.Logger),
		contact:   opts.Contact,
		visits:    opts.Visits,
		retention: opts.VisitRetention,
		admin:     admin,
		site:      opts.Site,
		log:       log,
		now:       time.Now,
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fieldError": func(field string, errs contact.Errors) fieldErrorView {
			return fieldErrorView{Field: field, Reason: errs[field]}
		},
		"field": func(name, label, value string, errs map[string]string) modalFieldView {
			return modalFieldView{Name: name, Label: label, Value: value, Error: errs[name]}
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.SetHTMLTemplate(tmpl)
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}
	if s.visits != nil {
		r.Use(s.visitorTrackingMiddleware())
	}

	r.GET("/", s.handleIndex)
	r.POST("/contact", s.handleContact)
	r.POST("/contact/validate/:field", s.handleValidateField)
	s.setupAdminRoutes(r)

	s.engine = r
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

type sectionView struct {
	Kind           portfolio.Kind
	Anchor         string
	Heading        string
	ContainerID    string
	ContainerClass string
	ModalID        string
	AddButtonID    string
	HTML           template.HTML
}

var sectionMeta = map[portfolio.Kind]struct{ heading, class, addButton string }{
	portfolio.KindSkills:       {"Skills", "skills__grid", "addSkillBtn"},
	portfolio.KindAchievements: {"Achievements", "achievements__grid", "addAchievementBtn"},
	portfolio.KindExperience:   {"Experience & Projects", "timeline", "addExperienceBtn"},
}

type contactView struct {
	Form   contact.Form
	Errors contact.Errors
	Banner contact.Banner
}

type fieldErrorView struct {
	Field  string
	Reason string
}

type modalFieldView struct {
	Name  string
	Label string
	Value string
	Error string
}

// Home page route
func (s *Server) handleIndex(c *gin.Context) {
	token, owner := s.admin.sessionToken(c)
	editMode := owner && s.editor.EditMode(token)

	sections := make([]sectionView, 0, len(portfolio.Kinds))
	for _, k := range portfolio.Kinds {
		html, err := s.sections.Section(k, editMode)
		if err != nil {
			s.log.Error("rendering section", zap.String("kind", string(k)), zap.Error(err))
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": "Failed to render the page"})
			return
		}
		meta := sectionMeta[k]
		sections = append(sections, sectionView{
			Kind:           k,
			Anchor:         string(k),
			Heading:        meta.heading,
			ContainerID:    render.ContainerID(k),
			ContainerClass: meta.class,
			ModalID:        render.ModalID(k),
			AddButtonID:    meta.addButton,
			HTML:           html,
		})
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Site":     s.site,
		"Owner":    owner,
		"EditMode": editMode,
		"Sections": sections,
		"Contact":  contactView{Errors: contact.Errors{}},
		"Year":     s.now().Year(),
	})
}

// Contact form submission. Always answers 200 with the re-rendered form so
// HTMX swaps in the field errors and banner.
func (s *Server) handleContact(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBind(&form); err != nil {
		s.log.Debug("binding contact form", zap.Error(err))
	}

	out := s.contact.Submit(c.Request.Context(), hashIP(s.admin.salt, c.ClientIP()), form)
	c.HTML(http.StatusOK, "contact.html", contactView{Form: out.Form, Errors: out.Errors, Banner: out.Banner})
}

// Single-field validation on blur. An empty slot means the field is valid.
func (s *Server) handleValidateField(c *gin.Context) {
	field := strings.ToLower(c.Param("field"))
	res := contact.ValidateField(field, c.PostForm(field))
	c.HTML(http.StatusOK, "field-error.html", fieldErrorView{Field: field, Reason: res.Reason})
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
