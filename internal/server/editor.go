package server

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/folio/internal/editor"
	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/render"
)

type modalView struct {
	Kind        portfolio.Kind
	Modal       editor.Modal
	ModalID     string
	ContainerID string
	TitleID     string
	FormID      string
	CloseID     string
	CancelID    string
	OOB         bool
}

var modalPrefixes = map[portfolio.Kind]string{
	portfolio.KindSkills:       "skill",
	portfolio.KindAchievements: "achievement",
	portfolio.KindExperience:   "experience",
}

func newModalView(m editor.Modal, oob bool) modalView {
	p := modalPrefixes[m.Kind]
	return modalView{
		Kind:        m.Kind,
		Modal:       m,
		ModalID:     render.ModalID(m.Kind),
		ContainerID: render.ContainerID(m.Kind),
		TitleID:     p + "ModalTitle",
		FormID:      p + "Form",
		CloseID:     p + "ModalClose",
		CancelID:    p + "ModalCancel",
		OOB:         oob,
	}
}

type sectionFragment struct {
	HTML   template.HTML
	Closed modalView
}

func (s *Server) setupEditorRoutes(admin *gin.RouterGroup) {
	admin.POST("/edit-mode", s.handleToggleEditMode)

	entities := admin.Group("/entities/:kind")
	entities.Use(kindParam())
	entities.GET("/new", s.handleOpenAdd)
	entities.GET("/:id/edit", s.handleOpenEdit)
	entities.POST("/close", s.handleCloseModal)
	entities.POST("", s.handleSubmitEntity)
	entities.DELETE("/:id", s.handleDeleteEntity)
}

const kindKey = "kind"

func kindParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := portfolio.ParseKind(c.Param("kind"))
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.Set(kindKey, kind)
		c.Next()
	}
}

func kindOf(c *gin.Context) portfolio.Kind { return c.MustGet(kindKey).(portfolio.Kind) }

func tokenOf(c *gin.Context) string { return c.GetString(adminCookie) }

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// Edit mode only changes what the page renders, so the page is reloaded.
func (s *Server) handleToggleEditMode(c *gin.Context) {
	on := s.editor.ToggleEditMode(tokenOf(c))
	s.log.Debug("edit mode toggled", zap.Bool("on", on))
	if isHTMX(c) {
		c.Header("HX-Refresh", "true")
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleOpenAdd(c *gin.Context) {
	m := s.editor.OpenAdd(tokenOf(c), kindOf(c))
	c.HTML(http.StatusOK, "modal.html", newModalView(m, false))
}

func (s *Server) handleOpenEdit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	m, err := s.editor.OpenEdit(tokenOf(c), kindOf(c), id)
	if err != nil {
		s.notFound(c, err)
		return
	}
	c.HTML(http.StatusOK, "modal.html", newModalView(m, false))
}

func (s *Server) handleCloseModal(c *gin.Context) {
	kind := kindOf(c)
	s.editor.Close(tokenOf(c), kind)
	c.HTML(http.StatusOK, "modal.html", newModalView(editor.Modal{Kind: kind}, false))
}

// Invalid drafts re-render the dialog in place of the container swap so the
// owner sees the field errors.
func (s *Server) handleSubmitEntity(c *gin.Context) {
	kind := kindOf(c)
	var form editor.Form
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"error": "Malformed form"})
		return
	}

	m, err := s.editor.Submit(c.Request.Context(), tokenOf(c), kind, form)
	switch {
	case errors.Is(err, editor.ErrInvalidDraft):
		c.Header("HX-Retarget", "#"+render.ModalID(kind))
		c.Header("HX-Reswap", "outerHTML")
		c.HTML(http.StatusOK, "modal.html", newModalView(m, false))
		return
	case errors.Is(err, portfolio.ErrNotFound):
		s.notFound(c, err)
		return
	case err != nil:
		// The change is kept in memory even when persisting it failed.
		s.log.Error("saving entity", zap.String("kind", string(kind)), zap.Error(err))
	}
	s.renderSection(c, kind)
}

func (s *Server) handleDeleteEntity(c *gin.Context) {
	kind := kindOf(c)
	id, ok := idParam(c)
	if !ok {
		return
	}
	confirmed := strings.EqualFold(c.Query("confirm"), "yes")
	err := s.editor.Delete(c.Request.Context(), tokenOf(c), kind, id, confirmed)
	switch {
	case errors.Is(err, editor.ErrNotConfirmed):
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"error": "Deletion was not confirmed"})
		return
	case errors.Is(err, portfolio.ErrNotFound):
		s.notFound(c, err)
		return
	case err != nil:
		s.log.Error("deleting entity", zap.String("kind", string(kind)), zap.Int("id", id), zap.Error(err))
	}
	s.renderSection(c, kind)
}

func (s *Server) renderSection(c *gin.Context, kind portfolio.Kind) {
	html, err := s.sections.Section(kind, s.editor.EditMode(tokenOf(c)))
	if err != nil {
		s.log.Error("rendering section", zap.String("kind", string(kind)), zap.Error(err))
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": "Failed to render section"})
		return
	}
	c.HTML(http.StatusOK, "section.html", sectionFragment{
		HTML:   html,
		Closed: newModalView(s.editor.Modal(tokenOf(c), kind), true),
	})
}

func (s *Server) notFound(c *gin.Context, err error) {
	s.log.Debug("entity not found", zap.Error(err))
	c.HTML(http.StatusNotFound, "error.html", gin.H{"error": "That entry no longer exists"})
}
