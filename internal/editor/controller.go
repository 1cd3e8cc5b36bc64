// Package editor is the owner-side UI state: the edit-mode flag and the
// add/edit modal for each entity kind.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Zachkp/folio/internal/portfolio"
)

// ErrNotConfirmed is returned by Delete when the owner declined the
// confirmation prompt. Nothing is mutated.
var ErrNotConfirmed = errors.New("delete not confirmed")

// Modal is the add/edit dialog for one kind. A nil EditingID means the
// dialog adds a new entity.
type Modal struct {
	Kind      portfolio.Kind
	Open      bool
	EditingID *int
	Form      Form
	Errors    map[string]string
}

// Heading is the dialog title, e.g. "Add Skill" or "Edit Achievement".
func (m Modal) Heading() string {
	verb := "Add"
	if m.EditingID != nil {
		verb = "Edit"
	}
	noun := map[portfolio.Kind]string{
		portfolio.KindSkills:       "Skill",
		portfolio.KindAchievements: "Achievement",
		portfolio.KindExperience:   "Experience",
	}[m.Kind]
	return verb + " " + noun
}

// Session is one owner's UI state.
type Session struct {
	EditMode bool
	modals   map[portfolio.Kind]*Modal
}

func newSession() *Session {
	s := &Session{modals: make(map[portfolio.Kind]*Modal, len(portfolio.Kinds))}
	for _, k := range portfolio.Kinds {
		s.modals[k] = &Modal{Kind: k}
	}
	return s
}

// Controller routes owner actions to the portfolio and tracks per-session
// modal state.
type Controller struct {
	p   *portfolio.Portfolio
	log *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewController(p *portfolio.Portfolio, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{p: p, log: logger.Named("editor"), sessions: make(map[string]*Session)}
}

func (c *Controller) sessionLocked(token string) *Session {
	s, ok := c.sessions[token]
	if !ok {
		s = newSession()
		c.sessions[token] = s
	}
	return s
}

// ToggleEditMode flips the flag and returns the new value. Data is never
// touched.
func (c *Controller) ToggleEditMode(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sessionLocked(token)
	s.EditMode = !s.EditMode
	return s.EditMode
}

func (c *Controller) EditMode(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[token]; ok {
		return s.EditMode
	}
	return false
}

// Forget drops all state for token (logout).
func (c *Controller) Forget(token string) {
	c.mu.Lock()
	delete(c.sessions, token)
	c.mu.Unlock()
}

// Modal returns a copy of the current dialog state for kind.
func (c *Controller) Modal(token string, kind portfolio.Kind) Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyModal(c.sessionLocked(token).modals[kind])
}

// OpenAdd opens kind's dialog in add mode with default field values.
func (c *Controller) OpenAdd(token string, kind portfolio.Kind) Modal {
	m := &Modal{Kind: kind, Open: true}
	switch kind {
	case portfolio.KindSkills:
		m.Form.Icon = portfolio.DefaultSkillIcon
	case portfolio.KindAchievements:
		m.Form.Badge = portfolio.DefaultAchievementBadge
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionLocked(token).modals[kind] = m
	return copyModal(m)
}

// OpenEdit opens kind's dialog populated from entity id.
func (c *Controller) OpenEdit(token string, kind portfolio.Kind, id int) (Modal, error) {
	form, ok := c.formFor(kind, id)
	if !ok {
		return Modal{Kind: kind}, fmt.Errorf("edit %s %d: %w", kind.Singular(), id, portfolio.ErrNotFound)
	}
	m := &Modal{Kind: kind, Open: true, EditingID: &id, Form: form}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionLocked(token).modals[kind] = m
	return copyModal(m), nil
}

// Close closes kind's dialog and clears its form.
func (c *Controller) Close(token string, kind portfolio.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionLocked(token).modals[kind] = &Modal{Kind: kind}
}

// Submit validates f and adds or updates depending on the dialog mode. On
// success the dialog is closed. On ErrInvalidDraft the returned modal is
// still open and carries the field errors.
func (c *Controller) Submit(ctx context.Context, token string, kind portfolio.Kind, f Form) (Modal, error) {
	c.mu.Lock()
	cur := copyModal(c.sessionLocked(token).modals[kind])
	c.mu.Unlock()

	var errs map[string]string
	var err error
	var id int
	switch kind {
	case portfolio.KindSkills:
		var s portfolio.Skill
		if s, errs = skillFromForm(f); errs == nil {
			id, err = save(ctx, c.p.Skills(), cur.EditingID, s)
		}
	case portfolio.KindAchievements:
		var a portfolio.Achievement
		if a, errs = achievementFromForm(f); errs == nil {
			id, err = save(ctx, c.p.Achievements(), cur.EditingID, a)
		}
	case portfolio.KindExperience:
		var e portfolio.Experience
		if e, errs = experienceFromForm(f); errs == nil {
			id, err = save(ctx, c.p.Experience(), cur.EditingID, e)
		}
	default:
		return cur, fmt.Errorf("submit: unknown kind %q", kind)
	}

	if errs != nil {
		cur.Open = true
		cur.Form = f
		cur.Errors = errs
		c.mu.Lock()
		c.sessionLocked(token).modals[kind] = &cur
		c.mu.Unlock()
		return copyModal(&cur), ErrInvalidDraft
	}

	c.Close(token, kind)
	if err != nil {
		return Modal{Kind: kind}, err
	}
	c.log.Info("saved entity", zap.String("kind", string(kind)), zap.Int("id", id), zap.Bool("update", cur.EditingID != nil))
	return Modal{Kind: kind}, nil
}

// Delete removes entity id once the owner has confirmed.
func (c *Controller) Delete(ctx context.Context, token string, kind portfolio.Kind, id int, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	var err error
	switch kind {
	case portfolio.KindSkills:
		err = c.p.Skills().Remove(ctx, id)
	case portfolio.KindAchievements:
		err = c.p.Achievements().Remove(ctx, id)
	case portfolio.KindExperience:
		err = c.p.Experience().Remove(ctx, id)
	default:
		return fmt.Errorf("delete: unknown kind %q", kind)
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	if m := c.sessionLocked(token).modals[kind]; m.EditingID != nil && *m.EditingID == id {
		c.sessionLocked(token).modals[kind] = &Modal{Kind: kind}
	}
	c.mu.Unlock()
	c.log.Info("deleted entity", zap.String("kind", string(kind)), zap.Int("id", id))
	return nil
}

func (c *Controller) formFor(kind portfolio.Kind, id int) (Form, bool) {
	switch kind {
	case portfolio.KindSkills:
		if s, ok := c.p.Skills().FindByID(id); ok {
			return formFromSkill(s), true
		}
	case portfolio.KindAchievements:
		if a, ok := c.p.Achievements().FindByID(id); ok {
			return formFromAchievement(a), true
		}
	case portfolio.KindExperience:
		if e, ok := c.p.Experience().FindByID(id); ok {
			return formFromExperience(e), true
		}
	}
	return Form{}, false
}

func save[T portfolio.Entity[T]](ctx context.Context, coll *portfolio.Collection[T], editingID *int, draft T) (int, error) {
	if editingID == nil {
		item, err := coll.Add(ctx, draft)
		return item.EntityID(), err
	}
	item, err := coll.Update(ctx, *editingID, draft)
	return item.EntityID(), err
}

func copyModal(m *Modal) Modal {
	out := *m
	if m.EditingID != nil {
		id := *m.EditingID
		out.EditingID = &id
	}
	if m.Errors != nil {
		out.Errors = make(map[string]string, len(m.Errors))
		for k, v := range m.Errors {
			out.Errors[k] = v
		}
	}
	return out
}
