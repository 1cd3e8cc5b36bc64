package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/store"
)

const token = "owner"

func newController(t *testing.T) (*Controller, *portfolio.Portfolio) {
	t.Helper()
	p, err := portfolio.Open(context.Background(), store.NewMemoryStore())
	require.NoError(t, err)
	return NewController(p, nil), p
}

func TestToggleEditMode_LeavesDataUnchanged(t *testing.T) {
	c, p := newController(t)
	before := p.Snapshot()

	assert.False(t, c.EditMode(token))
	assert.True(t, c.ToggleEditMode(token))
	assert.True(t, c.EditMode(token))
	assert.False(t, c.ToggleEditMode(token))

	assert.Equal(t, before, p.Snapshot())
}

func TestEditMode_PerSession(t *testing.T) {
	c, _ := newController(t)
	c.ToggleEditMode("a")
	assert.True(t, c.EditMode("a"))
	assert.False(t, c.EditMode("b"))

	c.Forget("a")
	assert.False(t, c.EditMode("a"))
}

func TestOpenAdd_Defaults(t *testing.T) {
	c, _ := newController(t)

	m := c.OpenAdd(token, portfolio.KindSkills)
	assert.True(t, m.Open)
	assert.Nil(t, m.EditingID)
	assert.Equal(t, portfolio.DefaultSkillIcon, m.Form.Icon)
	assert.Equal(t, "Add Skill", m.Heading())

	m = c.OpenAdd(token, portfolio.KindAchievements)
	assert.Equal(t, portfolio.DefaultAchievementBadge, m.Form.Badge)
}

func TestOpenEdit_PopulatesForm(t *testing.T) {
	c, _ := newController(t)

	m, err := c.OpenEdit(token, portfolio.KindExperience, 1)
	require.NoError(t, err)
	require.NotNil(t, m.EditingID)
	assert.Equal(t, 1, *m.EditingID)
	assert.Equal(t, "Intern", m.Form.Title)
	assert.Equal(t, "Python, Data Science, Customer Feedback Systems", m.Form.Tags)
	assert.Equal(t, "Edit Experience", m.Heading())
}

func TestOpenEdit_StaleID(t *testing.T) {
	c, _ := newController(t)
	_, err := c.OpenEdit(token, portfolio.KindSkills, 999)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	assert.False(t, c.Modal(token, portfolio.KindSkills).Open)
}

func TestSubmit_AddThenClose(t *testing.T) {
	c, p := newController(t)
	c.OpenAdd(token, portfolio.KindSkills)

	m, err := c.Submit(context.Background(), token, portfolio.KindSkills, Form{Title: " Go ", Description: "Services"})
	require.NoError(t, err)
	assert.False(t, m.Open)
	assert.False(t, c.Modal(token, portfolio.KindSkills).Open)

	added, ok := p.Skills().FindByID(7)
	require.True(t, ok)
	assert.Equal(t, portfolio.Skill{ID: 7, Icon: portfolio.DefaultSkillIcon, Title: "Go", Description: "Services"}, added)
}

func TestSubmit_UpdateWhenEditing(t *testing.T) {
	c, p := newController(t)
	_, err := c.OpenEdit(token, portfolio.KindAchievements, 4)
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), token, portfolio.KindAchievements, Form{Title: "Honors", Description: "Top of class"})
	require.NoError(t, err)

	a, ok := p.Achievements().FindByID(4)
	require.True(t, ok)
	assert.Equal(t, "Honors", a.Title)
	assert.Equal(t, portfolio.DefaultAchievementBadge, a.Badge)
	assert.Equal(t, 2, p.Achievements().Len())
}

func TestSubmit_InvalidKeepsModalOpen(t *testing.T) {
	c, p := newController(t)
	c.OpenAdd(token, portfolio.KindExperience)

	f := Form{Title: "Analyst", Link: "not a url"}
	m, err := c.Submit(context.Background(), token, portfolio.KindExperience, f)
	assert.ErrorIs(t, err, ErrInvalidDraft)
	assert.True(t, m.Open)
	assert.Equal(t, "Date is required", m.Errors["date"])
	assert.Equal(t, "Description is required", m.Errors["description"])
	assert.Equal(t, "Link must be a valid URL", m.Errors["link"])
	assert.Equal(t, f, c.Modal(token, portfolio.KindExperience).Form)
	assert.Equal(t, 1, p.Experience().Len())
}

func TestSubmit_LinkMustBeWebURL(t *testing.T) {
	for _, link := range []string{"javascript:alert(1)", "mailto:me@example.com", "ftp://example.com/file"} {
		t.Run(link, func(t *testing.T) {
			c, p := newController(t)
			c.OpenAdd(token, portfolio.KindExperience)

			m, err := c.Submit(context.Background(), token, portfolio.KindExperience, Form{
				Title: "Analyst", Date: "2026", Description: "d", Link: link,
			})
			assert.ErrorIs(t, err, ErrInvalidDraft)
			assert.Equal(t, "Link must be a valid URL", m.Errors["link"])
			assert.Equal(t, 1, p.Experience().Len())
		})
	}
}

func TestSubmit_ExperienceTags(t *testing.T) {
	c, p := newController(t)
	c.OpenAdd(token, portfolio.KindExperience)

	_, err := c.Submit(context.Background(), token, portfolio.KindExperience, Form{
		Title: "Analyst", Date: "2026", Description: "d", Tags: " SQL, ,Tableau ,", Link: "https://example.com",
	})
	require.NoError(t, err)

	e, ok := p.Experience().FindByID(2)
	require.True(t, ok)
	assert.Equal(t, []string{"SQL", "Tableau"}, e.Tags)
}

func TestSubmit_UpdateAfterConcurrentDelete(t *testing.T) {
	c, p := newController(t)
	_, err := c.OpenEdit(token, portfolio.KindSkills, 3)
	require.NoError(t, err)
	require.NoError(t, p.Skills().Remove(context.Background(), 3))

	_, err = c.Submit(context.Background(), token, portfolio.KindSkills, Form{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
	assert.Equal(t, 5, p.Skills().Len())
	assert.False(t, c.Modal(token, portfolio.KindSkills).Open)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	c, p := newController(t)
	ctx := context.Background()

	err := c.Delete(ctx, token, portfolio.KindSkills, 1, false)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, 6, p.Skills().Len())

	require.NoError(t, c.Delete(ctx, token, portfolio.KindSkills, 1, true))
	assert.Equal(t, 5, p.Skills().Len())

	err = c.Delete(ctx, token, portfolio.KindSkills, 1, true)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

func TestDelete_ClosesModalEditingThatEntity(t *testing.T) {
	c, _ := newController(t)
	_, err := c.OpenEdit(token, portfolio.KindExperience, 1)
	require.NoError(t, err)

	require.NoError(t, c.Delete(context.Background(), token, portfolio.KindExperience, 1, true))
	assert.False(t, c.Modal(token, portfolio.KindExperience).Open)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{}, SplitTags(""))
	assert.Equal(t, []string{"a", "b c"}, SplitTags(" a ,, b c ,"))
}
