// Package render projects portfolio collections into HTML fragments.
//
// A fragment is the complete content of a section container; callers replace
// the container wholesale rather than patching individual cards.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/Zachkp/folio/internal/portfolio"
)

//go:embed templates/*.html
var templateFS embed.FS

// Container and modal element ids per kind. The page markup must expose
// these for fragment swaps to land.
var (
	containerIDs = map[portfolio.Kind]string{
		portfolio.KindSkills:       "skillsContainer",
		portfolio.KindAchievements: "achievementsContainer",
		portfolio.KindExperience:   "experienceContainer",
	}
	modalIDs = map[portfolio.Kind]string{
		portfolio.KindSkills:       "skillModal",
		portfolio.KindAchievements: "achievementModal",
		portfolio.KindExperience:   "experienceModal",
	}
)

func ContainerID(k portfolio.Kind) string { return containerIDs[k] }
func ModalID(k portfolio.Kind) string     { return modalIDs[k] }

type sectionData struct {
	Kind     portfolio.Kind
	Items    any
	EditMode bool
}

type controlsData struct {
	Kind      portfolio.Kind
	ID        int
	EditMode  bool
	Label     string
	Modal     string
	Container string
}

// Renderer turns collections into card markup.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

func New() (*Renderer, error) {
	r := &Renderer{md: goldmark.New()}
	tmpl, err := template.New("cards").Funcs(template.FuncMap{
		"markdown": r.markdown,
		"controls": func(s sectionData, id int) controlsData {
			return controlsData{
				Kind:      s.Kind,
				ID:        id,
				EditMode:  s.EditMode,
				Label:     s.Kind.Singular(),
				Modal:     modalIDs[s.Kind],
				Container: containerIDs[s.Kind],
			}
		},
	}).ParseFS(templateFS, "templates/cards.html")
	if err != nil {
		return nil, fmt.Errorf("parsing card templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// markdown renders description text. Raw HTML in the source is dropped by
// goldmark's default renderer.
func (r *Renderer) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func (r *Renderer) Skills(items []portfolio.Skill, editMode bool) (template.HTML, error) {
	return r.execute(portfolio.KindSkills, items, editMode)
}

func (r *Renderer) Achievements(items []portfolio.Achievement, editMode bool) (template.HTML, error) {
	return r.execute(portfolio.KindAchievements, items, editMode)
}

func (r *Renderer) Experience(items []portfolio.Experience, editMode bool) (template.HTML, error) {
	return r.execute(portfolio.KindExperience, items, editMode)
}

// Section renders the current contents of kind from p.
func (r *Renderer) Section(p *portfolio.Portfolio, kind portfolio.Kind, editMode bool) (template.HTML, error) {
	switch kind {
	case portfolio.KindSkills:
		return r.Skills(p.Skills().List(), editMode)
	case portfolio.KindAchievements:
		return r.Achievements(p.Achievements().List(), editMode)
	case portfolio.KindExperience:
		return r.Experience(p.Experience().List(), editMode)
	}
	return "", fmt.Errorf("render: unknown kind %q", kind)
}

func (r *Renderer) execute(kind portfolio.Kind, items any, editMode bool) (template.HTML, error) {
	var buf bytes.Buffer
	data := sectionData{Kind: kind, Items: items, EditMode: editMode}
	if err := r.tmpl.ExecuteTemplate(&buf, string(kind), data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", kind, err)
	}
	return template.HTML(buf.String()), nil
}
