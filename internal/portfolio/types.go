// Package portfolio holds the portfolio content model and the in-memory
// repository that owns it.
package portfolio

import (
	"fmt"
	"slices"
)

// Kind names one of the three entity collections.
type Kind string

const (
	KindSkills       Kind = "skills"
	KindAchievements Kind = "achievements"
	KindExperience   Kind = "experience"
)

// Kinds lists every collection in page order.
var Kinds = []Kind{KindSkills, KindAchievements, KindExperience}

// ParseKind accepts the collection name used in routes and the JSON blob.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSkills, KindAchievements, KindExperience:
		return k, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Singular returns the human label used in modal titles and confirm prompts.
func (k Kind) Singular() string {
	switch k {
	case KindSkills:
		return "skill"
	case KindAchievements:
		return "achievement"
	case KindExperience:
		return "experience/project"
	}
	return string(k)
}

type Skill struct {
	ID          int    `json:"id" yaml:"id"`
	Icon        string `json:"icon" yaml:"icon"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

func (s Skill) EntityID() int { return s.ID }

func (s Skill) WithID(id int) Skill {
	s.ID = id
	return s
}

type Achievement struct {
	ID          int    `json:"id" yaml:"id"`
	Badge       string `json:"badge" yaml:"badge"`
	Title       string `json:"title" yaml:"title"`
	Meta        string `json:"meta,omitempty" yaml:"meta"`
	Description string `json:"description" yaml:"description"`
}

func (a Achievement) EntityID() int { return a.ID }

func (a Achievement) WithID(id int) Achievement {
	a.ID = id
	return a
}

type Experience struct {
	ID          int      `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Company     string   `json:"company,omitempty" yaml:"company"`
	Date        string   `json:"date" yaml:"date"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	Link        string   `json:"link,omitempty" yaml:"link"`
}

func (e Experience) EntityID() int { return e.ID }

// WithID also detaches Tags so stored entities never share a backing array
// with a caller's draft.
func (e Experience) WithID(id int) Experience {
	e.ID = id
	e.Tags = slices.Clone(e.Tags)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e
}

// Data is the store blob: the single aggregate document persisted between
// sessions.
type Data struct {
	Skills       []Skill       `json:"skills" yaml:"skills"`
	Achievements []Achievement `json:"achievements" yaml:"achievements"`
	Experience   []Experience  `json:"experience" yaml:"experience"`
}

// Clone returns a deep copy.
func (d Data) Clone() Data {
	out := Data{
		Skills:       slices.Clone(d.Skills),
		Achievements: slices.Clone(d.Achievements),
		Experience:   make([]Experience, len(d.Experience)),
	}
	for i, e := range d.Experience {
		out.Experience[i] = e.WithID(e.ID)
	}
	if out.Skills == nil {
		out.Skills = []Skill{}
	}
	if out.Achievements == nil {
		out.Achievements = []Achievement{}
	}
	return out
}
