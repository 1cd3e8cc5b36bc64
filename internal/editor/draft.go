package editor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Zachkp/folio/internal/portfolio"
)

// Form carries the modal fields for every kind; each kind reads the subset
// it needs.
type Form struct {
	Icon        string `form:"icon"`
	Badge       string `form:"badge"`
	Title       string `form:"title"`
	Meta        string `form:"meta"`
	Company     string `form:"company"`
	Date        string `form:"date"`
	Description string `form:"description"`
	Tags        string `form:"tags"`
	Link        string `form:"link"`
}

type skillDraft struct {
	Icon        string `form:"icon"`
	Title       string `form:"title" validate:"required"`
	Description string `form:"description" validate:"required"`
}

type achievementDraft struct {
	Badge       string `form:"badge"`
	Title       string `form:"title" validate:"required"`
	Meta        string `form:"meta"`
	Description string `form:"description" validate:"required"`
}

type experienceDraft struct {
	Title       string   `form:"title" validate:"required"`
	Company     string   `form:"company"`
	Date        string   `form:"date" validate:"required"`
	Description string   `form:"description" validate:"required"`
	Tags        []string `form:"tags"`
	Link        string   `form:"link" validate:"omitempty,http_url"`
}

// ErrInvalidDraft is returned by Submit when the form fails validation; the
// modal stays open with per-field errors.
var ErrInvalidDraft = errors.New("invalid draft")

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
})

// SplitTags turns a comma separated list into trimmed, non-empty tags.
func SplitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		label := strings.ToUpper(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = label + " is required"
		case "url", "http_url":
			out[fe.Field()] = label + " must be a valid URL"
		default:
			out[fe.Field()] = fmt.Sprintf("%s is invalid (%s)", label, fe.Tag())
		}
	}
	return out
}

func skillFromForm(f Form) (portfolio.Skill, map[string]string) {
	d := skillDraft{
		Icon:        strings.TrimSpace(f.Icon),
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
	}
	if err := validate().Struct(d); err != nil {
		return portfolio.Skill{}, fieldErrors(err)
	}
	if d.Icon == "" {
		d.Icon = portfolio.DefaultSkillIcon
	}
	return portfolio.Skill{Icon: d.Icon, Title: d.Title, Description: d.Description}, nil
}

func achievementFromForm(f Form) (portfolio.Achievement, map[string]string) {
	d := achievementDraft{
		Badge:       strings.TrimSpace(f.Badge),
		Title:       strings.TrimSpace(f.Title),
		Meta:        strings.TrimSpace(f.Meta),
		Description: strings.TrimSpace(f.Description),
	}
	if err := validate().Struct(d); err != nil {
		return portfolio.Achievement{}, fieldErrors(err)
	}
	if d.Badge == "" {
		d.Badge = portfolio.DefaultAchievementBadge
	}
	return portfolio.Achievement{Badge: d.Badge, Title: d.Title, Meta: d.Meta, Description: d.Description}, nil
}

func experienceFromForm(f Form) (portfolio.Experience, map[string]string) {
	d := experienceDraft{
		Title:       strings.TrimSpace(f.Title),
		Company:     strings.TrimSpace(f.Company),
		Date:        strings.TrimSpace(f.Date),
		Description: strings.TrimSpace(f.Description),
		Tags:        SplitTags(f.Tags),
		Link:        strings.TrimSpace(f.Link),
	}
	if err := validate().Struct(d); err != nil {
		return portfolio.Experience{}, fieldErrors(err)
	}
	return portfolio.Experience{
		Title:       d.Title,
		Company:     d.Company,
		Date:        d.Date,
		Description: d.Description,
		Tags:        d.Tags,
		Link:        d.Link,
	}, nil
}

func formFromSkill(s portfolio.Skill) Form {
	return Form{Icon: s.Icon, Title: s.Title, Description: s.Description}
}

func formFromAchievement(a portfolio.Achievement) Form {
	return Form{Badge: a.Badge, Title: a.Title, Meta: a.Meta, Description: a.Description}
}

func formFromExperience(e portfolio.Experience) Form {
	return Form{
		Title:       e.Title,
		Company:     e.Company,
		Date:        e.Date,
		Description: e.Description,
		Tags:        strings.Join(e.Tags, ", "),
		Link:        e.Link,
	}
}
