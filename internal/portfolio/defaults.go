package portfolio

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Form defaults used when the owner leaves the glyph fields blank.
const (
	DefaultSkillIcon        = "📊"
	DefaultAchievementBadge = "🏆"
)

// BootstrapCompany identifies the experience entry that the startup patch
// guarantees is present.
const BootstrapCompany = "Micro Infotech"

//go:embed defaults.yaml
var defaultsYAML []byte

var parseDefaults = sync.OnceValues(func() (Data, error) {
	var d Data
	if err := yaml.Unmarshal(defaultsYAML, &d); err != nil {
		return Data{}, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return d, nil
})

// Defaults returns a fresh copy of the built-in portfolio content.
func Defaults() (Data, error) {
	d, err := parseDefaults()
	if err != nil {
		return Data{}, err
	}
	return d.Clone(), nil
}

// bootstrapExperience is the entry re-seeded by the startup patch.
func bootstrapExperience() []Experience {
	d, err := Defaults()
	if err != nil || len(d.Experience) == 0 {
		return []Experience{}
	}
	return d.Experience[:1]
}
