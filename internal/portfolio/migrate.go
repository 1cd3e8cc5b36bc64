package portfolio

import (
	"slices"
	"strings"
)

// Patch is a one-time data repair run when the portfolio is opened. Apply
// reports whether it changed anything.
type Patch struct {
	Name  string
	Apply func(d *Data) bool
}

// Patches returns the startup patches in the order they run. When
// resetExperience is set the stored experience list is discarded on every
// load before the bootstrap entry is re-seeded.
func Patches(resetExperience bool) []Patch {
	var ps []Patch
	if resetExperience {
		ps = append(ps, Patch{Name: "reset-experience", Apply: resetExperienceList})
	}
	return append(ps,
		Patch{Name: "seed-bootstrap-experience", Apply: seedBootstrapExperience},
		Patch{Name: "academic-excellence-dates", Apply: fixAcademicExcellence},
		Patch{Name: "data-analyst-cert-year", Apply: fixDataAnalystCertYear},
		Patch{Name: "drop-retired-achievements", Apply: dropRetiredAchievements},
	)
}

// ApplyPatches runs patches over d and returns the names of those that
// changed it.
func ApplyPatches(d *Data, patches []Patch) []string {
	var applied []string
	for _, p := range patches {
		if p.Apply(d) {
			applied = append(applied, p.Name)
		}
	}
	return applied
}

func resetExperienceList(d *Data) bool {
	changed := len(d.Experience) > 0
	d.Experience = []Experience{}
	return changed
}

func seedBootstrapExperience(d *Data) bool {
	present := slices.ContainsFunc(d.Experience, func(e Experience) bool {
		return e.Company != "" && strings.Contains(e.Company, BootstrapCompany)
	})
	if present {
		return false
	}
	d.Experience = bootstrapExperience()
	return true
}

func fixAcademicExcellence(d *Data) bool {
	for i := range d.Achievements {
		a := &d.Achievements[i]
		if a.Title == "Academic Excellence" {
			if !strings.Contains(a.Meta, "2022-2023") {
				return false
			}
			a.Meta = "Dean's List | 2023-2027"
			return true
		}
	}
	return false
}

func fixDataAnalystCertYear(d *Data) bool {
	for i := range d.Achievements {
		a := &d.Achievements[i]
		if a.Title == "Data Analyst Certification" {
			if !strings.Contains(a.Meta, "2024") {
				return false
			}
			a.Meta = strings.Replace(a.Meta, "2024", "2025", 1)
			return true
		}
	}
	return false
}

var retiredAchievements = []string{"SQL Mastery Certification", "Outstanding Project Award"}

func dropRetiredAchievements(d *Data) bool {
	before := len(d.Achievements)
	d.Achievements = slices.DeleteFunc(d.Achievements, func(a Achievement) bool {
		return slices.Contains(retiredAchievements, a.Title)
	})
	return len(d.Achievements) != before
}
