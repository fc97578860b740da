// Package profile defines the user profile consumed by answer generation.
// The profile is owned by an external collaborator; this package only reads
// it and derives summaries.
package profile

import (
	"fmt"
	"strings"
)

// WorkEntry is one position in the candidate's history, most recent first.
type WorkEntry struct {
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Years       float64 `json:"years"`
	Description string  `json:"description,omitempty"`
}

// EducationEntry is one degree, most recent first.
type EducationEntry struct {
	Degree string `json:"degree"`
	Field  string `json:"field"`
	School string `json:"school,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// UserProfile is the read-only candidate profile.
type UserProfile struct {
	FirstName         string           `json:"first_name"`
	LastName          string           `json:"last_name"`
	Email             string           `json:"email"`
	Phone             string           `json:"phone,omitempty"`
	Address           string           `json:"address,omitempty"`
	Skills            []string         `json:"skills,omitempty"`
	Work              []WorkEntry      `json:"work_history,omitempty"`
	Education         []EducationEntry `json:"education,omitempty"`
	SalaryExpectation string           `json:"salary_expectation,omitempty"`
	Availability      string           `json:"availability,omitempty"`
}

// FullName returns the trimmed concatenation of first and last name.
func (p *UserProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// TopSkills returns up to n skills in profile order.
func (p *UserProfile) TopSkills(n int) []string {
	if len(p.Skills) <= n {
		return p.Skills
	}
	return p.Skills[:n]
}

// Highlights renders a short plain-text summary of the candidate for
// generation prompts: name, top skills, experience count and most recent
// education.
func (p *UserProfile) Highlights() string {
	var sb strings.Builder

	if name := p.FullName(); name != "" {
		fmt.Fprintf(&sb, "Name: %s\n", name)
	}
	if skills := p.TopSkills(5); len(skills) > 0 {
		fmt.Fprintf(&sb, "Key skills: %s\n", strings.Join(skills, ", "))
	}
	if len(p.Work) > 0 {
		recent := p.Work[0]
		fmt.Fprintf(&sb, "Experience: %d positions, most recently %s at %s (%g years)\n",
			len(p.Work), recent.Title, recent.Company, recent.Years)
	}
	if len(p.Education) > 0 {
		recent := p.Education[0]
		fmt.Fprintf(&sb, "Education: %s in %s\n", recent.Degree, recent.Field)
	}

	return strings.TrimSpace(sb.String())
}
