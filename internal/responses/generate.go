// Package responses produces a value for each understood form field, either
// directly from the user profile or through the text-generation service.
// Generation failures are always recovered locally with deterministic
// fallback text so the application pipeline never blocks on the service.
package responses

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/forms"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/llm"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/profile"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/prompts"
)

// maxGenerationConcurrency bounds parallel text-generation calls for one form.
const maxGenerationConcurrency = 2

// Responses maps field name to the produced value. Fields for which no
// value was produced are absent.
type Responses map[string]string

// Generator produces field responses for a scraped form.
type Generator struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewGenerator creates a Generator. A nil client is valid: every generated
// field then uses fallback text.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{
		client: client,
		tier:   llm.TierStandard,
	}
}

// Generate produces a response per field, dispatching on its category.
// Free-text fields (cover letter, custom questions) are generated
// concurrently; everything else is a profile lookup. All direct lookups
// finish before the generation workers start, so only the workers write
// the map concurrently and they serialize on the mutex.
func (g *Generator) Generate(ctx context.Context, form *forms.ScrapedForm, prof *profile.UserProfile) Responses {
	responses := make(Responses)

	var freeText []forms.Field
	for _, field := range form.Fields {
		if value, ok := directValue(field.Category, prof); ok {
			if value != "" {
				responses[field.Name] = value
			}
			continue
		}

		switch field.Category {
		case forms.CategoryCoverLetter, forms.CategoryCustomQuestion:
			freeText = append(freeText, field)
		default:
			// other, resume uploads: no value produced
		}
	}

	var (
		generatedMu sync.Mutex
		group, gctx = errgroup.WithContext(ctx)
	)
	group.SetLimit(maxGenerationConcurrency)

	for _, field := range freeText {
		field := field
		group.Go(func() error {
			value := g.generateText(gctx, field, form.JobDetails, prof)
			generatedMu.Lock()
			responses[field.Name] = value
			generatedMu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failures become fallback text.
	_ = group.Wait()

	return responses
}

// directValue resolves categories answerable straight from the profile.
// The second return is false for categories that need generation or none.
func directValue(category forms.FieldCategory, prof *profile.UserProfile) (string, bool) {
	switch category {
	case forms.CategoryFirstName:
		return prof.FirstName, true
	case forms.CategoryLastName:
		return prof.LastName, true
	case forms.CategoryFullName:
		return prof.FullName(), true
	case forms.CategoryEmail:
		return prof.Email, true
	case forms.CategoryPhone:
		return prof.Phone, true
	case forms.CategoryAddress:
		return prof.Address, true
	case forms.CategoryExperience:
		return experienceSummary(prof), true
	case forms.CategorySkills:
		return skillsSummary(prof), true
	case forms.CategoryEducation:
		return educationSummary(prof), true
	case forms.CategorySalary:
		return withDefault(prof.SalaryExpectation, "Competitive"), true
	case forms.CategoryStartDate:
		return withDefault(prof.Availability, "Immediate"), true
	default:
		return "", false
	}
}

// experienceSummary renders the most recent work entry.
func experienceSummary(prof *profile.UserProfile) string {
	if len(prof.Work) == 0 {
		return "Several years of relevant professional experience"
	}
	recent := prof.Work[0]
	return fmt.Sprintf("%g years of experience as %s", recent.Years, recent.Title)
}

// skillsSummary joins the first ten skills.
func skillsSummary(prof *profile.UserProfile) string {
	if len(prof.Skills) == 0 {
		return "Fast learner with a broad technical toolkit"
	}
	return strings.Join(prof.TopSkills(10), ", ")
}

// educationSummary renders the most recent education entry.
func educationSummary(prof *profile.UserProfile) string {
	if len(prof.Education) == 0 {
		return "Self-directed continuous learner"
	}
	recent := prof.Education[0]
	return fmt.Sprintf("%s in %s", recent.Degree, recent.Field)
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// generateText drafts free-form text for a field and passes it through the
// humanize rewrite. If either call fails the deterministic fallback is used.
func (g *Generator) generateText(ctx context.Context, field forms.Field, details forms.JobDetails, prof *profile.UserProfile) string {
	if g.client == nil {
		return fallbackText(details, prof)
	}

	draft, err := g.client.GenerateContent(ctx, g.buildPrompt(field, details, prof), g.tier)
	if err != nil || strings.TrimSpace(draft) == "" {
		return fallbackText(details, prof)
	}

	humanized, err := g.client.GenerateContent(ctx, humanizePrompt(draft), llm.TierLite)
	if err != nil || strings.TrimSpace(humanized) == "" {
		return fallbackText(details, prof)
	}

	return strings.TrimSpace(humanized)
}

// buildPrompt selects and fills the template for the field.
func (g *Generator) buildPrompt(field forms.Field, details forms.JobDetails, prof *profile.UserProfile) string {
	data := map[string]string{
		"JobTitle":    withDefault(details.Title, "this position"),
		"Company":     withDefault(details.Company, "the company"),
		"Description": details.Description,
		"Highlights":  prof.Highlights(),
	}

	if field.Category == forms.CategoryCoverLetter {
		return prompts.Format(prompts.MustGet("application.json", "cover-letter"), data)
	}

	data["Question"] = withDefault(field.Label, field.Name)
	return prompts.Format(prompts.MustGet("application.json", "question-answer"), data)
}

// humanizePrompt builds the conversational rewrite prompt.
func humanizePrompt(text string) string {
	return prompts.Format(prompts.MustGet("application.json", "humanize"), map[string]string{
		"Text": text,
	})
}

// fallbackText is the deterministic sentence used when generation fails.
// It references the job title and company so the answer is never blank.
func fallbackText(details forms.JobDetails, prof *profile.UserProfile) string {
	title := withDefault(details.Title, "this position")
	company := withDefault(details.Company, "your company")

	skill := "software development"
	if len(prof.Skills) > 0 {
		skill = prof.Skills[0]
	}

	return fmt.Sprintf("I am excited to apply for the %s role at %s. My background in %s has prepared me well for this opportunity, and I would welcome the chance to contribute to your team.",
		title, company, skill)
}
