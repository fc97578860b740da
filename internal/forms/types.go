// Package forms discovers and interprets job-application forms inside
// arbitrary career-page HTML. It selects the most likely application form,
// enumerates its fields, assigns each field a semantic category, and
// classifies how the posting expects candidates to apply.
package forms

import "time"

// FieldCategory is the semantic role assigned to a discovered form field.
type FieldCategory string

// Field categories, from identity data through free-text questions.
const (
	CategoryFirstName      FieldCategory = "first_name"
	CategoryLastName       FieldCategory = "last_name"
	CategoryFullName       FieldCategory = "full_name"
	CategoryEmail          FieldCategory = "email"
	CategoryPhone          FieldCategory = "phone"
	CategoryAddress        FieldCategory = "address"
	CategoryResume         FieldCategory = "resume"
	CategoryCoverLetter    FieldCategory = "cover_letter"
	CategoryExperience     FieldCategory = "experience"
	CategorySkills         FieldCategory = "skills"
	CategoryEducation      FieldCategory = "education"
	CategorySalary         FieldCategory = "salary"
	CategoryStartDate      FieldCategory = "start_date"
	CategoryCustomQuestion FieldCategory = "custom_question"
	CategoryOther          FieldCategory = "other"
)

// ApplicationFlow describes how a posting expects candidates to apply.
type ApplicationFlow string

// Application flows, in classification priority order.
const (
	FlowExternalATS    ApplicationFlow = "external_ats"
	FlowEmbeddedForm   ApplicationFlow = "embedded_form"
	FlowMultiStep      ApplicationFlow = "multi_step"
	FlowSimpleRedirect ApplicationFlow = "simple_redirect"
)

// FieldOption is one choice of a select field, in document order.
type FieldOption struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Field is one discovered form input. Immutable once extracted.
type Field struct {
	Name        string        `json:"name"`
	ID          string        `json:"id,omitempty"`
	InputKind   string        `json:"input_kind"`
	Label       string        `json:"label,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	Required    bool          `json:"required"`
	Category    FieldCategory `json:"category"`
	Options     []FieldOption `json:"options,omitempty"`
}

// JobDetails holds best-effort metadata scraped from the posting page.
// Every field is optional.
type JobDetails struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Description string `json:"description,omitempty"`
}

// ScrapedForm is the result of extracting one job URL.
// An empty Fields slice with an empty SubmitAction means the page had no
// usable form, which is a valid outcome rather than an error.
type ScrapedForm struct {
	Fields       []Field         `json:"fields"`
	SubmitAction string          `json:"submit_action"`
	SubmitMethod string          `json:"submit_method"`
	Flow         ApplicationFlow `json:"application_flow"`
	JobDetails   JobDetails      `json:"job_details"`
	ScrapedAt    time.Time       `json:"scraped_at"`
}

// FieldByName returns the field with the given name, or nil.
func (f *ScrapedForm) FieldByName(name string) *Field {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i]
		}
	}
	return nil
}

// RequiredFields returns the subset of fields marked required, in order.
func (f *ScrapedForm) RequiredFields() []Field {
	var required []Field
	for _, field := range f.Fields {
		if field.Required {
			required = append(required, field)
		}
	}
	return required
}
