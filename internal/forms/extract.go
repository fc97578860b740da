package forms

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/fetch"
)

// applyKeywords mark a form as the job-application form when any of them
// appears in its visible text.
var applyKeywords = []string{"apply", "application", "resume", "cv", "cover letter"}

// structuralKinds are input types that carry no candidate data.
var structuralKinds = map[string]bool{
	"hidden": true,
	"submit": true,
	"reset":  true,
	"button": true,
	"image":  true,
}

// Scrape fetches a job posting URL and extracts its application form.
// Network failures and non-2xx statuses surface as *fetch.Error; a page
// without any form still yields a valid (empty) ScrapedForm.
func Scrape(ctx context.Context, jobURL string, opts *fetch.Options) (*ScrapedForm, error) {
	result, err := fetch.URL(ctx, jobURL, opts)
	if err != nil {
		return nil, err
	}
	return Parse(jobURL, result.HTML)
}

// Parse extracts the application form from already-fetched HTML.
// It never fails on content: malformed or form-less pages produce an empty
// ScrapedForm with fields=[] and action="".
func Parse(jobURL, html string) (*ScrapedForm, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", jobURL, err)
	}

	form := selectApplicationForm(doc)

	scraped := &ScrapedForm{
		Fields:       []Field{},
		SubmitMethod: "get",
		JobDetails:   extractJobDetails(doc),
		ScrapedAt:    time.Now().UTC(),
	}
	scraped.Flow = classifyFlow(doc, form != nil)

	if form == nil {
		return scraped, nil
	}

	scraped.SubmitAction = resolveAction(jobURL, form.AttrOr("action", ""))
	if method := strings.ToLower(strings.TrimSpace(form.AttrOr("method", ""))); method != "" {
		scraped.SubmitMethod = method
	}
	scraped.Fields = enumerateFields(form)

	return scraped, nil
}

// selectApplicationForm picks the most likely application form: the first
// form whose visible text contains an apply keyword, falling back to the
// form with the most text content. Returns nil when the page has no forms.
func selectApplicationForm(doc *goquery.Document) *goquery.Selection {
	allForms := doc.Find("form")
	if allForms.Length() == 0 {
		return nil
	}

	var keywordMatch *goquery.Selection
	allForms.EachWithBreak(func(_ int, form *goquery.Selection) bool {
		text := strings.ToLower(form.Text())
		for _, keyword := range applyKeywords {
			if strings.Contains(text, keyword) {
				keywordMatch = form
				return false
			}
		}
		return true
	})
	if keywordMatch != nil {
		return keywordMatch
	}

	var largest *goquery.Selection
	largestLen := -1
	allForms.Each(func(_ int, form *goquery.Selection) {
		if textLen := len(strings.TrimSpace(form.Text())); textLen > largestLen {
			largest = form
			largestLen = textLen
		}
	})
	return largest
}

// enumerateFields walks the inputs of the chosen form in document order.
func enumerateFields(form *goquery.Selection) []Field {
	fields := []Field{}

	form.Find("input, textarea, select").Each(func(_ int, el *goquery.Selection) {
		kind := inputKind(el)
		if structuralKinds[kind] {
			return
		}

		name := strings.TrimSpace(el.AttrOr("name", ""))
		id := strings.TrimSpace(el.AttrOr("id", ""))
		if name == "" {
			// Unnamed fields cannot carry a submission value; fall back to
			// the element id so the field is still reported to callers.
			if id == "" {
				return
			}
			name = id
		}

		field := Field{
			Name:        name,
			ID:          id,
			InputKind:   kind,
			Label:       resolveLabel(form, el, id),
			Placeholder: strings.TrimSpace(el.AttrOr("placeholder", "")),
		}
		_, field.Required = el.Attr("required")
		field.Category = Categorize(field.Name, field.ID, field.Label, field.Placeholder)

		if kind == "select" {
			field.Options = selectOptions(el)
		}

		fields = append(fields, field)
	})

	return fields
}

// inputKind normalizes the element into a field kind.
func inputKind(el *goquery.Selection) string {
	switch goquery.NodeName(el) {
	case "textarea":
		return "textarea"
	case "select":
		return "select"
	default:
		kind := strings.ToLower(strings.TrimSpace(el.AttrOr("type", "")))
		if kind == "" {
			return "text"
		}
		return kind
	}
}

// resolveLabel finds a human-readable label for a field. Resolution order:
// an explicit label bound by id-reference, then a label wrapping the field,
// then a sibling label. First match wins; empty string when none found.
func resolveLabel(form, el *goquery.Selection, id string) string {
	if id != "" {
		if bound := form.Find(fmt.Sprintf("label[for=%q]", id)); bound.Length() > 0 {
			return strings.TrimSpace(bound.First().Text())
		}
	}

	if wrapper := el.ParentsFiltered("label"); wrapper.Length() > 0 {
		return strings.TrimSpace(wrapper.First().Text())
	}

	// Sibling labels: nearest preceding one first, then following. A label
	// explicitly bound to a different field is never borrowed.
	if label := siblingLabel(el.PrevAll().Filter("label"), id); label != "" {
		return label
	}
	return siblingLabel(el.NextAll().Filter("label"), id)
}

// siblingLabel returns the text of the first candidate label that is either
// unbound or bound to the given id. Labels wrapping their own control belong
// to that control and are skipped.
func siblingLabel(labels *goquery.Selection, id string) string {
	text := ""
	labels.EachWithBreak(func(_ int, label *goquery.Selection) bool {
		if label.Find("input, textarea, select").Length() > 0 {
			return true
		}
		forAttr := label.AttrOr("for", "")
		if forAttr == "" || forAttr == id {
			text = strings.TrimSpace(label.Text())
			return false
		}
		return true
	})
	return text
}

// selectOptions captures the ordered (value, text) pairs of a select field,
// excluding options without a value.
func selectOptions(el *goquery.Selection) []FieldOption {
	var options []FieldOption
	el.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value := strings.TrimSpace(opt.AttrOr("value", ""))
		if value == "" {
			return
		}
		options = append(options, FieldOption{
			Value: value,
			Text:  strings.TrimSpace(opt.Text()),
		})
	})
	return options
}

// resolveAction turns a form action attribute into an absolute URL.
// An empty action submits back to the page itself, matching browsers.
func resolveAction(jobURL, action string) string {
	base, err := url.Parse(jobURL)
	if err != nil {
		return action
	}
	if strings.TrimSpace(action) == "" {
		return base.String()
	}
	ref, err := url.Parse(action)
	if err != nil {
		return action
	}
	return base.ResolveReference(ref).String()
}
