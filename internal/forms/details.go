package forms

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// maxDescriptionLength bounds the scraped job description. Longer text is
// truncated with a trailing ellipsis.
const maxDescriptionLength = 500

// titleSelectors, companySelectors and descriptionSelectors are tried in
// priority order; the first matching element wins.
var (
	titleSelectors = []string{
		"h1.job-title",
		"h1[class*='title']",
		".job-title",
		"[data-testid='job-title']",
		"h1",
	}
	companySelectors = []string{
		".company-name",
		"[class*='company']",
		"[data-testid='company']",
		"[itemprop='hiringOrganization']",
	}
	descriptionSelectors = []string{
		".job-description",
		"#job-description",
		"[class*='description']",
		"main",
		"article",
	}
)

// extractJobDetails scrapes best-effort job metadata from the page.
// Every field is optional and stays empty when no selector matches.
func extractJobDetails(doc *goquery.Document) JobDetails {
	details := JobDetails{
		Title:   firstMatchText(doc, titleSelectors),
		Company: firstMatchText(doc, companySelectors),
	}

	if description := firstMatchText(doc, descriptionSelectors); description != "" {
		details.Description = truncate(description, maxDescriptionLength)
	}

	return details
}

// firstMatchText returns the trimmed text of the first element matched by
// the ordered selector list, or empty string.
func firstMatchText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			if text := collapseWhitespace(sel.First().Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// truncate cuts text to at most limit bytes on a rune boundary, appending
// an ellipsis when anything was removed.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return strings.TrimSpace(text[:limit]) + "..."
}

// collapseWhitespace trims and squeezes runs of whitespace to single spaces.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
