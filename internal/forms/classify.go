package forms

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// atsDomains are hosted applicant-tracking-system providers that apply links
// commonly redirect to. Matching is by domain suffix so tenant subdomains
// (acme.greenhouse.io, acme.wd5.myworkdayjobs.com) match too.
var atsDomains = []string{
	"greenhouse.io",
	"lever.co",
	"myworkdayjobs.com",
	"workday.com",
	"icims.com",
	"bamboohr.com",
	"smartrecruiters.com",
	"jobvite.com",
	"ashbyhq.com",
	"taleo.net",
	"recruitee.com",
	"workable.com",
}

// stepSelectors detect wizard-style multi-step application markup.
const stepSelectors = `[class*="step"], [class*="wizard"], [class*="progress"], [data-step]`

// classifyFlow determines how the posting expects candidates to apply.
// Rules are evaluated in priority order and the first match wins:
// an apply link into a known ATS domain, then an embedded form, then
// wizard markup, then a plain redirect.
func classifyFlow(doc *goquery.Document, formFound bool) ApplicationFlow {
	if hasATSApplyLink(doc) {
		return FlowExternalATS
	}
	if formFound {
		return FlowEmbeddedForm
	}
	if doc.Find(stepSelectors).Length() > 0 {
		return FlowMultiStep
	}
	return FlowSimpleRedirect
}

// hasATSApplyLink reports whether any outbound link with "apply" in its text
// targets a known ATS domain.
func hasATSApplyLink(doc *goquery.Document) bool {
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(link.Text()), "apply") {
			return true
		}
		href := link.AttrOr("href", "")
		if isATSDomain(href) {
			found = true
			return false
		}
		return true
	})
	return found
}

// isATSDomain reports whether the link host belongs to a known ATS provider.
func isATSDomain(href string) bool {
	parsed, err := url.Parse(href)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, domain := range atsDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
