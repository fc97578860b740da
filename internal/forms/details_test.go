package forms

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExtractJobDetails_SelectorPriority(t *testing.T) {
	doc := parseDoc(t, `<html><body>
	<h1>Generic heading</h1>
	<h1 class="job-title">Platform Engineer</h1>
	<span class="company-name">Initech</span>
	<div class="job-description">Build and run the platform that powers everything.</div>
	</body></html>`)

	details := extractJobDetails(doc)
	assert.Equal(t, "Platform Engineer", details.Title)
	assert.Equal(t, "Initech", details.Company)
	assert.Equal(t, "Build and run the platform that powers everything.", details.Description)
}

func TestExtractJobDetails_FallbackToH1(t *testing.T) {
	doc := parseDoc(t, `<html><body><h1>Data Engineer (Remote)</h1></body></html>`)

	details := extractJobDetails(doc)
	assert.Equal(t, "Data Engineer (Remote)", details.Title)
	assert.Equal(t, "", details.Company)
}

func TestExtractJobDetails_AllAbsent(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>nothing here</p></body></html>`)

	details := extractJobDetails(doc)
	assert.Equal(t, JobDetails{}, details)
}

func TestExtractJobDetails_DescriptionTruncated(t *testing.T) {
	long := strings.Repeat("responsibilities and requirements ", 40)
	doc := parseDoc(t, `<html><body><div class="job-description">`+long+`</div></body></html>`)

	details := extractJobDetails(doc)
	assert.LessOrEqual(t, len(details.Description), maxDescriptionLength+3)
	assert.True(t, strings.HasSuffix(details.Description, "..."))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "é" is two bytes; a byte-offset cut at limit 3 would split it.
	got := truncate("ééé", 3)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "é...", got)

	assert.Equal(t, "short", truncate("short", 10))
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.0, Confidence(nil))

	fields := []Field{
		{Category: CategoryEmail},
		{Category: CategoryFirstName},
		{Category: CategoryOther},
		{Category: CategoryOther},
	}
	assert.InDelta(t, 0.5, Confidence(fields), 1e-9)
}

func TestEstimateSeconds(t *testing.T) {
	fields := []Field{
		{InputKind: "text", Category: CategoryEmail},
		{InputKind: "select", Category: CategoryAddress},
		{InputKind: "textarea", Category: CategoryCoverLetter},
	}

	// base 10 + text 15 + select 5 + essay 120
	assert.Equal(t, 150, EstimateSeconds(fields))
}
