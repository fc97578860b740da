// Package submit sends a filled application form to its destination and
// interprets the response. Success detection is heuristic: explicit error
// phrases override success phrases, and an ambiguous 2xx/3xx response is
// treated as success.
package submit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/fetch"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/forms"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/responses"
)

// errorIndicators mark a submission as failed regardless of status < 400.
// Checked before successIndicators; first list wins.
var errorIndicators = []string{
	"error",
	"failed",
	"invalid",
	"required field",
	"missing",
	"please try again",
	"something went wrong",
}

// successIndicators confirm an accepted application.
var successIndicators = []string{
	"thank you",
	"success",
	"submitted",
	"received",
	"confirmation",
	"application sent",
	"we will review",
	"next steps",
}

// Result describes the outcome of one submission attempt.
type Result struct {
	Success          bool      `json:"success"`
	StatusCode       int       `json:"status_code"`
	SubmittedAt      time.Time `json:"submitted_at"`
	TargetURL        string    `json:"target_url"`
	FilledFieldCount int       `json:"filled_field_count"`
	Error            string    `json:"error,omitempty"`
}

// Send submits the generated responses to the form's action URL using its
// method. The payload is restricted to fields present in both the form and
// the responses. Network failures return a *fetch.Error.
func Send(ctx context.Context, form *forms.ScrapedForm, answers responses.Responses, opts *fetch.Options) (*Result, error) {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}

	payload := buildPayload(form, answers)

	req, err := buildRequest(ctx, form, payload)
	if err != nil {
		return nil, &fetch.Error{
			URL:     form.SubmitAction,
			Message: "failed to build submission request",
			Cause:   err,
		}
	}
	req.Header.Set("User-Agent", fetch.DefaultUserAgent)

	resp, err := opts.Client().Do(req)
	if err != nil {
		return nil, &fetch.Error{
			URL:     form.SubmitAction,
			Message: "submission request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &fetch.Error{
			URL:     form.SubmitAction,
			Message: "failed to read submission response",
			Cause:   err,
		}
	}

	result := &Result{
		Success:          DetectOutcome(resp.StatusCode, string(body)),
		StatusCode:       resp.StatusCode,
		SubmittedAt:      time.Now().UTC(),
		TargetURL:        form.SubmitAction,
		FilledFieldCount: len(payload),
	}
	if !result.Success {
		result.Error = outcomeError(resp.StatusCode, string(body))
	}

	return result, nil
}

// buildPayload keeps only answers whose field exists in the form.
func buildPayload(form *forms.ScrapedForm, answers responses.Responses) url.Values {
	payload := url.Values{}
	for _, field := range form.Fields {
		if value, ok := answers[field.Name]; ok {
			payload.Set(field.Name, value)
		}
	}
	return payload
}

// buildRequest encodes the payload per the form method: POST as a form
// body, anything else as query parameters on a GET.
func buildRequest(ctx context.Context, form *forms.ScrapedForm, payload url.Values) (*http.Request, error) {
	if strings.EqualFold(form.SubmitMethod, http.MethodPost) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, form.SubmitAction, strings.NewReader(payload.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}

	target, err := url.Parse(form.SubmitAction)
	if err != nil {
		return nil, err
	}
	query := target.Query()
	for key, values := range payload {
		for _, value := range values {
			query.Set(key, value)
		}
	}
	target.RawQuery = query.Encode()

	return http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
}

// DetectOutcome decides whether a submission response indicates success.
// Status >= 400 always fails. Otherwise error indicators are checked first
// and take precedence over success indicators; with neither present the
// submission defaults to success.
func DetectOutcome(statusCode int, body string) bool {
	if statusCode >= 400 {
		return false
	}

	lowered := strings.ToLower(body)
	for _, phrase := range errorIndicators {
		if strings.Contains(lowered, phrase) {
			return false
		}
	}
	for _, phrase := range successIndicators {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	// No explicit signal either way: optimistic default. May record false
	// positives when a site fails silently with a 200.
	return true
}

// outcomeError describes why DetectOutcome failed, for the Result.Error field.
func outcomeError(statusCode int, body string) string {
	if statusCode >= 400 {
		return fmt.Sprintf("destination returned HTTP %d", statusCode)
	}

	lowered := strings.ToLower(body)
	for _, phrase := range errorIndicators {
		if strings.Contains(lowered, phrase) {
			return "response contained error indicator: " + phrase
		}
	}
	return "submission rejected"
}
