// Package pipeline wires the end-to-end apply flow for a single job
// posting: scrape the application form, generate field responses, submit,
// and record the attempt.
package pipeline

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/bulk"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/fetch"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/forms"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/responses"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/store"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/submit"
)

// Applier runs the scrape, generate, submit sequence for one job. It
// implements bulk.Applier so the orchestrator can drive it per task.
type Applier struct {
	generator *responses.Generator
	store     store.Store
	fetchOpts *fetch.Options
}

// NewApplier builds an applier. store may be nil when persistence is not
// configured; fetchOpts nil means defaults.
func NewApplier(generator *responses.Generator, st store.Store, fetchOpts *fetch.Options) *Applier {
	return &Applier{generator: generator, store: st, fetchOpts: fetchOpts}
}

// Apply processes one job end to end. Scrape and network failures are
// returned as errors so the caller can retry; a form that cannot be filled
// and a submission the destination rejected are final outcomes.
func (a *Applier) Apply(ctx context.Context, req bulk.ApplyRequest) (*bulk.Outcome, error) {
	form, err := forms.Scrape(ctx, req.Job.URL, a.fetchOpts)
	if err != nil {
		return nil, err
	}
	if len(form.Fields) == 0 {
		return &bulk.Outcome{
			Success: false,
			Message: "no fillable application form found",
		}, nil
	}

	answers := a.generator.Generate(ctx, form, &req.Config.Profile)
	for name, value := range req.Config.Answers {
		if form.FieldByName(name) != nil {
			answers[name] = value
		}
	}

	result, err := submit.Send(ctx, form, answers, a.fetchOpts)
	if err != nil {
		return nil, err
	}

	applicationID := uuid.New()
	a.record(ctx, applicationID, req, result)

	outcome := &bulk.Outcome{
		ApplicationID: applicationID.String(),
		Success:       result.Success,
		Message:       result.Error,
	}
	return outcome, nil
}

// record persists the attempt. Persistence problems are logged, never
// allowed to fail the job.
func (a *Applier) record(ctx context.Context, applicationID uuid.UUID, req bulk.ApplyRequest, result *submit.Result) {
	if a.store == nil {
		return
	}
	app := &store.Application{
		ID:          applicationID,
		UserID:      req.UserID,
		JobID:       req.Job.JobID,
		JobURL:      req.Job.URL,
		TaskID:      req.TaskID,
		Success:     result.Success,
		StatusCode:  result.StatusCode,
		SubmittedAt: result.SubmittedAt,
	}
	if err := a.store.RecordApplication(ctx, app); err != nil {
		log.Printf("[pipeline] failed to record application %s: %v", applicationID, err)
	}
}
