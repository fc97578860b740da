package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/bulk"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/forms"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/profile"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/ratelimit"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/responses"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/server/middleware"
)

// ---------------------------------------------------------------------
// Single-form Handlers
// ---------------------------------------------------------------------

type AnalyzeFormRequest struct {
	JobURL      string `json:"job_url" validate:"required,url"`
	JobTitle    string `json:"job_title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

type AnalyzeFormResponse struct {
	Fields               []forms.Field         `json:"fields"`
	FormType             forms.ApplicationFlow `json:"form_type"`
	SubmitAction         string                `json:"submit_action"`
	SubmitMethod         string                `json:"submit_method"`
	JobDetails           forms.JobDetails      `json:"job_details"`
	Confidence           float64               `json:"confidence"`
	EstimatedTimeSeconds int                   `json:"estimated_time_seconds"`
}

func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.rateLimiter.Allow(userID.String(), ratelimit.ActionAnalyzeForm); err != nil {
		s.handleError(w, err)
		return
	}

	var req AnalyzeFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	form, err := forms.Scrape(r.Context(), req.JobURL, nil)
	if err != nil {
		s.handleError(w, err)
		return
	}

	// Caller-supplied job metadata wins over whatever was scraped.
	if req.JobTitle != "" {
		form.JobDetails.Title = req.JobTitle
	}
	if req.CompanyName != "" {
		form.JobDetails.Company = req.CompanyName
	}

	s.jsonResponse(w, http.StatusOK, AnalyzeFormResponse{
		Fields:               form.Fields,
		FormType:             form.Flow,
		SubmitAction:         form.SubmitAction,
		SubmitMethod:         form.SubmitMethod,
		JobDetails:           form.JobDetails,
		Confidence:           forms.Confidence(form.Fields),
		EstimatedTimeSeconds: forms.EstimateSeconds(form.Fields),
	})
}

type FillFormRequest struct {
	JobURL  string              `json:"job_url" validate:"required,url"`
	Profile profile.UserProfile `json:"profile"`
	Answers map[string]string   `json:"answers,omitempty"`
}

type FillFormResponse struct {
	Success       bool                `json:"success"`
	FilledFields  responses.Responses `json:"filled_fields"`
	MissingFields []string            `json:"missing_fields"`
	Confidence    float64             `json:"confidence"`
}

func (s *Server) handleFillForm(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.rateLimiter.Allow(userID.String(), ratelimit.ActionFillForm); err != nil {
		s.handleError(w, err)
		return
	}

	var req FillFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	form, err := forms.Scrape(r.Context(), req.JobURL, nil)
	if err != nil {
		s.handleError(w, err)
		return
	}

	filled := s.generator.Generate(r.Context(), form, &req.Profile)
	for name, value := range req.Answers {
		if form.FieldByName(name) != nil {
			filled[name] = value
		}
	}

	missing := []string{}
	for _, field := range form.RequiredFields() {
		if _, ok := filled[field.Name]; !ok {
			missing = append(missing, field.Name)
		}
	}

	s.jsonResponse(w, http.StatusOK, FillFormResponse{
		Success:       len(form.Fields) > 0,
		FilledFields:  filled,
		MissingFields: missing,
		Confidence:    forms.Confidence(form.Fields),
	})
}

type SubmitFormRequest struct {
	JobURL  string              `json:"job_url" validate:"required,url"`
	JobID   string              `json:"job_id,omitempty"`
	Profile profile.UserProfile `json:"profile"`
	Answers map[string]string   `json:"answers,omitempty"`
}

type SubmitFormResponse struct {
	Success       bool      `json:"success"`
	ApplicationID string    `json:"application_id,omitempty"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
}

func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.rateLimiter.Allow(userID.String(), ratelimit.ActionSubmitForm); err != nil {
		s.handleError(w, err)
		return
	}

	var req SubmitFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}
	if req.JobID == "" {
		req.JobID = req.JobURL
	}

	outcome, err := s.applier.Apply(r.Context(), bulk.ApplyRequest{
		UserID: userID,
		Job:    bulk.JobSelection{JobID: req.JobID, URL: req.JobURL},
		Config: bulk.FormConfig{Profile: req.Profile, Answers: req.Answers},
	})
	if err != nil {
		s.handleError(w, err)
		return
	}

	message := "Application submitted successfully"
	if !outcome.Success {
		message = outcome.Message
	}
	s.jsonResponse(w, http.StatusOK, SubmitFormResponse{
		Success:       outcome.Success,
		ApplicationID: outcome.ApplicationID,
		Message:       message,
		Timestamp:     time.Now().UTC(),
	})
}

// extractValidationErrors extracts validation error messages from validator
// errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			ve := validationErrors[0]
			return (&ErrValidation{Field: ve.Field(), Message: ve.Tag()}).Error()
		}
	}
	return "validation error: invalid request"
}
