package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/bulk"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/profile"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/responses"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/store"
)

const applyPageHTML = `<!DOCTYPE html>
<html>
<head><title>Senior Go Engineer</title></head>
<body>
<h1>Senior Go Engineer</h1>
<form action="/submit" method="post">
  <label for="fname">First Name</label>
  <input type="text" id="fname" name="first_name" required>
  <label for="email">Email</label>
  <input type="email" id="email" name="email" required>
  <textarea name="why_us" placeholder="Why do you want to work here?"></textarea>
  <button type="submit">Apply</button>
</form>
</body>
</html>`

func testProfile() profile.UserProfile {
	return profile.UserProfile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Skills:    []string{"Go", "PostgreSQL"},
	}
}

func applyRequest(jobURL string) bulk.ApplyRequest {
	return bulk.ApplyRequest{
		UserID: uuid.New(),
		TaskID: "bulk_test_1",
		Job:    bulk.JobSelection{JobID: "job-42", URL: jobURL},
		Config: bulk.FormConfig{Profile: testProfile()},
	}
}

func TestApply_EndToEnd(t *testing.T) {
	var submitted url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/job":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(applyPageHTML))
		case "/submit":
			require.NoError(t, r.ParseForm())
			submitted = r.PostForm
			w.Write([]byte("Thank you for applying!"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	memory := store.NewMemory()
	applier := NewApplier(responses.NewGenerator(nil), memory, nil)

	req := applyRequest(srv.URL + "/job")
	outcome, err := applier.Apply(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.NotEmpty(t, outcome.ApplicationID)
	assert.Empty(t, outcome.Message)

	require.NotNil(t, submitted)
	assert.Equal(t, "Ada", submitted.Get("first_name"))
	assert.Equal(t, "ada@example.com", submitted.Get("email"))
	assert.NotEmpty(t, submitted.Get("why_us"))

	recorded := memory.ListByUser(req.UserID)
	require.Len(t, recorded, 1)
	assert.Equal(t, "job-42", recorded[0].JobID)
	assert.Equal(t, "bulk_test_1", recorded[0].TaskID)
	assert.True(t, recorded[0].Success)
}

func TestApply_AnswerOverridesGeneratedValue(t *testing.T) {
	var submitted url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/job":
			w.Write([]byte(applyPageHTML))
		case "/submit":
			require.NoError(t, r.ParseForm())
			submitted = r.PostForm
			w.Write([]byte("ok"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	applier := NewApplier(responses.NewGenerator(nil), nil, nil)

	req := applyRequest(srv.URL + "/job")
	req.Config.Answers = map[string]string{
		"why_us":      "Because of your open source work.",
		"not_on_form": "ignored",
	}

	outcome, err := applier.Apply(context.Background(), req)
	require.NoError(t, err)
	require.True(t, outcome.Success)

	assert.Equal(t, "Because of your open source work.", submitted.Get("why_us"))
	assert.Empty(t, submitted.Get("not_on_form"))
}

func TestApply_NoFormIsFinalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Apply by email.</p></body></html>"))
	}))
	defer srv.Close()

	applier := NewApplier(responses.NewGenerator(nil), nil, nil)

	outcome, err := applier.Apply(context.Background(), applyRequest(srv.URL))
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Equal(t, "no fillable application form found", outcome.Message)
	assert.Empty(t, outcome.ApplicationID)
}

func TestApply_ScrapeFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	applier := NewApplier(responses.NewGenerator(nil), nil, nil)

	outcome, err := applier.Apply(context.Background(), applyRequest(srv.URL))
	require.Error(t, err)
	assert.Nil(t, outcome)
}

func TestApply_RejectedSubmissionIsRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/job":
			w.Write([]byte(applyPageHTML))
		case "/submit":
			http.Error(w, "server error", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	memory := store.NewMemory()
	applier := NewApplier(responses.NewGenerator(nil), memory, nil)

	req := applyRequest(srv.URL + "/job")
	outcome, err := applier.Apply(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.NotEmpty(t, outcome.ApplicationID)
	assert.Contains(t, outcome.Message, "500")

	recorded := memory.ListByUser(req.UserID)
	require.Len(t, recorded, 1)
	assert.False(t, recorded[0].Success)
	assert.Equal(t, http.StatusInternalServerError, recorded[0].StatusCode)
}
