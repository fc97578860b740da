package submit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarperhorata/remote-jobs-api-sub003/internal/fetch"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/forms"
	"github.com/sarperhorata/remote-jobs-api-sub003/internal/responses"
)

func TestDetectOutcome(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		want       bool
	}{
		{"thank you page", 200, "Thank you for your application!", true},
		{"error overrides success", 200, "Error: Missing required field. Thank you!", false},
		{"error indicator alone", 200, "Something went wrong", false},
		{"http error any body", 404, "Thank you for your application!", false},
		{"server error", 500, "", false},
		{"ambiguous defaults to success", 200, "<html><body></body></html>", true},
		{"case insensitive", 200, "APPLICATION SENT", true},
		{"invalid phrase", 200, "Your email is invalid", false},
		{"redirect status", 302, "we will review your application", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectOutcome(tt.statusCode, tt.body))
		})
	}
}

func testForm(action, method string) *forms.ScrapedForm {
	return &forms.ScrapedForm{
		Fields: []forms.Field{
			{Name: "first_name", Category: forms.CategoryFirstName},
			{Name: "email", Category: forms.CategoryEmail},
		},
		SubmitAction: action,
		SubmitMethod: method,
	}
}

func TestSend_PostSendsFormBody(t *testing.T) {
	var gotMethod, gotContentType, gotFirstName, gotEmail string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotFirstName = r.PostFormValue("first_name")
		gotEmail = r.PostFormValue("email")
		_, _ = w.Write([]byte("Thank you for your application!"))
	}))
	defer server.Close()

	form := testForm(server.URL+"/submit", "post")
	answers := responses.Responses{"first_name": "Ada", "email": "ada@example.com"}

	result, err := Send(context.Background(), form, answers, nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "Ada", gotFirstName)
	assert.Equal(t, "ada@example.com", gotEmail)

	assert.True(t, result.Success)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, 2, result.FilledFieldCount)
	assert.Equal(t, form.SubmitAction, result.TargetURL)
	assert.Empty(t, result.Error)
}

func TestSend_GetSendsQueryParams(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte("submitted"))
	}))
	defer server.Close()

	form := testForm(server.URL+"/apply?src=board", "get")
	answers := responses.Responses{"first_name": "Ada", "email": "ada@example.com"}

	result, err := Send(context.Background(), form, answers, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.Equal(t, "Ada", gotQuery["first_name"][0])
	assert.Equal(t, "ada@example.com", gotQuery["email"][0])
	// existing query parameters on the action are preserved
	assert.Equal(t, "board", gotQuery["src"][0])
}

func TestSend_PayloadRestrictedToFormFields(t *testing.T) {
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte("received"))
	}))
	defer server.Close()

	form := testForm(server.URL, "post")
	answers := responses.Responses{"first_name": "Ada"}
	answers["not_a_form_field"] = "should be dropped"

	result, err := Send(context.Background(), form, answers, nil)
	require.NoError(t, err)

	assert.Contains(t, gotForm, "first_name")
	assert.NotContains(t, gotForm, "not_a_form_field")
	assert.Equal(t, 1, result.FilledFieldCount)
}

func TestSend_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	form := testForm(server.URL, "post")
	result, err := Send(context.Background(), form, responses.Responses{"email": "a@b.c"}, nil)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.Contains(t, result.Error, "500")
}

func TestSend_ErrorIndicatorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Please try again later"))
	}))
	defer server.Close()

	form := testForm(server.URL, "post")
	result, err := Send(context.Background(), form, responses.Responses{"email": "a@b.c"}, nil)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "please try again")
}

func TestSend_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	form := testForm(server.URL, "post")
	_, err := Send(context.Background(), form, responses.Responses{"email": "a@b.c"}, nil)

	var fetchErr *fetch.Error
	require.True(t, errors.As(err, &fetchErr))
}
