// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PantryAssertions provides pantry-specific assertion methods
type PantryAssertions struct {
	t *testing.T
}

// NewPantryAssertions creates a new pantry assertions helper
func NewPantryAssertions(t *testing.T) *PantryAssertions {
	return &PantryAssertions{t: t}
}

// Texts asserts the texts of a location's entries in order
func (pa *PantryAssertions) Texts(state pantry.State, loc pantry.Location, expected []string, msgAndArgs ...interface{}) {
	require.True(pa.t, state.Has(loc), "State should contain location %s", loc)
	assert.Equal(pa.t, expected, Texts(state[loc]), msgAndArgs...)
}

// Empty asserts that a location has no entries
func (pa *PantryAssertions) Empty(state pantry.State, loc pantry.Location, msgAndArgs ...interface{}) {
	require.True(pa.t, state.Has(loc), "State should contain location %s", loc)
	assert.Empty(pa.t, state[loc], msgAndArgs...)
}

// ErrorCode asserts that err carries the given application error code
func (pa *PantryAssertions) ErrorCode(err error, code errors.ErrorCode, msgAndArgs ...interface{}) {
	require.Error(pa.t, err)
	assert.Equal(pa.t, code, errors.GetCode(err), msgAndArgs...)
}

// Notice asserts that a notification with the given code is present
func (pa *PantryAssertions) Notice(notes []pantry.Notification, code pantry.NotificationCode, msgAndArgs ...interface{}) {
	for _, n := range notes {
		if n.Code == code {
			return
		}
	}
	assert.Fail(pa.t, "notification not found", "expected %s in %v", code, notes)
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, rec.Code, msgAndArgs...)
}

// JSONResponse asserts that the response is valid JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, target interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")

	contentType := rec.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	err := json.Unmarshal(rec.Body.Bytes(), target)
	require.NoError(ha.t, err, "Response should be valid JSON: %s", rec.Body.String())
}

// ErrorResponse asserts the status and error code of an error envelope
func (ha *HTTPAssertions) ErrorResponse(rec *httptest.ResponseRecorder, status int, code errors.ErrorCode) {
	ha.StatusCode(rec, status, rec.Body.String())

	var resp errors.ErrorResponse
	ha.JSONResponse(rec, &resp)
	assert.Equal(ha.t, code, resp.Error.Code)
}

// HasHeader asserts that a header exists
func (ha *HTTPAssertions) HasHeader(rec *httptest.ResponseRecorder, headerName string) {
	_, exists := rec.Header()[http.CanonicalHeaderKey(headerName)]
	assert.True(ha.t, exists, "Response should have header %s", headerName)
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	for _, header := range []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"Content-Security-Policy",
	} {
		ha.HasHeader(rec, header)
	}
}
