// Package handlers provides HTTP handlers for the pantry REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/alchemorsel/pantry/pkg/errors"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxRequestBody bounds JSON request bodies
const maxRequestBody = 1 << 20

// APIResponse represents a standard API response
type APIResponse struct {
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Error         string      `json:"error,omitempty"`
	Message       string      `json:"message,omitempty"`
	Notifications interface{} `json:"notifications,omitempty"`
}

// base carries what every handler group needs to decode requests and write responses
type base struct {
	logger   *zap.Logger
	validate *validator.Validate
}

func newBase(logger *zap.Logger) base {
	return base{logger: logger, validate: validator.New()}
}

// decode reads a JSON body into dst and validates it. An empty body decodes to the
// zero value before validation.
func (b base) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.NewBadRequestError("Invalid JSON body").WithCause(err)
	}
	return b.validateStruct(dst)
}

func (b base) validateStruct(v interface{}) error {
	err := b.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewBadRequestError(err.Error())
	}
	out := make([]errors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: validationMessage(fe),
		})
	}
	return errors.NewValidationErrors(out)
}

func validationMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in %s format", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// writeError maps an error to its HTTP status and writes the error envelope
func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.Wrap(err, "Request failed")
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		b.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}
	b.writeJSON(w, status, errors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())))
}

// writeJSON writes a JSON response
func (b base) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}
