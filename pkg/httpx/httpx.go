// Package httpx holds the JSON envelope shared by every HTTP handler.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dwikikusuma/marketplace/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const maxBodyBytes = 1 << 20

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects request field problems. It renders as 400.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns nil when no field was recorded.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

type errorBody struct {
	Message string       `json:"message"`
	Code    string       `json:"code"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err with the shared envelope. Handlers are expected to
// pass either a *ValidationError or a gRPC status error produced by mapErr.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusBadRequest, errorBody{
			Message: "validation failed",
			Code:    "INVALID_ARGUMENT",
			Errors:  verr.Fields,
		})
		return
	}

	httpStatus, code, msg := httpStatusFromGRPC(err)
	if httpStatus >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
	}
	WriteJSON(w, httpStatus, errorBody{Message: msg, Code: code})
}

func httpStatusFromGRPC(err error) (int, string, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}

	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition:
		return http.StatusBadRequest, "INVALID_ARGUMENT", st.Message()
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "UNAUTHENTICATED", st.Message()
	case codes.PermissionDenied:
		return http.StatusForbidden, "PERMISSION_DENIED", st.Message()
	case codes.NotFound:
		return http.StatusNotFound, "NOT_FOUND", st.Message()
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict, "CONFLICT", st.Message()
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "UNAVAILABLE", st.Message()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

// DecodeJSON reads a bounded JSON body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return Invalid("body", "request body is required")
		}
		return Invalid("body", "malformed JSON")
	}
	return nil
}

// RequiredQuery returns a trimmed query value or a validation error naming it.
func RequiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", Invalid(name, "is required")
	}
	return v, nil
}
