package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrUnauthorized        = errors.New("not authorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInterviewerNotFound = errors.New("interviewer not found")
	ErrCandidateNotFound   = errors.New("candidate not found or not authorized")
	ErrStorageUnavailable  = errors.New("file storage is not configured")
)

// ValidationError carries per-field problems. errors.Is(err, ErrValidation) holds for it.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func fieldError(field, problem string) *ValidationError {
	return newValidationError(map[string]string{field: problem})
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
