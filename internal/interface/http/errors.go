package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/interview-tracker/internal/application"
	"github.com/oksasatya/interview-tracker/pkg/response"
	"github.com/oksasatya/interview-tracker/pkg/validation"
)

// handleServiceError maps an application error onto the HTTP envelope.
// Unknown errors are logged and answered with a generic 500.
func handleServiceError(c *gin.Context, logger logrus.FieldLogger, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, "Please fill all required fields", verr.Fields)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error(c, http.StatusBadRequest, "Email already exists", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusBadRequest, "Invalid credentials", nil)
	case errors.Is(err, application.ErrWrongPassword):
		response.Error(c, http.StatusBadRequest, "Current password is incorrect", nil)
	case errors.Is(err, application.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "Not authorized", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error(c, http.StatusForbidden, "Forbidden", nil)
	case errors.Is(err, application.ErrInterviewerNotFound):
		response.Error(c, http.StatusNotFound, "Interviewer not found", nil)
	case errors.Is(err, application.ErrCandidateNotFound):
		response.Error(c, http.StatusNotFound, "Candidate not found or not authorized", nil)
	case errors.Is(err, application.ErrStorageUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "File storage is not available", nil)
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
		response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// bindFailed answers a request whose body could not be decoded or validated.
func bindFailed(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "Please fill all required fields", validation.ToDetails(err))
}
