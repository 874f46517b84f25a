package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/pkg/response"
	"github.com/oksasatya/go-places-api/pkg/validation"
)

const (
	msgInvalidInput = "Invalid inputs passed, please check your data."
	msgInternal     = "Something went wrong, please try again later."
)

// statusFor maps a service error to a status and a user-facing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return http.StatusUnprocessableEntity, msgInvalidInput
	case errors.Is(err, application.ErrEmailTaken):
		return http.StatusUnprocessableEntity, "User exists already, please login instead."
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnprocessableEntity, "Invalid credentials, could not log you in."
	case errors.Is(err, application.ErrForbidden):
		return http.StatusUnauthorized, "You are not allowed to modify this place."
	case errors.Is(err, application.ErrPlaceNotFound):
		return http.StatusNotFound, "Could not find place for the provided id."
	case errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound, "Could not find user for the provided id."
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeError answers with the status for err. Only server errors are
// logged; their cause never reaches the client.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		response.Fail(c, status, msg, nil)
		return
	}
	var detail any
	if status == http.StatusUnprocessableEntity && errors.Is(err, application.ErrInvalidInput) {
		detail = err.Error()
	}
	response.Fail(c, status, msg, detail)
}

func writeBindError(c *gin.Context, err error) {
	response.Fail(c, http.StatusUnprocessableEntity, msgInvalidInput, validation.ToDetails(err))
}
