package api

import (
	"errors"
	"log"
	"net/http"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/gameclock"
	"courtside/team-ops/internal/report"
	"courtside/team-ops/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statusFor maps service and domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalid),
		errors.Is(err, domain.ErrFolderNameRequired),
		errors.Is(err, report.ErrInvalidRange),
		errors.Is(err, service.ErrUnknownSurvey),
		errors.Is(err, service.ErrUnknownReport),
		errors.Is(err, service.ErrPlayerLinkRequired),
		errors.Is(err, service.ErrNotAGame),
		errors.Is(err, gameclock.ErrPlayerRequired),
		errors.Is(err, gameclock.ErrResetNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrFolderNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSlotTaken),
		errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrSurveyNotOpen),
		errors.Is(err, service.ErrWellnessContention),
		errors.Is(err, gameclock.ErrAlreadyPlaying),
		errors.Is(err, gameclock.ErrNotPlaying):
		return http.StatusConflict
	case errors.Is(err, service.ErrExportUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError aborts with the mapped status. Unexpected errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("ERROR: [API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		abortWithError(c, code, "An unexpected error occurred")
		return
	}
	abortWithError(c, code, err.Error())
}

// objectIDParam parses a hex id path parameter, aborting with 400 when it is malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}
