// Package handlers contains the gin HTTP handlers. They bind and
// validate transport payloads, delegate to the services and translate
// service errors into HTTP statuses.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/santa-api/internal/middleware"
	"github.com/gravadigital/santa-api/internal/response"
	"github.com/gravadigital/santa-api/internal/services"
)

// handleServiceError maps service errors onto HTTP statuses. Not being
// a participant answers 404 on purpose: outsiders cannot distinguish
// "event exists" from "event hidden".
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrNotAParticipant):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, services.ErrNotAuthorized),
		errors.Is(err, services.ErrNotEventCreator):
		response.ForbiddenError(c, err.Error())
	case errors.Is(err, services.ErrEventLocked),
		errors.Is(err, services.ErrAlreadyParticipating),
		errors.Is(err, services.ErrItemAlreadyReserved):
		response.ConflictError(c, err.Error())
	case errors.Is(err, services.ErrInsufficientParticipants),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrImageTooLarge),
		errors.Is(err, services.ErrValidation):
		response.BadRequestError(c, err.Error())
	case errors.Is(err, services.ErrImageStoreDisabled):
		response.ErrorResponseWithMessage(c, http.StatusServiceUnavailable, err.Error())
	default:
		response.InternalServerError(c, "internal error")
	}
}

// mustUserID pulls the authenticated user ID or aborts with 401
func mustUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.UnauthorizedError(c, "authentication required")
	}
	return userID, ok
}

// pathUUID parses a UUID path parameter or aborts with 400
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequestError(c, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
