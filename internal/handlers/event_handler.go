package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/santa-api/internal/response"
	"github.com/gravadigital/santa-api/internal/services"
)

// EventHandler serves the event lifecycle: create, join, edit, draw
type EventHandler struct {
	santa *services.SantaService
}

// NewEventHandler creates the event handler
func NewEventHandler(santa *services.SantaService) *EventHandler {
	return &EventHandler{santa: santa}
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req services.EventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload")
		return
	}

	ev, err := h.santa.CreateEvent(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusCreated, "event created", ev)
}

// MyEvents handles GET /api/events
func (h *EventHandler) MyEvents(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	events, err := h.santa.MyEvents(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", events)
}

// GetEvent handles GET /api/events/:event_id
func (h *EventHandler) GetEvent(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "event_id")
	if !ok {
		return
	}

	details, err := h.santa.GetEvent(eventID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", details)
}

// UpdateEvent handles PATCH /api/events/:event_id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "event_id")
	if !ok {
		return
	}

	var req services.EventInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload")
		return
	}

	ev, err := h.santa.UpdateEvent(eventID, userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "event updated", ev)
}

// DeleteEvent handles DELETE /api/events/:event_id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "event_id")
	if !ok {
		return
	}

	if err := h.santa.DeleteEvent(eventID, userID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "event deleted", nil)
}

type addParticipantRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddParticipant handles POST /api/events/:event_id/participants
func (h *EventHandler) AddParticipant(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "event_id")
	if !ok {
		return
	}

	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload")
		return
	}

	p, err := h.santa.AddParticipant(eventID, userID, req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusCreated, "participant added", p)
}

// DrawNames handles POST /api/events/:event_id/draw
func (h *EventHandler) DrawNames(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "event_id")
	if !ok {
		return
	}

	assignments, err := h.santa.DrawNames(c.Request.Context(), eventID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	// only the count leaves the server; who gives to whom stays secret
	response.SuccessResponse(c, http.StatusOK, "names drawn", gin.H{
		"assignments": len(assignments),
	})
}

// GetInvite handles GET /api/invites/:code
func (h *EventHandler) GetInvite(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequestError(c, "code is required")
		return
	}

	details, err := h.santa.GetEventByInviteCode(code)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", details)
}

// JoinInvite handles POST /api/invites/:code/join
func (h *EventHandler) JoinInvite(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	code := c.Param("code")
	if code == "" {
		response.BadRequestError(c, "code is required")
		return
	}

	ev, err := h.santa.JoinByInviteCode(c.Request.Context(), code, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "joined event", ev)
}
