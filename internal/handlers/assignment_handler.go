package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/santa-api/internal/domain/assignment"
	"github.com/gravadigital/santa-api/internal/response"
	"github.com/gravadigital/santa-api/internal/services"
)

// AssignmentHandler serves draw results and gift tracking
type AssignmentHandler struct {
	santa *services.SantaService
}

// NewAssignmentHandler creates the assignment handler
func NewAssignmentHandler(santa *services.SantaService) *AssignmentHandler {
	return &AssignmentHandler{santa: santa}
}

// GetMyAssignment handles GET /api/events/:event_id/assignment. Before
// the draw it answers 200 with a null assignment.
func (h *AssignmentHandler) GetMyAssignment(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	eventID, ok := pathUUID(c, "event_id")
	if !ok {
		return
	}

	my, err := h.santa.GetMyAssignment(eventID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if my == nil {
		response.SuccessResponse(c, http.StatusOK, "draw pending", nil)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", my)
}

type giftUpdateRequest struct {
	Status   string  `json:"status" binding:"required"`
	Note     *string `json:"note"`
	PhotoURL *string `json:"photo_url"`
}

// UpdateGiftStatus handles PATCH /api/assignments/:assignment_id/gift
func (h *AssignmentHandler) UpdateGiftStatus(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathUUID(c, "assignment_id")
	if !ok {
		return
	}

	var req giftUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload")
		return
	}

	status, valid := assignment.GiftStatusFromString(req.Status)
	if !valid {
		response.BadRequestError(c, "status must be one of: pending, purchased, delivered")
		return
	}

	updated, err := h.santa.UpdateGiftStatus(c.Request.Context(), assignmentID, userID, services.GiftUpdateInput{
		Status:   status,
		Note:     req.Note,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "gift status updated", updated)
}

// UploadGiftPhoto handles POST /api/assignments/:assignment_id/photo
func (h *AssignmentHandler) UploadGiftPhoto(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathUUID(c, "assignment_id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.BadRequestError(c, "photo file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequestError(c, "failed to read photo")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.InternalServerError(c, "failed to read photo")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	updated, err := h.santa.UploadGiftPhoto(c.Request.Context(), assignmentID, userID, fileHeader.Filename, contentType, data)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "gift photo uploaded", updated)
}
