package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/santa-api/internal/response"
	"github.com/gravadigital/santa-api/internal/services"
)

const defaultLeaderboardLimit = 50

// ProfileHandler serves accounts, friends and the points ranking
type ProfileHandler struct {
	profiles *services.ProfileService
}

// NewProfileHandler creates the profile handler
func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// SyncAccount handles POST /api/profile/sync. The mini app calls it on
// startup; the row is created on first contact.
func (h *ProfileHandler) SyncAccount(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload")
		return
	}
	if req.Name == "" {
		response.BadRequestError(c, "name is required")
		return
	}

	u, err := h.profiles.EnsureAccount(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", u)
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	profile, err := h.profiles.GetProfile(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", profile)
}

// GetReferralCode handles GET /api/profile/referral-code
func (h *ProfileHandler) GetReferralCode(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	code, err := h.profiles.EnsureReferralCode(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", gin.H{"referral_code": code})
}

// ListFriends handles GET /api/friends
func (h *ProfileHandler) ListFriends(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	friends, err := h.profiles.ListFriends(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", friends)
}

// Leaderboard handles GET /api/leaderboard
func (h *ProfileHandler) Leaderboard(c *gin.Context) {
	if _, ok := mustUserID(c); !ok {
		return
	}

	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			response.BadRequestError(c, "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	rows, err := h.profiles.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", rows)
}
