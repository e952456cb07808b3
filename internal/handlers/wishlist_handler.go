package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/santa-api/internal/domain/wishlist"
	"github.com/gravadigital/santa-api/internal/response"
	"github.com/gravadigital/santa-api/internal/services"
)

// WishlistHandler serves wishlist items, reservations and image uploads
type WishlistHandler struct {
	wishlists *services.WishlistService
}

// NewWishlistHandler creates the wishlist handler
func NewWishlistHandler(wishlists *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

type addItemRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Privacy     string  `json:"privacy"`
}

// AddItem handles POST /api/wishlist
func (h *WishlistHandler) AddItem(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload")
		return
	}

	privacy := wishlist.PrivacyAll
	if req.Privacy != "" {
		parsed, valid := wishlist.PrivacyFromString(req.Privacy)
		if !valid {
			response.BadRequestError(c, "privacy must be one of: all, friends")
			return
		}
		privacy = parsed
	}

	item, err := h.wishlists.AddItem(c.Request.Context(), userID, services.ItemInput{
		Title:       req.Title,
		Description: req.Description,
		Privacy:     privacy,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusCreated, "item added", item)
}

// MyItems handles GET /api/wishlist
func (h *WishlistHandler) MyItems(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	items, err := h.wishlists.MyItems(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", items)
}

// ViewWishlist handles GET /api/users/:user_id/wishlist
func (h *WishlistHandler) ViewWishlist(c *gin.Context) {
	viewerID, ok := mustUserID(c)
	if !ok {
		return
	}
	ownerID, ok := pathUUID(c, "user_id")
	if !ok {
		return
	}

	views, err := h.wishlists.ViewWishlist(ownerID, viewerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", views)
}

// RemoveItem handles DELETE /api/wishlist/:item_id
func (h *WishlistHandler) RemoveItem(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		return
	}

	if err := h.wishlists.RemoveItem(userID, itemID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "item removed", nil)
}

type setPrivacyRequest struct {
	Privacy string `json:"privacy" binding:"required"`
}

// SetPrivacy handles PATCH /api/wishlist/:item_id/privacy
func (h *WishlistHandler) SetPrivacy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		return
	}

	var req setPrivacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload")
		return
	}
	privacy, valid := wishlist.PrivacyFromString(req.Privacy)
	if !valid {
		response.BadRequestError(c, "privacy must be one of: all, friends")
		return
	}

	if err := h.wishlists.SetPrivacy(userID, itemID, privacy); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "privacy updated", nil)
}

// UploadImage handles POST /api/wishlist/:item_id/image (multipart)
func (h *WishlistHandler) UploadImage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequestError(c, "image file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequestError(c, "failed to read image")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.InternalServerError(c, "failed to read image")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.wishlists.UploadItemImage(c.Request.Context(), userID, itemID, fileHeader.Filename, contentType, data)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "image uploaded", gin.H{"url": url})
}

// Reserve handles POST /api/wishlist/:item_id/reserve
func (h *WishlistHandler) Reserve(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		return
	}

	reservation, err := h.wishlists.Reserve(c.Request.Context(), userID, itemID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusCreated, "item reserved", reservation)
}

// Unreserve handles DELETE /api/wishlist/:item_id/reserve
func (h *WishlistHandler) Unreserve(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		return
	}

	if err := h.wishlists.Unreserve(userID, itemID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "reservation released", nil)
}

// MyReservations handles GET /api/reservations
func (h *WishlistHandler) MyReservations(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	views, err := h.wishlists.MyReservations(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", views)
}
