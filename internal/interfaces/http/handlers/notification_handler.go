package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/response"
)

// NotificationHandler handles the in-app feed and provider contact details
type NotificationHandler struct {
	notifications NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type contactRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	DisplayName string `json:"displayName" binding:"max=255"`
}

// List returns the caller's notifications, newest first
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	items, meta, err := h.notifications.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, meta)
}

// MarkRead marks one notification read
// PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetContact returns where the caller's notifications are delivered
// GET /api/v1/provider/contact
func (h *NotificationHandler) GetContact(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}

	contact, err := h.notifications.GetContact(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, contact)
}

// UpsertContact sets the caller's delivery address
// PUT /api/v1/provider/contact
func (h *NotificationHandler) UpsertContact(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}
	var req contactRequest
	if !bindJSON(c, &req) {
		return
	}

	contact, err := h.notifications.UpsertContact(c.Request.Context(), providerID, req.Email, req.DisplayName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, contact)
}
