package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventlane/chatgate/internal/core"
)

// PresenceAPI serves the presence queries and the internal notification
// hooks the rest of the platform calls into the chat subsystem.
type PresenceAPI struct {
	hub *core.Hub
}

// NewPresenceAPI builds the API over the hub's collaborator surface.
func NewPresenceAPI(hub *core.Hub) *PresenceAPI {
	return &PresenceAPI{hub: hub}
}

// Overview returns the online user count and identities.
func (a *PresenceAPI) Overview(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"online":  a.hub.OnlineCount(),
		"userIds": a.hub.OnlineIdentities(),
	})
}

// UserStatus returns whether one user is online.
func (a *PresenceAPI) UserStatus(c *gin.Context) {
	userID := c.Param("userID")
	c.JSON(http.StatusOK, gin.H{
		"userId":   userID,
		"isOnline": a.hub.IsUserOnline(userID),
	})
}

// EventCreated tells the organizer their event room is provisioned.
func (a *PresenceAPI) EventCreated(c *gin.Context) {
	if err := a.hub.NotifyEventCreated(c.Request.Context(), c.Param("eventID")); err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// EventPublished announces a published event to all online users.
func (a *PresenceAPI) EventPublished(c *gin.Context) {
	if err := a.hub.NotifyEventPublished(c.Request.Context(), c.Param("eventID")); err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type ticketReadyRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// TicketReady joins a user's live connections to an event room after a
// ticket purchase.
func (a *PresenceAPI) TicketReady(c *gin.Context) {
	var req ticketReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "userId is required"})
		return
	}
	if err := a.hub.JoinUserToEventRoom(c.Request.Context(), req.UserID, c.Param("eventID")); err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *PresenceAPI) renderError(c *gin.Context, err error) {
	var domainErr *core.Error
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.Status, ErrorResponse{Error: domainErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
