package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/lifecycle"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/notify"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/presence"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/store"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/view"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// Handler bundles the services the HTTP surface exposes.
type Handler struct {
	store     store.Store
	manager   *lifecycle.Manager
	notify    *notify.Service
	views     *view.Registry
	sweeper   *presence.Sweeper
	heartbeat time.Duration
}

// New wires a Handler.
func New(st store.Store, manager *lifecycle.Manager, notifySvc *notify.Service, views *view.Registry, sweeper *presence.Sweeper, heartbeat time.Duration) *Handler {
	return &Handler{
		store:     st,
		manager:   manager,
		notify:    notifySvc,
		views:     views,
		sweeper:   sweeper,
		heartbeat: heartbeat,
	}
}

// respondError maps the lifecycle error taxonomy onto HTTP statuses with
// short, specific messages. Unknown errors get the generic retry prompt.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrLobbyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
	case errors.Is(err, lifecycle.ErrMembershipNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found in this lobby"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, lifecycle.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": "You are already in this lobby"})
	case errors.Is(err, lifecycle.ErrAlreadyInOtherLobby):
		c.JSON(http.StatusConflict, gin.H{"error": "You are already in another active lobby"})
	case errors.Is(err, lifecycle.ErrLobbyFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Lobby is full"})
	case errors.Is(err, lifecycle.ErrBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are banned from this lobby"})
	case errors.Is(err, lifecycle.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.Is(err, lifecycle.ErrLobbyClosed), errors.Is(err, view.ErrLobbyGone):
		c.JSON(http.StatusGone, gin.H{"error": "Lobby is closed"})
	case errors.Is(err, notify.ErrNotMember):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only lobby members can send invites"})
	case errors.Is(err, notify.ErrInvitesDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "This user does not accept invites"})
	case errors.Is(err, notify.ErrInvitesFollowersOnly):
		c.JSON(http.StatusForbidden, gin.H{"error": "This user only accepts invites from followers"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
	}
}

func currentUserID(c *gin.Context) uint {
	userID, _ := c.Get("userID")
	id, _ := userID.(uint)
	return id
}
