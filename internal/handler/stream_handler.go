package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/presence"
)

// StreamLobby godoc
// @Summary      Stream lobby snapshots
// @Description  Opens a server-sent-events stream of projection snapshots for a lobby. The stream ends with a terminal snapshot when the lobby closes. While the host streams their own lobby, the presence heartbeat runs.
// @Tags         lobbies
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} view.Snapshot
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Failure      410 {object} ErrorResponse "Lobby is closed"
// @Router       /lobbies/{id}/events [get]
func (h *Handler) StreamLobby(c *gin.Context) {
	userID := currentUserID(c)
	lobbyID := lobbyIDParam(c)

	v, err := h.views.Acquire(c.Request.Context(), lobbyID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer h.views.Release(lobbyID, userID)

	subID, snapshots := v.Subscribe()
	defer v.Unsubscribe(subID)

	// The host's open view is what keeps the lobby alive.
	if proj, _, _ := v.State(); proj.Lobby.HostID == userID {
		hb := presence.StartHeartbeat(c.Request.Context(), h.store, lobbyID, userID, h.heartbeat)
		defer hb.Stop()
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return !snap.Terminal
		case <-c.Request.Context().Done():
			return false
		}
	})
}
