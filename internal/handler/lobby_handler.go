package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/lifecycle"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/view"
)

// region --- DTOs ---

type LobbyInput struct {
	GameID     uint   `json:"game_id" binding:"required"`
	Title      string `json:"title" binding:"required,max=255"`
	Platform   string `json:"platform" binding:"max=50"`
	MaxPlayers *int   `json:"max_players" binding:"omitempty,min=2,max=64"`
}

type MemberResponse struct {
	MembershipID uint   `json:"membership_id"`
	UserID       uint   `json:"user_id"`
	Nickname     string `json:"nickname,omitempty"`
	Role         string `json:"role"`
	Ready        bool   `json:"ready"`
}

type LobbyResponse struct {
	ID         uint             `json:"id"`
	GameID     uint             `json:"game_id"`
	HostID     uint             `json:"host_id"`
	Title      string           `json:"title"`
	Platform   string           `json:"platform,omitempty"`
	MaxPlayers *int             `json:"max_players,omitempty"`
	Status     string           `json:"status"`
	Members    []MemberResponse `json:"members"`
}

func newLobbyResponse(lobby *models.Lobby, members []models.Membership) LobbyResponse {
	resp := LobbyResponse{
		ID:         lobby.ID,
		GameID:     lobby.GameID,
		HostID:     lobby.HostID,
		Title:      lobby.Title,
		Platform:   lobby.Platform,
		MaxPlayers: lobby.MaxPlayers,
		Status:     string(lobby.Status),
	}
	for _, m := range members {
		resp.Members = append(resp.Members, MemberResponse{
			MembershipID: m.ID,
			UserID:       m.UserID,
			Nickname:     m.User.Nickname,
			Role:         string(m.Role),
			Ready:        m.Ready,
		})
	}
	return resp
}

type ReadyInput struct {
	Ready *bool `json:"ready" binding:"required"`
}

type AutoInviteInput struct {
	CandidateIDs []uint `json:"candidate_ids" binding:"required"`
}

type InviteInput struct {
	ToUserID uint `json:"to_user_id" binding:"required"`
}

// endregion

func lobbyIDParam(c *gin.Context) uint {
	id, _ := strconv.Atoi(c.Param("id"))
	return uint(id)
}

// CreateLobby godoc
// @Summary      Create a new lobby
// @Description  Creates a new lobby, making the creator the host.
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body LobbyInput true "Lobby Info"
// @Success      201  {object}  LobbyResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "User is already in a lobby"
// @Router       /lobbies [post]
func (h *Handler) CreateLobby(c *gin.Context) {
	userID := currentUserID(c)

	var input LobbyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lobby, err := h.manager.CreateLobby(c.Request.Context(), userID, lifecycle.CreateLobbyParams{
		GameID:     input.GameID,
		Title:      input.Title,
		Platform:   input.Platform,
		MaxPlayers: input.MaxPlayers,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	members, _ := h.store.ListMemberships(c.Request.Context(), lobby.ID)
	c.JSON(http.StatusCreated, newLobbyResponse(lobby, members))
}

// SearchLobbies godoc
// @Summary      Search for lobbies
// @Description  Gets a paginated list of open lobbies, optionally filtered by game.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        game_id query int false "Filter by Game ID"
// @Param        page    query int false "Page number" default(1)
// @Param        limit   query int false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[LobbyResponse]
// @Router       /lobbies [get]
func (h *Handler) SearchLobbies(c *gin.Context) {
	// Lobby reads double as the trigger for the stale-host sweep.
	h.sweeper.Sweep(c.Request.Context())

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	gameID, _ := strconv.Atoi(c.Query("game_id"))

	lobbies, total, err := h.store.SearchLobbies(c.Request.Context(), uint(gameID), (page-1)*limit, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]LobbyResponse, 0, len(lobbies))
	for i := range lobbies {
		members, _ := h.store.ListMemberships(c.Request.Context(), lobbies[i].ID)
		data = append(data, newLobbyResponse(&lobbies[i], members))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(data, total, page, limit))
}

// GetLobbyByID godoc
// @Summary      Get a lobby by ID
// @Description  Gets full details for a single lobby.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} LobbyResponse
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{id} [get]
func (h *Handler) GetLobbyByID(c *gin.Context) {
	h.sweeper.Sweep(c.Request.Context())

	lobbyID := lobbyIDParam(c)
	lobby, err := h.store.GetLobby(c.Request.Context(), lobbyID)
	if err != nil {
		respondError(c, err)
		return
	}
	members, err := h.store.ListMemberships(c.Request.Context(), lobbyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLobbyResponse(lobby, members))
}

// JoinLobby godoc
// @Summary      Join a lobby
// @Description  Joins a lobby if not full, not banned, and not in another active lobby.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} MemberResponse
// @Failure      403 {object} ErrorResponse "Banned from this lobby"
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Failure      409 {object} ErrorResponse "Lobby is full or user is in another lobby"
// @Router       /lobbies/{id}/join [post]
func (h *Handler) JoinLobby(c *gin.Context) {
	userID := currentUserID(c)
	lobbyID := lobbyIDParam(c)

	// A user can stream a lobby before joining it; predict their own join
	// so their projection updates without waiting for the feed round trip.
	var key view.PendingKey
	v, watching := h.views.Lookup(lobbyID, userID)
	if watching {
		predicted := view.Member{
			UserID:   userID,
			Role:     models.RoleMember,
			JoinedAt: time.Now(),
		}
		if user, err := h.store.GetUser(c.Request.Context(), userID); err == nil {
			predicted.Nickname = user.Nickname
		}
		key = v.PredictJoin(predicted)
	}

	member, err := h.manager.Join(c.Request.Context(), lobbyID, userID)
	if err != nil {
		if watching {
			v.ActionFailed(key)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MemberResponse{
		MembershipID: member.ID,
		UserID:       member.UserID,
		Role:         string(member.Role),
		Ready:        member.Ready,
	})
}

// LeaveLobby godoc
// @Summary      Leave a lobby
// @Description  Leaves the lobby. The host cannot leave; it must close the lobby instead. Leaving a lobby you are not in is a no-op.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} map[string]string "{"message": "Left lobby successfully"}"
// @Failure      403 {object} ErrorResponse "The host cannot leave"
// @Router       /lobbies/{id}/leave [post]
func (h *Handler) LeaveLobby(c *gin.Context) {
	userID := currentUserID(c)
	lobbyID := lobbyIDParam(c)

	var key view.PendingKey
	v, watching := h.views.Lookup(lobbyID, userID)
	if watching {
		if own := h.ownMembership(c, lobbyID, userID); own != nil {
			key = v.PredictLeave(own.ID, userID)
		} else {
			watching = false
		}
	}

	if err := h.manager.Leave(c.Request.Context(), lobbyID, userID); err != nil {
		if watching {
			v.ActionFailed(key)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left lobby successfully"})
}

// ToggleReady godoc
// @Summary      Set your ready state
// @Description  Flips the ready flag on the caller's own membership.
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int        true "Lobby ID"
// @Param        input body ReadyInput true "Ready state"
// @Success      200 {object} map[string]string "{"message": "Ready state updated"}"
// @Failure      404 {object} ErrorResponse "Membership not found"
// @Router       /lobbies/{id}/ready [post]
func (h *Handler) ToggleReady(c *gin.Context) {
	userID := currentUserID(c)
	lobbyID := lobbyIDParam(c)

	var input ReadyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	own := h.ownMembership(c, lobbyID, userID)
	if own == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found in this lobby"})
		return
	}

	var key view.PendingKey
	v, watching := h.views.Lookup(lobbyID, userID)
	if watching {
		key = v.PredictReady(own.ID, *input.Ready)
	}

	if err := h.manager.ToggleReady(c.Request.Context(), own.ID, userID, *input.Ready); err != nil {
		if watching {
			v.ActionFailed(key)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ready state updated"})
}

// KickMember godoc
// @Summary      Kick a member from a lobby (Host only)
// @Description  Removes a member from the lobby. Only the host can perform this action.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id            path int true "Lobby ID"
// @Param        membershipID  path int true "Membership ID of member to kick"
// @Success      200 {object} map[string]string "{"message": "Member kicked successfully"}"
// @Failure      403 {object} ErrorResponse "Only the host can kick members"
// @Failure      404 {object} ErrorResponse "Lobby or member not found"
// @Router       /lobbies/{id}/members/{membershipID} [delete]
func (h *Handler) KickMember(c *gin.Context) {
	h.removeMember(c, false)
}

// BanMember godoc
// @Summary      Ban a member from a lobby (Host only)
// @Description  Removes a member and blocks them from rejoining for the lobby's lifetime.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id            path int true "Lobby ID"
// @Param        membershipID  path int true "Membership ID of member to ban"
// @Success      200 {object} map[string]string "{"message": "Member banned successfully"}"
// @Failure      403 {object} ErrorResponse "Only the host can ban members"
// @Failure      404 {object} ErrorResponse "Lobby or member not found"
// @Router       /lobbies/{id}/members/{membershipID}/ban [post]
func (h *Handler) BanMember(c *gin.Context) {
	h.removeMember(c, true)
}

func (h *Handler) removeMember(c *gin.Context, ban bool) {
	userID := currentUserID(c)
	lobbyID := lobbyIDParam(c)
	targetID, _ := strconv.Atoi(c.Param("membershipID"))

	var key view.PendingKey
	v, watching := h.views.Lookup(lobbyID, userID)
	if watching {
		target, err := h.store.GetMembership(c.Request.Context(), uint(targetID))
		if err == nil && target.LobbyID == lobbyID {
			key = v.PredictLeave(target.ID, target.UserID)
		} else {
			watching = false
		}
	}

	var err error
	if ban {
		err = h.manager.Ban(c.Request.Context(), lobbyID, userID, uint(targetID))
	} else {
		err = h.manager.Kick(c.Request.Context(), lobbyID, userID, uint(targetID))
	}
	if err != nil {
		if watching {
			v.ActionFailed(key)
		}
		respondError(c, err)
		return
	}

	if ban {
		c.JSON(http.StatusOK, gin.H{"message": "Member banned successfully"})
	} else {
		c.JSON(http.StatusOK, gin.H{"message": "Member kicked successfully"})
	}
}

// StartLobby godoc
// @Summary      Start the game session (Host only)
// @Description  Moves an open lobby to in_progress.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} map[string]string "{"message": "Lobby started"}"
// @Failure      403 {object} ErrorResponse "Only the host can start the lobby"
// @Router       /lobbies/{id}/start [post]
func (h *Handler) StartLobby(c *gin.Context) {
	if err := h.manager.Start(c.Request.Context(), lobbyIDParam(c), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lobby started"})
}

// CloseLobby godoc
// @Summary      Close a lobby (Host only)
// @Description  Terminally closes the lobby. All memberships are voided and watching clients are told to navigate away.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} map[string]string "{"message": "Lobby closed"}"
// @Failure      403 {object} ErrorResponse "Only the host can close the lobby"
// @Router       /lobbies/{id}/close [post]
func (h *Handler) CloseLobby(c *gin.Context) {
	if err := h.manager.Close(c.Request.Context(), lobbyIDParam(c), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lobby closed"})
}

// AutoInvite godoc
// @Summary      Auto-invite candidates into a lobby (Host only)
// @Description  Joins each candidate up to remaining capacity, skipping candidates that fail preconditions. Reports only the aggregate count.
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int             true "Lobby ID"
// @Param        input body AutoInviteInput true "Candidate user IDs"
// @Success      200 {object} map[string]int "{"invited": 3}"
// @Failure      403 {object} ErrorResponse "Only the host can auto-invite"
// @Router       /lobbies/{id}/auto-invite [post]
func (h *Handler) AutoInvite(c *gin.Context) {
	var input AutoInviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invited, err := h.manager.AutoInvite(c.Request.Context(), lobbyIDParam(c), currentUserID(c), input.CandidateIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invited": invited})
}

// CreateInvite godoc
// @Summary      Invite a user to a lobby
// @Description  Creates a pending invite if the recipient's preferences allow it. An invite does not grant membership.
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int         true "Lobby ID"
// @Param        input body InviteInput true "Invite target"
// @Success      201 {object} map[string]uint "{"invite_id": 7}"
// @Failure      403 {object} ErrorResponse "Recipient does not accept invites"
// @Router       /lobbies/{id}/invites [post]
func (h *Handler) CreateInvite(c *gin.Context) {
	var input InviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invite, err := h.notify.CreateInvite(c.Request.Context(), lobbyIDParam(c), currentUserID(c), input.ToUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invite_id": invite.ID})
}

// ownMembership finds the caller's membership row in a lobby, or nil.
func (h *Handler) ownMembership(c *gin.Context, lobbyID, userID uint) *models.Membership {
	members, err := h.store.ListMemberships(c.Request.Context(), lobbyID)
	if err != nil {
		return nil
	}
	for i := range members {
		if members[i].UserID == userID {
			return &members[i]
		}
	}
	return nil
}
