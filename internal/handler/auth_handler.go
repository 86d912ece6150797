package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/database"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
	"github.com/yazidtalbi/gaminglobby-sub000/pkg/jwt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Nickname string `json:"nickname" binding:"required" example:"testuser"`
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID                        uint   `json:"id" example:"1"`
	Nickname                  string `json:"nickname" example:"testuser"`
	Email                     string `json:"email" example:"test@example.com"`
	AllowInvites              bool   `json:"allow_invites"`
	AllowInvitesFromStrangers bool   `json:"allow_invites_from_strangers"`
}

// NotificationResponse is one fan-out entry.
type NotificationResponse struct {
	ID      uint   `json:"id"`
	Kind    string `json:"kind"`
	LobbyID uint   `json:"lobby_id,omitempty"`
	Body    string `json:"body"`
}

// endregion

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Nickname, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Nickname or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Nickname:                  input.Nickname,
		Email:                     input.Email,
		PasswordHash:              string(hashedPassword),
		AllowInvites:              true,
		AllowInvitesFromStrangers: true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// LoginUser godoc
// @Summary      Log in
// @Description  Authenticates by nickname or email and returns a token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("nickname = ? OR email = ?", input.Login, input.Login).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetMe godoc
// @Summary      Get the authenticated user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} PrivateUserResponse
// @Router       /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PrivateUserResponse{
		ID:                        user.ID,
		Nickname:                  user.Nickname,
		Email:                     user.Email,
		AllowInvites:              user.AllowInvites,
		AllowInvitesFromStrangers: user.AllowInvitesFromStrangers,
	})
}

// ListNotifications godoc
// @Summary      List the authenticated user's notifications
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max entries" default(20)
// @Success      200 {array} NotificationResponse
// @Router       /users/me/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, err := h.store.ListNotifications(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationResponse{
			ID:      n.ID,
			Kind:    string(n.Kind),
			LobbyID: n.LobbyID,
			Body:    n.Body,
		})
	}
	c.JSON(http.StatusOK, out)
}
