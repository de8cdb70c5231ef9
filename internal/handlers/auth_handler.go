package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ofertalia/internal/models"
	"ofertalia/internal/services"
)

type AuthHandler struct {
	users services.UserService
	auth  *services.AuthService
}

func NewAuthHandler(users services.UserService, auth *services.AuthService) *AuthHandler {
	return &AuthHandler{users: users, auth: auth}
}

// @Summary      Log in
// @Description  Authenticates a user and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	zap.S().Infow("[auth][login] attempt", "email", email)

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil || user == nil || !user.IsActive || !h.auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.auth.IssueToken(user)
	if err != nil {
		zap.S().Errorw("[auth][login] token issue failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user":         user,
	})
}
