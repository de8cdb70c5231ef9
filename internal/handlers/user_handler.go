package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ofertalia/internal/models"
	"ofertalia/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	Name           string          `json:"name" binding:"required"`
	Email          string          `json:"email" binding:"required"`
	Password       string          `json:"password" binding:"required"`
	RoleID         int             `json:"role_id" binding:"required"`
	Segment        *models.Segment `json:"segment"`
	MaxActiveLeads int             `json:"max_active_leads"`
	TelegramChatID *int64          `json:"telegram_chat_id"`
}

// @Summary      Create a user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      createUserRequest  true  "User attributes"
// @Success      201   {object}  models.User
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := &models.User{
		Name:           req.Name,
		Email:          req.Email,
		RoleID:         req.RoleID,
		Segment:        req.Segment,
		MaxActiveLeads: req.MaxActiveLeads,
		TelegramChatID: req.TelegramChatID,
	}
	if err := h.service.CreateWithPassword(c.Request.Context(), user, req.Password); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      List users
// @Tags         Users
// @Produce      json
// @Success      200  {array}  models.User
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context(), intQuery(c, "limit", 50), intQuery(c, "offset", 0))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      Get a user
// @Tags         Users
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  models.User
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Gestor load overview
// @Description  Active gestors with derived active-lead counts and load
// @Tags         Users
// @Produce      json
// @Success      200  {array}  models.GestorLoad
// @Router       /gestors [get]
func (h *UserHandler) GestorLoads(c *gin.Context) {
	loads, err := h.service.GestorLoads(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, loads)
}
