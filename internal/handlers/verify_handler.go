package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ofertalia/internal/models"
	"ofertalia/internal/services"
)

type VerifyHandler struct {
	service *services.VerificationService
}

func NewVerifyHandler(service *services.VerificationService) *VerifyHandler {
	return &VerifyHandler{service: service}
}

// @Summary      Approve verification
// @Description  CRM checkpoint: promotes a DOCUMENTATION lead toward contracting
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Lead id"
// @Param        request  body      services.ApproveRequest  true  "Checks and precontract"
// @Success      200  {object}  models.Lead
// @Failure      412  {object}  map[string]string
// @Router       /verification/{id}/approve [post]
func (h *VerifyHandler) Approve(c *gin.Context) {
	var req services.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead, err := h.service.Approve(c.Request.Context(), getActor(c), c.Param("id"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

type rejectRequest struct {
	Reason   string            `json:"reason" binding:"required"`
	ReturnTo models.LeadStatus `json:"return_to" binding:"required"`
}

// @Summary      Reject verification
// @Description  Returns a DOCUMENTATION lead to NEGOTIATION or CONTACTED
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Lead id"
// @Param        request  body      rejectRequest  true  "Reason and return stage"
// @Success      200  {object}  models.Lead
// @Failure      412  {object}  map[string]string
// @Router       /verification/{id}/reject [post]
func (h *VerifyHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead, err := h.service.Reject(c.Request.Context(), getActor(c), c.Param("id"), req.Reason, req.ReturnTo)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}
