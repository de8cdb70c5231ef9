package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ofertalia/internal/models"
	"ofertalia/internal/services"
)

type LeadHandler struct {
	service *services.LeadService
}

func NewLeadHandler(service *services.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

type leadRequest struct {
	CompanyName      string              `json:"company_name" binding:"required"`
	Sector           string              `json:"sector"`
	ContactName      string              `json:"contact_name"`
	ContactEmail     string              `json:"contact_email"`
	ContactPhone     string              `json:"contact_phone"`
	Website          string              `json:"website"`
	Employees        int                 `json:"employees"`
	EstimatedRevenue decimal.Decimal     `json:"estimated_revenue"`
	Priority         models.LeadPriority `json:"priority"`
	Source           models.LeadSource   `json:"source"`
}

func (r leadRequest) toModel() *models.Lead {
	return &models.Lead{
		CompanyName:      r.CompanyName,
		Sector:           r.Sector,
		ContactName:      r.ContactName,
		ContactEmail:     r.ContactEmail,
		ContactPhone:     r.ContactPhone,
		Website:          r.Website,
		Employees:        r.Employees,
		EstimatedRevenue: r.EstimatedRevenue,
		Priority:         r.Priority,
		Source:           r.Source,
	}
}

// @Summary      Create a lead
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        lead  body      leadRequest  true  "Lead attributes"
// @Success      201   {object}  models.Lead
// @Failure      400   {object}  map[string]string
// @Router       /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead, err := h.service.Create(c.Request.Context(), getActor(c), req.toModel())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// @Summary      Get a lead
// @Tags         Leads
// @Produce      json
// @Param        id   path      string  true  "Lead id"
// @Success      200  {object}  models.Lead
// @Router       /leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	lead, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary      List leads
// @Tags         Leads
// @Produce      json
// @Param        status  query  string  false  "Filter by status"
// @Param        mine    query  bool    false  "Only leads owned by the caller"
// @Success      200  {array}  models.Lead
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	var filter models.LeadFilter
	if s := c.Query("status"); s != "" {
		status := models.LeadStatus(s)
		if !services.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + s})
			return
		}
		filter.Status = &status
	}
	if c.Query("mine") == "true" {
		actor := getActor(c)
		filter.AssignedToID = &actor.ID
	}
	filter.Limit = intQuery(c, "limit", 50)
	filter.Offset = intQuery(c, "offset", 0)

	leads, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// @Summary      Update lead details
// @Description  Descriptive fields only; status and ownership have their own operations
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Lead id"
// @Param        lead  body      leadRequest  true  "Lead attributes"
// @Success      200   {object}  models.Lead
// @Router       /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead, err := h.service.UpdateDetails(c.Request.Context(), getActor(c), c.Param("id"), req.toModel())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

type transitionRequest struct {
	Status models.LeadStatus `json:"status" binding:"required"`
	Note   string            `json:"note"`
	Reason string            `json:"reason"`
}

// @Summary      Transition a lead
// @Description  Applies one edge of the pipeline state machine
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id          path      string             true  "Lead id"
// @Param        transition  body      transitionRequest  true  "Target status"
// @Success      200  {object}  models.Lead
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /leads/{id}/status [post]
func (h *LeadHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead, err := h.service.Transition(c.Request.Context(), getActor(c), c.Param("id"), req.Status, &services.TransitionPayload{
		Note:   req.Note,
		Reason: req.Reason,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

type assignRequest struct {
	GestorID *int64 `json:"gestor_id"` // omitted -> automatic allocation
}

// @Summary      Assign a lead
// @Description  Omitting gestor_id triggers automatic segment-capacity allocation
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id      path      string         true   "Lead id"
// @Param        assign  body      assignRequest  false  "Manual override"
// @Success      200  {object}  models.Lead
// @Failure      409  {object}  map[string]string
// @Router       /leads/{id}/assign [post]
func (h *LeadHandler) Assign(c *gin.Context) {
	var req assignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	lead, err := h.service.Assign(c.Request.Context(), getActor(c), c.Param("id"), req.GestorID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

type noteRequest struct {
	Description string `json:"description" binding:"required"`
}

// @Summary      Add a note
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Lead id"
// @Param        note  body      noteRequest  true  "Note text"
// @Success      201   {object}  models.LeadActivity
// @Router       /leads/{id}/notes [post]
func (h *LeadHandler) AddNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	act, err := h.service.RecordNote(c.Request.Context(), getActor(c), c.Param("id"), req.Description)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, act)
}

// @Summary      Lead activity trail
// @Tags         Leads
// @Produce      json
// @Param        id   path     string  true  "Lead id"
// @Success      200  {array}  models.LeadActivity
// @Router       /leads/{id}/activities [get]
func (h *LeadHandler) Activities(c *gin.Context) {
	acts, err := h.service.Activities(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, acts)
}
