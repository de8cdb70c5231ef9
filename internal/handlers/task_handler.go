package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ofertalia/internal/models"
	"ofertalia/internal/scoring"
	"ofertalia/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type taskRequest struct {
	AssigneeID       int64               `json:"assignee_id"`
	LeadID           *string             `json:"lead_id"`
	CompanyID        *int64              `json:"company_id"`
	Title            string              `json:"title" binding:"required"`
	Description      string              `json:"description"`
	DueDate          *time.Time          `json:"due_date"`
	Priority         models.LeadPriority `json:"priority"`
	EstimatedMinutes *int                `json:"estimated_minutes"`
}

func (r taskRequest) toModel() *models.Task {
	return &models.Task{
		AssigneeID:       r.AssigneeID,
		LeadID:           r.LeadID,
		CompanyID:        r.CompanyID,
		Title:            r.Title,
		Description:      r.Description,
		DueDate:          r.DueDate,
		Priority:         r.Priority,
		EstimatedMinutes: r.EstimatedMinutes,
	}
}

// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      taskRequest  true  "Task attributes"
// @Success      201   {object}  models.Task
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.Create(c.Request.Context(), getActor(c), req.toModel())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary      List tasks
// @Tags         Tasks
// @Produce      json
// @Param        mine    query  bool    false  "Only tasks assigned to the caller"
// @Param        status  query  string  false  "Filter by status"
// @Success      200  {array}  models.Task
// @Router       /tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	var filter models.TaskFilter
	if c.Query("mine") == "true" {
		actor := getActor(c)
		filter.AssigneeID = &actor.ID
	}
	if s := c.Query("status"); s != "" {
		status := models.TaskStatus(s)
		filter.Status = &status
	}
	if l := c.Query("lead_id"); l != "" {
		filter.LeadID = &l
	}
	filter.Limit = intQuery(c, "limit", 50)
	filter.Offset = intQuery(c, "offset", 0)

	tasks, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  models.Task
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Update a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "Task id"
// @Param        task  body      taskRequest  true  "Task attributes"
// @Success      200   {object}  models.Task
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.Update(c.Request.Context(), getActor(c), id, req.toModel())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type taskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// @Summary      Change task status
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id      path      int                true  "Task id"
// @Param        status  body      taskStatusRequest  true  "Target status"
// @Success      200  {object}  models.Task
// @Router       /tasks/{id}/status [post]
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req taskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.UpdateStatus(c.Request.Context(), getActor(c), id, req.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Delete a task
// @Tags         Tasks
// @Param        id  path  int  true  "Task id"
// @Success      204
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), getActor(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type scorePreviewRequest struct {
	Priority         models.LeadPriority `json:"priority"`
	Status           models.TaskStatus   `json:"status"`
	DueDate          *time.Time          `json:"due_date"`
	EstimatedMinutes *int                `json:"estimated_minutes"`
	CompanyLinked    bool                `json:"company_linked"`
	LeadLinked       bool                `json:"lead_linked"`
}

// @Summary      Preview task scores
// @Description  Pure computation, nothing is persisted
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      scorePreviewRequest  true  "Hypothetical task"
// @Success      200   {object}  scoring.Scores
// @Router       /tasks/score [post]
func (h *TaskHandler) Score(c *gin.Context) {
	var req scorePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scores := h.service.Preview(scoring.Input{
		Priority:         req.Priority,
		Status:           req.Status,
		DueDate:          req.DueDate,
		EstimatedMinutes: req.EstimatedMinutes,
		CompanyLinked:    req.CompanyLinked,
		LeadLinked:       req.LeadLinked,
	}, time.Now())
	c.JSON(http.StatusOK, scores)
}
