package handlers

import (
	"context"
	"net/http"
	"strconv"

	"whopgen/internal/logger"
	"whopgen/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Publisher is the slice of the event publisher the handler needs.
type Publisher interface {
	PublishRequested(ctx context.Context, triggerID, subject string) error
}

type RunHandler struct {
	db        *gorm.DB
	publisher Publisher
	logger    *logger.Logger
}

func NewRunHandler(db *gorm.DB, publisher Publisher, logger *logger.Logger) *RunHandler {
	return &RunHandler{
		db:        db,
		publisher: publisher,
		logger:    logger,
	}
}

func (h *RunHandler) List(c *gin.Context) {
	var runs []models.ProvisionRun

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	// Filters
	status := c.Query("status")
	source := c.Query("source")

	query := h.db.Model(&models.ProvisionRun{})

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if source != "" {
		query = query.Where("source = ?", source)
	}

	var total int64
	query.Count(&total)

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *RunHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var run models.ProvisionRun
	if err := h.db.First(&run, "id = ? OR trigger_id = ?", id, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

type createRunRequest struct {
	Subject   string `json:"subject" binding:"required"`
	TriggerID string `json:"trigger_id"`
}

// Create accepts a manual provisioning request and hands it to the bot via
// Kafka. The run shows up in the listing once the bot claims it.
func (h *RunHandler) Create(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject is required"})
		return
	}

	triggerID := req.TriggerID
	if triggerID == "" {
		triggerID = "manual-" + uuid.NewString()
	}

	if err := h.publisher.PublishRequested(c.Request.Context(), triggerID, req.Subject); err != nil {
		h.logger.Error("Failed to publish provisioning request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue request"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"data": gin.H{
			"trigger_id": triggerID,
			"subject":    req.Subject,
		},
	})
}
