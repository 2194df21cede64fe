package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/authz"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
	"github.com/taskhub-dev/taskhub/internal/utils"
)

type CreateLogRequest struct {
	Message string `json:"message" binding:"required"`
	TaskID  *uint  `json:"task_id"`
}

type LogResponse struct {
	ID        uint      `json:"id"`
	ProjectID uint      `json:"project_id"`
	UserID    uint      `json:"user_id"`
	TaskID    *uint     `json:"task_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// AppendLog writes a free-form activity entry, independent of task updates.
func AppendLog(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body CreateLogRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, err := authz.Authorize(db.DB, userID, projectID, types.ActionWrite); err != nil {
		respondError(ctx, err)
		return
	}

	entry := models.Log{
		ProjectID: projectID,
		UserID:    userID,
		TaskID:    body.TaskID,
		Message:   body.Message,
	}

	if err := db.DB.Create(&entry).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, LogResponse{
		ID:        entry.ID,
		ProjectID: entry.ProjectID,
		UserID:    entry.UserID,
		TaskID:    entry.TaskID,
		Message:   entry.Message,
		Timestamp: entry.CreatedAt,
	})
}

// ListLogs returns the project's entries, oldest first.
func ListLogs(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := authz.Authorize(db.DB, userID, projectID, types.ActionRead); err != nil {
		respondError(ctx, err)
		return
	}

	var logs []models.Log

	if err := db.DB.Where("project_id = ?", projectID).Order("created_at ASC").Find(&logs).Error; err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]LogResponse, 0, len(logs))

	for _, entry := range logs {
		response = append(response, LogResponse{
			ID:        entry.ID,
			ProjectID: entry.ProjectID,
			UserID:    entry.UserID,
			TaskID:    entry.TaskID,
			Message:   entry.Message,
			Timestamp: entry.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}
