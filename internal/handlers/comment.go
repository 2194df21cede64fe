package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/authz"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
	"github.com/taskhub-dev/taskhub/internal/utils"
	"gorm.io/gorm"
)

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	TaskID    uint      `json:"task_id"`
	AuthorID  uint      `json:"author_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AddComment appends an immutable comment to a task.
func AddComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body CreateCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var task models.Task

	if err := db.DB.Preload("Milestone").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			respondError(ctx, err)
		}
		return
	}

	if _, err := authz.Authorize(db.DB, userID, task.Milestone.ProjectID, types.ActionWrite); err != nil {
		respondError(ctx, err)
		return
	}

	comment := models.Comment{
		TaskID:   taskID,
		AuthorID: userID,
		Text:     body.Text,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, CommentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		Timestamp: comment.CreatedAt,
	})
}

func ListComments(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task models.Task

	if err := db.DB.Preload("Milestone").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			respondError(ctx, err)
		}
		return
	}

	if _, err := authz.Authorize(db.DB, userID, task.Milestone.ProjectID, types.ActionRead); err != nil {
		respondError(ctx, err)
		return
	}

	var comments []models.Comment

	if err := db.DB.Where("task_id = ?", taskID).Order("created_at ASC").Find(&comments).Error; err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]CommentResponse, 0, len(comments))

	for _, comment := range comments {
		response = append(response, CommentResponse{
			ID:        comment.ID,
			TaskID:    comment.TaskID,
			AuthorID:  comment.AuthorID,
			Text:      comment.Text,
			Timestamp: comment.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}
