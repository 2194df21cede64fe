package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/authz"
	"github.com/taskhub-dev/taskhub/internal/deps"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
	"github.com/taskhub-dev/taskhub/internal/utils"
	"gorm.io/gorm"
)

type CreateDependencyRequest struct {
	ToTaskID uint   `json:"to_task" binding:"required"`
	Type     string `json:"type" binding:"required"`
}

type DependencyResponse struct {
	ID       uint   `json:"id"`
	FromTask uint   `json:"from_task"`
	ToTask   uint   `json:"to_task"`
	Type     string `json:"type"`
}

// AddDependency creates a directed edge from the URL task to the body task.
// Cycles are accepted, matching the data model; GET .../dependencies/cycles
// reports them.
func AddDependency(ctx *gin.Context) {
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

	var body CreateDependencyRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.ValidDependencyType(body.Type) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Type must be FS, FF, SS or SF"})
		return
	}

	var fromTask models.Task

	if err := db.DB.Preload("Milestone").First(&fromTask, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			respondError(ctx, err)
		}
		return
	}

	if _, err := authz.Authorize(db.DB, userID, fromTask.Milestone.ProjectID, types.ActionWrite); err != nil {
		respondError(ctx, err)
		return
	}

	var toTask models.Task

	if err := db.DB.First(&toTask, body.ToTaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Target task not found"})
		} else {
			respondError(ctx, err)
		}
		return
	}

	dependency := models.Dependency{
		FromTaskID: taskID,
		ToTaskID:   body.ToTaskID,
		Type:       body.Type,
	}

	if err := db.DB.Create(&dependency).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, DependencyResponse{
		ID:       dependency.ID,
		FromTask: dependency.FromTaskID,
		ToTask:   dependency.ToTaskID,
		Type:     dependency.Type,
	})
}

// ListDependencyCycles reports cycles among a project's dependency edges.
func ListDependencyCycles(ctx *gin.Context) {
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

	cycles, err := deps.FindCycles(db.DB, projectID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"cycles": cycles})
}
