package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/authz"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
	"github.com/taskhub-dev/taskhub/internal/utils"
)

type CreateMilestoneRequest struct {
	Name string `json:"name" binding:"required"`
}

type MilestoneResponse struct {
	ID        uint   `json:"id"`
	ProjectID uint   `json:"project_id"`
	Name      string `json:"name"`
}

func CreateMilestone(ctx *gin.Context) {
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

	var body CreateMilestoneRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, err := authz.Authorize(db.DB, userID, projectID, types.ActionWrite); err != nil {
		respondError(ctx, err)
		return
	}

	milestone := models.Milestone{
		ProjectID: projectID,
		Name:      body.Name,
	}

	if err := db.DB.Create(&milestone).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, MilestoneResponse{
		ID:        milestone.ID,
		ProjectID: milestone.ProjectID,
		Name:      milestone.Name,
	})
}

func ListMilestones(ctx *gin.Context) {
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

	var milestones []models.Milestone

	if err := db.DB.Where("project_id = ?", projectID).Find(&milestones).Error; err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]MilestoneResponse, 0, len(milestones))

	for _, milestone := range milestones {
		response = append(response, MilestoneResponse{
			ID:        milestone.ID,
			ProjectID: milestone.ProjectID,
			Name:      milestone.Name,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateMilestone(ctx *gin.Context) {
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

	milestoneID, err := utils.GetMilestoneID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body CreateMilestoneRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, err := authz.Authorize(db.DB, userID, projectID, types.ActionWrite); err != nil {
		respondError(ctx, err)
		return
	}

	var milestone models.Milestone

	if err := db.DB.Where("id = ? AND project_id = ?", milestoneID, projectID).First(&milestone).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Milestone not found"})
		return
	}

	milestone.Name = body.Name

	if err := db.DB.Save(&milestone).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, MilestoneResponse{
		ID:        milestone.ID,
		ProjectID: milestone.ProjectID,
		Name:      milestone.Name,
	})
}

func DeleteMilestone(ctx *gin.Context) {
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

	milestoneID, err := utils.GetMilestoneID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := authz.Authorize(db.DB, userID, projectID, types.ActionWrite); err != nil {
		respondError(ctx, err)
		return
	}

	if err := db.DB.Where("id = ? AND project_id = ?", milestoneID, projectID).
		Delete(&models.Milestone{}).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
