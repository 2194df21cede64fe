package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/apperrors"
	"github.com/taskhub-dev/taskhub/internal/authz"
	"github.com/taskhub-dev/taskhub/internal/gemini"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
	"github.com/taskhub-dev/taskhub/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateReportGroupRequest struct {
	Name              string          `json:"name" binding:"required"`
	ChatID            string          `json:"chat_id" binding:"required"`
	SystemInstruction string          `json:"system_instruction"`
	IntervalHours     int             `json:"interval_hours" binding:"required,min=1"`
	ReplayHistory     bool            `json:"replay_history"`
	GenerationConfig  json.RawMessage `json:"generation_config"`
	ProjectIDs        []uint          `json:"project_ids"`
}

type ReportGroupResponse struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	ChatID            string `json:"chat_id"`
	SystemInstruction string `json:"system_instruction"`
	IntervalHours     int    `json:"interval_hours"`
	ReplayHistory     bool   `json:"replay_history"`
	ProjectIDs        []uint `json:"project_ids"`
}

func reportGroupResponse(group models.ReportGroup) ReportGroupResponse {
	projectIDs := make([]uint, 0, len(group.Projects))
	for _, project := range group.Projects {
		projectIDs = append(projectIDs, project.ID)
	}

	return ReportGroupResponse{
		ID:                group.ID,
		Name:              group.Name,
		ChatID:            group.ChatID,
		SystemInstruction: group.SystemInstruction,
		IntervalHours:     group.IntervalHours,
		ReplayHistory:     group.ReplayHistory,
		ProjectIDs:        projectIDs,
	}
}

// A report group routes its projects' activity logs to an external chat, so
// the caller must hold action on every linked project. Mutations require
// administer, listing requires read.
func authorizeGroupProjects(userID uint, projectIDs []uint, action types.Action) error {
	for _, projectID := range projectIDs {
		if _, err := authz.Authorize(db.DB, userID, projectID, action); err != nil {
			return err
		}
	}
	return nil
}

func CreateReportGroup(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateReportGroupRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := authorizeGroupProjects(userID, body.ProjectIDs, types.ActionAdminister); err != nil {
		respondError(ctx, err)
		return
	}

	config := body.GenerationConfig

	if len(config) == 0 {
		defaults, err := json.Marshal(gemini.DefaultGenerationConfig)
		if err != nil {
			respondError(ctx, err)
			return
		}
		config = defaults
	} else {
		var parsed gemini.GenerationConfig
		if err := json.Unmarshal(config, &parsed); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid generation config"})
			return
		}
	}

	group := models.ReportGroup{
		Name:              body.Name,
		ChatID:            body.ChatID,
		SystemInstruction: body.SystemInstruction,
		IntervalHours:     body.IntervalHours,
		ReplayHistory:     body.ReplayHistory,
		GenerationConfig:  datatypes.JSON(config),
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		if len(body.ProjectIDs) == 0 {
			return nil
		}

		var projects []models.Project

		if err := tx.Find(&projects, body.ProjectIDs).Error; err != nil {
			return err
		}

		if len(projects) != len(body.ProjectIDs) {
			return fmt.Errorf("one or more projects: %w", apperrors.ErrNotFound)
		}

		return tx.Model(&group).Association("Projects").Replace(projects)
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, reportGroupResponse(group))
}

// ListReportGroups filters rather than denies: a group shows up only when
// the caller can read every project it routes.
func ListReportGroups(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var groups []models.ReportGroup

	if err := db.DB.Preload("Projects").Find(&groups).Error; err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]ReportGroupResponse, 0, len(groups))

	for _, group := range groups {
		projectIDs := make([]uint, 0, len(group.Projects))
		for _, project := range group.Projects {
			projectIDs = append(projectIDs, project.ID)
		}

		if err := authorizeGroupProjects(userID, projectIDs, types.ActionRead); err != nil {
			continue
		}

		response = append(response, reportGroupResponse(group))
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteReportGroup(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	groupID, err := utils.GetGroupID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var group models.ReportGroup

	if err := db.DB.Preload("Projects").First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, fmt.Errorf("report group %d: %w", groupID, apperrors.ErrNotFound))
			return
		}
		respondError(ctx, err)
		return
	}

	projectIDs := make([]uint, 0, len(group.Projects))
	for _, project := range group.Projects {
		projectIDs = append(projectIDs, project.ID)
	}

	if err := authorizeGroupProjects(userID, projectIDs, types.ActionAdminister); err != nil {
		respondError(ctx, err)
		return
	}

	if err := db.DB.Delete(&models.ReportGroup{}, groupID).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
