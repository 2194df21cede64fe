package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/apperrors"
	"github.com/taskhub-dev/taskhub/internal/authz"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/taskops"
	"github.com/taskhub-dev/taskhub/internal/types"
	"github.com/taskhub-dev/taskhub/internal/utils"
	"gorm.io/gorm"
)

type ChecklistItemRequest struct {
	Text        string `json:"text" binding:"required"`
	IsCompleted bool   `json:"is_completed"`
}

type CreateTaskRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	Status      string                 `json:"status"`
	AssigneeID  *uint                  `json:"assignee_id"`
	StartDate   time.Time              `json:"start_date" binding:"required"`
	DueDate     time.Time              `json:"due_date" binding:"required"`
	Deadline    time.Time              `json:"deadline" binding:"required"`
	Checklist   []ChecklistItemRequest `json:"checklist"`
	Tags        []uint                 `json:"tags"`
}

// UpdateTaskRequest is a partial patch: nil fields are left untouched. An
// assignee_id of 0 clears the assignee.
type UpdateTaskRequest struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Status      *string                 `json:"status"`
	AssigneeID  *uint                   `json:"assignee_id"`
	StartDate   *time.Time              `json:"start_date"`
	DueDate     *time.Time              `json:"due_date"`
	Deadline    *time.Time              `json:"deadline"`
	Checklist   *[]ChecklistItemRequest `json:"checklist"`
	Tags        *[]uint                 `json:"tags"`
}

type ChecklistItemResponse struct {
	ID          uint   `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"is_completed"`
}

type TaskResponse struct {
	ID          uint                    `json:"id"`
	MilestoneID uint                    `json:"milestone_id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Status      string                  `json:"status"`
	AssigneeID  *uint                   `json:"assignee_id"`
	StartDate   time.Time               `json:"start_date"`
	DueDate     time.Time               `json:"due_date"`
	Deadline    time.Time               `json:"deadline"`
	Checklist   []ChecklistItemResponse `json:"checklist"`
	Tags        []uint                  `json:"tags"`
}

func taskResponse(task models.Task) TaskResponse {
	checklist := make([]ChecklistItemResponse, 0, len(task.Checklist))
	for _, item := range task.Checklist {
		checklist = append(checklist, ChecklistItemResponse{
			ID:          item.ID,
			Text:        item.Text,
			IsCompleted: item.IsCompleted,
		})
	}

	tags := make([]uint, 0, len(task.Tags))
	for _, taskTag := range task.Tags {
		tags = append(tags, taskTag.TagID)
	}

	return TaskResponse{
		ID:          task.ID,
		MilestoneID: task.MilestoneID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		AssigneeID:  task.AssigneeID,
		StartDate:   task.StartDate,
		DueDate:     task.DueDate,
		Deadline:    task.Deadline,
		Checklist:   checklist,
		Tags:        tags,
	}
}

// milestoneProject resolves a milestone to its project for authorization.
func milestoneProject(milestoneID uint) (models.Milestone, error) {
	var milestone models.Milestone

	if err := db.DB.First(&milestone, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return milestone, fmt.Errorf("milestone %d: %w", milestoneID, apperrors.ErrNotFound)
		}
		return milestone, err
	}

	return milestone, nil
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	milestoneID, err := utils.GetMilestoneID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if body.Status == "" {
		body.Status = types.StatusToDo
	}

	if !types.ValidStatus(body.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	milestone, err := milestoneProject(milestoneID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if _, err := authz.Authorize(db.DB, userID, milestone.ProjectID, types.ActionWrite); err != nil {
		respondError(ctx, err)
		return
	}

	task := models.Task{
		MilestoneID: milestoneID,
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		AssigneeID:  body.AssigneeID,
		StartDate:   body.StartDate,
		DueDate:     body.DueDate,
		Deadline:    body.Deadline,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		for _, item := range body.Checklist {
			row := models.ChecklistItem{
				TaskID:      task.ID,
				Text:        item.Text,
				IsCompleted: item.IsCompleted,
			}

			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		for _, tagID := range body.Tags {
			row := models.TaskTag{TaskID: task.ID, TagID: tagID}

			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := db.DB.Preload("Checklist").Preload("Tags").First(&task, task.ID).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, taskResponse(task))
}

func ListTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	milestoneID, err := utils.GetMilestoneID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	milestone, err := milestoneProject(milestoneID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if _, err := authz.Authorize(db.DB, userID, milestone.ProjectID, types.ActionRead); err != nil {
		respondError(ctx, err)
		return
	}

	var tasks []models.Task

	if err := db.DB.Preload("Checklist").Preload("Tags").
		Where("milestone_id = ?", milestoneID).Find(&tasks).Error; err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, taskResponse(task))
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateTask routes the patch through taskops so the mutation and its
// activity log entry commit together, then broadcasts a board refresh.
func UpdateTask(ctx *gin.Context) {
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

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	patch := taskops.TaskPatch{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		StartDate:   body.StartDate,
		DueDate:     body.DueDate,
		Deadline:    body.Deadline,
	}

	if body.AssigneeID != nil {
		if *body.AssigneeID == 0 {
			var cleared *uint
			patch.AssigneeID = &cleared
		} else {
			assignee := *body.AssigneeID
			ref := &assignee
			patch.AssigneeID = &ref
		}
	}

	if body.Checklist != nil {
		patch.HasChecklist = true
		for _, item := range *body.Checklist {
			patch.Checklist = append(patch.Checklist, taskops.ChecklistPatch{
				Text:        item.Text,
				IsCompleted: item.IsCompleted,
			})
		}
	}

	if body.Tags != nil {
		patch.HasTags = true
		patch.TagIDs = *body.Tags
	}

	task, _, err := taskops.UpdateTask(db.DB, userID, taskID, patch)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := db.DB.Preload("Checklist").Preload("Tags").Preload("Milestone").
		First(&task, task.ID).Error; err != nil {
		respondError(ctx, err)
		return
	}

	BroadCastRefresh(strconv.FormatUint(uint64(task.Milestone.ProjectID), 10))

	ctx.JSON(http.StatusOK, taskResponse(task))
}

func DeleteTask(ctx *gin.Context) {
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

	if _, err := authz.Authorize(db.DB, userID, task.Milestone.ProjectID, types.ActionWrite); err != nil {
		respondError(ctx, err)
		return
	}

	if err := db.DB.Delete(&task).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
