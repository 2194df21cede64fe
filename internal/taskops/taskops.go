// Package taskops applies task mutations and writes the paired activity log
// entry. The mutation and its log row commit as one transaction: a task
// update never persists without its log, and no log survives a failed
// update.
package taskops

import (
	"errors"
	"fmt"
	"time"

	"github.com/taskhub-dev/taskhub/internal/apperrors"
	"github.com/taskhub-dev/taskhub/internal/authz"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskPatch is a partial task update. Nil fields are left untouched.
// AssigneeID distinguishes "not in patch" (nil) from "clear the assignee"
// (pointer to nil).
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	AssigneeID  **uint
	StartDate   *time.Time
	DueDate     *time.Time
	Deadline    *time.Time
	Checklist   []ChecklistPatch
	TagIDs      []uint

	// HasChecklist / HasTags mark the slices as present in the patch, so an
	// explicit empty list clears the set while an absent field keeps it.
	HasChecklist bool
	HasTags      bool
}

type ChecklistPatch struct {
	Text        string
	IsCompleted bool
}

// UpdateTask applies patch to taskID on behalf of actorID and appends the
// derived activity log entry. Exactly one Log row is written per successful
// call.
func UpdateTask(gdb *gorm.DB, actorID, taskID uint, patch TaskPatch) (models.Task, models.Log, error) {
	if err := validate(patch); err != nil {
		return models.Task{}, models.Log{}, err
	}

	var updated models.Task
	var entry models.Log

	err := gdb.Transaction(func(tx *gorm.DB) error {
		var task models.Task

		if err := tx.Preload("Milestone").First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("task %d: %w", taskID, apperrors.ErrNotFound)
			}
			return err
		}

		projectID := task.Milestone.ProjectID

		if _, err := authz.Authorize(tx, actorID, projectID, types.ActionWrite); err != nil {
			return err
		}

		before := task

		applyFields(&task, patch)

		if patch.HasChecklist {
			if err := replaceChecklist(tx, task.ID, patch.Checklist); err != nil {
				return err
			}
		}

		if patch.HasTags {
			if err := replaceTags(tx, task.ID, patch.TagIDs); err != nil {
				return err
			}
		}

		// Omit associations so the preloaded milestone is not re-saved.
		if err := tx.Omit(clause.Associations).Save(&task).Error; err != nil {
			return err
		}

		message, err := logMessage(tx, before, task)

		if err != nil {
			return err
		}

		taskRef := task.ID
		entry = models.Log{
			ProjectID: projectID,
			UserID:    actorID,
			TaskID:    &taskRef,
			Message:   message,
		}

		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		updated = task
		return nil
	})

	if err != nil {
		return models.Task{}, models.Log{}, err
	}

	return updated, entry, nil
}

func validate(patch TaskPatch) error {
	if patch.Status != nil && !types.ValidStatus(*patch.Status) {
		return fmt.Errorf("%w: status must be one of To Do, In Progress, Debt, Done", apperrors.ErrValidation)
	}

	if patch.Title != nil && *patch.Title == "" {
		return fmt.Errorf("%w: title must not be empty", apperrors.ErrValidation)
	}

	return nil
}

func applyFields(task *models.Task, patch TaskPatch) {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.AssigneeID != nil {
		task.AssigneeID = *patch.AssigneeID
	}
	if patch.StartDate != nil {
		task.StartDate = *patch.StartDate
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Deadline != nil {
		task.Deadline = *patch.Deadline
	}
}

// replaceChecklist is a full replace, not a diff: existing items are deleted
// and the patch list recreated.
func replaceChecklist(tx *gorm.DB, taskID uint, items []ChecklistPatch) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.ChecklistItem{}).Error; err != nil {
		return err
	}

	for _, item := range items {
		row := models.ChecklistItem{
			TaskID:      taskID,
			Text:        item.Text,
			IsCompleted: item.IsCompleted,
		}

		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	return nil
}

func replaceTags(tx *gorm.DB, taskID uint, tagIDs []uint) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskTag{}).Error; err != nil {
		return err
	}

	for _, tagID := range tagIDs {
		var tag models.Tag

		if err := tx.First(&tag, tagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("tag %d: %w", tagID, apperrors.ErrNotFound)
			}
			return err
		}

		row := models.TaskTag{TaskID: taskID, TagID: tagID}

		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	return nil
}

// logMessage derives the activity entry for a task change. A description
// change wins: the message is the new description text, with a second line
// naming the assignee only when the assignee also changed to a real user.
// Everything else falls back to the status form.
func logMessage(tx *gorm.DB, before, after models.Task) (string, error) {
	if after.Description != before.Description {
		message := after.Description

		if assigneeChanged(before.AssigneeID, after.AssigneeID) && after.AssigneeID != nil {
			var assignee models.User

			if err := tx.First(&assignee, *after.AssigneeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return "", fmt.Errorf("assignee %d: %w", *after.AssigneeID, apperrors.ErrNotFound)
				}
				return "", err
			}

			message += fmt.Sprintf("\nassigned to %s", assignee.Name)
		}

		return message, nil
	}

	return fmt.Sprintf("%s change status to %s", after.Title, after.Status), nil
}

func assigneeChanged(before, after *uint) bool {
	if before == nil && after == nil {
		return false
	}
	if before == nil || after == nil {
		return true
	}
	return *before != *after
}
