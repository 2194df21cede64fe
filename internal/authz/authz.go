// Package authz evaluates per-project roles and gates every project-scoped
// operation. The project owner is always treated as admin, even without an
// explicit permission row, so a freshly created project is administrable
// before any grant happens.
package authz

import (
	"errors"
	"fmt"

	"github.com/taskhub-dev/taskhub/internal/apperrors"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EffectiveRole returns the role userID holds on projectID. Absence of a
// permission row means RoleNone unless the user owns the project.
func EffectiveRole(gdb *gorm.DB, userID, projectID uint) (types.Role, error) {
	var project models.Project

	if err := gdb.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.RoleNone, fmt.Errorf("project %d: %w", projectID, apperrors.ErrNotFound)
		}
		return types.RoleNone, err
	}

	if project.OwnerID == userID {
		return types.RoleAdmin, nil
	}

	var permission models.ProjectPermission

	err := gdb.Where("project_id = ? AND user_id = ?", projectID, userID).First(&permission).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.RoleNone, nil
	}

	if err != nil {
		return types.RoleNone, err
	}

	return types.Role(permission.Role), nil
}

// Authorize checks that userID may perform action on projectID and returns
// the effective role. A failed check is apperrors.ErrPermissionDenied, which
// callers treat as terminal.
func Authorize(gdb *gorm.DB, userID, projectID uint, action types.Action) (types.Role, error) {
	role, err := EffectiveRole(gdb, userID, projectID)

	if err != nil {
		return types.RoleNone, err
	}

	if !allows(role, action) {
		return role, fmt.Errorf("user %d may not %s project %d: %w", userID, action, projectID, apperrors.ErrPermissionDenied)
	}

	return role, nil
}

func allows(role types.Role, action types.Action) bool {
	switch action {
	case types.ActionRead:
		return role != types.RoleNone
	case types.ActionWrite:
		return role == types.RoleEditor || role == types.RoleAdmin
	case types.ActionAdminister:
		return role == types.RoleAdmin
	}
	return false
}

// VisibleProjects lists every project userID can at least read: owned
// projects plus any with a permission row. Listing filters rather than
// denying.
func VisibleProjects(gdb *gorm.DB, userID uint) ([]models.Project, error) {
	var projects []models.Project

	err := gdb.
		Distinct("projects.*").
		Joins("LEFT JOIN project_permissions ON project_permissions.project_id = projects.id AND project_permissions.user_id = ? AND project_permissions.deleted_at IS NULL", userID).
		Where("projects.owner_id = ? OR project_permissions.id IS NOT NULL", userID).
		Find(&projects).Error

	if err != nil {
		return nil, err
	}

	return projects, nil
}

// Grant upserts the (project, user) permission row to role. The actor needs
// administer on the project. Granting twice for the same pair leaves exactly
// one row.
func Grant(gdb *gorm.DB, actorID, projectID, userID uint, role types.Role) error {
	if !types.ValidRole(string(role)) {
		return fmt.Errorf("%w: role must be viewer, editor or admin", apperrors.ErrValidation)
	}

	if _, err := Authorize(gdb, actorID, projectID, types.ActionAdminister); err != nil {
		return err
	}

	var user models.User

	if err := gdb.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
		}
		return err
	}

	permission := models.ProjectPermission{
		ProjectID: projectID,
		UserID:    userID,
		Role:      string(role),
	}

	// deleted_at is reset so a revoked pair can be granted again through the
	// same unique index.
	return gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"role": string(role), "deleted_at": nil}),
	}).Create(&permission).Error
}

// Revoke removes the permission row for (project, user). The owner keeps
// implicit admin regardless.
func Revoke(gdb *gorm.DB, actorID, projectID, userID uint) error {
	if _, err := Authorize(gdb, actorID, projectID, types.ActionAdminister); err != nil {
		return err
	}

	return gdb.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectPermission{}).Error
}
