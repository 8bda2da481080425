// file: internals/helpers/auth/studio_roles.go
package helper

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	programModel "dancestudio_backend/internals/features/studio/programs/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
)

/* =========================================================
   Studio roles are re-read from studio_members per request;
   the token only proves identity.
========================================================= */

// ResolveStudioRole returns RoleNone when the user is not a member.
func ResolveStudioRole(ctx context.Context, db *gorm.DB, studioID, userID uuid.UUID) (studioModel.StudioRole, error) {
	var m studioModel.StudioMemberModel
	err := db.WithContext(ctx).
		Select("role").
		Where("studio_id = ? AND user_id = ?", studioID, userID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return studioModel.RoleNone, nil
	}
	if err != nil {
		return studioModel.RoleNone, pkgerrors.Wrap(err, "resolve studio role")
	}
	role, ok := studioModel.ParseStudioRole(string(m.Role))
	if !ok {
		return studioModel.RoleNone, nil
	}
	return role, nil
}

// RequireStudioAdmin: 403 unless owner/admin.
func RequireStudioAdmin(ctx context.Context, db *gorm.DB, studioID uuid.UUID, caller Caller) error {
	role, err := ResolveStudioRole(ctx, db, studioID, caller.UserID)
	if err != nil {
		return err
	}
	if !role.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
	return nil
}

// RequireStudioMember returns the caller's role, 403 for non-members.
func RequireStudioMember(ctx context.Context, db *gorm.DB, studioID uuid.UUID, caller Caller) (studioModel.StudioRole, error) {
	role, err := ResolveStudioRole(ctx, db, studioID, caller.UserID)
	if err != nil {
		return studioModel.RoleNone, err
	}
	if !role.IsMember() {
		return studioModel.RoleNone, fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
	return role, nil
}

// RequireStudioStaff returns the caller's role, 403 unless admin or teacher.
func RequireStudioStaff(ctx context.Context, db *gorm.DB, studioID uuid.UUID, caller Caller) (studioModel.StudioRole, error) {
	role, err := ResolveStudioRole(ctx, db, studioID, caller.UserID)
	if err != nil {
		return studioModel.RoleNone, err
	}
	if !role.IsStaff() {
		return studioModel.RoleNone, fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
	return role, nil
}

func IsProgramTeacher(ctx context.Context, db *gorm.DB, programID, userID uuid.UUID) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).
		Model(&programModel.ProgramTeacherModel{}).
		Where("program_id = ? AND user_id = ?", programID, userID).
		Count(&n).Error; err != nil {
		return false, pkgerrors.Wrap(err, "check program teacher")
	}
	return n > 0, nil
}

// StudioAdminIDs lists owners and admins (notification recipients).
func StudioAdminIDs(ctx context.Context, db *gorm.DB, studioID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := db.WithContext(ctx).
		Model(&studioModel.StudioMemberModel{}).
		Where("studio_id = ? AND role IN ?", studioID, []string{string(studioModel.RoleOwner), string(studioModel.RoleAdmin)}).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list studio admins")
	}
	return ids, nil
}

// IsProgramStaff: studio admin, assigned program teacher, or the teacher of
// the given lesson (lessonTeacherID may be nil).
func IsProgramStaff(ctx context.Context, db *gorm.DB, program *programModel.ProgramModel, lessonTeacherID *uuid.UUID, userID uuid.UUID) (bool, error) {
	role, err := ResolveStudioRole(ctx, db, program.StudioID, userID)
	if err != nil {
		return false, err
	}
	if role.IsAdmin() {
		return true, nil
	}
	if lessonTeacherID != nil && *lessonTeacherID == userID {
		return true, nil
	}
	return IsProgramTeacher(ctx, db, program.ID, userID)
}
