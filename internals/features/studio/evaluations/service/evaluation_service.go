// file: internals/features/studio/evaluations/service/evaluation_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
	"dancestudio_backend/internals/features/studio/evaluations/model"
	programModel "dancestudio_backend/internals/features/studio/programs/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

const (
	MsgEvaluationsDisabled = "Evaluations are disabled for this studio"
	MsgNotVisible          = "Evaluations are not visible to students"
	MsgNotEditable         = "Teachers cannot edit evaluations in this studio"
)

type EvaluationService struct {
	DB *gorm.DB
}

func NewEvaluationService(db *gorm.DB) *EvaluationService {
	return &EvaluationService{DB: db}
}

/* =========================
   Settings
========================= */

// LoadSettings returns the stored row or the defaults.
func LoadSettings(ctx context.Context, db *gorm.DB, studioID uuid.UUID) (model.EvaluationSettingsModel, error) {
	var row model.EvaluationSettingsModel
	err := db.WithContext(ctx).Where("studio_id = ?", studioID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultEvaluationSettings(studioID), nil
	}
	if err != nil {
		return row, pkgerrors.Wrap(err, "load evaluation settings")
	}
	return row, nil
}

func (s *EvaluationService) GetSettings(ctx context.Context, caller helperAuth.Caller, studioID uuid.UUID) (model.EvaluationSettingsModel, error) {
	if _, err := helperAuth.RequireStudioMember(ctx, s.DB, studioID, caller); err != nil {
		return model.EvaluationSettingsModel{}, err
	}
	return LoadSettings(ctx, s.DB, studioID)
}

type SettingsInput struct {
	Enabled            *bool
	VisibleToStudents  *bool
	EditableByTeachers *bool
	Criteria           *[]string
}

// UpdateSettings merges the given fields over the current settings.
func (s *EvaluationService) UpdateSettings(ctx context.Context, caller helperAuth.Caller, studioID uuid.UUID, in SettingsInput) (model.EvaluationSettingsModel, error) {
	if err := helperAuth.RequireStudioAdmin(ctx, s.DB, studioID, caller); err != nil {
		return model.EvaluationSettingsModel{}, err
	}
	cur, err := LoadSettings(ctx, s.DB, studioID)
	if err != nil {
		return cur, err
	}

	if in.Enabled != nil {
		cur.Enabled = *in.Enabled
	}
	if in.VisibleToStudents != nil {
		cur.VisibleToStudents = *in.VisibleToStudents
	}
	if in.EditableByTeachers != nil {
		cur.EditableByTeachers = *in.EditableByTeachers
	}
	if in.Criteria != nil {
		labels := cleanLabels(*in.Criteria)
		raw, err := json.Marshal(labels)
		if err != nil {
			return cur, pkgerrors.Wrap(err, "encode criteria")
		}
		cur.Criteria = datatypes.JSON(raw)
	}

	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "studio_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "visible_to_students", "editable_by_teachers", "criteria", "updated_at"}),
		}).
		Create(&cur).Error; err != nil {
		return cur, pkgerrors.Wrap(err, "save evaluation settings")
	}
	log.Printf("[Evaluation] settings studio=%s enabled=%v visible=%v editable=%v", studioID, cur.Enabled, cur.VisibleToStudents, cur.EditableByTeachers)
	return cur, nil
}

// cleanLabels trims, drops blanks and keeps the first of duplicate labels.
func cleanLabels(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, l := range in {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

/* =========================
   Evaluations
========================= */

type ListFilter struct {
	ProgramID    *uuid.UUID
	EnrollmentID *uuid.UUID
	Period       string
}

// List: admins see every evaluation, teachers those of programs they teach,
// students their own published ones when the studio shows them.
func (s *EvaluationService) List(ctx context.Context, caller helperAuth.Caller, studioID uuid.UUID, f ListFilter) ([]model.EvaluationModel, error) {
	role, err := helperAuth.RequireStudioMember(ctx, s.DB, studioID, caller)
	if err != nil {
		return nil, err
	}
	settings, err := LoadSettings(ctx, s.DB, studioID)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled {
		return nil, fiber.NewError(fiber.StatusForbidden, MsgEvaluationsDisabled)
	}

	q := s.DB.WithContext(ctx).Where("studio_id = ?", studioID)
	switch {
	case role.IsAdmin():
	case role.IsStaff():
		taught := s.DB.Model(&programModel.ProgramTeacherModel{}).
			Select("program_id").
			Where("user_id = ?", caller.UserID)
		q = q.Where("(program_id IN (?) OR teacher_id = ?)", taught, caller.UserID)
	default:
		if !settings.VisibleToStudents {
			return nil, fiber.NewError(fiber.StatusForbidden, MsgNotVisible)
		}
		q = q.Where("user_id = ? AND is_published = ?", caller.UserID, true)
	}

	if f.ProgramID != nil {
		q = q.Where("program_id = ?", *f.ProgramID)
	}
	if f.EnrollmentID != nil {
		q = q.Where("enrollment_id = ?", *f.EnrollmentID)
	}
	if p := strings.TrimSpace(f.Period); p != "" {
		q = q.Where("period = ?", p)
	}

	var rows []model.EvaluationModel
	if err := q.Order("period DESC, updated_at DESC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list evaluations")
	}
	return rows, nil
}

type UpsertInput struct {
	EnrollmentID uuid.UUID
	Period       string
	Scores       json.RawMessage
	Comment      *string
	IsPublished  *bool
}

// Upsert writes the evaluation of one enrollment for one period.
func (s *EvaluationService) Upsert(ctx context.Context, caller helperAuth.Caller, studioID uuid.UUID, in UpsertInput) (*model.EvaluationModel, error) {
	role, err := helperAuth.RequireStudioStaff(ctx, s.DB, studioID, caller)
	if err != nil {
		return nil, err
	}
	settings, err := LoadSettings(ctx, s.DB, studioID)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled {
		return nil, fiber.NewError(fiber.StatusForbidden, MsgEvaluationsDisabled)
	}

	period := strings.TrimSpace(in.Period)
	if period == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Missing period")
	}

	var enr enrollModel.EnrollmentModel
	err = s.DB.WithContext(ctx).
		Where("id = ? AND studio_id = ?", in.EnrollmentID, studioID).
		Take(&enr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Enrollment not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load enrollment")
	}

	if !role.IsAdmin() {
		if !settings.EditableByTeachers {
			return nil, fiber.NewError(fiber.StatusForbidden, MsgNotEditable)
		}
		assigned, err := helperAuth.IsProgramTeacher(ctx, s.DB, enr.ProgramID, caller.UserID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, fiber.NewError(fiber.StatusForbidden, "Forbidden")
		}
	}

	scores, err := normalizeScores(in.Scores, settings.CriteriaLabels())
	if err != nil {
		return nil, err
	}

	teacherID := caller.UserID
	row := model.EvaluationModel{
		StudioID:     studioID,
		ProgramID:    enr.ProgramID,
		EnrollmentID: enr.ID,
		UserID:       enr.UserID,
		TeacherID:    &teacherID,
		Period:       period,
		Scores:       scores,
		Comment:      in.Comment,
	}
	update := []string{"scores", "comment", "teacher_id", "updated_at"}
	if in.IsPublished != nil {
		row.IsPublished = *in.IsPublished
		update = append(update, "is_published")
	}

	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "period"}},
			DoUpdates: clause.AssignmentColumns(update),
		}).
		Create(&row).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "upsert evaluation")
	}

	var saved model.EvaluationModel
	if err := s.DB.WithContext(ctx).
		Where("enrollment_id = ? AND period = ?", enr.ID, period).
		Take(&saved).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "reload evaluation")
	}
	return &saved, nil
}

// normalizeScores accepts a JSON object; with criteria configured, every key
// must be one of them.
func normalizeScores(raw json.RawMessage, criteria []string) (datatypes.JSON, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return datatypes.JSON("{}"), nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "scores must be an object")
	}
	if len(criteria) > 0 {
		allowed := make(map[string]struct{}, len(criteria))
		for _, c := range criteria {
			allowed[c] = struct{}{}
		}
		for k := range obj {
			if _, ok := allowed[k]; !ok {
				return nil, fiber.NewError(fiber.StatusBadRequest, "Unknown criterion: "+k)
			}
		}
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encode scores")
	}
	return datatypes.JSON(out), nil
}
