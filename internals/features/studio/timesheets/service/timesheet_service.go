// file: internals/features/studio/timesheets/service/timesheet_service.go
package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	compService "dancestudio_backend/internals/features/studio/compensations/service"
	payrollModel "dancestudio_backend/internals/features/studio/payrolls/model"
	"dancestudio_backend/internals/features/studio/timesheets/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/helpers/dbtime"
)

const (
	MsgDuplicatePeriod = "Timesheet already exists for this month"
	MsgNotDraft        = "Timesheet is not a draft"
	MsgPayrollExists   = "Payroll exists for this timesheet"
	MsgInvalidStatus   = "Invalid status"
)

type TimesheetService struct {
	DB     *gorm.DB
	Compat *database.SchemaCompat
	Clock  dbtime.Clock
}

func NewTimesheetService(db *gorm.DB, compat *database.SchemaCompat) *TimesheetService {
	return &TimesheetService{DB: db, Compat: compat, Clock: dbtime.SystemClock}
}

/* =========================
   Reads
========================= */

type ListFilter struct {
	Year   int
	Month  int
	Limit  int
	Offset int
}

// List: admins see every timesheet of the studio, teachers their own.
func (s *TimesheetService) List(ctx context.Context, caller helperAuth.Caller, studioID uuid.UUID, f ListFilter) ([]model.TimesheetModel, int64, error) {
	role, err := helperAuth.RequireStudioStaff(ctx, s.DB, studioID, caller)
	if err != nil {
		return nil, 0, err
	}

	q := s.DB.WithContext(ctx).Model(&model.TimesheetModel{}).Where("studio_id = ?", studioID)
	if !role.IsAdmin() {
		q = q.Where("teacher_id = ?", caller.UserID)
	}
	if f.Year > 0 {
		q = q.Where("year = ?", f.Year)
	}
	if f.Month > 0 {
		q = q.Where("month = ?", f.Month)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "count timesheets")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []model.TimesheetModel
	if err := q.Order("year DESC, month DESC").Find(&rows).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "list timesheets")
	}
	return rows, total, nil
}

// Get loads one timesheet with its entries.
func (s *TimesheetService) Get(ctx context.Context, caller helperAuth.Caller, studioID, timesheetID uuid.UUID) (*model.TimesheetModel, error) {
	ts, _, err := s.loadVisible(ctx, caller, studioID, timesheetID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).
		Where("timesheet_id = ?", ts.ID).
		Order("date ASC, created_at ASC").
		Find(&ts.Entries).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load timesheet entries")
	}
	return ts, nil
}

// loadVisible: 404 when absent from the studio, 403 unless admin or owner.
func (s *TimesheetService) loadVisible(ctx context.Context, caller helperAuth.Caller, studioID, timesheetID uuid.UUID) (*model.TimesheetModel, bool, error) {
	role, err := helperAuth.RequireStudioStaff(ctx, s.DB, studioID, caller)
	if err != nil {
		return nil, false, err
	}

	var ts model.TimesheetModel
	err = s.DB.WithContext(ctx).
		Where("id = ? AND studio_id = ?", timesheetID, studioID).
		Take(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fiber.NewError(fiber.StatusNotFound, "Timesheet not found")
	}
	if err != nil {
		return nil, false, pkgerrors.Wrap(err, "load timesheet")
	}
	if !role.IsAdmin() && ts.TeacherID != caller.UserID {
		return nil, false, fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
	return &ts, role.IsAdmin(), nil
}

/* =========================
   Create
========================= */

type CreateInput struct {
	TeacherID    *uuid.UUID
	Month        int
	Year         int
	SchoolYearID *uuid.UUID
	Notes        *string
}

// Create opens a draft. Teachers create for themselves; admins for any
// teacher of the studio.
func (s *TimesheetService) Create(ctx context.Context, caller helperAuth.Caller, studioID uuid.UUID, in CreateInput) (*model.TimesheetModel, error) {
	role, err := helperAuth.RequireStudioStaff(ctx, s.DB, studioID, caller)
	if err != nil {
		return nil, err
	}
	if in.Month < 1 || in.Month > 12 || in.Year < 1 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid month or year")
	}

	teacherID := caller.UserID
	if in.TeacherID != nil && *in.TeacherID != caller.UserID {
		if !role.IsAdmin() {
			return nil, fiber.NewError(fiber.StatusForbidden, "Forbidden")
		}
		target, err := helperAuth.ResolveStudioRole(ctx, s.DB, studioID, *in.TeacherID)
		if err != nil {
			return nil, err
		}
		if !target.IsStaff() {
			return nil, fiber.NewError(fiber.StatusBadRequest, "teacher_id is not a teacher of this studio")
		}
		teacherID = *in.TeacherID
	}

	row := model.TimesheetModel{
		StudioID:     studioID,
		TeacherID:    teacherID,
		Month:        in.Month,
		Year:         in.Year,
		Status:       model.TimesheetDraft,
		SchoolYearID: in.SchoolYearID,
		Notes:        in.Notes,
	}
	if err := s.insert(ctx, &row); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fiber.NewError(fiber.StatusConflict, MsgDuplicatePeriod)
		}
		return nil, pkgerrors.Wrap(err, "create timesheet")
	}
	log.Printf("[Timesheet] created id=%s teacher=%s %04d-%02d", row.ID, teacherID, in.Year, in.Month)
	return &row, nil
}

// insert writes the row, dropping school_year_id when the store lacks it.
func (s *TimesheetService) insert(ctx context.Context, row *model.TimesheetModel) error {
	omit := !s.Compat.SupportsColumn(database.TimesheetSchoolYearColumn)
	for attempt := 0; attempt < 2; attempt++ {
		q := s.DB.WithContext(ctx)
		if omit {
			q = q.Omit("school_year_id")
			row.SchoolYearID = nil
		}
		err := q.Create(row).Error
		if err == nil {
			return nil
		}
		if !omit && database.IsMissingColumn(err, database.TimesheetSchoolYearColumn.Name) {
			s.Compat.MarkColumnMissing(database.TimesheetSchoolYearColumn)
			omit = true
			continue
		}
		return err
	}
	return pkgerrors.New("timesheet insert retries exhausted")
}

/* =========================
   Entries (draft only)
========================= */

type EntryInput struct {
	LessonID        *uuid.UUID
	Date            time.Time
	DurationMinutes int
	LessonFee       *float64
	TransportFee    *float64
	Description     *string
}

func (s *TimesheetService) AddEntry(ctx context.Context, caller helperAuth.Caller, studioID, timesheetID uuid.UUID, in EntryInput) (*model.TimesheetEntryModel, error) {
	ts, _, err := s.loadVisible(ctx, caller, studioID, timesheetID)
	if err != nil {
		return nil, err
	}
	if ts.Status != model.TimesheetDraft {
		return nil, fiber.NewError(fiber.StatusConflict, MsgNotDraft)
	}
	if in.DurationMinutes <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "duration_minutes must be positive")
	}
	if in.Date.Year() != ts.Year || int(in.Date.Month()) != ts.Month {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Entry date is outside the timesheet month")
	}

	entry := model.TimesheetEntryModel{
		TimesheetID:     ts.ID,
		LessonID:        in.LessonID,
		Date:            dbtime.DateOnly(in.Date),
		DurationMinutes: in.DurationMinutes,
		Description:     in.Description,
	}

	if in.LessonFee == nil || in.TransportFee == nil {
		comp, err := compService.ActiveFor(ctx, s.DB, ts.StudioID, ts.TeacherID)
		if err != nil {
			return nil, err
		}
		if comp != nil {
			entry.LessonFee = round2(comp.HourlyRate * float64(in.DurationMinutes) / 60)
			entry.TransportFee = comp.TransportFee
		}
	}
	if in.LessonFee != nil {
		entry.LessonFee = *in.LessonFee
	}
	if in.TransportFee != nil {
		entry.TransportFee = *in.TransportFee
	}

	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "create timesheet entry")
	}
	return &entry, nil
}

func (s *TimesheetService) DeleteEntry(ctx context.Context, caller helperAuth.Caller, studioID, timesheetID, entryID uuid.UUID) error {
	ts, _, err := s.loadVisible(ctx, caller, studioID, timesheetID)
	if err != nil {
		return err
	}
	if ts.Status != model.TimesheetDraft {
		return fiber.NewError(fiber.StatusConflict, MsgNotDraft)
	}

	res := s.DB.WithContext(ctx).
		Where("id = ? AND timesheet_id = ?", entryID, ts.ID).
		Delete(&model.TimesheetEntryModel{})
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "delete timesheet entry")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Entry not found")
	}
	return nil
}

/* =========================
   Status / delete
========================= */

// UpdateStatus moves a timesheet between draft and confirmed. Only admins
// confirm; a timesheet with a payroll cannot go back to draft.
func (s *TimesheetService) UpdateStatus(ctx context.Context, caller helperAuth.Caller, studioID, timesheetID uuid.UUID, raw string) (*model.TimesheetModel, error) {
	status, ok := model.ParseTimesheetStatus(raw)
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, MsgInvalidStatus)
	}
	ts, isAdmin, err := s.loadVisible(ctx, caller, studioID, timesheetID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
	if ts.Status == status {
		return ts, nil
	}

	updates := map[string]interface{}{"status": status}
	switch status {
	case model.TimesheetConfirmed:
		now := s.Clock()
		updates["confirmed_at"] = now
		updates["confirmed_by"] = caller.UserID
	case model.TimesheetDraft:
		has, err := s.hasPayroll(ctx, s.DB, ts.ID)
		if err != nil {
			return nil, err
		}
		if has {
			return nil, fiber.NewError(fiber.StatusConflict, MsgPayrollExists)
		}
		updates["confirmed_at"] = nil
		updates["confirmed_by"] = nil
	}

	if err := s.DB.WithContext(ctx).Model(ts).Updates(updates).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "update timesheet status")
	}
	log.Printf("[Timesheet] id=%s status=%s by=%s", ts.ID, status, caller.UserID)

	var fresh model.TimesheetModel
	if err := s.DB.WithContext(ctx).Where("id = ?", ts.ID).Take(&fresh).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "reload timesheet")
	}
	return &fresh, nil
}

// Delete removes a timesheet and its entries unless a payroll references it.
func (s *TimesheetService) Delete(ctx context.Context, caller helperAuth.Caller, studioID, timesheetID uuid.UUID) error {
	ts, isAdmin, err := s.loadVisible(ctx, caller, studioID, timesheetID)
	if err != nil {
		return err
	}
	if !isAdmin && ts.Status != model.TimesheetDraft {
		return fiber.NewError(fiber.StatusConflict, MsgNotDraft)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		has, err := s.hasPayroll(ctx, tx, ts.ID)
		if err != nil {
			return err
		}
		if has {
			return fiber.NewError(fiber.StatusConflict, MsgPayrollExists)
		}
		if err := tx.Where("timesheet_id = ?", ts.ID).Delete(&model.TimesheetEntryModel{}).Error; err != nil {
			return pkgerrors.Wrap(err, "delete timesheet entries")
		}
		if err := tx.Delete(&model.TimesheetModel{}, "id = ?", ts.ID).Error; err != nil {
			return pkgerrors.Wrap(err, "delete timesheet")
		}
		return nil
	})
}

func (s *TimesheetService) hasPayroll(ctx context.Context, db *gorm.DB, timesheetID uuid.UUID) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).
		Model(&payrollModel.PayrollModel{}).
		Where("timesheet_id = ?", timesheetID).
		Count(&n).Error; err != nil {
		return false, pkgerrors.Wrap(err, "check payroll")
	}
	return n > 0, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
