// file: internals/features/studio/payrolls/service/payroll_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	compModel "dancestudio_backend/internals/features/studio/compensations/model"
	compService "dancestudio_backend/internals/features/studio/compensations/service"
	"dancestudio_backend/internals/features/studio/payrolls/model"
	tsModel "dancestudio_backend/internals/features/studio/timesheets/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/helpers/dbtime"
	"dancestudio_backend/internals/services/notifications"
)

const (
	MsgTimesheetNotConfirmed = "Timesheet must be confirmed"
	MsgMissingTimesheetID    = "Missing timesheet_id"
)

type PayrollService struct {
	DB       *gorm.DB
	Compat   *database.SchemaCompat
	Notifier notifications.Notifier
	Clock    dbtime.Clock
}

func NewPayrollService(db *gorm.DB, compat *database.SchemaCompat, notifier notifications.Notifier) *PayrollService {
	if notifier == nil {
		notifier = notifications.Noop{}
	}
	return &PayrollService{DB: db, Compat: compat, Notifier: notifier, Clock: dbtime.SystemClock}
}

// Create derives the payroll of a confirmed timesheet. created is false when
// a payroll already existed and is returned unchanged.
func (s *PayrollService) Create(ctx context.Context, caller helperAuth.Caller, studioID, timesheetID uuid.UUID) (*model.PayrollModel, bool, error) {
	if timesheetID == uuid.Nil {
		return nil, false, fiber.NewError(fiber.StatusBadRequest, MsgMissingTimesheetID)
	}
	if err := helperAuth.RequireStudioAdmin(ctx, s.DB, studioID, caller); err != nil {
		return nil, false, err
	}

	if existing, err := s.findByTimesheet(ctx, studioID, timesheetID); err != nil || existing != nil {
		return existing, false, err
	}

	var ts tsModel.TimesheetModel
	err := s.DB.WithContext(ctx).
		Where("id = ? AND studio_id = ?", timesheetID, studioID).
		Take(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fiber.NewError(fiber.StatusNotFound, "Timesheet not found")
	}
	if err != nil {
		return nil, false, pkgerrors.Wrap(err, "load timesheet")
	}
	if ts.Status != tsModel.TimesheetConfirmed {
		return nil, false, fiber.NewError(fiber.StatusConflict, MsgTimesheetNotConfirmed)
	}

	var entries []tsModel.TimesheetEntryModel
	if err := s.DB.WithContext(ctx).Where("timesheet_id = ?", ts.ID).Find(&entries).Error; err != nil {
		return nil, false, pkgerrors.Wrap(err, "load timesheet entries")
	}
	totals := ComputeTotals(entries)

	method := compModel.DefaultPaymentMethod
	comp, err := compService.ActiveFor(ctx, s.DB, studioID, ts.TeacherID)
	if err != nil {
		return nil, false, err
	}
	if comp != nil && comp.PaymentMethod.Valid() {
		method = comp.PaymentMethod
	}

	createdBy := caller.UserID
	row := model.PayrollModel{
		StudioID:           studioID,
		TeacherID:          ts.TeacherID,
		TimesheetID:        ts.ID,
		Month:              ts.Month,
		Year:               ts.Year,
		SchoolYearID:       ts.SchoolYearID,
		TotalLessons:       totals.Lessons,
		TotalHours:         totals.Hours,
		TotalLessonFees:    totals.LessonFees,
		TotalTransportFees: totals.TransportFees,
		TotalAmount:        totals.Amount,
		PaymentMethod:      method,
		Status:             model.PayrollPending,
		CreatedBy:          &createdBy,
	}

	if err := s.insert(ctx, &row); err != nil {
		if database.IsUniqueViolationOn(err, payrollTimesheetKey) {
			existing, ferr := s.findByTimesheet(ctx, studioID, timesheetID)
			if ferr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, pkgerrors.Wrap(err, "insert payroll")
	}
	log.Printf("[Payroll] created id=%s timesheet=%s amount=%.2f method=%s", row.ID, ts.ID, row.TotalAmount, method)

	s.Notifier.Notify(ctx, []uuid.UUID{row.TeacherID},
		notifications.KindPayrollCreated,
		"Payroll created",
		fmt.Sprintf("Your payroll for %02d/%04d has been created (%.2f).", row.Month, row.Year, row.TotalAmount),
		"/payrolls/"+row.ID.String(),
	)
	return &row, true, nil
}

var payrollTimesheetKey = database.UniqueKey{
	Table:      "payrolls",
	Constraint: "payrolls_timesheet_id_key",
	Columns:    []string{"timesheet_id"},
}

// insert writes the row, dropping school_year_id when the store lacks it.
func (s *PayrollService) insert(ctx context.Context, row *model.PayrollModel) error {
	omit := !s.Compat.SupportsColumn(database.PayrollSchoolYearColumn)
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
		if !omit && database.IsMissingColumn(err, database.PayrollSchoolYearColumn.Name) {
			s.Compat.MarkColumnMissing(database.PayrollSchoolYearColumn)
			omit = true
			continue
		}
		return err
	}
	return pkgerrors.New("payroll insert retries exhausted")
}

// findByTimesheet only sees payrolls of studioID; another studio's payroll
// reads as absent.
func (s *PayrollService) findByTimesheet(ctx context.Context, studioID, timesheetID uuid.UUID) (*model.PayrollModel, error) {
	var row model.PayrollModel
	q := s.DB.WithContext(ctx).Where("timesheet_id = ? AND studio_id = ?", timesheetID, studioID)
	if !s.Compat.SupportsColumn(database.PayrollSchoolYearColumn) {
		q = q.Omit("school_year_id")
	}
	err := q.Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load payroll")
	}
	return &row, nil
}

type ListFilter struct {
	Year   int
	Month  int
	Limit  int
	Offset int
}

// List: admins see the studio's payrolls, teachers their own. total counts
// every matching row regardless of Limit.
func (s *PayrollService) List(ctx context.Context, caller helperAuth.Caller, studioID uuid.UUID, f ListFilter) ([]model.PayrollModel, int64, error) {
	role, err := helperAuth.RequireStudioStaff(ctx, s.DB, studioID, caller)
	if err != nil {
		return nil, 0, err
	}

	q := s.DB.WithContext(ctx).Model(&model.PayrollModel{}).Where("studio_id = ?", studioID)
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
		return nil, 0, pkgerrors.Wrap(err, "count payrolls")
	}

	if !s.Compat.SupportsColumn(database.PayrollSchoolYearColumn) {
		q = q.Omit("school_year_id")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var rows []model.PayrollModel
	if err := q.Order("year DESC, month DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "list payrolls")
	}
	return rows, total, nil
}

// UpdateStatus marks a payroll paid (stamping paid_at) or back to pending.
func (s *PayrollService) UpdateStatus(ctx context.Context, caller helperAuth.Caller, studioID, payrollID uuid.UUID, raw string) (*model.PayrollModel, error) {
	status, ok := model.ParsePayrollStatus(raw)
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid status")
	}
	if err := helperAuth.RequireStudioAdmin(ctx, s.DB, studioID, caller); err != nil {
		return nil, err
	}

	var row model.PayrollModel
	q := s.DB.WithContext(ctx).Where("id = ? AND studio_id = ?", payrollID, studioID)
	if !s.Compat.SupportsColumn(database.PayrollSchoolYearColumn) {
		q = q.Omit("school_year_id")
	}
	err := q.Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Payroll not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load payroll")
	}
	if row.Status == status {
		return &row, nil
	}

	var paidAt *time.Time
	if status == model.PayrollPaid {
		now := s.Clock()
		paidAt = &now
	}
	if err := s.DB.WithContext(ctx).Model(&model.PayrollModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{"status": status, "paid_at": paidAt}).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "update payroll")
	}
	row.Status = status
	row.PaidAt = paidAt

	if status == model.PayrollPaid {
		s.Notifier.Notify(ctx, []uuid.UUID{row.TeacherID},
			notifications.KindPayrollPaid,
			"Payroll paid",
			fmt.Sprintf("Your payroll for %02d/%04d has been paid.", row.Month, row.Year),
			"/payrolls/"+row.ID.String(),
		)
	}
	log.Printf("[Payroll] id=%s status=%s by=%s", row.ID, status, caller.UserID)
	return &row, nil
}
