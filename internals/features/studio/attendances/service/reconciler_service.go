// file: internals/features/studio/attendances/service/reconciler_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dancestudio_backend/internals/configs"
	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/features/studio/attendances/dto"
	"dancestudio_backend/internals/features/studio/attendances/model"
	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
	programModel "dancestudio_backend/internals/features/studio/programs/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/helpers/dbtime"
)

const (
	MsgMissingEnrollment = "Missing enrollment_id"
	maxBulkRows          = 1000
)

type ReconcilerService struct {
	DB         *gorm.DB
	Compat     *database.SchemaCompat
	Clock      dbtime.Clock
	WindowDays int
}

func NewReconcilerService(db *gorm.DB, compat *database.SchemaCompat) *ReconcilerService {
	return &ReconcilerService{
		DB:         db,
		Compat:     compat,
		Clock:      dbtime.SystemClock,
		WindowDays: configs.AttendanceWindowDays(),
	}
}

func (s *ReconcilerService) windowMessage() string {
	return fmt.Sprintf("Attendance can only be recorded within %d days of the lesson date", s.WindowDays)
}

/* =========================================================
   Bulk upsert
========================================================= */

// parsed is one validated input row.
type parsed struct {
	lessonID     uuid.UUID
	userID       uuid.UUID
	enrollmentID *uuid.UUID
	status       model.AttendanceStatus
	note         *string
}

// record is one row to write, unique by (lesson, enrollment).
type record struct {
	lessonID     uuid.UUID
	enrollmentID uuid.UUID
	userID       uuid.UUID
	status       model.AttendanceStatus
	note         *string
	schoolYearID *uuid.UUID
}

type lessonCtx struct {
	lesson  programModel.LessonModel
	program programModel.ProgramModel
}

// BulkUpsert validates, authorizes and resolves every row first; any failure
// aborts the batch before a single write.
func (s *ReconcilerService) BulkUpsert(ctx context.Context, caller helperAuth.Caller, rows []dto.AttendanceRowRequest) (int, error) {
	if len(rows) == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "No attendance rows")
	}
	if len(rows) > maxBulkRows {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("At most %d rows per request", maxBulkRows))
	}

	// 1) shape
	in := make([]parsed, 0, len(rows))
	for i, r := range rows {
		p, err := parseRow(r)
		if err != nil {
			return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Row %d: %s", i+1, err.Error()))
		}
		in = append(in, p)
	}

	// 2) lessons + authorization
	lessons, err := s.loadLessons(ctx, in)
	if err != nil {
		return 0, err
	}
	if err := s.authorize(ctx, caller, lessons); err != nil {
		return 0, err
	}

	// 3) enrollment resolution
	recs, err := s.resolve(ctx, in, lessons)
	if err != nil {
		return 0, err
	}

	// 4) dedup, last write wins per field
	recs = dedupByEnrollment(recs)

	// 5) write with fallbacks
	if err := s.write(ctx, caller, recs); err != nil {
		return 0, err
	}
	log.Printf("[Attendance] upserted=%d lessons=%d by=%s", len(recs), len(lessons), caller.UserID)
	return len(recs), nil
}

func parseRow(r dto.AttendanceRowRequest) (parsed, error) {
	var p parsed
	if strings.TrimSpace(r.LessonID) == "" {
		return p, fmt.Errorf("lesson_id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return p, fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(r.Status) == "" {
		return p, fmt.Errorf("status is required")
	}
	lid, err := uuid.Parse(strings.TrimSpace(r.LessonID))
	if err != nil {
		return p, fmt.Errorf("invalid lesson_id")
	}
	uid, err := uuid.Parse(strings.TrimSpace(r.UserID))
	if err != nil {
		return p, fmt.Errorf("invalid user_id")
	}
	st, ok := model.ParseAttendanceStatus(r.Status)
	if !ok {
		return p, fmt.Errorf("invalid status %q", r.Status)
	}
	p = parsed{lessonID: lid, userID: uid, status: st, note: r.Note}
	if r.EnrollmentID != nil && strings.TrimSpace(*r.EnrollmentID) != "" {
		eid, err := uuid.Parse(strings.TrimSpace(*r.EnrollmentID))
		if err != nil {
			return p, fmt.Errorf("invalid enrollment_id")
		}
		p.enrollmentID = &eid
	}
	return p, nil
}

func (s *ReconcilerService) loadLessons(ctx context.Context, in []parsed) (map[uuid.UUID]*lessonCtx, error) {
	ids := make([]uuid.UUID, 0)
	seen := map[uuid.UUID]struct{}{}
	for _, p := range in {
		if _, ok := seen[p.lessonID]; !ok {
			seen[p.lessonID] = struct{}{}
			ids = append(ids, p.lessonID)
		}
	}

	var lessons []programModel.LessonModel
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&lessons).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load lessons")
	}
	if len(lessons) != len(ids) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Lesson not found")
	}

	programIDs := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		programIDs = append(programIDs, l.ProgramID)
	}
	var programs []programModel.ProgramModel
	if err := s.DB.WithContext(ctx).Where("id IN ?", programIDs).Find(&programs).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load programs")
	}
	byProgram := make(map[uuid.UUID]programModel.ProgramModel, len(programs))
	for _, p := range programs {
		byProgram[p.ID] = p
	}

	out := make(map[uuid.UUID]*lessonCtx, len(lessons))
	for _, l := range lessons {
		prog, ok := byProgram[l.ProgramID]
		if !ok {
			return nil, fiber.NewError(fiber.StatusNotFound, "Program not found")
		}
		out[l.ID] = &lessonCtx{lesson: l, program: prog}
	}
	return out, nil
}

// authorize: studio admins always; the program's or lesson's teacher only
// within the edit window.
func (s *ReconcilerService) authorize(ctx context.Context, caller helperAuth.Caller, lessons map[uuid.UUID]*lessonCtx) error {
	roles := map[uuid.UUID]studioModel.StudioRole{}
	now := s.Clock()

	for _, lc := range lessons {
		role, ok := roles[lc.program.StudioID]
		if !ok {
			r, err := helperAuth.ResolveStudioRole(ctx, s.DB, lc.program.StudioID, caller.UserID)
			if err != nil {
				return err
			}
			role, roles[lc.program.StudioID] = r, r
		}
		if role.IsAdmin() {
			continue
		}

		allowed, err := s.isLessonTeacher(ctx, caller.UserID, lc)
		if err != nil {
			return err
		}
		if !allowed {
			return fiber.NewError(fiber.StatusForbidden, "Forbidden")
		}

		days := dbtime.DaysSince(lc.lesson.Date, now)
		if days < 0 || days > s.WindowDays {
			return fiber.NewError(fiber.StatusForbidden, s.windowMessage())
		}
	}
	return nil
}

func (s *ReconcilerService) isLessonTeacher(ctx context.Context, userID uuid.UUID, lc *lessonCtx) (bool, error) {
	if lc.lesson.TeacherID != nil && *lc.lesson.TeacherID == userID {
		return true, nil
	}
	return helperAuth.IsProgramTeacher(ctx, s.DB, lc.program.ID, userID)
}

func (s *ReconcilerService) resolve(ctx context.Context, in []parsed, lessons map[uuid.UUID]*lessonCtx) ([]record, error) {
	programIDs := map[uuid.UUID]struct{}{}
	userIDs := map[uuid.UUID]struct{}{}
	explicit := map[uuid.UUID]struct{}{}
	for _, p := range in {
		programIDs[lessons[p.lessonID].program.ID] = struct{}{}
		userIDs[p.userID] = struct{}{}
		if p.enrollmentID != nil {
			explicit[*p.enrollmentID] = struct{}{}
		}
	}

	var enrollments []enrollModel.EnrollmentModel
	q := s.DB.WithContext(ctx)
	if len(explicit) > 0 {
		q = q.Where("(program_id IN ? AND user_id IN ? AND status <> ?) OR id IN ?",
			keys(programIDs), keys(userIDs), enrollModel.EnrollmentCancelled, keys(explicit))
	} else {
		q = q.Where("program_id IN ? AND user_id IN ? AND status <> ?",
			keys(programIDs), keys(userIDs), enrollModel.EnrollmentCancelled)
	}
	if err := q.Find(&enrollments).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load enrollments")
	}

	byID := make(map[uuid.UUID]*enrollModel.EnrollmentModel, len(enrollments))
	type holderKey struct{ program, user uuid.UUID }
	byHolder := map[holderKey][]*enrollModel.EnrollmentModel{}
	for i := range enrollments {
		e := &enrollments[i]
		byID[e.ID] = e
		if e.Status != enrollModel.EnrollmentCancelled {
			k := holderKey{e.ProgramID, e.UserID}
			byHolder[k] = append(byHolder[k], e)
		}
	}

	out := make([]record, 0, len(in))
	for i, p := range in {
		lc := lessons[p.lessonID]
		var eid uuid.UUID

		if p.enrollmentID != nil {
			e, ok := byID[*p.enrollmentID]
			if !ok || e.ProgramID != lc.program.ID || e.UserID != p.userID {
				return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Row %d: invalid enrollment_id", i+1))
			}
			eid = e.ID
		} else {
			e := pickEnrollment(byHolder[holderKey{lc.program.ID, p.userID}])
			if e == nil {
				return nil, fiber.NewError(fiber.StatusBadRequest, MsgMissingEnrollment)
			}
			eid = e.ID
		}

		out = append(out, record{
			lessonID:     p.lessonID,
			enrollmentID: eid,
			userID:       p.userID,
			status:       p.status,
			note:         p.note,
			schoolYearID: lc.lesson.SchoolYearID,
		})
	}
	return out, nil
}

// pickEnrollment: a single match wins; among several, the one without a
// sub-profile; otherwise none.
func pickEnrollment(list []*enrollModel.EnrollmentModel) *enrollModel.EnrollmentModel {
	if len(list) == 1 {
		return list[0]
	}
	var main *enrollModel.EnrollmentModel
	for _, e := range list {
		if e.SubProfileID == nil {
			if main != nil {
				return nil
			}
			main = e
		}
	}
	return main
}

func dedupByEnrollment(recs []record) []record {
	type key struct{ lesson, enrollment uuid.UUID }
	idx := map[key]int{}
	out := make([]record, 0, len(recs))
	for _, r := range recs {
		k := key{r.lessonID, r.enrollmentID}
		if i, ok := idx[k]; ok {
			out[i] = mergeRecord(out[i], r)
			continue
		}
		idx[k] = len(out)
		out = append(out, r)
	}
	return out
}

// dedupByUser re-keys a batch for the legacy (lesson_id, user_id) key.
func dedupByUser(recs []record) []record {
	type key struct{ lesson, user uuid.UUID }
	idx := map[key]int{}
	out := make([]record, 0, len(recs))
	for _, r := range recs {
		k := key{r.lessonID, r.userID}
		if i, ok := idx[k]; ok {
			out[i] = mergeRecord(out[i], r)
			continue
		}
		idx[k] = len(out)
		out = append(out, r)
	}
	return out
}

// mergeRecord applies next over prev; fields next leaves empty keep prev.
func mergeRecord(prev, next record) record {
	merged := next
	if next.note == nil {
		merged.note = prev.note
	}
	if next.schoolYearID == nil {
		merged.schoolYearID = prev.schoolYearID
	}
	return merged
}

/* =========================================================
   Write + fallback chain
========================================================= */

type writeShape struct {
	key        database.UniqueKey
	schoolYear bool
}

func (s *ReconcilerService) write(ctx context.Context, caller helperAuth.Caller, recs []record) error {
	shape := writeShape{
		key:        database.AttendanceEnrollmentKey,
		schoolYear: s.Compat.SupportsColumn(database.AttendanceSchoolYearColumn),
	}
	if !s.Compat.ConflictKeyAvailable(database.AttendanceEnrollmentKey) {
		shape.key = database.AttendanceLegacyKey
	}

	// each step removes one capability, so the chain ends after three retries
	for attempt := 0; attempt < 4; attempt++ {
		batch := recs
		if shape.key.Constraint == database.AttendanceLegacyKey.Constraint {
			batch = dedupByUser(recs)
		}

		err := s.upsert(ctx, caller, batch, shape)
		switch {
		case err == nil:
			return nil

		case shape.schoolYear && database.IsMissingColumn(err, database.AttendanceSchoolYearColumn.Name):
			s.Compat.MarkColumnMissing(database.AttendanceSchoolYearColumn)
			shape.schoolYear = false

		case shape.key.Constraint == database.AttendanceEnrollmentKey.Constraint && database.IsMissingConflictTarget(err):
			s.Compat.MarkConflictKeyMissing(database.AttendanceEnrollmentKey)
			shape.key = database.AttendanceLegacyKey

		case shape.key.Constraint == database.AttendanceEnrollmentKey.Constraint && database.IsUniqueViolationOn(err, database.AttendanceLegacyKey):
			log.Printf("[Attendance] legacy key %s still enforced, re-keying batch", database.AttendanceLegacyKey.Constraint)
			shape.key = database.AttendanceLegacyKey

		default:
			return pkgerrors.Wrap(err, "upsert attendance")
		}
	}
	return pkgerrors.New("upsert attendance: fallback chain exhausted")
}

func (s *ReconcilerService) upsert(ctx context.Context, caller helperAuth.Caller, recs []record, shape writeShape) error {
	now := time.Now().UTC()
	markedBy := caller.UserID

	rows := make([]map[string]interface{}, 0, len(recs))
	for _, r := range recs {
		row := map[string]interface{}{
			"id":            uuid.New(),
			"lesson_id":     r.lessonID,
			"enrollment_id": r.enrollmentID,
			"user_id":       r.userID,
			"status":        string(r.status),
			"note":          r.note,
			"marked_by":     markedBy,
			"created_at":    now,
			"updated_at":    now,
		}
		if shape.schoolYear {
			row["school_year_id"] = r.schoolYearID
		}
		rows = append(rows, row)
	}

	update := []string{"status", "note", "marked_by", "updated_at"}
	if shape.schoolYear {
		update = append(update, "school_year_id")
	}
	if shape.key.Constraint == database.AttendanceLegacyKey.Constraint {
		// attach the enrollment to the legacy row it lands on
		update = append(update, "enrollment_id")
	}

	conflict := make([]clause.Column, 0, len(shape.key.Columns))
	for _, c := range shape.key.Columns {
		conflict = append(conflict, clause.Column{Name: c})
	}

	return s.DB.WithContext(ctx).
		Table(model.LessonAttendanceModel{}.TableName()).
		Clauses(clause.OnConflict{
			Columns:   conflict,
			DoUpdates: clause.AssignmentColumns(update),
		}).
		Create(rows).Error
}

func keys(m map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
