// file: internals/features/studio/enrollments/service/admission_service.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dancestudio_backend/internals/features/studio/enrollments/model"
	programModel "dancestudio_backend/internals/features/studio/programs/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
	profileModel "dancestudio_backend/internals/features/users/user_profiles/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	logsvc "dancestudio_backend/internals/services/logger"
	"dancestudio_backend/internals/services/notifications"
)

/* =========================================================
   Outcomes
========================================================= */

type Outcome string

const (
	OutcomeActive     Outcome = "enrolled_active"
	OutcomeWaitlisted Outcome = "enrolled_waitlisted"
	OutcomeUpgraded   Outcome = "upgraded_from_waitlist"
)

func (o Outcome) Message() string {
	switch o {
	case OutcomeActive:
		return "Enrolled"
	case OutcomeWaitlisted:
		return "Added to waitlist"
	case OutcomeUpgraded:
		return "Enrollment activated from waitlist"
	default:
		return "ok"
	}
}

// Rejection messages clients match on.
const (
	MsgProgramFull      = "Program is full"
	MsgWaitlistRequired = "Waitlist required"
	MsgAlreadyEnrolled  = "Already enrolled"
	MsgMissingProfile   = "Missing required profile fields"
)

// MissingFieldsError is returned when the profile is incomplete.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: %v", MsgMissingProfile, e.Fields)
}

type EnrollInput struct {
	ProgramID    uuid.UUID
	SubProfileID *uuid.UUID
	FormData     json.RawMessage
	Waitlist     bool
}

type EnrollResult struct {
	Outcome    Outcome
	Enrollment *model.EnrollmentModel
}

/* =========================================================
   Service
========================================================= */

type AdmissionService struct {
	DB       *gorm.DB
	Notifier notifications.Notifier
}

func NewAdmissionService(db *gorm.DB, notifier notifications.Notifier) *AdmissionService {
	if notifier == nil {
		notifier = notifications.Noop{}
	}
	return &AdmissionService{DB: db, Notifier: notifier}
}

// Enroll decides admission for the caller (or one of their sub-profiles).
// Counts are read at call time without locking; concurrent requests can
// over-admit by the number of racing callers.
func (s *AdmissionService) Enroll(ctx context.Context, caller helperAuth.Caller, in EnrollInput) (*EnrollResult, error) {
	db := s.DB.WithContext(ctx)

	// 1) profile completeness, before any capacity logic
	snapshot, err := s.profileSnapshot(ctx, caller.UserID, in.SubProfileID)
	if err != nil {
		return nil, err
	}

	// 2) program
	var program programModel.ProgramModel
	if err := db.Where("id = ?", in.ProgramID).Take(&program).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Program not found")
		}
		return nil, pkgerrors.Wrap(err, "load program")
	}

	// 3) holder's own rows
	var own []model.EnrollmentModel
	q := db.Where("program_id = ? AND user_id = ?", program.ID, caller.UserID)
	if in.SubProfileID != nil {
		q = q.Where("sub_profile_id = ?", *in.SubProfileID)
	} else {
		q = q.Where("sub_profile_id IS NULL")
	}
	if err := q.Order("created_at ASC").Find(&own).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load own enrollments")
	}

	var accepted, waitlisted *model.EnrollmentModel
	for i := range own {
		switch own[i].Status {
		case model.EnrollmentActive:
			return nil, fiber.NewError(fiber.StatusConflict, MsgAlreadyEnrolled)
		case model.EnrollmentWaitlistAccepted:
			if accepted == nil {
				accepted = &own[i]
			}
		case model.EnrollmentWaitlisted:
			if waitlisted == nil {
				waitlisted = &own[i]
			}
		case model.EnrollmentCancelled:
		}
	}

	formData := normalizeFormData(in.FormData)

	// 4) capacity
	full := program.ManualFullOverride
	if !full && program.HasCapacityLimit() {
		active, err := CountActive(ctx, s.DB, program.ID)
		if err != nil {
			return nil, err
		}
		full = program.IsFull(int(active))
	}

	var res *EnrollResult
	switch {
	case !full && (accepted != nil || waitlisted != nil):
		// a seat is free: reuse the holder's pending row instead of adding one
		pending := accepted
		if pending == nil {
			pending = waitlisted
		}
		row, err := s.upgrade(ctx, pending, formData, snapshot)
		if err != nil {
			return nil, err
		}
		res = &EnrollResult{Outcome: OutcomeUpgraded, Enrollment: row}

	case !full:
		row, err := s.insert(ctx, &program, caller.UserID, in.SubProfileID, model.EnrollmentActive, formData, snapshot)
		if err != nil {
			return nil, err
		}
		res = &EnrollResult{Outcome: OutcomeActive, Enrollment: row}

	case !program.WaitlistEnabled:
		return nil, fiber.NewError(fiber.StatusConflict, MsgProgramFull)

	case accepted != nil:
		// accepted by an admin: promoted in place even though the program is full
		row, err := s.upgrade(ctx, accepted, formData, snapshot)
		if err != nil {
			return nil, err
		}
		res = &EnrollResult{Outcome: OutcomeUpgraded, Enrollment: row}

	case !in.Waitlist:
		return nil, fiber.NewError(fiber.StatusConflict, MsgWaitlistRequired)

	case waitlisted != nil:
		return &EnrollResult{Outcome: OutcomeWaitlisted, Enrollment: waitlisted}, nil

	default:
		row, err := s.insert(ctx, &program, caller.UserID, in.SubProfileID, model.EnrollmentWaitlisted, formData, snapshot)
		if err != nil {
			return nil, err
		}
		return &EnrollResult{Outcome: OutcomeWaitlisted, Enrollment: row}, nil
	}

	// 5) active enrollment: membership + notify admins. The enrollment is
	// already stored, so a failed membership grant is reported, not returned.
	if err := s.ensureStudentMembership(ctx, program.StudioID, caller.UserID); err != nil {
		logsvc.Error("Enroll", err, map[string]interface{}{
			"studio_id":     program.StudioID.String(),
			"user_id":       caller.UserID.String(),
			"enrollment_id": res.Enrollment.ID.String(),
		})
	}
	s.notifyAdmins(ctx, &program, res)
	return res, nil
}

// CountActive counts distinct (user, sub-profile) holders with an active row.
func CountActive(ctx context.Context, db *gorm.DB, programID uuid.UUID) (int64, error) {
	sub := db.WithContext(ctx).
		Model(&model.EnrollmentModel{}).
		Distinct("user_id", "sub_profile_id").
		Where("program_id = ? AND status = ?", programID, model.EnrollmentActive)

	var n int64
	if err := db.WithContext(ctx).Table("(?) AS holders", sub).Count(&n).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "count active enrollments")
	}
	return n, nil
}

func (s *AdmissionService) profileSnapshot(ctx context.Context, userID uuid.UUID, subProfileID *uuid.UUID) (datatypes.JSON, error) {
	db := s.DB.WithContext(ctx)

	var (
		missing []string
		snap    map[string]any
	)
	if subProfileID != nil {
		var sp profileModel.SubProfileModel
		err := db.Where("id = ? AND parent_user_id = ?", *subProfileID, userID).Take(&sp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Sub-profile not found")
		}
		if err != nil {
			return nil, pkgerrors.Wrap(err, "load sub-profile")
		}
		missing, snap = sp.MissingFields(), sp.Snapshot()
	} else {
		var p profileModel.UserProfileModel
		err := db.Where("user_id = ?", userID).Take(&p).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(err, "load profile")
		}
		missing, snap = p.MissingFields(), p.Snapshot()
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	b, err := json.Marshal(snap)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encode profile snapshot")
	}
	return datatypes.JSON(b), nil
}

func (s *AdmissionService) insert(
	ctx context.Context,
	program *programModel.ProgramModel,
	userID uuid.UUID,
	subProfileID *uuid.UUID,
	status model.EnrollmentStatus,
	formData, snapshot datatypes.JSON,
) (*model.EnrollmentModel, error) {
	row := &model.EnrollmentModel{
		ProgramID:       program.ID,
		StudioID:        program.StudioID,
		UserID:          userID,
		SubProfileID:    subProfileID,
		Status:          status,
		FormData:        formData,
		ProfileSnapshot: snapshot,
	}
	if err := s.DB.WithContext(ctx).Create(row).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "insert enrollment")
	}
	log.Printf("[Enroll] %s enrollment=%s program=%s user=%s", status, row.ID, program.ID, userID)
	return row, nil
}

func (s *AdmissionService) upgrade(ctx context.Context, row *model.EnrollmentModel, formData, snapshot datatypes.JSON) (*model.EnrollmentModel, error) {
	if err := s.DB.WithContext(ctx).
		Model(row).
		Updates(map[string]any{
			"status":           model.EnrollmentActive,
			"form_data":        formData,
			"profile_snapshot": snapshot,
		}).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "upgrade waitlist enrollment")
	}
	row.Status = model.EnrollmentActive
	row.FormData = formData
	row.ProfileSnapshot = snapshot
	log.Printf("[Enroll] upgraded enrollment=%s program=%s user=%s", row.ID, row.ProgramID, row.UserID)
	return row, nil
}

func (s *AdmissionService) ensureStudentMembership(ctx context.Context, studioID, userID uuid.UUID) error {
	m := studioModel.StudioMemberModel{StudioID: studioID, UserID: userID, Role: studioModel.RoleStudent}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "studio_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&m).Error
	if err != nil {
		return pkgerrors.Wrap(err, "ensure studio membership")
	}
	return nil
}

func (s *AdmissionService) notifyAdmins(ctx context.Context, program *programModel.ProgramModel, res *EnrollResult) {
	admins, err := helperAuth.StudioAdminIDs(ctx, s.DB, program.StudioID)
	if err != nil {
		log.Printf("[Enroll] notify skipped: %v", err)
		return
	}
	s.Notifier.Notify(ctx, admins,
		notifications.KindEnrollmentCreated,
		"New enrollment",
		fmt.Sprintf("A new enrollment was registered for %s", program.Title),
		fmt.Sprintf("/studio/%s/programs/%s/enrollments/%s", program.StudioID, program.ID, res.Enrollment.ID),
	)
}

func normalizeFormData(raw json.RawMessage) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(trimmed)
}
