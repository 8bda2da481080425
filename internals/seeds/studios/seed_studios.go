// file: internals/seeds/studios/seed_studios.go
package studios

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"

	compModel "dancestudio_backend/internals/features/studio/compensations/model"
	programModel "dancestudio_backend/internals/features/studio/programs/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
	helper "dancestudio_backend/internals/helpers"
	"dancestudio_backend/internals/helpers/dbtime"
)

type TeacherSeed struct {
	UserID        string  `json:"user_id"`
	PaymentMethod string  `json:"payment_method"`
	HourlyRate    float64 `json:"hourly_rate"`
	TransportFee  float64 `json:"transport_fee"`
}

type ProgramSeed struct {
	Title           string   `json:"title"`
	Capacity        *int     `json:"capacity"`
	WaitlistEnabled bool     `json:"waitlist_enabled"`
	TeacherIndex    *int     `json:"teacher_index"`
	Lessons         []string `json:"lessons"`
}

type StudioSeed struct {
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	OwnerUserID string        `json:"owner_user_id"`
	Teachers    []TeacherSeed `json:"teachers"`
	Programs    []ProgramSeed `json:"programs"`
}

// Result lists what one run inserted.
type Result struct {
	Created []uuid.UUID
	Skipped []string
}

// SeedStudiosFromJSON inserts every studio of data with its members,
// compensations, programs and lessons. A studio whose explicit slug already
// exists is skipped; without a slug one is derived from the name.
func SeedStudiosFromJSON(ctx context.Context, db *gorm.DB, data []byte) (Result, error) {
	var res Result
	var seeds []StudioSeed
	if err := sonic.Unmarshal(data, &seeds); err != nil {
		return res, fmt.Errorf("decode studio seeds: %w", err)
	}

	for _, s := range seeds {
		if strings.TrimSpace(s.Slug) != "" {
			var n int64
			if err := db.WithContext(ctx).Model(&studioModel.StudioModel{}).Where("slug = ?", s.Slug).Count(&n).Error; err != nil {
				return res, err
			}
			if n > 0 {
				log.Printf("[Seed] studio %s already exists, skipping", s.Slug)
				res.Skipped = append(res.Skipped, s.Slug)
				continue
			}
		}

		var id uuid.UUID
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			id, err = seedStudio(ctx, tx, s)
			return err
		})
		if err != nil {
			return res, fmt.Errorf("seed studio %q: %w", s.Name, err)
		}
		res.Created = append(res.Created, id)
	}
	return res, nil
}

func seedStudio(ctx context.Context, tx *gorm.DB, s StudioSeed) (uuid.UUID, error) {
	slug := strings.TrimSpace(s.Slug)
	if slug == "" {
		var err error
		slug, err = helper.EnsureUniqueSlugCI(ctx, tx, "studios", "slug", helper.Slugify(s.Name, 160), nil, 160)
		if err != nil {
			return uuid.Nil, err
		}
	}

	studio := studioModel.StudioModel{Name: s.Name, Slug: slug}
	if err := tx.Create(&studio).Error; err != nil {
		return uuid.Nil, err
	}

	owner, err := parseOrNew(s.OwnerUserID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := tx.Create(&studioModel.StudioMemberModel{StudioID: studio.ID, UserID: owner, Role: studioModel.RoleOwner}).Error; err != nil {
		return uuid.Nil, err
	}

	teachers := make([]uuid.UUID, 0, len(s.Teachers))
	for _, t := range s.Teachers {
		uid, err := parseOrNew(t.UserID)
		if err != nil {
			return uuid.Nil, err
		}
		if err := tx.Create(&studioModel.StudioMemberModel{StudioID: studio.ID, UserID: uid, Role: studioModel.RoleTeacher}).Error; err != nil {
			return uuid.Nil, err
		}
		method, ok := compModel.ParsePaymentMethod(t.PaymentMethod)
		if !ok {
			method = compModel.DefaultPaymentMethod
		}
		if err := tx.Create(&compModel.TeacherCompensationModel{
			StudioID:      studio.ID,
			TeacherID:     uid,
			PaymentMethod: method,
			HourlyRate:    t.HourlyRate,
			TransportFee:  t.TransportFee,
			Active:        true,
		}).Error; err != nil {
			return uuid.Nil, err
		}
		teachers = append(teachers, uid)
	}

	for _, p := range s.Programs {
		program := programModel.ProgramModel{
			StudioID:        studio.ID,
			Title:           p.Title,
			Capacity:        p.Capacity,
			WaitlistEnabled: p.WaitlistEnabled,
		}
		if err := tx.Create(&program).Error; err != nil {
			return uuid.Nil, err
		}

		var teacherID *uuid.UUID
		if p.TeacherIndex != nil {
			if *p.TeacherIndex < 0 || *p.TeacherIndex >= len(teachers) {
				return uuid.Nil, errors.New("teacher_index out of range in program " + p.Title)
			}
			tid := teachers[*p.TeacherIndex]
			teacherID = &tid
			if err := tx.Create(&programModel.ProgramTeacherModel{ProgramID: program.ID, UserID: tid}).Error; err != nil {
				return uuid.Nil, err
			}
		}

		for _, raw := range p.Lessons {
			date, err := dbtime.ParseDate(raw)
			if err != nil {
				return uuid.Nil, fmt.Errorf("lesson date %q: %w", raw, err)
			}
			if err := tx.Create(&programModel.LessonModel{ProgramID: program.ID, Date: date, TeacherID: teacherID}).Error; err != nil {
				return uuid.Nil, err
			}
		}
	}

	log.Printf("[Seed] studio %s (%s) owner=%s teachers=%d programs=%d", studio.Name, studio.Slug, owner, len(teachers), len(s.Programs))
	return studio.ID, nil
}

func parseOrNew(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q: %w", raw, err)
	}
	return id, nil
}
