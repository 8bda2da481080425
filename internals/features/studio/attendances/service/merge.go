// file: internals/features/studio/attendances/service/merge.go
package service

import (
	"sort"

	"dancestudio_backend/internals/features/studio/attendances/model"
	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
)

// MergeForEnrollment selects the attendance rows visible to one enrollment.
// Main enrollments see their own rows plus legacy rows of the same user;
// sub-profile enrollments only ever see rows keyed to them. Rows are unique
// by id, enrollment-keyed rows first, newest first within each group.
func MergeForEnrollment(e *enrollModel.EnrollmentModel, rows []model.LessonAttendanceModel) []model.LessonAttendanceModel {
	seen := make(map[string]struct{}, len(rows))
	keyed := make([]model.LessonAttendanceModel, 0)
	legacy := make([]model.LessonAttendanceModel, 0)

	for _, r := range rows {
		id := r.ID.String()
		if _, dup := seen[id]; dup {
			continue
		}
		switch {
		case r.EnrollmentID != nil && *r.EnrollmentID == e.ID:
			keyed = append(keyed, r)
		case r.EnrollmentID == nil && e.IsMainProfile() && r.UserID == e.UserID:
			legacy = append(legacy, r)
		default:
			continue
		}
		seen[id] = struct{}{}
	}

	byNewest := func(list []model.LessonAttendanceModel) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	}
	byNewest(keyed)
	byNewest(legacy)
	return append(keyed, legacy...)
}
