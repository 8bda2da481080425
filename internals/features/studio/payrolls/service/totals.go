// file: internals/features/studio/payrolls/service/totals.go
package service

import (
	"math"

	tsModel "dancestudio_backend/internals/features/studio/timesheets/model"
)

type Totals struct {
	Lessons       int
	Hours         float64
	LessonFees    float64
	TransportFees float64
	Amount        float64
}

// ComputeTotals sums persisted entries. Hours are minutes/60 rounded to two
// decimals; an empty set gives zeros.
func ComputeTotals(entries []tsModel.TimesheetEntryModel) Totals {
	var (
		minutes   int
		lesson    float64
		transport float64
	)
	for _, e := range entries {
		minutes += e.DurationMinutes
		lesson += e.LessonFee
		transport += e.TransportFee
	}
	lesson = round2(lesson)
	transport = round2(transport)
	return Totals{
		Lessons:       len(entries),
		Hours:         round2(float64(minutes) / 60),
		LessonFees:    lesson,
		TransportFees: transport,
		Amount:        round2(lesson + transport),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
