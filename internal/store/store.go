package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

// Row is a persisted schedule entry. Identifiers are kept in their textual form
type Row struct {
	ID            string    `db:"id" json:"id"`
	Position      int       `db:"position" json:"position"`
	CourseID      string    `db:"course_id" json:"course_id"`
	CourseCode    string    `db:"course_code" json:"course_code,omitempty"`
	CourseName    string    `db:"course_name" json:"course"`
	FacultyID     string    `db:"faculty_id" json:"faculty_id"`
	FacultyName   string    `db:"faculty_name" json:"faculty"`
	ClassroomID   string    `db:"classroom_id" json:"classroom_id"`
	ClassroomName string    `db:"classroom_name" json:"classroom"`
	TimeslotID    string    `db:"timeslot_id" json:"timeslot_id"`
	TimeslotLabel string    `db:"timeslot_label" json:"timeslot"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Reader exposes the last committed timetable
type Reader interface {
	List(ctx context.Context) ([]Row, error)
}

// NewRows converts schedule entries to rows, keeping their order
func NewRows(entries []model.ScheduleEntry) []Row {
	now := time.Now().UTC()
	return lo.Map(entries, func(entry model.ScheduleEntry, position int) Row {
		return Row{
			ID:            uuid.NewString(),
			Position:      position,
			CourseID:      entry.CourseId.String(),
			CourseCode:    entry.CourseCode,
			CourseName:    entry.CourseName,
			FacultyID:     entry.FacultyId.String(),
			FacultyName:   entry.FacultyName,
			ClassroomID:   entry.ClassroomId.String(),
			ClassroomName: entry.ClassroomName,
			TimeslotID:    entry.TimeslotId.String(),
			TimeslotLabel: entry.TimeslotLabel,
			CreatedAt:     now,
		}
	})
}
