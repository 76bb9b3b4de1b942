package export

import (
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

// Row is the tabular form of a schedule entry
type Row struct {
	Timeslot    string `csv:"timeslot"`
	Classroom   string `csv:"classroom"`
	CourseCode  string `csv:"course_code"`
	Course      string `csv:"course"`
	Faculty     string `csv:"faculty"`
	TimeslotID  string `csv:"timeslot_id"`
	ClassroomID string `csv:"classroom_id"`
	CourseID    string `csv:"course_id"`
	FacultyID   string `csv:"faculty_id"`
}

func NewRow(entry model.ScheduleEntry) Row {
	return Row{
		Timeslot:    entry.TimeslotLabel,
		Classroom:   entry.ClassroomName,
		CourseCode:  entry.CourseCode,
		Course:      entry.CourseName,
		Faculty:     entry.FacultyName,
		TimeslotID:  entry.TimeslotId.String(),
		ClassroomID: entry.ClassroomId.String(),
		CourseID:    entry.CourseId.String(),
		FacultyID:   entry.FacultyId.String(),
	}
}

// RenderCSV produces CSV encoded bytes with a header line, even for an empty timetable
func RenderCSV(rows []Row) ([]byte, error) {
	bytes, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return bytes, nil
}
