package model

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// ScheduleEntry is a scheduled session expressed with the original identifiers and display names
type ScheduleEntry struct {
	CourseId      Identifier `json:"course_id"`
	CourseCode    string     `json:"course_code,omitempty"`
	CourseName    string     `json:"course"`
	FacultyId     Identifier `json:"faculty_id"`
	FacultyName   string     `json:"faculty"`
	ClassroomId   Identifier `json:"classroom_id"`
	ClassroomName string     `json:"classroom"`
	TimeslotId    Identifier `json:"timeslot_id"`
	TimeslotLabel string     `json:"timeslot"`

	// Dense indices, used for ordering
	Course    uint64 `json:"-"`
	Faculty   uint64 `json:"-"`
	Classroom uint64 `json:"-"`
	Timeslot  uint64 `json:"-"`
}

// Extract re-verifies the timetable and maps it back to original identifiers, sorted by timeslot then classroom.
// A timetable violating any invariant yields an *InternalConsistencyError
func Extract(timetable Timetable, modelInput ModelInput) ([]ScheduleEntry, error) {
	if err := verify(timetable, modelInput); err != nil {
		return nil, err
	}

	entries := lo.Map(timetable, func(positive [3]uint64, _ int) ScheduleEntry {
		course := modelInput.Course(positive[0])
		faculty := modelInput.Faculty(course.Faculty)
		timeslot := modelInput.Timeslot(positive[1])
		classroom := modelInput.Classroom(positive[2])

		return ScheduleEntry{
			CourseId:      course.OriginalId,
			CourseCode:    course.Code,
			CourseName:    course.Name,
			FacultyId:     faculty.OriginalId,
			FacultyName:   faculty.Name,
			ClassroomId:   classroom.OriginalId,
			ClassroomName: classroom.Name,
			TimeslotId:    timeslot.OriginalId,
			TimeslotLabel: timeslot.Label,
			Course:        course.Id,
			Faculty:       faculty.Id,
			Classroom:     classroom.Id,
			Timeslot:      timeslot.Id,
		}
	})

	slices.SortFunc(entries, func(a, b ScheduleEntry) int {
		return cmp.Or(cmp.Compare(a.Timeslot, b.Timeslot), cmp.Compare(a.Classroom, b.Classroom))
	})
	return entries, nil
}
