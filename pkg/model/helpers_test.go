package model

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func int64Ptr(value int64) *int64 {
	return &value
}

func normalize(t *testing.T, raw RawDataset) ModelInput {
	t.Helper()
	input, err := NewNormalizer(StandardDefaults()).Normalize(raw)
	require.NoError(t, err)
	return input
}

// generateDataset builds a random dataset whose courses always fit the largest classroom
func generateDataset(rng *rand.Rand, courses, faculties, classrooms, timeslots int) RawDataset {
	dataset := RawDataset{}

	for i := range faculties {
		dataset.Faculties = append(dataset.Faculties, RawFaculty{Id: fmt.Sprintf("f%d", i), Name: fmt.Sprintf("Faculty %d", i)})
	}

	largest := int64(0)
	for i := range classrooms {
		capacity := int64(10 * (rng.IntN(5) + 1))
		largest = max(largest, capacity)
		dataset.Classrooms = append(dataset.Classrooms, RawClassroom{Id: i + 100, Name: fmt.Sprintf("Room %d", i), Capacity: int64Ptr(capacity)})
	}

	for i := range timeslots {
		dataset.Timeslots = append(dataset.Timeslots, RawTimeslot{Id: float64(i), DayOfWeek: int64Ptr(int64(i % 5)), SlotIndex: int64Ptr(int64(i / 5))})
	}

	for i := range courses {
		dataset.Courses = append(dataset.Courses, RawCourse{
			Id:              fmt.Sprintf("c%d", i),
			Name:            fmt.Sprintf("Course %d", i),
			FacultyId:       fmt.Sprintf("f%d", rng.IntN(faculties)),
			Size:            int64Ptr(rng.Int64N(largest) + 1),
			SessionsPerWeek: int64Ptr(rng.Int64N(2) + 1),
		})
	}

	return dataset
}

// scenarioA: 1 course (sessions=2, size=10), 1 faculty, 2 classrooms (capacity 20 each), 3 timeslots
func scenarioA() RawDataset {
	return RawDataset{
		Faculties: []RawFaculty{{Id: 1, Name: "Ada"}},
		Courses: []RawCourse{
			{Id: 1, Name: "Algebra", FacultyId: 1, Size: int64Ptr(10), SessionsPerWeek: int64Ptr(2)},
		},
		Classrooms: []RawClassroom{
			{Id: "r1", Name: "Room 1", Capacity: int64Ptr(20)},
			{Id: "r2", Name: "Room 2", Capacity: int64Ptr(20)},
		},
		Timeslots: []RawTimeslot{
			{Id: "t1", Label: "Mon 9"},
			{Id: "t2", Label: "Mon 10"},
			{Id: "t3", Label: "Mon 11"},
		},
	}
}

// scenarioB: 1 course (size=100), 1 classroom (capacity=50)
func scenarioB() RawDataset {
	return RawDataset{
		Faculties:  []RawFaculty{{Id: 1, Name: "Ada"}},
		Courses:    []RawCourse{{Id: 1, Name: "Physics", FacultyId: 1, Size: int64Ptr(100)}},
		Classrooms: []RawClassroom{{Id: 1, Name: "Small", Capacity: int64Ptr(50)}},
		Timeslots:  []RawTimeslot{{Id: 1, Label: "Mon 9"}},
	}
}

// scenarioC: 2 courses sharing a faculty, 1 session each, 1 timeslot, 2 classrooms
func scenarioC() RawDataset {
	return RawDataset{
		Faculties: []RawFaculty{{Id: 1, Name: "Ada"}},
		Courses: []RawCourse{
			{Id: 1, Name: "Algebra", FacultyId: 1, SessionsPerWeek: int64Ptr(1)},
			{Id: 2, Name: "Geometry", FacultyId: 1, SessionsPerWeek: int64Ptr(1)},
		},
		Classrooms: []RawClassroom{{Id: 1, Name: "Room 1"}, {Id: 2, Name: "Room 2"}},
		Timeslots:  []RawTimeslot{{Id: 1, Label: "Mon 9"}},
	}
}
