package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type unassignableError struct {
}

func (err unassignableError) Error() string {
	return "not all courses can be assigned a classroom"
}

// verify checks a timetable against every invariant of the model
func verify(timetable Timetable, modelInput ModelInput) error {
	totalCourses, totalTimeslots, totalClassrooms, _ := getAttributes(modelInput)

	//** Initialize assistance
	roomAssistance := make(map[[2]uint64]uint64)    // (timeslot, classroom) -> course
	facultyAssistance := make(map[[2]uint64]uint64) // (timeslot, faculty) -> course
	sessions := make([]uint64, totalCourses+1)

	for _, positive := range timetable {
		course, timeslot, classroom := positive[0], positive[1], positive[2]

		if course == 0 || course > totalCourses ||
			timeslot == 0 || timeslot > totalTimeslots ||
			classroom == 0 || classroom > totalClassrooms {
			return newInternalConsistencyError("entry %v is out of range", positive)
		}

		faculty := modelInput.Course(course).Faculty
		roomKey, facultyKey := [2]uint64{timeslot, classroom}, [2]uint64{timeslot, faculty}

		// Check that:
		// - Course fits in the classroom
		// - Classroom is not already hosting a course in the timeslot
		// - Faculty is not already teaching in the timeslot
		if modelInput.Classroom(classroom).Capacity < modelInput.Course(course).Size {
			return newInternalConsistencyError(
				"course \"%v\" (%d students) does not fit classroom \"%v\" (capacity %d)",
				modelInput.Course(course).OriginalId, modelInput.Course(course).Size,
				modelInput.Classroom(classroom).OriginalId, modelInput.Classroom(classroom).Capacity,
			)
		} else if other, ok := roomAssistance[roomKey]; ok {
			return newInternalConsistencyError(
				"classroom \"%v\" hosts courses \"%v\" and \"%v\" at timeslot \"%v\"",
				modelInput.Classroom(classroom).OriginalId, modelInput.Course(other).OriginalId,
				modelInput.Course(course).OriginalId, modelInput.Timeslot(timeslot).OriginalId,
			)
		} else if other, ok := facultyAssistance[facultyKey]; ok {
			return newInternalConsistencyError(
				"faculty \"%v\" teaches courses \"%v\" and \"%v\" at timeslot \"%v\"",
				modelInput.Faculty(faculty).OriginalId, modelInput.Course(other).OriginalId,
				modelInput.Course(course).OriginalId, modelInput.Timeslot(timeslot).OriginalId,
			)
		}

		roomAssistance[roomKey] = course       // Store classroom assistance
		facultyAssistance[facultyKey] = course // Store faculty assistance
		sessions[course]++                     // Store session taught
	}

	// Check whether every course is taught exactly as many times as its sessions per week
	for _, course := range modelInput.Courses {
		if sessions[course.Id] != course.SessionsPerWeek {
			return newInternalConsistencyError(
				"course \"%v\" is scheduled %d times instead of %d",
				course.OriginalId, sessions[course.Id], course.SessionsPerWeek,
			)
		}
	}
	return nil
}

// roomAssignment matches the courses of every timeslot with classrooms they fit in
func roomAssignment(scheduled map[uint64][]uint64, evaluator predicateEvaluator, modelInput ModelInput) (Timetable, error) {
	timetable := make(Timetable, 0)

	for timeslot := uint64(1); timeslot <= uint64(len(modelInput.Timeslots)); timeslot++ {
		courses := scheduled[timeslot]
		if len(courses) == 0 {
			continue
		}

		// Only classrooms fitting at least one simultaneous course take part in the matching
		classrooms := lo.FilterMap(modelInput.Classrooms, func(classroom Classroom, _ int) (uint64, bool) {
			return classroom.Id, lo.SomeBy(courses, func(course uint64) bool {
				return evaluator.Fits(course, classroom.Id)
			})
		})

		assignments, err := assignRooms(courses, classrooms, evaluator.Fits)
		if errors.As(err, &unassignableError{}) {
			var builder strings.Builder
			for _, course := range courses {
				fmt.Fprintf(&builder, "%v, ", modelInput.Course(course).OriginalId)
			}
			return nil, newInternalConsistencyError(
				"cannot assign classrooms at timeslot \"%v\" to courses { %v}: %v",
				modelInput.Timeslot(timeslot).OriginalId, builder.String(), err,
			)
		} else if err != nil {
			return nil, err
		}

		for _, assignment := range assignments {
			course, classroom := assignment[0], assignment[1]
			timetable = append(timetable, [3]uint64{course, timeslot, classroom})
		}
	}

	return timetable, nil
}

func assignRooms(courses []uint64, classrooms []uint64, fits func(course, classroom uint64) bool) ([][2]uint64, error) {
	assignments := make([][2]uint64, 0, len(courses))

	// Build neighbors predicate based on capacity
	neighbors := func(courseAny any, classroomAny any) (bool, error) {
		return fits(courseAny.(uint64), classroomAny.(uint64)), nil
	}

	// Transform courses and classrooms to slices of any
	coursesAny := lo.Map(courses, func(course uint64, _ int) any { return course })
	classroomsAny := lo.Map(classrooms, func(classroom uint64, _ int) any { return classroom })

	graph, err := bipartitegraph.NewBipartiteGraph(coursesAny, classroomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(courses) {
		return nil, unassignableError{}
	}

	for _, edge := range matching {
		courseIndex, classroomIndex := edge.Node1, edge.Node2-len(courses)
		assignments = append(assignments, [2]uint64{courses[courseIndex], classrooms[classroomIndex]})
	}

	return assignments, nil
}
