package model

import (
	"slices"

	"github.com/samber/lo"
)

type ConstraintFamily int

const (
	// Every course is scheduled exactly as many times as its sessions per week
	CoverageFamily ConstraintFamily = iota
	// A classroom hosts at most one course per timeslot
	RoomExclusivityFamily
	// A faculty teaches at most one course per timeslot
	FacultyExclusivityFamily
	// The courses of a timeslot never outnumber the classrooms that fit them
	RoomCapacityFamily
)

func (family ConstraintFamily) String() string {
	switch family {
	case CoverageFamily:
		return "coverage"
	case RoomExclusivityFamily:
		return "room-exclusivity"
	case FacultyExclusivityFamily:
		return "faculty-exclusivity"
	case RoomCapacityFamily:
		return "room-capacity"
	default:
		return "unknown"
	}
}

// Constraint bounds how many of its variables may be true: Min <= sum(Variables) <= Max
type Constraint struct {
	Family    ConstraintFamily
	Variables []uint64
	Min, Max  int
}

type constraintState struct {
	evaluator predicateEvaluator
	indexer   indexer
	input     ModelInput

	courses,
	timeslots,
	classrooms,
	faculties uint64
}

// Sum_{t,r} x(c,t,r) = sessions(c) for every course c
func coverageConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0, state.courses)
	for course := uint64(1); course <= state.courses; course++ {
		variables := make([]uint64, 0)
		for timeslot := uint64(1); timeslot <= state.timeslots; timeslot++ {
			for classroom := uint64(1); classroom <= state.classrooms; classroom++ {
				if variable, ok := state.indexer.Index(course, timeslot, classroom); ok {
					variables = append(variables, variable)
				}
			}
		}

		sessions := int(state.input.Course(course).SessionsPerWeek)
		constraints = append(constraints, Constraint{
			Family:    CoverageFamily,
			Variables: variables,
			Min:       sessions,
			Max:       sessions,
		})
	}
	return constraints
}

// Sum_c x(c,t,r) <= 1 for every timeslot t and classroom r
func roomExclusivityConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0)
	for timeslot := uint64(1); timeslot <= state.timeslots; timeslot++ {
		for classroom := uint64(1); classroom <= state.classrooms; classroom++ {
			variables := make([]uint64, 0)
			for course := uint64(1); course <= state.courses; course++ {
				if variable, ok := state.indexer.Index(course, timeslot, classroom); ok {
					variables = append(variables, variable)
				}
			}

			if len(variables) >= 2 {
				constraints = append(constraints, Constraint{
					Family:    RoomExclusivityFamily,
					Variables: variables,
					Max:       1,
				})
			}
		}
	}
	return constraints
}

// Sum_{c taught by f, r} x(c,t,r) <= 1 for every timeslot t and faculty f
func facultyExclusivityConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0)
	for faculty := uint64(1); faculty <= state.faculties; faculty++ {
		courses := lo.Filter(lo.RangeFrom(uint64(1), int(state.courses)), func(course uint64, _ int) bool {
			return state.evaluator.Teaches(faculty, course)
		})
		if len(courses) == 0 {
			continue
		}

		for timeslot := uint64(1); timeslot <= state.timeslots; timeslot++ {
			variables := make([]uint64, 0)
			for _, course := range courses {
				for classroom := uint64(1); classroom <= state.classrooms; classroom++ {
					if variable, ok := state.indexer.Index(course, timeslot, classroom); ok {
						variables = append(variables, variable)
					}
				}
			}

			if len(variables) >= 2 {
				constraints = append(constraints, Constraint{
					Family:    FacultyExclusivityFamily,
					Variables: variables,
					Max:       1,
				})
			}
		}
	}
	return constraints
}

// For every timeslot t and distinct course size s: Sum_{size(c) >= s} x(c,t) <= |{r : capacity(r) >= s}|.
// Classrooms fitting a course form nested sets, so these bounds are exactly Hall's condition for a room matching.
// Only meaningful when the indexer collapses classrooms into a single placeholder
func roomCapacityConstraints(state constraintState) []Constraint {
	sizes := lo.Uniq(lo.Map(state.input.Courses, func(course Course, _ int) uint64 {
		return course.Size
	}))
	slices.Sort(sizes)
	slices.Reverse(sizes)

	fittingRooms := lo.SliceToMap(sizes, func(size uint64) (uint64, int) {
		return size, lo.CountBy(state.input.Classrooms, func(classroom Classroom) bool {
			return classroom.Capacity >= size
		})
	})

	constraints := make([]Constraint, 0)
	for timeslot := uint64(1); timeslot <= state.timeslots; timeslot++ {
		for _, size := range sizes {
			variables := make([]uint64, 0)
			for course := uint64(1); course <= state.courses; course++ {
				if state.input.Course(course).Size < size {
					continue
				}
				if variable, ok := state.indexer.Index(course, timeslot, 1); ok {
					variables = append(variables, variable)
				}
			}

			if len(variables) > fittingRooms[size] {
				constraints = append(constraints, Constraint{
					Family:    RoomCapacityFamily,
					Variables: variables,
					Max:       fittingRooms[size],
				})
			}
		}
	}
	return constraints
}
