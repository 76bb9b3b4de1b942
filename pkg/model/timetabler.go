package model

import "context"

// Timetable holds one (course, timeslot, classroom) triple per scheduled session, using dense indices.
// A nil timetable means the instance is infeasible
type Timetable [][3]uint64

type Timetabler interface {
	// Build returns a nil timetable and a nil error when the instance is infeasible, a *ModelBuildError when no model
	// can be built and an error wrapping sat.ErrTimeout when ctx expires first
	Build(
		ctx context.Context,
		modelInput ModelInput,
	) (timetable Timetable, variables uint64, clauses uint64, err error)

	Verify(
		timetable Timetable,
		modelInput ModelInput,
	) error
}
