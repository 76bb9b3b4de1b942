package model

import (
	"context"

	"github.com/limaJavier/coursetimetable/pkg/sat"
)

type embeddedRoomTimetabler struct {
	solver sat.SATSolver
}

// NewEmbeddedRoomTimetabler decides timeslots and classrooms in a single SAT instance
func NewEmbeddedRoomTimetabler(solver sat.SATSolver) Timetabler {
	return &embeddedRoomTimetabler{
		solver: solver,
	}
}

func (timetabler *embeddedRoomTimetabler) Build(ctx context.Context, modelInput ModelInput) (timetable Timetable, variables uint64, clauses uint64, err error) {
	//** Build model
	model, err := BuildModel(modelInput)
	if err != nil {
		return nil, 0, 0, err
	}
	if err := sat.CheckDeadline(ctx); err != nil {
		return nil, 0, 0, err
	}

	//** Build SAT instance
	satInstance, err := model.ToSAT(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	variables, clauses = satInstance.Variables, uint64(len(satInstance.Clauses))

	//** Solve SAT instance
	solution, err := timetabler.solver.Solve(ctx, satInstance)
	if err != nil {
		return nil, variables, clauses, err
	} else if solution == nil { // Return nil if the SAT instance is not satisfiable
		return nil, variables, clauses, nil
	}

	// Acknowledge only candidate variables, auxiliary ones belong to the encoding
	timetable = make(Timetable, 0)
	for variable := uint64(1); variable <= model.Variables(); variable++ {
		if solution.Value(variable) {
			course, timeslot, classroom := model.Candidate(variable)
			timetable = append(timetable, [3]uint64{course, timeslot, classroom})
		}
	}

	return timetable, variables, clauses, nil
}

func (timetabler *embeddedRoomTimetabler) Verify(timetable Timetable, modelInput ModelInput) error {
	return verify(timetable, modelInput)
}
