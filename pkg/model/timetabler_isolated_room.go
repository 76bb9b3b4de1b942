package model

import (
	"context"

	"github.com/limaJavier/coursetimetable/pkg/sat"
)

type isolatedRoomTimetabler struct {
	solver sat.SATSolver
}

// NewIsolatedRoomTimetabler decides timeslots first and postpones classrooms to a per-timeslot matching
func NewIsolatedRoomTimetabler(solver sat.SATSolver) Timetabler {
	return &isolatedRoomTimetabler{
		solver: solver,
	}
}

func (timetabler *isolatedRoomTimetabler) Build(ctx context.Context, modelInput ModelInput) (timetable Timetable, variables uint64, clauses uint64, err error) {
	//** Build model
	model, err := buildIsolatedModel(modelInput)
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

	scheduled := make(map[uint64][]uint64)
	for variable := uint64(1); variable <= model.Variables(); variable++ {
		if solution.Value(variable) {
			course, timeslot, _ := model.Candidate(variable)
			scheduled[timeslot] = append(scheduled[timeslot], course)
		}
	}

	timetable, err = roomAssignment(scheduled, newPredicateEvaluator(modelInput), modelInput)
	return timetable, variables, clauses, err
}

func (timetabler *isolatedRoomTimetabler) Verify(timetable Timetable, modelInput ModelInput) error {
	return verify(timetable, modelInput)
}
