package model

import (
	"context"

	"github.com/limaJavier/coursetimetable/pkg/sat"

	"github.com/samber/lo"
)

// Model is a set of boolean candidate variables together with the cardinality constraints over them
type Model struct {
	Input       ModelInput
	Constraints []Constraint
	indexer     indexer
}

// Variables returns the number of candidate variables, auxiliary encoding variables excluded
func (model *Model) Variables() uint64 {
	return model.indexer.Variables()
}

func (model *Model) Candidate(variable uint64) (course, timeslot, classroom uint64) {
	return model.indexer.Attributes(variable)
}

// ToSAT lowers every constraint to CNF. It stops with an error wrapping sat.ErrTimeout once ctx expires
func (model *Model) ToSAT(ctx context.Context) (sat.SAT, error) {
	encoder := sat.NewEncoder(model.Variables())
	for _, constraint := range model.Constraints {
		if err := sat.CheckDeadline(ctx); err != nil {
			return sat.SAT{}, err
		}
		literals := lo.Map(constraint.Variables, func(variable uint64, _ int) int64 {
			return int64(variable)
		})
		encoder.Between(literals, constraint.Min, constraint.Max)
	}
	return encoder.SAT(), nil
}

// BuildModel builds the candidate model: one variable per capacity-feasible (course, timeslot, classroom)
func BuildModel(modelInput ModelInput) (*Model, error) {
	if err := checkSufficientData(modelInput); err != nil {
		return nil, err
	}

	//** Initialize dependencies
	evaluator := newPredicateEvaluator(modelInput)
	if err := checkPlaceable(modelInput, evaluator); err != nil {
		return nil, err
	}

	totalCourses, totalTimeslots, totalClassrooms, totalFaculties := getAttributes(modelInput)
	generator := newPermutationGenerator(totalCourses, totalTimeslots, totalClassrooms)
	candidates := generator.ConstrainedPermutations([]func(permutation []uint64) bool{
		// Fits(c, r) = 1
		func(permutation []uint64) bool {
			course, classroom := permutation[0], permutation[2]
			return course == 0 || classroom == 0 || evaluator.Fits(course, classroom)
		},
	})
	indexer := newIndexer(candidates, totalCourses, totalTimeslots, totalClassrooms)

	state := constraintState{
		evaluator:  evaluator,
		indexer:    indexer,
		input:      modelInput,
		courses:    totalCourses,
		timeslots:  totalTimeslots,
		classrooms: totalClassrooms,
		faculties:  totalFaculties,
	}

	return &Model{
		Input: modelInput,
		Constraints: collectConstraints([]func(state constraintState) []Constraint{
			coverageConstraints,
			roomExclusivityConstraints,
			facultyExclusivityConstraints,
		}, state),
		indexer: indexer,
	}, nil
}

// buildIsolatedModel builds a model with one variable per (course, timeslot). Classroom attributes are always 1 and
// room capacity is bounded per timeslot instead of per classroom
func buildIsolatedModel(modelInput ModelInput) (*Model, error) {
	if err := checkSufficientData(modelInput); err != nil {
		return nil, err
	}

	//** Initialize dependencies
	evaluator := newPredicateEvaluator(modelInput)
	if err := checkPlaceable(modelInput, evaluator); err != nil {
		return nil, err
	}

	totalClassrooms := uint64(1)
	totalCourses, totalTimeslots, _, totalFaculties := getAttributes(modelInput)
	generator := newPermutationGenerator(totalCourses, totalTimeslots, totalClassrooms)
	candidates := generator.ConstrainedPermutations([]func(permutation []uint64) bool{
		func(permutation []uint64) bool {
			course := permutation[0]
			return course == 0 || evaluator.Placeable(course)
		},
	})
	indexer := newIndexer(candidates, totalCourses, totalTimeslots, totalClassrooms)

	state := constraintState{
		evaluator:  evaluator,
		indexer:    indexer,
		input:      modelInput,
		courses:    totalCourses,
		timeslots:  totalTimeslots,
		classrooms: totalClassrooms,
		faculties:  totalFaculties,
	}

	return &Model{
		Input: modelInput,
		Constraints: collectConstraints([]func(state constraintState) []Constraint{
			coverageConstraints,
			facultyExclusivityConstraints,
			roomCapacityConstraints,
		}, state),
		indexer: indexer,
	}, nil
}

// collectConstraints runs every family on its own goroutine and merges the results in the families' order
func collectConstraints(families []func(state constraintState) []Constraint, state constraintState) []Constraint {
	type familyResult struct {
		position    int
		constraints []Constraint
	}

	constraintsChannel := make(chan familyResult, len(families))
	for position, family := range families {
		go func() {
			constraintsChannel <- familyResult{position: position, constraints: family(state)}
		}()
	}

	collected := make([][]Constraint, len(families))
	for range families {
		result := <-constraintsChannel
		collected[result.position] = result.constraints
	}
	close(constraintsChannel)

	return lo.Flatten(collected)
}

func getAttributes(modelInput ModelInput) (courses, timeslots, classrooms, faculties uint64) {
	return uint64(len(modelInput.Courses)),
		uint64(len(modelInput.Timeslots)),
		uint64(len(modelInput.Classrooms)),
		uint64(len(modelInput.Faculties))
}

func checkSufficientData(modelInput ModelInput) error {
	missing := make([]string, 0, 3)
	if len(modelInput.Courses) == 0 {
		missing = append(missing, "courses")
	}
	if len(modelInput.Timeslots) == 0 {
		missing = append(missing, "timeslots")
	}
	if len(modelInput.Classrooms) == 0 {
		missing = append(missing, "classrooms")
	}

	if len(missing) > 0 {
		return newModelBuildError("", "insufficient data: no %v", joinWords(missing))
	}
	return nil
}

// Every course needs at least one classroom it fits in, otherwise its coverage cannot hold
func checkPlaceable(modelInput ModelInput, evaluator predicateEvaluator) error {
	for _, course := range modelInput.Courses {
		if !evaluator.Placeable(course.Id) {
			return newModelBuildError(
				entityName("course", course.OriginalId, course.Name),
				"no classroom fits %d students", course.Size,
			)
		}
	}
	return nil
}

func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		result := words[0]
		for _, word := range words[1 : len(words)-1] {
			result += ", " + word
		}
		return result + " or " + words[len(words)-1]
	}
}
