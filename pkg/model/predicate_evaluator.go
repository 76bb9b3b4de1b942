package model

import "github.com/samber/lo"

type predicateEvaluator interface {
	// Checks whether the faculty teaches the course
	Teaches(faculty, course uint64) bool

	// Checks whether the course's size is smaller than or equal to the classroom's capacity (i.e. the course fits in the classroom)
	Fits(course, classroom uint64) bool

	// Checks whether at least one classroom fits the course
	Placeable(course uint64) bool
}

func newPredicateEvaluator(modelInput ModelInput) predicateEvaluator {
	return &predicateEvaluatorStandard{
		modelInput: modelInput,
		largestCapacity: lo.Max(lo.Map(modelInput.Classrooms, func(classroom Classroom, _ int) uint64 {
			return classroom.Capacity
		})),
	}
}

type predicateEvaluatorStandard struct {
	modelInput      ModelInput
	largestCapacity uint64
}

func (evaluator *predicateEvaluatorStandard) Teaches(faculty, course uint64) bool {
	return evaluator.modelInput.Course(course).Faculty == faculty
}

func (evaluator *predicateEvaluatorStandard) Fits(course, classroom uint64) bool {
	return evaluator.modelInput.Classroom(classroom).Capacity >= evaluator.modelInput.Course(course).Size
}

func (evaluator *predicateEvaluatorStandard) Placeable(course uint64) bool {
	return len(evaluator.modelInput.Classrooms) > 0 && evaluator.largestCapacity >= evaluator.modelInput.Course(course).Size
}
