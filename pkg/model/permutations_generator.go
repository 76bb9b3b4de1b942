package model

// permutationGenerator enumerates tuples of 1-based attributes, pruning a branch as soon as a constraint rejects it.
// Attributes' order in the permutation is the order of the domains given to newPermutationGenerator.
// An attribute that is not set yet holds 0, so every constraint must accept a permutation whose involved attributes are still 0
//
// Example:
//
//	generator := newPermutationGenerator(courses, timeslots, classrooms)
//
//	permutations := generator.ConstrainedPermutations([]func(permutation []uint64) bool{
//		func(permutation []uint64) bool {
//			course, classroom := permutation[0], permutation[2]
//			return course == 0 || classroom == 0 || evaluator.Fits(course, classroom)
//		},
//	})
type permutationGenerator interface {
	ConstrainedPermutations(constraints []func(permutation []uint64) bool) [][]uint64
}

func newPermutationGenerator(domains ...uint64) permutationGenerator {
	return &permutationGeneratorImplementation{domains: domains}
}

type permutationGeneratorImplementation struct {
	domains []uint64
}

func (generator *permutationGeneratorImplementation) ConstrainedPermutations(constraints []func(permutation []uint64) bool) [][]uint64 {
	permutations := make([][]uint64, 0)
	generator.constrainedPermutations(constraints, 0, make([]uint64, len(generator.domains)), &permutations)
	return permutations
}

func (generator *permutationGeneratorImplementation) constrainedPermutations(
	constraints []func(permutation []uint64) bool,
	currentDomain int,
	permutation []uint64,
	permutations *[][]uint64) {

	if currentDomain >= len(generator.domains) {
		permutationCopy := make([]uint64, len(permutation))
		copy(permutationCopy, permutation)
		*permutations = append(*permutations, permutationCopy)
		return
	}

	for value := uint64(1); value <= generator.domains[currentDomain]; value++ {
		permutation[currentDomain] = value
		constraintViolated := false
		for _, constraint := range constraints {
			if !constraint(permutation) {
				constraintViolated = true
				break
			}
		}

		if constraintViolated {
			continue
		}

		generator.constrainedPermutations(constraints, currentDomain+1, permutation, permutations)
	}

	permutation[currentDomain] = 0
}
