package sat

import (
	"fmt"
	"strings"
)

// SATSolution holds one signed literal per variable of the instance (positive when the variable is true)
type SATSolution []int64

type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Value reports whether variable is assigned true in the solution
func (solution SATSolution) Value(variable uint64) bool {
	index := int(variable) - 1
	if index >= 0 && index < len(solution) && (solution[index] == int64(variable) || solution[index] == -int64(variable)) {
		return solution[index] > 0
	}
	// Solutions produced by external solvers are not guaranteed to be dense
	for _, literal := range solution {
		if literal == int64(variable) {
			return true
		} else if literal == -int64(variable) {
			return false
		}
	}
	return false
}

// Satisfies checks that the solution has no contradictions and satisfies every clause of the instance
func (solution SATSolution) Satisfies(instance SAT) bool {
	literals := make(map[int64]bool, len(solution))
	for _, literal := range solution {
		if literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	for _, clause := range instance.Clauses {
		satisfied := false
		for _, literal := range clause {
			if literals[literal] {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}
