package sat

import "math/rand/v2"

func generateSATInstance(rng *rand.Rand, literals uint64, clauses int) SAT {
	satInstance := SAT{
		Variables: literals,
		Clauses:   make([][]int64, clauses),
	}

	for i := range clauses {
		satInstance.Clauses[i] = make([]int64, 0, 3)
		// Short clauses keep random instances around the satisfiability threshold
		width := rng.IntN(3) + 1
		for range width {
			var sign int64 = 1
			if rng.Float32() < 0.5 {
				sign = -1
			}
			satInstance.Clauses[i] = append(satInstance.Clauses[i], sign*(1+rng.Int64N(int64(literals))))
		}
	}

	return satInstance
}

// bruteForceSatisfiable enumerates every assignment of the instance's variables
func bruteForceSatisfiable(instance SAT) bool {
	for mask := uint64(0); mask < 1<<instance.Variables; mask++ {
		satisfied := true
		for _, clause := range instance.Clauses {
			clauseSatisfied := false
			for _, literal := range clause {
				variable := literal
				if variable < 0 {
					variable = -variable
				}
				value := mask&(1<<(variable-1)) != 0
				if (literal > 0) == value {
					clauseSatisfied = true
					break
				}
			}
			if !clauseSatisfied {
				satisfied = false
				break
			}
		}
		if satisfied {
			return true
		}
	}
	return false
}

// pigeonholeInstance states that pigeons fit into holes with at most one pigeon per hole
func pigeonholeInstance(pigeons, holes int) SAT {
	encoder := NewEncoder(uint64(pigeons * holes))
	variable := func(pigeon, hole int) int64 { return int64(pigeon*holes + hole + 1) }

	for pigeon := range pigeons {
		clause := make([]int64, 0, holes)
		for hole := range holes {
			clause = append(clause, variable(pigeon, hole))
		}
		encoder.AddClause(clause...)
	}
	for hole := range holes {
		for i := range pigeons - 1 {
			for j := i + 1; j < pigeons; j++ {
				encoder.AddClause(-variable(i, hole), -variable(j, hole))
			}
		}
	}
	return encoder.SAT()
}
