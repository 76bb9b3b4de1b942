package sat

import "github.com/samber/lo"

// Cardinality constraints over at most this many literals are encoded pairwise, larger ones with a sequential counter
const pairwiseThreshold = 6

// Encoder incrementally builds a SAT instance, allocating auxiliary variables for cardinality encodings on demand.
// Variables 1..variables passed to NewEncoder are reserved for the caller
type Encoder struct {
	variables uint64
	clauses   [][]int64
}

func NewEncoder(variables uint64) *Encoder {
	return &Encoder{
		variables: variables,
		clauses:   make([][]int64, 0),
	}
}

// NewVariable allocates a fresh auxiliary variable
func (encoder *Encoder) NewVariable() int64 {
	encoder.variables++
	return int64(encoder.variables)
}

func (encoder *Encoder) AddClause(literals ...int64) {
	clause := make([]int64, len(literals))
	copy(clause, literals)
	encoder.clauses = append(encoder.clauses, clause)
}

// Contradiction adds a trivially unsatisfiable pair of clauses
func (encoder *Encoder) Contradiction() {
	variable := encoder.NewVariable()
	encoder.AddClause(variable)
	encoder.AddClause(-variable)
}

func (encoder *Encoder) AtMostOne(literals []int64) {
	if len(literals) <= 1 {
		return
	} else if len(literals) > pairwiseThreshold {
		encoder.AtMost(literals, 1)
		return
	}

	for i := range len(literals) - 1 {
		for j := i + 1; j < len(literals); j++ {
			encoder.AddClause(-literals[i], -literals[j])
		}
	}
}

// AtMost encodes sum(literals) <= k using Sinz's sequential counter
func (encoder *Encoder) AtMost(literals []int64, k int) {
	n := len(literals)
	if k < 0 {
		encoder.Contradiction()
		return
	} else if k >= n {
		return
	} else if k == 0 {
		lo.ForEach(literals, func(literal int64, _ int) { encoder.AddClause(-literal) })
		return
	} else if k == 1 && n <= pairwiseThreshold {
		encoder.AtMostOne(literals)
		return
	}

	// registers[i][j] is true if at least j+1 of literals[0..i] are true
	registers := make([][]int64, n-1)
	for i := range n - 1 {
		registers[i] = make([]int64, k)
		for j := range k {
			registers[i][j] = encoder.NewVariable()
		}
	}

	encoder.AddClause(-literals[0], registers[0][0])
	for j := 1; j < k; j++ {
		encoder.AddClause(-registers[0][j])
	}

	for i := 1; i < n-1; i++ {
		encoder.AddClause(-literals[i], registers[i][0])
		encoder.AddClause(-registers[i-1][0], registers[i][0])
		for j := 1; j < k; j++ {
			encoder.AddClause(-literals[i], -registers[i-1][j-1], registers[i][j])
			encoder.AddClause(-registers[i-1][j], registers[i][j])
		}
		encoder.AddClause(-literals[i], -registers[i-1][k-1])
	}

	encoder.AddClause(-literals[n-1], -registers[n-2][k-1])
}

// AtLeast encodes sum(literals) >= k with a sequential counter of n*k registers
func (encoder *Encoder) AtLeast(literals []int64, k int) {
	n := len(literals)
	if k <= 0 {
		return
	} else if k > n {
		encoder.Contradiction()
		return
	} else if k == 1 {
		encoder.AddClause(literals...)
		return
	} else if k == n {
		lo.ForEach(literals, func(literal int64, _ int) { encoder.AddClause(literal) })
		return
	}

	// registers[i][j] implies at least j+1 of literals[0..i] are true
	registers := make([][]int64, n)
	for i := range n {
		registers[i] = make([]int64, k)
		for j := range k {
			registers[i][j] = encoder.NewVariable()
		}
	}

	encoder.AddClause(-registers[0][0], literals[0])
	for j := 1; j < k; j++ {
		encoder.AddClause(-registers[0][j])
	}

	for i := 1; i < n; i++ {
		encoder.AddClause(-registers[i][0], registers[i-1][0], literals[i])
		for j := 1; j < k; j++ {
			encoder.AddClause(-registers[i][j], registers[i-1][j], literals[i])
			encoder.AddClause(-registers[i][j], registers[i-1][j], registers[i-1][j-1])
		}
	}

	encoder.AddClause(registers[n-1][k-1])
}

func (encoder *Encoder) Exactly(literals []int64, k int) {
	encoder.AtMost(literals, k)
	encoder.AtLeast(literals, k)
}

// Between encodes min <= sum(literals) <= max
func (encoder *Encoder) Between(literals []int64, min, max int) {
	if min > max {
		encoder.Contradiction()
		return
	}
	encoder.AtLeast(literals, min)
	encoder.AtMost(literals, max)
}

func (encoder *Encoder) SAT() SAT {
	return SAT{
		Variables: encoder.variables,
		Clauses:   encoder.clauses,
	}
}
