package model

// indexer is designed to give a unique variable to each candidate (course, timeslot, classroom) and vice versa.
// Variables are 1-based and follow the order of the candidates it was built from
type indexer interface {
	// Returns the variable of a candidate, false if the candidate was never materialized
	Index(course, timeslot, classroom uint64) (uint64, bool)
	// Returns the candidate's attributes from a variable
	Attributes(variable uint64) (course, timeslot, classroom uint64)
	// Returns the number of candidates
	Variables() uint64
}

func newIndexer(candidates [][]uint64, courses, timeslots, classrooms uint64) indexer {
	indexer := &indexerImplementation{
		courses:    courses,
		timeslots:  timeslots,
		classrooms: classrooms,
		variables:  make([]uint64, courses*timeslots*classrooms),
		candidates: make([][3]uint64, 0, len(candidates)),
	}

	for _, candidate := range candidates {
		course, timeslot, classroom := candidate[0], candidate[1], candidate[2]
		indexer.candidates = append(indexer.candidates, [3]uint64{course, timeslot, classroom})
		indexer.variables[indexer.key(course, timeslot, classroom)] = uint64(len(indexer.candidates))
	}
	return indexer
}

type indexerImplementation struct {
	courses    uint64
	timeslots  uint64
	classrooms uint64
	variables  []uint64 // Dense key to variable, 0 when there's no candidate
	candidates [][3]uint64
}

func (indexer *indexerImplementation) key(course, timeslot, classroom uint64) uint64 {
	return (course - 1) + indexer.courses*(timeslot-1) + indexer.courses*indexer.timeslots*(classroom-1)
}

func (indexer *indexerImplementation) Index(course, timeslot, classroom uint64) (uint64, bool) {
	if course == 0 || course > indexer.courses ||
		timeslot == 0 || timeslot > indexer.timeslots ||
		classroom == 0 || classroom > indexer.classrooms {
		return 0, false
	}
	variable := indexer.variables[indexer.key(course, timeslot, classroom)]
	return variable, variable != 0
}

func (indexer *indexerImplementation) Attributes(variable uint64) (course, timeslot, classroom uint64) {
	candidate := indexer.candidates[variable-1]
	return candidate[0], candidate[1], candidate[2]
}

func (indexer *indexerImplementation) Variables() uint64 {
	return uint64(len(indexer.candidates))
}
