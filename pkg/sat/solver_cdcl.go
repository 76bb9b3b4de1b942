package sat

import (
	"container/heap"
	"context"
	"math/rand/v2"
	"slices"
)

const (
	valueFalse int8 = -1
	valueUndef int8 = 0
	valueTrue  int8 = 1

	// Context is polled once every deadlineCheckInterval conflicts or decisions
	deadlineCheckInterval = 128
	loadCheckInterval     = 4096 // Clauses attached between context polls while loading
	activityRescaleLimit  = 1e100
)

type CDCLOptions struct {
	Seed            uint64  // Seeds tie-breaking, random decisions and initial phases
	RandomFrequency float64 // Probability of branching on a random variable instead of the most active one
	RestartBase     int     // Conflicts per Luby unit between restarts
	VariableDecay   float64
	ClauseDecay     float64
}

func DefaultCDCLOptions() CDCLOptions {
	return CDCLOptions{
		Seed:            0,
		RandomFrequency: 0,
		RestartBase:     100,
		VariableDecay:   0.95,
		ClauseDecay:     0.999,
	}
}

type cdclSolver struct {
	options CDCLOptions
}

// NewCDCLSolver returns an in-process conflict-driven clause-learning solver
func NewCDCLSolver(options CDCLOptions) SATSolver {
	defaults := DefaultCDCLOptions()
	if options.RestartBase <= 0 {
		options.RestartBase = defaults.RestartBase
	}
	if options.VariableDecay <= 0 || options.VariableDecay >= 1 {
		options.VariableDecay = defaults.VariableDecay
	}
	if options.ClauseDecay <= 0 || options.ClauseDecay >= 1 {
		options.ClauseDecay = defaults.ClauseDecay
	}
	return &cdclSolver{options: options}
}

func (solver *cdclSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	if ctx.Err() != nil {
		return nil, timeoutError(ctx)
	}

	search, loaded := newSearch(ctx, instance, solver.options)
	if !loaded {
		return nil, timeoutError(ctx)
	}
	switch search.solve(ctx) {
	case valueTrue:
		return search.model(), nil
	case valueFalse:
		return nil, nil
	default:
		return nil, timeoutError(ctx)
	}
}

type clause struct {
	literals []int // The first two literals are watched. For reason clauses literals[0] is the implied one
	learnt   bool
	deleted  bool
	activity float64
}

// Literals are encoded as 2*variable for the positive and 2*variable+1 for the negative polarity (variables are 0-based)
func literalOf(literal int64) int {
	if literal > 0 {
		return int(literal-1) << 1
	}
	return int(-literal-1)<<1 | 1
}

func variableOf(literal int) int { return literal >> 1 }

type search struct {
	options CDCLOptions
	rng     *rand.Rand
	ok      bool

	variables int
	clauses   []*clause
	learnts   []*clause
	watches   [][]*clause

	assigns  []int8
	level    []int
	reason   []*clause
	trail    []int
	trailLim []int
	qhead    int
	phase    []bool
	seen     []bool

	activity    []float64
	order       *variableOrder
	varInc      float64
	claInc      float64
	maxLearnts  float64
	stepCounter uint64
}

// newSearch loads the instance, reporting false when ctx expires before every clause is attached
func newSearch(ctx context.Context, instance SAT, options CDCLOptions) (*search, bool) {
	variables := int(instance.Variables)
	for _, literals := range instance.Clauses {
		for _, literal := range literals {
			if literal > int64(variables) {
				variables = int(literal)
			} else if -literal > int64(variables) {
				variables = int(-literal)
			}
		}
	}

	s := &search{
		options:   options,
		rng:       rand.New(rand.NewPCG(options.Seed, options.Seed^0x9e3779b97f4a7c15)),
		ok:        true,
		variables: variables,
		watches:   make([][]*clause, 2*variables),
		assigns:   make([]int8, variables),
		level:     make([]int, variables),
		reason:    make([]*clause, variables),
		trail:     make([]int, 0, variables),
		phase:     make([]bool, variables),
		seen:      make([]bool, variables),
		activity:  make([]float64, variables),
		varInc:    1,
		claInc:    1,
	}

	// Seeded workers start from a perturbed order and random phases to diversify the search
	if options.Seed != 0 {
		for variable := range variables {
			s.activity[variable] = s.rng.Float64() * 1e-5
			s.phase[variable] = s.rng.IntN(2) == 0
		}
	}
	s.order = newVariableOrder(s.activity)

	for i, literals := range instance.Clauses {
		if i%loadCheckInterval == 0 && ctx.Err() != nil {
			return nil, false
		}
		if !s.addClause(literals) {
			s.ok = false
			break
		}
	}
	s.maxLearnts = float64(len(s.clauses))/3 + 1000

	return s, true
}

func (s *search) value(literal int) int8 {
	value := s.assigns[variableOf(literal)]
	if literal&1 == 1 {
		return -value
	}
	return value
}

func (s *search) decisionLevel() int { return len(s.trailLim) }

// addClause adds an original clause at decision level 0, returns false if the instance became trivially unsatisfiable
func (s *search) addClause(raw []int64) bool {
	literals := make([]int, 0, len(raw))
	for _, rawLiteral := range raw {
		if rawLiteral == 0 {
			continue
		}
		literal := literalOf(rawLiteral)
		if slices.Contains(literals, literal^1) || s.value(literal) == valueTrue {
			return true // Tautology or already satisfied
		} else if slices.Contains(literals, literal) || s.value(literal) == valueFalse {
			continue
		}
		literals = append(literals, literal)
	}

	switch len(literals) {
	case 0:
		return false
	case 1:
		s.enqueue(literals[0], nil)
		return s.propagate() == nil
	}

	c := &clause{literals: literals}
	s.attach(c)
	s.clauses = append(s.clauses, c)
	return true
}

func (s *search) attach(c *clause) {
	s.watches[c.literals[0]] = append(s.watches[c.literals[0]], c)
	s.watches[c.literals[1]] = append(s.watches[c.literals[1]], c)
}

func (s *search) enqueue(literal int, from *clause) {
	variable := variableOf(literal)
	if literal&1 == 1 {
		s.assigns[variable] = valueFalse
	} else {
		s.assigns[variable] = valueTrue
	}
	s.level[variable] = s.decisionLevel()
	s.reason[variable] = from
	s.trail = append(s.trail, literal)
}

// propagate performs unit propagation over the two-watched-literal scheme and returns the conflicting clause if any
func (s *search) propagate() *clause {
	for s.qhead < len(s.trail) {
		falseLiteral := s.trail[s.qhead] ^ 1
		s.qhead++

		watchers := s.watches[falseLiteral]
		i, j := 0, 0
		for i < len(watchers) {
			c := watchers[i]
			i++
			if c.deleted {
				continue // Lazily drop clauses removed by reduceLearnts
			}

			// Make sure the false literal is literals[1]
			if c.literals[0] == falseLiteral {
				c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
			}

			if s.value(c.literals[0]) == valueTrue {
				watchers[j] = c
				j++
				continue
			}

			// Look for a new literal to watch
			moved := false
			for k := 2; k < len(c.literals); k++ {
				if s.value(c.literals[k]) != valueFalse {
					c.literals[1], c.literals[k] = c.literals[k], c.literals[1]
					s.watches[c.literals[1]] = append(s.watches[c.literals[1]], c)
					moved = true
					break
				}
			}
			if moved {
				continue
			}

			watchers[j] = c
			j++
			if s.value(c.literals[0]) == valueFalse {
				// Conflict: keep the remaining watchers and stop propagating
				for i < len(watchers) {
					watchers[j] = watchers[i]
					i++
					j++
				}
				s.watches[falseLiteral] = watchers[:j]
				s.qhead = len(s.trail)
				return c
			}
			s.enqueue(c.literals[0], c)
		}
		s.watches[falseLiteral] = watchers[:j]
	}
	return nil
}

// analyze derives a first-UIP learnt clause from the conflict and the level to backtrack to
func (s *search) analyze(conflict *clause) ([]int, int) {
	learnt := []int{-1} // Slot for the asserting literal
	pathCount := 0
	literal := -1
	index := len(s.trail) - 1

	for {
		if conflict.learnt {
			s.bumpClause(conflict)
		}

		start := 0
		if literal != -1 {
			start = 1
		}
		for _, q := range conflict.literals[start:] {
			variable := variableOf(q)
			if s.seen[variable] || s.level[variable] == 0 {
				continue
			}
			s.bumpVariable(variable)
			s.seen[variable] = true
			if s.level[variable] >= s.decisionLevel() {
				pathCount++
			} else {
				learnt = append(learnt, q)
			}
		}

		// Select the next literal of the current level to expand
		for !s.seen[variableOf(s.trail[index])] {
			index--
		}
		literal = s.trail[index]
		index--
		conflict = s.reason[variableOf(literal)]
		s.seen[variableOf(literal)] = false
		pathCount--
		if pathCount <= 0 {
			break
		}
	}
	learnt[0] = literal ^ 1

	for _, q := range learnt[1:] {
		s.seen[variableOf(q)] = false
	}

	backtrackLevel := 0
	if len(learnt) > 1 {
		maxIndex := 1
		for k := 2; k < len(learnt); k++ {
			if s.level[variableOf(learnt[k])] > s.level[variableOf(learnt[maxIndex])] {
				maxIndex = k
			}
		}
		learnt[1], learnt[maxIndex] = learnt[maxIndex], learnt[1]
		backtrackLevel = s.level[variableOf(learnt[1])]
	}

	return learnt, backtrackLevel
}

func (s *search) cancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}
	for k := len(s.trail) - 1; k >= s.trailLim[level]; k-- {
		variable := variableOf(s.trail[k])
		s.phase[variable] = s.trail[k]&1 == 0
		s.assigns[variable] = valueUndef
		s.reason[variable] = nil
		s.order.push(variable)
	}
	s.trail = s.trail[:s.trailLim[level]]
	s.trailLim = s.trailLim[:level]
	s.qhead = len(s.trail)
}

func (s *search) record(learnt []int) {
	if len(learnt) == 1 {
		s.enqueue(learnt[0], nil)
		return
	}
	c := &clause{literals: learnt, learnt: true}
	s.attach(c)
	s.bumpClause(c)
	s.learnts = append(s.learnts, c)
	s.enqueue(learnt[0], c)
}

func (s *search) bumpVariable(variable int) {
	s.activity[variable] += s.varInc
	if s.activity[variable] > activityRescaleLimit {
		for k := range s.activity {
			s.activity[k] *= 1 / activityRescaleLimit
		}
		s.varInc *= 1 / activityRescaleLimit
	}
	s.order.update(variable)
}

func (s *search) bumpClause(c *clause) {
	c.activity += s.claInc
	if c.activity > activityRescaleLimit {
		for _, learnt := range s.learnts {
			learnt.activity *= 1 / activityRescaleLimit
		}
		s.claInc *= 1 / activityRescaleLimit
	}
}

func (s *search) decayActivities() {
	s.varInc /= s.options.VariableDecay
	s.claInc /= s.options.ClauseDecay
}

func (s *search) locked(c *clause) bool {
	implied := c.literals[0]
	return s.reason[variableOf(implied)] == c && s.value(implied) == valueTrue
}

// reduceLearnts removes the less active half of the learnt clauses, keeping binary and locked ones
func (s *search) reduceLearnts() {
	slices.SortFunc(s.learnts, func(a, b *clause) int {
		switch {
		case a.activity < b.activity:
			return -1
		case a.activity > b.activity:
			return 1
		}
		return 0
	})

	half := len(s.learnts) / 2
	kept := s.learnts[:0]
	for k, c := range s.learnts {
		if k < half && len(c.literals) > 2 && !s.locked(c) {
			c.deleted = true
			continue
		}
		kept = append(kept, c)
	}
	s.learnts = kept
}

func (s *search) pickBranchLiteral() int {
	variable := -1
	if s.options.RandomFrequency > 0 && s.rng.Float64() < s.options.RandomFrequency && s.order.Len() > 0 {
		candidate := s.order.variables[s.rng.IntN(s.order.Len())]
		if s.assigns[candidate] == valueUndef {
			variable = candidate
		}
	}

	for variable == -1 || s.assigns[variable] != valueUndef {
		if s.order.Len() == 0 {
			return -1
		}
		variable = s.order.pop()
	}

	if s.phase[variable] {
		return variable << 1
	}
	return variable<<1 | 1
}

func (s *search) expired(ctx context.Context) bool {
	s.stepCounter++
	if s.stepCounter%deadlineCheckInterval != 0 {
		return false
	}
	return ctx.Err() != nil
}

func (s *search) solve(ctx context.Context) int8 {
	if !s.ok {
		return valueFalse
	}
	if s.propagate() != nil {
		return valueFalse
	}

	restarts := 0
	conflictBudget := luby(2, restarts) * float64(s.options.RestartBase)
	conflicts := 0

	for {
		if s.expired(ctx) {
			return valueUndef
		}

		conflict := s.propagate()
		if conflict != nil {
			conflicts++
			if s.decisionLevel() == 0 {
				return valueFalse
			}
			learnt, backtrackLevel := s.analyze(conflict)
			s.cancelUntil(backtrackLevel)
			s.record(learnt)
			s.decayActivities()
			continue
		}

		if float64(conflicts) >= conflictBudget {
			s.cancelUntil(0)
			restarts++
			conflictBudget = luby(2, restarts) * float64(s.options.RestartBase)
			conflicts = 0
		}

		if float64(len(s.learnts)-len(s.trail)) >= s.maxLearnts {
			s.reduceLearnts()
			s.maxLearnts *= 1.1
		}

		literal := s.pickBranchLiteral()
		if literal == -1 {
			return valueTrue // Every variable is assigned and no conflict remains
		}
		s.trailLim = append(s.trailLim, len(s.trail))
		s.enqueue(literal, nil)
	}
}

func (s *search) model() SATSolution {
	solution := make(SATSolution, s.variables)
	for variable := range s.variables {
		if s.assigns[variable] == valueTrue {
			solution[variable] = int64(variable + 1)
		} else {
			solution[variable] = -int64(variable + 1)
		}
	}
	return solution
}

// luby returns the x-th element of the Luby sequence scaled by y
func luby(y float64, x int) float64 {
	size, sequence := 1, 0
	for size < x+1 {
		sequence++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) >> 1
		sequence--
		x = x % size
	}
	result := 1.0
	for range sequence {
		result *= y
	}
	return result
}

// variableOrder is a max-heap of unassigned variables keyed by activity
type variableOrder struct {
	variables []int
	positions []int
	activity  []float64
}

func newVariableOrder(activity []float64) *variableOrder {
	order := &variableOrder{
		variables: make([]int, len(activity)),
		positions: make([]int, len(activity)),
		activity:  activity,
	}
	for variable := range activity {
		order.variables[variable] = variable
		order.positions[variable] = variable
	}
	heap.Init(order)
	return order
}

func (order *variableOrder) Len() int { return len(order.variables) }

func (order *variableOrder) Less(i, j int) bool {
	a, b := order.variables[i], order.variables[j]
	if order.activity[a] != order.activity[b] {
		return order.activity[a] > order.activity[b]
	}
	return a < b
}

func (order *variableOrder) Swap(i, j int) {
	order.variables[i], order.variables[j] = order.variables[j], order.variables[i]
	order.positions[order.variables[i]] = i
	order.positions[order.variables[j]] = j
}

func (order *variableOrder) Push(x any) {
	variable := x.(int)
	order.positions[variable] = len(order.variables)
	order.variables = append(order.variables, variable)
}

func (order *variableOrder) Pop() any {
	last := len(order.variables) - 1
	variable := order.variables[last]
	order.variables = order.variables[:last]
	order.positions[variable] = -1
	return variable
}

func (order *variableOrder) push(variable int) {
	if order.positions[variable] == -1 {
		heap.Push(order, variable)
	}
}

func (order *variableOrder) pop() int {
	return heap.Pop(order).(int)
}

func (order *variableOrder) update(variable int) {
	if position := order.positions[variable]; position != -1 {
		heap.Fix(order, position)
	}
}
