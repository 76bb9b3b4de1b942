package model

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/limaJavier/coursetimetable/pkg/sat"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timetablers = map[string]func(sat.SATSolver) Timetabler{
	"pure":      NewEmbeddedRoomTimetabler,
	"postponed": NewIsolatedRoomTimetabler,
}

var solvers = map[string]func() sat.SATSolver{
	"cdcl":      func() sat.SATSolver { return sat.NewCDCLSolver(sat.DefaultCDCLOptions()) },
	"portfolio": func() sat.SATSolver { return sat.NewPortfolioSolver(4, 1) },
}

func TestTimetablers(t *testing.T) {
	for strategy, newTimetabler := range timetablers {
		for solverName, newSolver := range solvers {
			timetabler := newTimetabler(newSolver())

			t.Run(strategy+"/"+solverName+"/Solved instance", func(t *testing.T) {
				solvedExecution(t, timetabler)
			})
			t.Run(strategy+"/"+solverName+"/Uncoverable course", func(t *testing.T) {
				uncoverableExecution(t, timetabler)
			})
			t.Run(strategy+"/"+solverName+"/Infeasible instance", func(t *testing.T) {
				infeasibleExecution(t, timetabler)
			})
			t.Run(strategy+"/"+solverName+"/Timeout", func(t *testing.T) {
				timeoutExecution(t, timetabler)
			})
		}
	}
}

func solvedExecution(t *testing.T, timetabler Timetabler) {
	//** Arrange
	input := normalize(t, scenarioA())

	//** Act
	timetable, variables, clauses, err := timetabler.Build(context.Background(), input)

	//** Assert
	require.NoError(t, err)
	require.NotNil(t, timetable)
	assert.Greater(t, variables, uint64(0))
	assert.Greater(t, clauses, uint64(0))
	assert.NoError(t, timetabler.Verify(timetable, input))

	require.Len(t, timetable, 2)
	assert.NotEqual(t, timetable[0][1], timetable[1][1], "sessions must be on distinct timeslots")
}

func uncoverableExecution(t *testing.T, timetabler Timetabler) {
	//** Arrange
	input := normalize(t, scenarioB())

	//** Act
	timetable, _, _, err := timetabler.Build(context.Background(), input)

	//** Assert
	var buildErr *ModelBuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Contains(t, buildErr.Entity, "Physics")
	assert.Nil(t, timetable)
}

func infeasibleExecution(t *testing.T, timetabler Timetabler) {
	//** Arrange
	input := normalize(t, scenarioC())

	//** Act
	timetable, _, _, err := timetabler.Build(context.Background(), input)

	//** Assert
	assert.NoError(t, err)
	assert.Nil(t, timetable)
}

func timeoutExecution(t *testing.T, timetabler Timetabler) {
	//** Arrange
	input := normalize(t, generateDataset(rand.New(rand.NewPCG(1, 1)), 40, 6, 8, 20))
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	//** Act
	timetable, _, _, err := timetabler.Build(ctx, input)

	//** Assert
	assert.ErrorIs(t, err, sat.ErrTimeout)
	assert.Nil(t, timetable)
}

func TestTimetablersAgreeOnRandomInstances(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 29))
	embedded := NewEmbeddedRoomTimetabler(sat.NewCDCLSolver(sat.DefaultCDCLOptions()))
	isolated := NewIsolatedRoomTimetabler(sat.NewCDCLSolver(sat.DefaultCDCLOptions()))
	verdicts := make(map[bool]int)

	for range 60 {
		//** Arrange
		input := normalize(t, generateDataset(rng, rng.IntN(6)+1, rng.IntN(3)+1, rng.IntN(3)+1, rng.IntN(4)+1))

		//** Act
		embeddedTimetable, _, _, embeddedErr := embedded.Build(context.Background(), input)
		isolatedTimetable, _, _, isolatedErr := isolated.Build(context.Background(), input)

		//** Assert
		require.NoError(t, embeddedErr)
		require.NoError(t, isolatedErr)
		require.Equal(t, embeddedTimetable == nil, isolatedTimetable == nil, "verdicts differ for %+v", input)
		verdicts[embeddedTimetable != nil]++

		if embeddedTimetable != nil {
			assert.NoError(t, verify(embeddedTimetable, input))
			assert.NoError(t, verify(isolatedTimetable, input))
		}
	}

	// Make sure both verdicts were exercised
	assert.Greater(t, verdicts[true], 0)
	assert.Greater(t, verdicts[false], 0)
}

func TestScheduleInvariantsOnRandomInstances(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	timetabler := NewEmbeddedRoomTimetabler(sat.NewPortfolioSolver(4, 3))

	for range 20 {
		//** Arrange
		input := normalize(t, generateDataset(rng, 12, 5, 4, 10))

		//** Act
		timetable, _, _, err := timetabler.Build(context.Background(), input)
		require.NoError(t, err)
		if timetable == nil {
			continue
		}

		//** Assert
		// Coverage
		sessions := lo.CountValuesBy(timetable, func(positive [3]uint64) uint64 { return positive[0] })
		for _, course := range input.Courses {
			assert.Equal(t, int(course.SessionsPerWeek), sessions[course.Id])
		}

		// Room exclusivity
		rooms := lo.CountValuesBy(timetable, func(positive [3]uint64) [2]uint64 { return [2]uint64{positive[1], positive[2]} })
		for key, count := range rooms {
			assert.Equal(t, 1, count, "classroom %v double booked", key)
		}

		// Faculty exclusivity
		faculties := lo.CountValuesBy(timetable, func(positive [3]uint64) [2]uint64 {
			return [2]uint64{positive[1], input.Course(positive[0]).Faculty}
		})
		for key, count := range faculties {
			assert.Equal(t, 1, count, "faculty %v double booked", key)
		}

		// Capacity
		for _, positive := range timetable {
			assert.GreaterOrEqual(t, input.Classroom(positive[2]).Capacity, input.Course(positive[0]).Size)
		}
	}
}

func TestVerdictIsDeterministic(t *testing.T) {
	input := normalize(t, generateDataset(rand.New(rand.NewPCG(2, 4)), 10, 3, 3, 6))

	verdicts := lo.Map(lo.Range(8), func(seed int, _ int) bool {
		timetable, _, _, err := NewEmbeddedRoomTimetabler(sat.NewPortfolioSolver(seed%4+1, uint64(seed))).Build(context.Background(), input)
		require.NoError(t, err)
		return timetable != nil
	})

	assert.Len(t, lo.Uniq(verdicts), 1)
}

func TestSessionsExceedingTimeslotsAreInfeasible(t *testing.T) {
	//** Arrange
	raw := scenarioA()
	raw.Courses[0].SessionsPerWeek = int64Ptr(4)
	input := normalize(t, raw)

	for strategy, newTimetabler := range timetablers {
		//** Act
		timetable, _, _, err := newTimetabler(sat.NewCDCLSolver(sat.DefaultCDCLOptions())).Build(context.Background(), input)

		//** Assert
		assert.NoError(t, err, strategy)
		assert.Nil(t, timetable, strategy)
	}
}

func TestIsolatedRoomAssignmentRespectsCapacity(t *testing.T) {
	//** Arrange
	// Three courses compete for a single timeslot: only the large room hosts the large course
	raw := RawDataset{
		Faculties: []RawFaculty{{Id: 1, Name: "A"}, {Id: 2, Name: "B"}, {Id: 3, Name: "C"}},
		Courses: []RawCourse{
			{Id: 1, Name: "Small", FacultyId: 1, Size: int64Ptr(10), SessionsPerWeek: int64Ptr(1)},
			{Id: 2, Name: "Large", FacultyId: 2, Size: int64Ptr(90), SessionsPerWeek: int64Ptr(1)},
			{Id: 3, Name: "Medium", FacultyId: 3, Size: int64Ptr(40), SessionsPerWeek: int64Ptr(1)},
		},
		Classrooms: []RawClassroom{
			{Id: 1, Name: "S", Capacity: int64Ptr(40)},
			{Id: 2, Name: "L", Capacity: int64Ptr(100)},
			{Id: 3, Name: "M", Capacity: int64Ptr(45)},
		},
		Timeslots: []RawTimeslot{{Id: 1, Label: "Mon 9"}},
	}
	input := normalize(t, raw)
	timetabler := NewIsolatedRoomTimetabler(sat.NewCDCLSolver(sat.DefaultCDCLOptions()))

	//** Act
	timetable, _, _, err := timetabler.Build(context.Background(), input)

	//** Assert
	require.NoError(t, err)
	require.NotNil(t, timetable)
	assert.NoError(t, timetabler.Verify(timetable, input))
	assert.Contains(t, timetable, [3]uint64{2, 1, 2})
}

func TestLargeInstanceStaysWithinBudget(t *testing.T) {
	input := normalize(t, generateDataset(rand.New(rand.NewPCG(50, 40)), 50, 20, 15, 40))

	for solverName, newSolver := range solvers {
		t.Run(solverName, func(t *testing.T) {
			//** Arrange
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			//** Act
			start := time.Now()
			timetable, variables, _, err := NewEmbeddedRoomTimetabler(newSolver()).Build(ctx, input)
			elapsed := time.Since(start)

			//** Assert
			assert.Less(t, elapsed, 3*time.Second)
			if err != nil {
				assert.ErrorIs(t, err, sat.ErrTimeout)
				assert.Nil(t, timetable)
			} else if timetable != nil {
				assert.NoError(t, verify(timetable, input))
			}
			// Candidates are bounded by 50*40*15, the encoding adds a linear number of registers on top
			assert.Less(t, variables, uint64(1_000_000))
		})
	}
}
