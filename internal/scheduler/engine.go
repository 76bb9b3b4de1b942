package scheduler

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/limaJavier/coursetimetable/pkg/model"
	"github.com/limaJavier/coursetimetable/pkg/sat"
)

var (
	Strategies = []string{"pure", "postponed"}
	Solvers    = []string{"cdcl", "portfolio", "kissat", "cadical", "cryptominisat", "minisat", "glucosesimp", "slime", "ortoolsat"}
)

// NewSolver builds the named solver. External solvers resolve their executables from the JSON file at configPath,
// falling back to $PATH when the file does not exist
func NewSolver(name string, workers int, seed uint64, configPath string) (sat.SATSolver, error) {
	switch name {
	case "cdcl":
		options := sat.DefaultCDCLOptions()
		options.Seed = seed
		return sat.NewCDCLSolver(options), nil
	case "", "portfolio":
		if workers < 1 {
			return nil, fmt.Errorf("portfolio solver needs at least one worker: %v", workers)
		}
		return sat.NewPortfolioSolver(workers, seed), nil
	}

	paths := make(map[string]string)
	if configPath != "" {
		loaded, err := sat.LoadExecutablePaths(configPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		} else if err == nil {
			paths = loaded
		}
	}
	return sat.NewExternalSolver(name, paths)
}

// NewTimetabler builds the timetabler of a strategy: "pure" embeds room assignment in the SAT model, "postponed"
// assigns rooms after solving
func NewTimetabler(strategy string, solver sat.SATSolver) (model.Timetabler, error) {
	switch strategy {
	case "", "pure":
		return model.NewEmbeddedRoomTimetabler(solver), nil
	case "postponed":
		return model.NewIsolatedRoomTimetabler(solver), nil
	default:
		return nil, fmt.Errorf("%v is not a valid strategy", strategy)
	}
}
