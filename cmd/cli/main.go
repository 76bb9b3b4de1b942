package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/limaJavier/coursetimetable/internal/dataset"
	"github.com/limaJavier/coursetimetable/internal/export"
	"github.com/limaJavier/coursetimetable/internal/scheduler"
	"github.com/limaJavier/coursetimetable/pkg/model"
)

// Exit codes follow the SAT competition convention, extended with the outcomes a SAT verdict cannot express
var exitCodes = map[scheduler.Status]int{
	scheduler.StatusSolved:            10,
	scheduler.StatusInfeasible:        20,
	scheduler.StatusTimeout:           30,
	scheduler.StatusModelBuildFailure: 40,
}

func main() {
	// Define arguments
	strategyPtr := flag.String("strategy", "pure", `Strategy to build the timetable. Allowed values are:
- "pure" (Room assignment is part of the SAT model) and
- "postponed" (Rooms are assigned after solving through a bipartite matching per timeslot), where "pure" is the default`)
	solverPtr := flag.String("solver", "portfolio", fmt.Sprintf("SAT-Solver to use. Allowed values are: %v, where \"portfolio\" is the default", strings.Join(scheduler.Solvers, ", ")))
	workersPtr := flag.Int("workers", 8, "Number of workers used by the portfolio solver")
	seedPtr := flag.Uint64("seed", 0, "Seed of the built-in solvers")
	timeLimitPtr := flag.Int("time-limit", 30, "Time limit in seconds")
	facultyPolicyPtr := flag.String("faculty-policy", "first", `Handling of courses without a known faculty: "first" (assign the first faculty) or "strict" (fail)`)
	configPathPtr := flag.String("config", defaultConfigPath(), "Path to the JSON file holding external solvers' executable paths")
	filePathPtr := flag.String("file", "", "Path to the input JSON file")
	csvDirPtr := flag.String("csv", "", "Path to a directory holding faculties.csv, courses.csv, classrooms.csv and timeslots.csv")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	exportDirPtr := flag.String("export", "", "Directory where timetable.json, timetable.csv and timetable.pdf will be written")
	flag.Parse()
	strategy := strings.ToLower(*strategyPtr)
	solverName := strings.ToLower(*solverPtr)

	// Validate arguments
	if !slices.Contains(scheduler.Strategies, strategy) {
		log.Fatalf("%v is not a valid strategy", strategy)
	} else if !slices.Contains(scheduler.Solvers, solverName) {
		log.Fatalf("%v is not a valid solver", solverName)
	} else if (*filePathPtr == "") == (*csvDirPtr == "") {
		log.Fatal("exactly one input (-file or -csv) must be specified")
	} else if *timeLimitPtr < 0 {
		log.Fatalf("time-limit must not be negative: %v", *timeLimitPtr)
	}

	facultyPolicy, err := model.ParseFacultyPolicy(*facultyPolicyPtr)
	if err != nil {
		log.Fatal(err)
	}
	defaults := model.StandardDefaults()
	defaults.FacultyPolicy = facultyPolicy

	// Initialize engines
	solver, err := scheduler.NewSolver(solverName, *workersPtr, *seedPtr, *configPathPtr)
	if err != nil {
		log.Fatalf("cannot initialize solver: %v", err)
	}
	timetabler, err := scheduler.NewTimetabler(strategy, solver)
	if err != nil {
		log.Fatal(err)
	}

	var source scheduler.DatasetSource = dataset.NewFileStore(*filePathPtr)
	if *csvDirPtr != "" {
		source = dataset.NewCSVStore(*csvDirPtr)
	}

	var sink scheduler.ResultSink
	if *exportDirPtr != "" {
		sink = export.NewExporter(*exportDirPtr)
	}

	// Build timetable
	result, err := scheduler.New(scheduler.Options{
		Source:     source,
		Sink:       sink,
		Timetabler: timetabler,
		Defaults:   defaults,
	}).Solve(context.Background(), *timeLimitPtr)
	if err != nil {
		log.Fatalf("an error occurred during timetable construction: %v", err)
	}

	if result.Status == scheduler.StatusSolved {
		// Marshal output into json
		output, err := json.MarshalIndent(result.Entries, "", "  ")
		if err != nil {
			log.Fatalf("an error occurred while building output json: %v", err)
		}

		if *outFilePathPtr == "" {
			fmt.Println(string(output))
		} else if err := os.WriteFile(*outFilePathPtr, output, 0666); err != nil {
			log.Fatalf("an error occurred while writing to the output file: %v", err)
		}
	} else {
		fmt.Printf("Status: %v\n", result.Status)
		if result.Reason != "" {
			fmt.Printf("Reason: %v\n", result.Reason)
		}
	}

	fmt.Fprintf(os.Stderr, "Variables: %v\n", result.Variables)
	fmt.Fprintf(os.Stderr, "Clauses: %v\n", result.Clauses)
	fmt.Fprintf(os.Stderr, "Duration: %v\n", result.Duration)
	os.Exit(exitCodes[result.Status])
}

// defaultConfigPath points to the config.json next to the executable
func defaultConfigPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return path.Join(path.Dir(execPath), "config.json")
}
