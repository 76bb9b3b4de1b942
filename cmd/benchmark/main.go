package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/limaJavier/coursetimetable/internal/dataset"
	"github.com/limaJavier/coursetimetable/pkg/model"
)

const MB float32 = 1024

var resultTypes = map[int]string{
	10: "solved",
	20: "infeasible",
	30: "timeout",
	40: "model_build_failure",
}

type TestMetadata struct {
	Name       string `csv:"test"`
	Faculties  int    `csv:"faculties"`
	Courses    int    `csv:"courses"`
	Classrooms int    `csv:"classrooms"`
	Timeslots  int    `csv:"timeslots"`
	Sessions   uint64 `csv:"sessions"`
}

type BenchmarkResult struct {
	TestMetadata

	Solver        string  `csv:"solver"`
	Strategy      string  `csv:"strategy"`
	Duration      int64   `csv:"duration_ms"`
	Memory        float32 `csv:"memory_mb"`
	CpuPercentage int64   `csv:"cpu_percentage"`
	Result        string  `csv:"result"`
}

func main() {
	executablePtr := flag.String("executable", "../../bin/timetable", "Path to the timetable CLI executable")
	directoryPtr := flag.String("dir", "../../test/datasets/", "Directory holding the JSON datasets to benchmark")
	generatePtr := flag.Int("generate", 0, "Number of random datasets to generate into the directory before benchmarking")
	seedPtr := flag.Uint64("seed", 1, "Seed used to generate datasets")
	solversPtr := flag.String("solvers", "cdcl,portfolio,kissat", "Comma separated solvers to benchmark")
	timeLimitPtr := flag.Int("time-limit", 60, "Time limit in seconds of every run")
	outPtr := flag.String("out", "benchmark_results.csv", "Path to the CSV results file")
	flag.Parse()

	if *generatePtr > 0 {
		generateTests(*directoryPtr, *generatePtr, *seedPtr)
	}

	tests := getTests(*directoryPtr)
	solvers := strings.Split(*solversPtr, ",")
	strategies := []string{"pure", "postponed"}
	results := make([]BenchmarkResult, 0, len(tests)*len(strategies)*len(solvers))

	for _, test := range tests {
		for _, strategy := range strategies {
			for _, solver := range solvers {
				fmt.Printf("Benchmarking test \"%v\" with strategy \"%v\" and solver \"%v\"\n", test.Name, strategy, solver)

				duration, maxMemory, cpuPercentage, result := measure(*executablePtr, strategy, solver, *timeLimitPtr, test.Name)

				results = append(results, BenchmarkResult{
					Solver:        solver,
					Strategy:      strategy,
					TestMetadata:  test,
					Duration:      duration,
					Memory:        maxMemory,
					CpuPercentage: cpuPercentage,
					Result:        result,
				})
			}
		}
	}

	toCsv(*outPtr, results)
}

// generateTests writes random datasets whose sizes grow with their position
func generateTests(directory string, count int, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed))
	for i := range count {
		scale := i + 1
		raw := generateDataset(rng, 10*scale, 2*scale+1, 2*scale, 20+5*scale)
		store := dataset.NewFileStore(filepath.Join(directory, fmt.Sprintf("generated_%03d.json", scale)))
		if err := store.Save(context.Background(), raw); err != nil {
			log.Fatalf("cannot write generated dataset: %v", err)
		}
	}
}

func generateDataset(rng *rand.Rand, courses, faculties, classrooms, timeslots int) model.RawDataset {
	raw := model.RawDataset{}
	for faculty := range faculties {
		raw.Faculties = append(raw.Faculties, model.RawFaculty{Id: faculty + 1, Name: fmt.Sprintf("Faculty %d", faculty+1)})
	}
	for classroom := range classrooms {
		raw.Classrooms = append(raw.Classrooms, model.RawClassroom{
			Id:       fmt.Sprintf("R%d", classroom+1),
			Name:     fmt.Sprintf("Room %d", classroom+1),
			Capacity: lo.ToPtr(int64(20 + rng.IntN(81))),
		})
	}
	for timeslot := range timeslots {
		raw.Timeslots = append(raw.Timeslots, model.RawTimeslot{
			Id:        timeslot + 1,
			DayOfWeek: lo.ToPtr(int64(timeslot % 5)),
			SlotIndex: lo.ToPtr(int64(timeslot / 5)),
		})
	}
	for course := range courses {
		raw.Courses = append(raw.Courses, model.RawCourse{
			Id:              fmt.Sprintf("C%d", course+1),
			Name:            fmt.Sprintf("Course %d", course+1),
			FacultyId:       rng.IntN(faculties) + 1,
			Size:            lo.ToPtr(int64(10 + rng.IntN(70))),
			SessionsPerWeek: lo.ToPtr(int64(1 + rng.IntN(4))),
		})
	}
	return raw
}

func getTests(directory string) []TestMetadata {
	testFiles, err := os.ReadDir(directory)
	if err != nil {
		log.Fatalf("cannot read directory: %v", err)
	}

	tests := make([]TestMetadata, 0, len(testFiles))
	for _, file := range testFiles {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}

		filename := filepath.Join(directory, file.Name())
		input, err := model.InputFromJson(filename)
		if err != nil {
			log.Fatalf("cannot parse input file: %v", err)
		}

		tests = append(tests, TestMetadata{
			Name:       filename,
			Faculties:  len(input.Faculties),
			Courses:    len(input.Courses),
			Classrooms: len(input.Classrooms),
			Timeslots:  len(input.Timeslots),
			Sessions:   lo.SumBy(input.Courses, func(course model.Course) uint64 { return course.SessionsPerWeek }),
		})
	}

	return tests
}

func measure(executable, strategy, solver string, timeLimit int, testFile string) (duration int64, maxMemory float32, cpuPercentage int64, result string) {
	cmd := exec.Command("/usr/bin/time", "-v", executable,
		"-strategy", strategy, "-solver", solver, "-time-limit", strconv.Itoa(timeLimit), "-file", testFile, "-out", os.DevNull)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	result, ok := resultTypes[cmd.ProcessState.ExitCode()]
	if !ok {
		log.Fatalf("an error occurred during the execution \"timetable\" at test \"%v\" using strategy \"%v\" and solver \"%v\": %v\n", testFile, strategy, solver, stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return duration, maxMemory, cpuPercentage, result
}

func toCsv(path string, results []BenchmarkResult) {
	file, err := os.Create(path)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&results, file); err != nil {
		log.Panicf("cannot write CSV records: %v", err)
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / MB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
