package sat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

type inputMode int

const (
	stdinInput inputMode = iota // DIMACS is fed through the standard input
	fileInput                   // DIMACS is written to a temporary file passed as argument
)

type outputMode int

const (
	valueLinesOutput outputMode = iota // Model is printed on "v ..." lines of the standard output
	headedFileOutput                   // Model is written to an output file after a "SAT" header line
	bareFileOutput                     // Model is written to an output file with no header
)

type externalSolver struct {
	name   string
	path   string
	args   []string
	input  inputMode
	output outputMode
}

// Exit-code of 10 stands for satisfiable and exit-code 20 stands for unsatisfiable
const (
	satisfiableExitCode   = 10
	unsatisfiableExitCode = 20
)

func NewKissatSolver(path string) SATSolver {
	return &externalSolver{name: "kissat", path: path, args: []string{"-q", "--relaxed"}, input: stdinInput, output: valueLinesOutput}
}

func NewCadicalSolver(path string) SATSolver {
	return &externalSolver{name: "cadical", path: path, args: []string{"-q"}, input: stdinInput, output: valueLinesOutput}
}

func NewCryptominisatSolver(path string) SATSolver {
	return &externalSolver{name: "cryptominisat", path: path, args: []string{"--verb", "0"}, input: stdinInput, output: valueLinesOutput}
}

func NewMinisatSolver(path string) SATSolver {
	return &externalSolver{name: "minisat", path: path, args: []string{"-verb=0"}, input: fileInput, output: headedFileOutput}
}

func NewGlucoseSimpSolver(path string) SATSolver {
	return &externalSolver{name: "glucose-simp", path: path, args: []string{"-verb=0"}, input: fileInput, output: bareFileOutput}
}

func NewSlimeSolver(path string) SATSolver {
	return &externalSolver{name: "slime", path: path, input: fileInput, output: valueLinesOutput}
}

func NewOrtoolsatSolver(path string) SATSolver {
	return &externalSolver{name: "ortoolsat", path: path, input: fileInput, output: valueLinesOutput}
}

// ExternalSolvers maps solver names to their constructors; the config key holding each executable path is "<name>Path"
var ExternalSolvers = map[string]func(path string) SATSolver{
	"kissat":        NewKissatSolver,
	"cadical":       NewCadicalSolver,
	"cryptominisat": NewCryptominisatSolver,
	"minisat":       NewMinisatSolver,
	"glucosesimp":   NewGlucoseSimpSolver,
	"slime":         NewSlimeSolver,
	"ortoolsat":     NewOrtoolsatSolver,
}

func (solver *externalSolver) Solve(ctx context.Context, instance SAT) (SATSolution, error) {
	dimacs := instance.ToDIMACS() // Transform SAT into DIMACS-CNF string format
	args := append([]string{}, solver.args...)

	var outputFile *os.File
	if solver.input == fileInput {
		// Create a temporary file to hold the DIMACS content
		inputFile, err := os.CreateTemp("", "dimacs-*.cnf")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary file: %w", err)
		}
		defer os.Remove(inputFile.Name())

		if _, err := inputFile.WriteString(dimacs); err != nil {
			inputFile.Close()
			return nil, fmt.Errorf("failed to write DIMACS to temporary file: %w", err)
		}
		if err := inputFile.Close(); err != nil {
			return nil, fmt.Errorf("failed to close temporary file: %w", err)
		}
		args = append(args, inputFile.Name())
	}

	if solver.output != valueLinesOutput {
		var err error
		outputFile, err = os.CreateTemp("", solver.name+"-output-*.txt")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary file: %w", err)
		}
		defer os.Remove(outputFile.Name())
		defer outputFile.Close()
		args = append(args, outputFile.Name())
	}

	cmd := exec.CommandContext(ctx, solver.path, args...)
	if solver.input == stdinInput {
		cmd.Stdin = strings.NewReader(dimacs)
	}

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, timeoutError(ctx)
	}
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil && exitCode != satisfiableExitCode && exitCode != unsatisfiableExitCode {
		return nil, fmt.Errorf("an error occurred during %v execution: %w : %v", solver.name, err, stderr.String())
	} else if exitCode == unsatisfiableExitCode {
		return nil, nil
	}

	switch solver.output {
	case headedFileOutput, bareFileOutput:
		output, err := io.ReadAll(outputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read output file: %w", err)
		}
		return parseModelFile(string(output), solver.output == headedFileOutput)
	default:
		return parseSolution(stdOut.String())
	}
}
