package sat

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// parseSolution extracts the model from the "v ..." lines of a solver's standard output
func parseSolution(solverOutput string) (SATSolution, error) {
	fields := lo.FlatMap(
		lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
			return len(line) > 0 && line[0] == 'v'
		}),
		func(line string, _ int) []string {
			return strings.Fields(line[1:])
		},
	)
	return parseLiterals(fields)
}

// parseModelFile extracts the model from a minisat-like output file, where the header line may precede the literals
func parseModelFile(output string, headed bool) (SATSolution, error) {
	if headed {
		lines := strings.SplitN(output, "\n", 2)
		if len(lines) < 2 {
			return nil, fmt.Errorf("missing model line in solver output: %q", output)
		}
		output = lines[1]
	}
	return parseLiterals(strings.Fields(output))
}

func parseLiterals(fields []string) (SATSolution, error) {
	solution := make(SATSolution, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		if value != 0 { // 0 terminates the model
			solution = append(solution, value)
		}
	}
	return solution, nil
}

// LoadExecutablePaths reads the solvers' executable paths from a JSON config such as {"kissatPath": "/usr/bin/kissat"}
func LoadExecutablePaths(configPath string) (map[string]string, error) {
	bytes, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read solver config: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, fmt.Errorf("cannot parse solver config: %w", err)
	}

	var config map[string]string
	if err := mapstructure.Decode(inputJson, &config); err != nil {
		return nil, fmt.Errorf("cannot decode solver config: %w", err)
	}
	return config, nil
}

// NewExternalSolver builds the named external solver, resolving its executable from paths (falling back to the solver's name on $PATH)
func NewExternalSolver(name string, paths map[string]string) (SATSolver, error) {
	constructor, ok := ExternalSolvers[name]
	if !ok {
		return nil, fmt.Errorf("solver \"%v\" is not supported", name)
	}

	path, ok := paths[name+"Path"]
	if !ok || path == "" {
		path = name
	}
	return constructor(path), nil
}
