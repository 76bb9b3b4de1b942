package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/limaJavier/coursetimetable/pkg/model"
	"github.com/limaJavier/coursetimetable/pkg/sat"
)

var (
	ErrSolveInProgress  = errors.New("a timetable generation is already in progress")
	ErrInvalidTimeLimit = errors.New("time limit must not be negative")
)

type Status string

const (
	StatusSolved            Status = "solved"
	StatusInfeasible        Status = "infeasible"
	StatusTimeout           Status = "timeout"
	StatusModelBuildFailure Status = "model_build_failure"
)

type ConcurrencyPolicy string

const (
	// QueuePolicy makes concurrent callers wait for the running generation
	QueuePolicy ConcurrencyPolicy = "queue"
	// RejectPolicy fails concurrent callers with ErrSolveInProgress
	RejectPolicy ConcurrencyPolicy = "reject"
)

func ParseConcurrencyPolicy(value string) (ConcurrencyPolicy, error) {
	switch ConcurrencyPolicy(strings.ToLower(value)) {
	case "", QueuePolicy:
		return QueuePolicy, nil
	case RejectPolicy:
		return RejectPolicy, nil
	default:
		return "", fmt.Errorf("unknown concurrency policy \"%v\"", value)
	}
}

// DatasetSource provides the raw dataset. An absent dataset yields model.ErrDatasetMissing
type DatasetSource interface {
	Load(ctx context.Context) (model.RawDataset, error)
}

// Recorder observes the outcome of every generation
type Recorder interface {
	ObserveSolve(status string, duration time.Duration, variables, clauses uint64)
}

type Result struct {
	RunID     string
	Status    Status
	Entries   []model.ScheduleEntry
	Reason    string
	Duration  time.Duration
	Variables uint64
	Clauses   uint64
}

type Options struct {
	Source     DatasetSource
	Sink       ResultSink
	Timetabler model.Timetabler
	Defaults   model.Defaults
	Policy     ConcurrencyPolicy
	Recorder   Recorder
	Logger     *zap.Logger
}

// Scheduler runs one timetable generation at a time: load, normalize, build, solve, extract and publish
type Scheduler struct {
	source     DatasetSource
	sink       ResultSink
	timetabler model.Timetabler
	normalizer *model.Normalizer
	policy     ConcurrencyPolicy
	recorder   Recorder
	logger     *zap.Logger

	mu sync.Mutex
}

func New(options Options) *Scheduler {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := options.Policy
	if policy == "" {
		policy = QueuePolicy
	}

	return &Scheduler{
		source:     options.Source,
		sink:       options.Sink,
		timetabler: options.Timetabler,
		normalizer: model.NewNormalizer(options.Defaults),
		policy:     policy,
		recorder:   options.Recorder,
		logger:     logger,
	}
}

// Solve generates a timetable within timeLimitSeconds. Infeasible, Timeout and ModelBuildFailure are reported through
// the result status; the error is reserved for missing datasets, inconsistent solutions, contention and IO failures.
// The sink is only touched when the status is Solved
func (scheduler *Scheduler) Solve(ctx context.Context, timeLimitSeconds int) (Result, error) {
	if timeLimitSeconds < 0 {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidTimeLimit, timeLimitSeconds)
	}

	if scheduler.policy == RejectPolicy {
		if !scheduler.mu.TryLock() {
			return Result{}, ErrSolveInProgress
		}
	} else {
		scheduler.mu.Lock()
	}
	defer scheduler.mu.Unlock()

	start := time.Now()
	result := Result{RunID: uuid.NewString()}
	logger := scheduler.logger.With(zap.String("run_id", result.RunID))
	logger.Info("timetable generation started", zap.Int("time_limit_seconds", timeLimitSeconds))

	entries, err := scheduler.run(ctx, logger, timeLimitSeconds, &result)
	result.Duration = time.Since(start)
	if err != nil {
		logger.Error("timetable generation failed", zap.Error(err), zap.Duration("duration", result.Duration))
		return Result{}, err
	}
	result.Entries = entries

	if scheduler.recorder != nil {
		scheduler.recorder.ObserveSolve(string(result.Status), result.Duration, result.Variables, result.Clauses)
	}
	logger.Info("timetable generation finished",
		zap.String("status", string(result.Status)),
		zap.String("reason", result.Reason),
		zap.Int("entries", len(result.Entries)),
		zap.Uint64("variables", result.Variables),
		zap.Uint64("clauses", result.Clauses),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (scheduler *Scheduler) run(ctx context.Context, logger *zap.Logger, timeLimitSeconds int, result *Result) ([]model.ScheduleEntry, error) {
	//** Load and normalize
	raw, err := scheduler.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	input, err := scheduler.normalizer.Normalize(raw)
	var buildErr *model.ModelBuildError
	if errors.As(err, &buildErr) {
		result.Status, result.Reason = StatusModelBuildFailure, buildErr.Error()
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("normalize dataset: %w", err)
	}
	logger.Debug("dataset normalized",
		zap.Int("faculties", len(input.Faculties)),
		zap.Int("courses", len(input.Courses)),
		zap.Int("classrooms", len(input.Classrooms)),
		zap.Int("timeslots", len(input.Timeslots)),
	)

	//** Build and solve
	solveCtx, cancel := context.WithTimeout(ctx, time.Duration(timeLimitSeconds)*time.Second)
	defer cancel()

	timetable, variables, clauses, err := scheduler.timetabler.Build(solveCtx, input)
	result.Variables, result.Clauses = variables, clauses
	switch {
	case errors.As(err, &buildErr):
		result.Status, result.Reason = StatusModelBuildFailure, buildErr.Error()
		return nil, nil
	case errors.Is(err, sat.ErrTimeout):
		result.Status, result.Reason = StatusTimeout, fmt.Sprintf("no verdict within %d seconds", timeLimitSeconds)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("build timetable: %w", err)
	case timetable == nil:
		result.Status, result.Reason = StatusInfeasible, "no timetable satisfies every constraint"
		return nil, nil
	}

	//** Verify, extract and publish
	if err := scheduler.timetabler.Verify(timetable, input); err != nil {
		return nil, err
	}
	entries, err := model.Extract(timetable, input)
	if err != nil {
		return nil, err
	}

	if scheduler.sink != nil {
		if err := scheduler.sink.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear previous timetable: %w", err)
		}
		if err := scheduler.sink.Commit(ctx, entries); err != nil {
			return nil, fmt.Errorf("commit timetable: %w", err)
		}
	}

	result.Status = StatusSolved
	return entries, nil
}
