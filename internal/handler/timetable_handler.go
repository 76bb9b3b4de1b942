package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/limaJavier/coursetimetable/internal/apperrors"
	"github.com/limaJavier/coursetimetable/internal/dataset"
	"github.com/limaJavier/coursetimetable/internal/response"
	"github.com/limaJavier/coursetimetable/internal/scheduler"
	"github.com/limaJavier/coursetimetable/internal/store"
	"github.com/limaJavier/coursetimetable/pkg/model"
)

type timetableSolver interface {
	Solve(ctx context.Context, timeLimitSeconds int) (scheduler.Result, error)
}

type datasetSaver interface {
	Save(ctx context.Context, dataset model.RawDataset) error
}

type generateResponse struct {
	RunID      string                `json:"run_id"`
	Status     scheduler.Status      `json:"status"`
	Entries    []model.ScheduleEntry `json:"entries"`
	DurationMS int64                 `json:"duration_ms"`
	Variables  uint64                `json:"variables"`
	Clauses    uint64                `json:"clauses"`
}

type uploadResponse struct {
	Faculties  int `json:"faculties"`
	Courses    int `json:"courses"`
	Classrooms int `json:"classrooms"`
	Timeslots  int `json:"timeslots"`
}

// TimetableHandler exposes dataset upload and timetable generation endpoints.
type TimetableHandler struct {
	solver           timetableSolver
	datasets         datasetSaver
	reader           store.Reader
	normalizer       *model.Normalizer
	defaultTimeLimit int
	logger           *zap.Logger
}

func NewTimetableHandler(
	solver timetableSolver,
	datasets datasetSaver,
	reader store.Reader,
	defaults model.Defaults,
	defaultTimeLimit int,
	logger *zap.Logger,
) *TimetableHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableHandler{
		solver:           solver,
		datasets:         datasets,
		reader:           reader,
		normalizer:       model.NewNormalizer(defaults),
		defaultTimeLimit: defaultTimeLimit,
		logger:           logger,
	}
}

// UploadDataset validates a dataset and replaces the stored snapshot. Datasets that cannot be normalized are rejected
// before anything is written
func (h *TimetableHandler) UploadDataset(c *gin.Context) {
	var document map[string]any
	if err := c.ShouldBindJSON(&document); err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, http.StatusBadRequest, "invalid dataset payload"))
		return
	}

	raw, err := model.DecodeRawDataset(document)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}
	if err := dataset.Validate(raw); err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.normalizer.Normalize(raw); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.datasets.Save(c.Request.Context(), raw); err != nil {
		h.logger.Error("dataset upload failed", zap.Error(err))
		response.Error(c, err)
		return
	}

	response.Created(c, uploadResponse{
		Faculties:  len(raw.Faculties),
		Courses:    len(raw.Courses),
		Classrooms: len(raw.Classrooms),
		Timeslots:  len(raw.Timeslots),
	})
}

// Generate solves the stored dataset. Unsuccessful verdicts are reported as errors carrying the run metadata
func (h *TimetableHandler) Generate(c *gin.Context) {
	timeLimit := h.defaultTimeLimit
	if value := c.Query("time_limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, http.StatusBadRequest, "time_limit must be an integer"))
			return
		}
		timeLimit = parsed
	}

	result, err := h.solver.Solve(c.Request.Context(), timeLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := map[string]any{
		"run_id":      result.RunID,
		"status":      result.Status,
		"duration_ms": result.Duration.Milliseconds(),
	}
	if appErr := apperrors.FromStatus(result); appErr != nil {
		response.Error(c, appErr, meta)
		return
	}

	response.JSON(c, http.StatusOK, generateResponse{
		RunID:      result.RunID,
		Status:     result.Status,
		Entries:    result.Entries,
		DurationMS: result.Duration.Milliseconds(),
		Variables:  result.Variables,
		Clauses:    result.Clauses,
	})
}

// Timetable returns the last committed timetable
func (h *TimetableHandler) Timetable(c *gin.Context) {
	rows, err := h.reader.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, map[string]any{"total": len(rows)})
}
