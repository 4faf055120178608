// =============================================================================
// Customs to DCE Converter - Run Entry Point
// =============================================================================
//
// Run is the single entry point a shell calls. It takes every input
// explicitly, converts the source, writes the output files and reports the
// outcome as one Result. It never panics on bad input and never returns a
// bare error; failures travel inside the Result.
//
// PROGRESS MILESTONES:
//   50   converting the source
//   70   conversion finished
//   80   destination directory ready
//   85   splitting (only when splitting is requested)
//   100  done
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/customs-to-dce/internal/chunkwriter"
	"github.com/ginjaninja78/customs-to-dce/internal/config"
	"github.com/ginjaninja78/customs-to-dce/internal/logging"
	"github.com/ginjaninja78/customs-to-dce/internal/types"
	"github.com/ginjaninja78/customs-to-dce/pkg/utils"
)

// Boundary messages shown to the user.
const (
	MessageMissingPaths = "please specify both the source file and the destination folder"
	MessageDone         = "done"
)

// =============================================================================
// REQUEST AND RESULT
// =============================================================================

// Request holds the inputs of one conversion.
type Request struct {
	SourcePath     string
	DestinationDir string

	// Split writes part files of at most ChunkSize rows.
	Split bool

	// ChunkSize overrides the configured chunk size when non-zero. A
	// negative value fails the run with types.ErrInvalidRequest when
	// splitting.
	ChunkSize int
}

// Result represents the outcome of one conversion.
type Result struct {
	// Success indicates whether every file was written.
	Success bool

	// WrittenFiles lists the output files in part order. On a write
	// failure it holds the parts written before the failure.
	WrittenFiles []string

	// Message is the user-facing outcome: MessageDone on success,
	// otherwise a description of the failure.
	Message string

	// Err is nil on success. Match it with errors.Is against the
	// types.Err* kinds.
	Err error

	Stats Stats

	// RunID identifies the run in log lines and the summary file.
	RunID string
}

// Stats contains statistics about the run.
type Stats struct {
	RowsRead    int
	RowsWritten int

	// RowsDropped counts trailing rows left out by split rounding.
	RowsDropped int

	Parts    int
	Duration time.Duration
}

// =============================================================================
// PROGRESS
// =============================================================================

// Stage names a progress milestone.
type Stage string

const (
	StageConverting       Stage = "converting"
	StageConverted        Stage = "converted"
	StageDestinationReady Stage = "destination-ready"
	StageSplitting        Stage = "splitting"
	StageDone             Stage = "done"
)

var stagePercent = map[Stage]int{
	StageConverting:       50,
	StageConverted:        70,
	StageDestinationReady: 80,
	StageSplitting:        85,
	StageDone:             100,
}

// ProgressFunc receives each milestone with its percentage.
type ProgressFunc func(stage Stage, percent int)

// =============================================================================
// OPTIONS
// =============================================================================

// Option customises Run.
type Option func(*runner)

type runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	progress ProgressFunc
	now      func() time.Time

	// destinationReady is set once the destination directory exists.
	destinationReady bool
}

// WithConfig sets the configuration. Without it config.Default is used.
func WithConfig(cfg *config.Config) Option {
	return func(r *runner) {
		if cfg != nil {
			r.cfg = cfg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *runner) {
		r.logger = logging.OrNop(logger)
	}
}

// WithProgress registers a progress callback. It is called on the
// goroutine running the conversion.
func WithProgress(fn ProgressFunc) Option {
	return func(r *runner) {
		r.progress = fn
	}
}

// WithClock replaces time.Now for dates and file names.
func WithClock(now func() time.Time) Option {
	return func(r *runner) {
		if now != nil {
			r.now = now
		}
	}
}

func (r *runner) report(stage Stage) {
	if r.progress != nil {
		r.progress(stage, stagePercent[stage])
	}
}

// =============================================================================
// RUN
// =============================================================================

// Run converts req.SourcePath and writes the result into req.DestinationDir.
//
// The context only scopes logging; a started conversion runs to completion.
func Run(ctx context.Context, req Request, opts ...Option) Result {
	r := &runner{
		cfg:    config.Default(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	runID := uuid.New().String()
	logger := r.logger.With(zap.String("run_id", runID))
	started := r.now()

	result := r.run(ctx, req, logger)
	result.RunID = runID
	result.Stats.Duration = r.now().Sub(started)

	if result.Success {
		result.Message = MessageDone
		logger.Info("conversion finished",
			zap.Int("rows", result.Stats.RowsRead),
			zap.Int("files", len(result.WrittenFiles)),
			zap.Duration("duration", result.Stats.Duration),
		)
	} else {
		if result.Message == "" {
			result.Message = result.Err.Error()
		}
		logger.Error("conversion failed", zap.Error(result.Err))
	}

	if r.cfg.WriteSummary && r.destinationReady {
		r.writeSummary(req, result, started, logger)
	}

	return result
}

// Start runs Run on its own goroutine. The returned channel receives
// exactly one Result and is then closed.
func Start(ctx context.Context, req Request, opts ...Option) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- Run(ctx, req, opts...)
	}()
	return out
}

func (r *runner) run(_ context.Context, req Request, logger *zap.Logger) Result {
	var result Result

	if req.SourcePath == "" || req.DestinationDir == "" {
		result.Err = &types.Error{Kind: types.ErrInvalidRequest, Err: errors.New(MessageMissingPaths)}
		result.Message = MessageMissingPaths
		return result
	}

	chunkSize := r.cfg.Split.ChunkSize
	if req.ChunkSize != 0 {
		chunkSize = req.ChunkSize
	}
	if req.Split && chunkSize < 1 {
		result.Err = &types.Error{Kind: types.ErrInvalidRequest, Err: fmt.Errorf("chunk size must be a positive integer, got %d", chunkSize)}
		return result
	}

	mode, err := chunkwriter.ParseRoundingMode(r.cfg.Split.Rounding)
	if err != nil {
		result.Err = &types.Error{Kind: types.ErrInvalidRequest, Err: err}
		return result
	}

	logger.Info("starting conversion",
		zap.String("source", req.SourcePath),
		zap.String("destination", req.DestinationDir),
		zap.Bool("split", req.Split),
		zap.Int("chunk_size", chunkSize),
	)

	// =========================================================================
	// STEP 1: CONVERT
	// =========================================================================

	r.report(StageConverting)

	converted, err := Convert(req.SourcePath, Options{
		Encoding: r.cfg.SourceEncoding,
		Now:      r.now,
		Logger:   logger,
	})
	if err != nil {
		result.Err = err
		return result
	}
	result.Stats.RowsRead = converted.Len()

	r.report(StageConverted)

	// =========================================================================
	// STEP 2: PREPARE DESTINATION
	// =========================================================================

	if err := utils.EnsureDirectory(req.DestinationDir); err != nil {
		result.Err = &types.Error{Kind: types.ErrDestinationUnwritable, Path: req.DestinationDir, Err: err}
		return result
	}

	r.destinationReady = true
	r.report(StageDestinationReady)

	// =========================================================================
	// STEP 3: WRITE
	// =========================================================================

	covered := converted.Len()
	if req.Split {
		r.report(StageSplitting)

		plan, err := chunkwriter.Plan(converted.Len(), chunkSize, mode)
		if err != nil {
			result.Err = &types.Error{Kind: types.ErrInvalidRequest, Err: err}
			return result
		}
		covered = plan.Covered()
		result.Stats.RowsDropped = plan.Dropped
	}

	written, err := chunkwriter.Write(converted, req.DestinationDir, chunkwriter.Options{
		Split:     req.Split,
		ChunkSize: chunkSize,
		Mode:      mode,
		Format:    r.cfg.Output.Format,
		FileStem:  r.cfg.Output.FileStem,
		SheetName: r.cfg.Output.SheetName,
		Today:     r.now,
		Logger:    logger,
	})
	result.WrittenFiles = written
	result.Stats.Parts = len(written)
	if err != nil {
		result.Err = err
		return result
	}

	result.Stats.RowsWritten = covered
	r.report(StageDone)
	result.Success = true
	return result
}

// writeSummary records the run next to the output files. A failure here
// is logged and does not change the result.
func (r *runner) writeSummary(req Request, result Result, started time.Time, logger *zap.Logger) {
	summary := utils.ProcessingSummary{
		RunID:       result.RunID,
		StartTime:   started,
		EndTime:     started.Add(result.Stats.Duration),
		SourceFile:  req.SourcePath,
		RowsRead:    result.Stats.RowsRead,
		RowsWritten: result.Stats.RowsWritten,
		RowsDropped: result.Stats.RowsDropped,
		Split:       req.Split,
		OutputFiles: result.WrittenFiles,
	}
	if req.Split {
		summary.ChunkSize = req.ChunkSize
		if summary.ChunkSize == 0 {
			summary.ChunkSize = r.cfg.Split.ChunkSize
		}
		summary.Rounding = r.cfg.Split.Rounding
	}
	if !result.Success {
		summary.ErrorMessage = result.Message
	}

	path, err := utils.WriteSummaryLog(summary, req.DestinationDir)
	if err != nil {
		logger.Warn("failed to write processing summary", zap.Error(err))
		return
	}
	logger.Debug("wrote processing summary", zap.String("path", path))
}
