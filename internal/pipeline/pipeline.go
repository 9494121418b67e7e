package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"embseg/internal/inputs"
	"embseg/internal/logging"
	"embseg/internal/model"
	"embseg/internal/runlog"
	"embseg/internal/scaling"
	"embseg/internal/services"
	"embseg/internal/services/stardist"
)

// lockFileName guards the output directory against concurrent batch runs
// writing label volumes over each other.
const lockFileName = ".embseg.lock"

// Options are the resolved settings for one batch run, after config file,
// environment, and flag precedence has been applied.
type Options struct {
	InputPath string
	OutputDir string

	PixelSize scaling.PixelSize

	EarlyModelDir   string
	EarlyProbThresh float64
	EarlyNMSThresh  float64
	LateModelDir    string
	LateProbThresh  float64
	LateNMSThresh   float64
	TimepointSwitch int

	OutputFormat string
	GenerateROI  bool
	No8BitShift  bool

	Resume      bool
	FileTimeout time.Duration
}

// FileResult is the in-memory outcome for one input volume.
type FileResult struct {
	InputPath   string
	OutputPath  string
	TimeIndex   int
	Stage       model.Stage
	Status      runlog.Status
	ObjectCount int
	Duration    time.Duration
	Err         error
}

// Summary aggregates a finished batch run.
type Summary struct {
	RunID     string
	Scale     scaling.ScaleFactors
	Processed int
	Failed    int
	Skipped   int
	Results   []FileResult
}

// Pipeline drives the batch segmentation loop: enumerate inputs, route each
// volume to its stage model, invoke the runner, and record outcomes.
type Pipeline struct {
	opts   Options
	client stardist.Client
	store  *runlog.Store
	logger *slog.Logger
}

// New builds a pipeline. The ledger store may be nil, in which case outcomes
// are not persisted and the resume flag has nothing to consult.
func New(opts Options, client stardist.Client, store *runlog.Store, logger *slog.Logger) (*Pipeline, error) {
	if client == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "", "runner client is required", nil)
	}
	if opts.InputPath == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "", "input path is required", nil)
	}
	if opts.OutputDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "", "output directory is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		opts:   opts,
		client: client,
		store:  store,
		logger: logging.WithComponent(logger, "pipeline"),
	}, nil
}

// Run executes the batch. Configuration problems abort before any volume is
// touched; per-file failures are recorded and the loop continues.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	scale, err := scaling.Compute(p.opts.PixelSize)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "scale", err.Error(), nil)
	}

	router, err := p.buildRouter()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "pipeline", "output dir", p.opts.OutputDir, err)
	}

	lock := flock.New(filepath.Join(p.opts.OutputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "pipeline", "lock", p.opts.OutputDir, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "lock",
			fmt.Sprintf("another run is writing to %s", p.opts.OutputDir), nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	files, err := inputs.Enumerate(p.opts.InputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "pipeline", "enumerate", p.opts.InputPath, err)
	}
	if len(files) == 0 {
		p.logger.Warn("no input volumes found", logging.String("input_path", p.opts.InputPath))
	}
	if len(files) == 1 && files[0] == p.opts.InputPath {
		if ext := filepath.Ext(files[0]); !inputs.SupportedExtension(ext) {
			p.logger.Warn("input extension is not a recognized volume format, processing anyway",
				logging.String(logging.FieldInputFile, files[0]),
				logging.String("extension", ext))
		}
	}

	summary := &Summary{RunID: uuid.New().String(), Scale: scale}
	p.logger.Info("starting batch run",
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("volumes", len(files)),
		logging.String("scale", scale.String()))

	if p.store != nil {
		run := runlog.Run{
			ID:              summary.RunID,
			StartedAt:       time.Now(),
			InputPath:       p.opts.InputPath,
			OutputDir:       p.opts.OutputDir,
			OutputFormat:    p.opts.OutputFormat,
			EarlyModelDir:   p.opts.EarlyModelDir,
			LateModelDir:    p.opts.LateModelDir,
			TimepointSwitch: p.opts.TimepointSwitch,
			ScaleZ:          scale.Z,
			ScaleY:          scale.Y,
			ScaleX:          scale.X,
		}
		if err := p.store.BeginRun(ctx, run); err != nil {
			return nil, services.Wrap(services.ErrIO, "pipeline", "ledger", "begin run", err)
		}
	}

	for _, file := range files {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		result := p.processFile(ctx, router, scale, summary.RunID, file)
		summary.Results = append(summary.Results, result)
		switch result.Status {
		case runlog.StatusCompleted:
			summary.Processed++
		case runlog.StatusSkipped:
			summary.Skipped++
		case runlog.StatusFailed:
			summary.Failed++
			if services.Fatal(result.Err) {
				p.finish(ctx, summary)
				return summary, result.Err
			}
		}
	}

	p.finish(ctx, summary)
	p.logger.Info("batch run finished",
		logging.String(logging.FieldRunID, summary.RunID),
		logging.Int("processed", summary.Processed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}

func (p *Pipeline) buildRouter() (*model.Router, error) {
	early, err := model.Load(model.StageEarly, p.opts.EarlyModelDir, p.opts.EarlyProbThresh, p.opts.EarlyNMSThresh)
	if err != nil {
		return nil, err
	}
	var late *model.Model
	if p.opts.LateModelDir != "" {
		late, err = model.Load(model.StageLate, p.opts.LateModelDir, p.opts.LateProbThresh, p.opts.LateNMSThresh)
		if err != nil {
			return nil, err
		}
	}
	return model.NewRouter(early, late, p.opts.TimepointSwitch)
}

func (p *Pipeline) processFile(ctx context.Context, router *model.Router, scale scaling.ScaleFactors, runID, file string) FileResult {
	started := time.Now()
	result := FileResult{InputPath: file}

	components, err := inputs.ParseComponents(file)
	if err != nil {
		result.Status = runlog.StatusFailed
		result.Err = services.Wrap(services.ErrInputParse, "pipeline", file, "", err)
		result.Duration = time.Since(started)
		p.recordFailure(ctx, runID, result)
		return result
	}
	result.TimeIndex = components.TimeIndex
	result.OutputPath = filepath.Join(p.opts.OutputDir, components.Base+".label")

	selected, err := router.Select(components.TimeIndex)
	if err != nil {
		result.Status = runlog.StatusFailed
		result.Err = err
		result.Duration = time.Since(started)
		p.recordFailure(ctx, runID, result)
		return result
	}
	result.Stage = selected.Stage

	fileLogger := p.logger.With(
		logging.String(logging.FieldInputFile, file),
		logging.Int(logging.FieldTimeIndex, components.TimeIndex),
		logging.String(logging.FieldModelStage, string(selected.Stage)))

	if p.opts.Resume && p.store != nil {
		done, err := p.store.WasCompleted(ctx, file, result.OutputPath)
		if err != nil {
			fileLogger.Warn("resume lookup failed, reprocessing", logging.Error(err))
		} else if done {
			fileLogger.Info("already segmented, skipping")
			result.Status = runlog.StatusSkipped
			result.Duration = time.Since(started)
			p.record(ctx, runID, result)
			return result
		}
	}

	fileLogger.Info("segmenting volume")

	runCtx := ctx
	if p.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.opts.FileTimeout)
		defer cancel()
	}

	req := stardist.Request{
		InputPath:    file,
		OutputPath:   result.OutputPath,
		Model:        selected,
		Scale:        scale,
		OutputFormat: p.opts.OutputFormat,
		GenerateROI:  p.opts.GenerateROI,
		No8BitShift:  p.opts.No8BitShift,
	}
	runResult, err := p.client.Segment(runCtx, req, func(update stardist.ProgressUpdate) {
		fileLogger.Debug("runner progress",
			logging.Float64("percent", update.Percent),
			logging.String("stage", update.Stage))
	})
	result.Duration = time.Since(started)
	if err != nil {
		result.Status = runlog.StatusFailed
		result.Err = classifyRunnerError(file, err)
		fileLogger.Error("segmentation failed", logging.Error(result.Err))
		p.record(ctx, runID, result)
		return result
	}

	result.Status = runlog.StatusCompleted
	result.OutputPath = runResult.LabelPath
	result.ObjectCount = runResult.ObjectCount
	fileLogger.Info("volume segmented",
		logging.String("label_path", runResult.LabelPath),
		logging.Int("objects", runResult.ObjectCount),
		logging.Duration("duration", result.Duration))
	p.record(ctx, runID, result)
	return result
}

// classifyRunnerError maps the runner's structured failure kinds onto the
// pipeline error taxonomy so the ledger and exit handling see one scheme.
func classifyRunnerError(file string, err error) error {
	var runErr *stardist.RunError
	if errors.As(err, &runErr) {
		switch runErr.Kind {
		case "read", "write":
			return services.Wrap(services.ErrIO, "runner", file, runErr.Message, nil)
		default:
			return services.Wrap(services.ErrInference, "runner", file, runErr.Message, nil)
		}
	}
	return services.Wrap(services.ErrInference, "runner", file, "", err)
}

func (p *Pipeline) recordFailure(ctx context.Context, runID string, result FileResult) {
	p.logger.Error("skipping volume",
		logging.String(logging.FieldInputFile, result.InputPath),
		logging.Error(result.Err))
	p.record(ctx, runID, result)
}

func (p *Pipeline) record(ctx context.Context, runID string, result FileResult) {
	if p.store == nil {
		return
	}
	rec := runlog.FileRecord{
		RunID:      runID,
		InputPath:  result.InputPath,
		OutputPath: result.OutputPath,
		ModelStage: string(result.Stage),
		Status:     result.Status,
		Duration:   result.Duration,
	}
	if result.Status != runlog.StatusFailed || result.Err == nil || !isParseFailure(result.Err) {
		index := result.TimeIndex
		rec.TimeIndex = &index
	}
	if result.Status == runlog.StatusCompleted {
		count := result.ObjectCount
		rec.ObjectCount = &count
	}
	if result.Err != nil {
		rec.ErrorKind = services.Classify(result.Err)
		rec.ErrorMessage = result.Err.Error()
	}
	if err := p.store.RecordFile(ctx, rec); err != nil {
		p.logger.Warn("ledger write failed",
			logging.String(logging.FieldInputFile, result.InputPath),
			logging.Error(err))
	}
}

func isParseFailure(err error) bool {
	return services.Classify(err) == "input_parse"
}

func (p *Pipeline) finish(ctx context.Context, summary *Summary) {
	if p.store == nil {
		return
	}
	if err := p.store.FinishRun(ctx, summary.RunID, summary.Processed, summary.Failed, summary.Skipped); err != nil {
		p.logger.Warn("ledger finish failed", logging.Error(err))
	}
}
