package runlog

import "time"

// Status is the recorded outcome of one input file within a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Run describes one batch invocation of the pipeline.
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      *time.Time
	InputPath       string
	OutputDir       string
	OutputFormat    string
	EarlyModelDir   string
	LateModelDir    string
	TimepointSwitch int
	ScaleZ          float64
	ScaleY          float64
	ScaleX          float64
	Processed       int
	Failed          int
	Skipped         int
}

// FileRecord is the per-file outcome persisted for a run.
type FileRecord struct {
	RunID        string
	InputPath    string
	OutputPath   string
	TimeIndex    *int
	ModelStage   string
	Status       Status
	ErrorKind    string
	ErrorMessage string
	ObjectCount  *int
	Duration     time.Duration
}
