package recorder

import (
	"errors"

	"SessionScreener/internal/model"
)

// ErrNoRuns is returned by LatestRun before anything was recorded.
var ErrNoRuns = errors.New("no screening runs recorded")

// Recorder persists screening runs for later inspection.
type Recorder interface {
	RecordRun(run *model.Run) error
	LatestRun() (*model.Run, error)
	Close() error
}
