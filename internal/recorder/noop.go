package recorder

import "SessionScreener/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.Run) error   { return nil }
func (n *NoopRecorder) LatestRun() (*model.Run, error) { return nil, ErrNoRuns }
func (n *NoopRecorder) Close() error                   { return nil }
