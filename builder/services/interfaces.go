package services

import (
	"context"

	"github.com/Kush-Singh-26/koshpack/builder/cache"
	"github.com/Kush-Singh-26/koshpack/builder/emit"
	"github.com/Kush-Singh-26/koshpack/builder/engine"
	"github.com/Kush-Singh-26/koshpack/builder/metrics"
	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// EmitResult describes one descriptor emission.
type EmitResult struct {
	Path    string
	Format  emit.Format
	Body    []byte
	Changed bool // differs from the last recorded emission for the mode
	Written bool
	Metrics *metrics.EmitMetrics
}

// DescriptorService assembles, renders and writes build descriptors
type DescriptorService interface {
	Render(ctx context.Context, mode models.BuildMode, format emit.Format) ([]byte, error)
	Emit(ctx context.Context, mode models.BuildMode) (*EmitResult, error)
}

// HistoryService abstracts the emission history store
type HistoryService interface {
	Record(mode models.BuildMode, format string, body []byte) (bool, error)
	Latest(mode models.BuildMode) (*cache.Snapshot, error)
	History(mode models.BuildMode, limit int) ([]cache.Snapshot, error)
	Stats() (cache.Stats, error)
	Clear() error
	Close() error
}

// BundleService runs the bundling engine on an assembled descriptor
type BundleService interface {
	Bundle(ctx context.Context, mode models.BuildMode) (*engine.Result, error)
}
