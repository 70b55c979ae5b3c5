package snapshot

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chrissnell/powerstats/pkg/outage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Snapshot is one loaded dataset. It is never modified after Load returns.
type Snapshot struct {
	ID         string
	Store      *outage.YearStore
	Location   *time.Location
	LoadedAt   time.Time
	Source     string
	Version    string
	LastExport string
}

// Options control how a snapshot is built
type Options struct {
	Location       *time.Location
	LastUpdateFile string
}

// Load reads the document from src and builds a year store from it
func Load(ctx context.Context, src Source, opts Options, logger *zap.SugaredLogger) (*Snapshot, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	// An unknown version only means the next reload cannot be skipped
	var version string
	if v, ok := src.(Versioner); ok {
		var err error
		if version, err = v.Version(ctx); err != nil {
			logger.Warnf("could not check version of %s, loading anyway: %v", src, err)
			version = ""
		}
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	store, err := outage.LoadYearStore(rc, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", src, err)
	}

	report := store.Report()
	if len(report.SkippedYears) > 0 || len(report.SkippedDays) > 0 {
		logger.Warnw("skipped malformed dataset entries",
			"source", src.String(),
			"years", report.SkippedYears,
			"days", report.SkippedDays,
		)
	}

	snap := &Snapshot{
		ID:       uuid.New().String(),
		Store:    store,
		Location: loc,
		LoadedAt: time.Now(),
		Source:   src.String(),
		Version:  version,
	}

	if opts.LastUpdateFile != "" {
		label, err := ReadLastUpdate(opts.LastUpdateFile)
		if err != nil {
			logger.Warnf("could not read last update label: %v", err)
		} else {
			snap.LastExport = label
		}
	}

	logger.Infow("dataset loaded",
		"snapshot", snap.ID,
		"source", snap.Source,
		"years", store.Years(),
	)

	return snap, nil
}

// Holder publishes the current snapshot to concurrent readers. Readers that got a
// snapshot keep using it even after a newer one is swapped in.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates a holder with an initial snapshot, which may be nil
func NewHolder(initial *Snapshot) *Holder {
	h := &Holder{}
	if initial != nil {
		h.current.Store(initial)
	}
	return h
}

// Current returns the snapshot in use, or nil if none was loaded yet
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Swap installs a new snapshot and returns the previous one
func (h *Holder) Swap(s *Snapshot) *Snapshot {
	return h.current.Swap(s)
}
