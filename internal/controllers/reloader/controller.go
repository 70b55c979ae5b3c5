// Package reloader provides a controller that periodically checks the dataset source and
// swaps in a freshly built snapshot when the document changed.
package reloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chrissnell/powerstats/internal/snapshot"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Result describes the outcome of one reload attempt
type Result struct {
	Reloaded   bool   `json:"reloaded"`
	SnapshotID string `json:"snapshot_id"`
	Version    string `json:"version,omitempty"`
}

// Controller manages the dataset reload lifecycle
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	holder   *snapshot.Holder
	source   snapshot.Source
	opts     snapshot.Options
	interval time.Duration
	logger   *zap.SugaredLogger
	group    singleflight.Group
	ticker   *time.Ticker
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewController creates a new reloader controller
func NewController(
	ctx context.Context,
	wg *sync.WaitGroup,
	holder *snapshot.Holder,
	source snapshot.Source,
	opts snapshot.Options,
	interval time.Duration,
	logger *zap.SugaredLogger,
) (*Controller, error) {
	if holder == nil || source == nil {
		return nil, fmt.Errorf("reloader needs a snapshot holder and a source")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("reload interval must be positive, got %s", interval)
	}

	return &Controller{
		ctx:      ctx,
		wg:       wg,
		holder:   holder,
		source:   source,
		opts:     opts,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

// StartController runs the reload loop in the background
func (c *Controller) StartController() error {
	c.logger.Infof("Starting dataset reloader for %s (every %s)", c.source, c.interval)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		c.Start()
	}()

	return nil
}

// Start runs the reload loop and blocks until the context is cancelled or Stop is called
func (c *Controller) Start() {
	c.ticker = time.NewTicker(c.interval)
	defer c.ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			c.logger.Info("Dataset reloader stopped (context cancelled)")
			return
		case <-c.stopChan:
			c.logger.Info("Dataset reloader stopped (stop requested)")
			return
		case <-c.ticker.C:
			if _, err := c.Reload(c.ctx, false); err != nil {
				// the previous snapshot stays in place
				c.logger.Errorf("Dataset reload failed: %v", err)
			}
		}
	}
}

// Stop ends the reload loop
func (c *Controller) Stop() error {
	c.stopOnce.Do(func() { close(c.stopChan) })
	return nil
}

// Reload rebuilds the snapshot if the source changed, or unconditionally when force is
// set. Concurrent calls share a single load, which runs on the controller's context:
// a caller whose ctx ends stops waiting but does not cancel the load for the others.
func (c *Controller) Reload(ctx context.Context, force bool) (Result, error) {
	key := "changed"
	if force {
		key = "force"
	}

	ch := c.group.DoChan(key, func() (any, error) {
		return c.reload(c.ctx, force)
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		return res.Val.(Result), nil
	}
}

func (c *Controller) reload(ctx context.Context, force bool) (Result, error) {
	current := c.holder.Current()

	if !force && current != nil {
		if v, ok := c.source.(snapshot.Versioner); ok {
			version, err := v.Version(ctx)
			if err != nil {
				c.logger.Warnf("could not check version of %s, reloading: %v", c.source, err)
			} else if version != "" && version == current.Version {
				c.logger.Debugw("dataset unchanged", "source", c.source.String(), "version", version)
				return Result{SnapshotID: current.ID, Version: version}, nil
			}
		}
	}

	snap, err := snapshot.Load(ctx, c.source, c.opts, c.logger)
	if err != nil {
		return Result{}, err
	}
	c.holder.Swap(snap)

	return Result{Reloaded: true, SnapshotID: snap.ID, Version: snap.Version}, nil
}
