package managers

import (
	"context"
	"fmt"

	"github.com/chrissnell/powerstats/internal/constants"
	"github.com/chrissnell/powerstats/internal/snapshot"
	"github.com/chrissnell/powerstats/pkg/config"
	"go.uber.org/zap"
)

// DatasetManager owns the dataset source and the snapshot holder shared by all
// controllers
type DatasetManager struct {
	Source  snapshot.Source
	Options snapshot.Options
	Holder  *snapshot.Holder
	logger  *zap.SugaredLogger
}

// NewDatasetManager builds the source described by the dataset configuration. Nothing
// is loaded until LoadInitial is called.
func NewDatasetManager(d config.DatasetData, logger *zap.SugaredLogger) (*DatasetManager, error) {
	loc, err := d.Location()
	if err != nil {
		return nil, err
	}

	var src snapshot.Source
	switch {
	case d.Path != "" && d.URL != "":
		return nil, fmt.Errorf("dataset path and url are mutually exclusive")
	case d.Path != "":
		src = snapshot.NewFileSource(d.Path)
	case d.URL != "":
		src = snapshot.NewHTTPSource(d.URL, constants.DefaultHTTPTimeout)
	default:
		return nil, config.ErrNoDataset
	}

	return &DatasetManager{
		Source: src,
		Options: snapshot.Options{
			Location:       loc,
			LastUpdateFile: d.LastUpdateFile,
		},
		Holder: snapshot.NewHolder(nil),
		logger: logger,
	}, nil
}

// LoadInitial loads the first snapshot. Controllers only start once this succeeded.
func (m *DatasetManager) LoadInitial(ctx context.Context) error {
	snap, err := snapshot.Load(ctx, m.Source, m.Options, m.logger)
	if err != nil {
		return fmt.Errorf("initial dataset load failed: %w", err)
	}
	m.Holder.Swap(snap)
	return nil
}
