package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/powerstats/internal/controllers/reloader"
	"github.com/chrissnell/powerstats/internal/controllers/restserver"
	"github.com/chrissnell/powerstats/pkg/config"
	"go.uber.org/zap"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, dm *DatasetManager, logger *zap.SugaredLogger) (ControllerManager, error) {
	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		config:      cfg,
		dataset:     dm,
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	// The reloader is built first so that the REST server can trigger it
	for _, con := range cfg.Controllers {
		if con.Type != config.ControllerReloader {
			continue
		}
		if cm.reloader != nil {
			return nil, fmt.Errorf("error creating controller: only one reloader may be configured")
		}
		rl, err := cm.createReloader(con)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.reloader = rl
		cm.controllers = append(cm.controllers, rl)
	}

	for _, con := range cfg.Controllers {
		if con.Type == config.ControllerReloader {
			continue
		}
		controller, err := cm.createController(con)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	config      *config.ConfigData
	dataset     *DatasetManager
	logger      *zap.SugaredLogger
	reloader    *reloader.Controller
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

func (cm *controllerManager) createReloader(cc config.ControllerData) (*reloader.Controller, error) {
	interval, err := cc.ReloadInterval(cm.config.Dataset)
	if err != nil {
		return nil, err
	}
	return reloader.NewController(cm.ctx, cm.wg, cm.dataset.Holder, cm.dataset.Source, cm.dataset.Options, interval, cm.logger)
}

// createController creates a controller based on the controller configuration
func (cm *controllerManager) createController(cc config.ControllerData) (Controller, error) {
	switch cc.Type {
	case config.ControllerREST, "restserver":
		var rc config.RESTServerData
		if cc.RESTServer != nil {
			rc = *cc.RESTServer
		}
		// an untyped nil keeps the reload endpoint disabled
		var rl restserver.Reloader
		if cm.reloader != nil {
			rl = cm.reloader
		}
		return restserver.NewController(cm.ctx, cm.wg, cm.dataset.Holder, rc, rl, cm.logger)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
	}
}
