package relay

import (
	"context"
	"fmt"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/entity"
	"github.com/blue32captain/parity-bridge/ethclient"
	"github.com/blue32captain/parity-bridge/logging"
	"github.com/blue32captain/parity-bridge/repository"
)

// Relay runs the two directional pipelines of one bridge. The directions
// touch disjoint chain/contract pairs and are fully independent; a fatal
// condition in one leaves the other running.
type Relay struct {
	cfg           *config.BridgeConfig
	logger        logging.Logger
	homeToForeign *Pipeline
	foreignToHome *Pipeline
}

func NewRelay(
	ctx context.Context,
	logger logging.Logger,
	repo *repository.Repo,
	cfg *config.BridgeConfig,
	homeClient, foreignClient ethclient.Client,
) (*Relay, error) {
	logger.Info("initializing bridge relay")
	homeToForeign, err := NewPipeline(ctx, logger.WithField("direction", entity.DirectionHomeToForeign),
		repo, cfg, entity.DirectionHomeToForeign, cfg.Home, cfg.Foreign, homeClient, foreignClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize home to foreign pipeline: %w", err)
	}
	foreignToHome, err := NewPipeline(ctx, logger.WithField("direction", entity.DirectionForeignToHome),
		repo, cfg, entity.DirectionForeignToHome, cfg.Foreign, cfg.Home, foreignClient, homeClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize foreign to home pipeline: %w", err)
	}
	return &Relay{
		cfg:           cfg,
		logger:        logger,
		homeToForeign: homeToForeign,
		foreignToHome: foreignToHome,
	}, nil
}

func (r *Relay) Start(ctx context.Context) {
	go r.homeToForeign.Run(ctx)
	go r.foreignToHome.Run(ctx)
}
