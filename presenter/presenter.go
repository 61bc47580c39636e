package presenter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/db"
	"github.com/blue32captain/parity-bridge/entity"
	"github.com/blue32captain/parity-bridge/logging"
	"github.com/blue32captain/parity-bridge/presenter/http/middleware"
	"github.com/blue32captain/parity-bridge/presenter/http/render"
	"github.com/blue32captain/parity-bridge/repository"
)

type Presenter struct {
	logger logging.Logger
	repo   *repository.Repo
	cfg    *config.Config
	root   chi.Router
}

func NewPresenter(logger logging.Logger, repo *repository.Repo, cfg *config.Config) *Presenter {
	return &Presenter{
		logger: logger,
		repo:   repo,
		cfg:    cfg,
		root:   chi.NewMux(),
	}
}

func (p *Presenter) Serve(addr string) error {
	p.logger.WithField("addr", addr).Info("starting presenter service")
	p.root.Use(chimiddleware.Throttle(5))
	p.root.Use(chimiddleware.RequestID)
	p.root.Use(middleware.NewLoggerMiddleware(p.logger))
	p.root.Use(middleware.Recoverer)
	p.root.Route("/bridge/{bridgeID:[0-9a-zA-Z_\\-]+}", func(r chi.Router) {
		r.Use(middleware.GetBridgeConfigMiddleware(p.cfg))
		r.Get("/", p.GetBridgeInfo)
		r.Get("/deposits/failed", p.GetFailedDeposits)
		r.With(middleware.GetDepositHashMiddleware).
			Get("/deposits/{depositHash:0x[0-9a-fA-F]{64}}", p.SearchDeposit)
	})
	return http.ListenAndServe(addr, p.root)
}

func (p *Presenter) GetBridgeInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := middleware.BridgeConfig(ctx)

	res := &BridgeInfo{
		BridgeID: cfg.ID,
	}
	for _, side := range []struct {
		cfg  *config.BridgeSideConfig
		info **BridgeSideInfo
	}{{cfg.Home, &res.Home}, {cfg.Foreign, &res.Foreign}} {
		info := &BridgeSideInfo{
			Chain:      side.cfg.ChainName,
			ChainID:    side.cfg.Chain.ChainID,
			Address:    side.cfg.ContractAddress(),
			StartBlock: side.cfg.StartBlock,
		}
		cursor, err := p.repo.ScanCursors.GetByChainIDAndAddress(ctx, side.cfg.Chain.ChainID, side.cfg.ContractAddress())
		if err != nil {
			if err = db.IgnoreErrNotFound(err); err != nil {
				render.Error(w, r, err)
				return
			}
		} else {
			info.LastScannedBlock = cursor.LastScannedBlock
		}
		*side.info = info
	}
	render.JSON(w, r, http.StatusOK, res)
}

func (p *Presenter) SearchDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := middleware.BridgeConfig(ctx)
	hash := middleware.DepositHash(ctx)

	subs, err := p.repo.Submissions.FindByDepositHash(ctx, cfg.ID, hash)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	res := make([]*SubmissionInfo, 0, len(subs))
	for _, sub := range subs {
		res = append(res, submissionToInfo(sub, p.destChainID(cfg, sub.Direction)))
	}
	render.JSON(w, r, http.StatusOK, res)
}

func (p *Presenter) GetFailedDeposits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := middleware.BridgeConfig(ctx)

	subs, err := p.repo.Submissions.FindFailed(ctx, cfg.ID)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	res := make([]*SubmissionInfo, 0, len(subs))
	for _, sub := range subs {
		res = append(res, submissionToInfo(sub, p.destChainID(cfg, sub.Direction)))
	}
	render.JSON(w, r, http.StatusOK, res)
}

func (p *Presenter) destChainID(cfg *config.BridgeConfig, direction entity.Direction) string {
	if direction == entity.DirectionHomeToForeign {
		return cfg.Foreign.Chain.ChainID
	}
	return cfg.Home.Chain.ChainID
}
