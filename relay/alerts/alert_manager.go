package alerts

import (
	"context"
	"time"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/db"
	"github.com/blue32captain/parity-bridge/logging"
)

type AlertManager struct {
	logger logging.Logger
	jobs   map[string]*Job
}

func NewAlertManager(logger logging.Logger, db *db.DB, cfg *config.BridgeConfig) *AlertManager {
	provider := NewDBAlertsProvider(db)
	jobs := map[string]*Job{
		"failed_submission": {
			Interval: time.Minute,
			Timeout:  time.Second * 10,
			Func:     provider.FindFailedSubmissions,
			Metric:   NewAlertFailedSubmission(cfg.ID),
		},
		"stuck_submission": {
			Interval: time.Minute * 5,
			Timeout:  time.Second * 20,
			Func:     provider.FindStuckSubmissions,
			Metric:   NewAlertStuckSubmission(cfg.ID),
		},
	}
	for name, job := range jobs {
		job.logger = logger.WithField("alert_job", name)
		job.Params = &AlertJobParams{
			Bridge: cfg.ID,
		}
	}
	return &AlertManager{
		logger: logger,
		jobs:   jobs,
	}
}

func (m *AlertManager) Start(ctx context.Context) {
	for _, job := range m.jobs {
		go job.Start(ctx)
	}
}
