package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/db"
	"github.com/blue32captain/parity-bridge/ethclient"
	"github.com/blue32captain/parity-bridge/logging"
	"github.com/blue32captain/parity-bridge/presenter"
	"github.com/blue32captain/parity-bridge/relay"
	"github.com/blue32captain/parity-bridge/relay/alerts"
	"github.com/blue32captain/parity-bridge/repository"
)

func main() {
	logger := logging.New()

	cfg, err := config.ReadConfigFromFile("config.yml")
	if err != nil {
		logger.WithError(err).Fatal("can't read config")
	}
	if cfg.LogLevel != "" {
		level, err2 := logrus.ParseLevel(cfg.LogLevel)
		if err2 != nil {
			logger.WithError(err2).Fatal("can't parse log level")
		}
		logger.SetLevel(level)
	}

	dbConn, err := db.ConnectToDBAndMigrate(cfg.DBConfig)
	if err != nil {
		logger.WithError(err).Fatal("can't connect to database and apply migrations")
	}
	defer dbConn.Close()

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		err := http.ListenAndServe(":2112", nil)
		if err != nil {
			logger.WithError(err).Fatal("can't start listener for prometheus metrics")
		}
	}()

	repo := repository.NewRepo(dbConn)
	if cfg.Presenter != nil {
		pr := presenter.NewPresenter(logger.WithField("service", "presenter"), repo, cfg)
		go func() {
			err := pr.Serve(cfg.Presenter.Host)
			if err != nil {
				logger.WithError(err).Fatal("can't serve presenter")
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	relays := make([]*relay.Relay, 0, len(cfg.Bridges))
	for _, bridgeCfg := range cfg.Bridges {
		bridgeLogger := logger.WithField("bridge_id", bridgeCfg.ID)
		homeClient, err2 := ethclient.NewClient(bridgeCfg.Home.Chain.RPC.Host, bridgeCfg.Home.Chain.RPC.Timeout, bridgeCfg.Home.Chain.ChainID)
		if err2 != nil {
			bridgeLogger.WithError(err2).Fatal("can't dial home rpc client")
		}
		foreignClient, err2 := ethclient.NewClient(bridgeCfg.Foreign.Chain.RPC.Host, bridgeCfg.Foreign.Chain.RPC.Timeout, bridgeCfg.Foreign.Chain.ChainID)
		if err2 != nil {
			bridgeLogger.WithError(err2).Fatal("can't dial foreign rpc client")
		}
		r, err2 := relay.NewRelay(ctx, bridgeLogger, repo, bridgeCfg, homeClient, foreignClient)
		if err2 != nil {
			bridgeLogger.WithError(err2).Fatal("can't initialize bridge relay")
		}
		relays = append(relays, r)

		am := alerts.NewAlertManager(bridgeLogger, dbConn, bridgeCfg)
		am.Start(ctx)
	}

	for _, r := range relays {
		r.Start(ctx)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	for range c {
		cancel()
		logger.Warn("caught CTRL-C, gracefully terminating")
		return
	}
}
