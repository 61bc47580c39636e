package main

import (
	"context"
	"flag"

	"github.com/ethereum/go-ethereum/common"

	"github.com/blue32captain/parity-bridge/config"
	"github.com/blue32captain/parity-bridge/db"
	"github.com/blue32captain/parity-bridge/entity"
	"github.com/blue32captain/parity-bridge/logging"
	"github.com/blue32captain/parity-bridge/repository"
)

var (
	bridgeID    = flag.String("bridgeId", "", "bridgeId to resubmit deposit in")
	home        = flag.Bool("home", false, "resubmit a home to foreign deposit")
	foreign     = flag.Bool("foreign", false, "resubmit a foreign to home deposit")
	depositHash = flag.String("depositHash", "", "hash of the origin deposit transaction")
)

func main() {
	flag.Parse()

	logger := logging.New()

	cfg, err := config.ReadConfigFromFile("config.yml")
	if err != nil {
		logger.WithError(err).Fatal("can't read config")
	}

	if *bridgeID == "" {
		logger.Fatal("bridgeId is not specified")
	}
	if *home == *foreign {
		logger.Fatal("exactly one of --home or --foreign should be specified")
	}
	if len(*depositHash) != 66 {
		logger.Fatal("depositHash is not a valid 32-byte hash")
	}
	bridgeCfg, ok := cfg.Bridges[*bridgeID]
	if !ok || bridgeCfg == nil {
		logger.WithField("bridge_id", *bridgeID).Fatal("bridge config for given bridgeId is not found")
	}
	direction := entity.DirectionForeignToHome
	if *home {
		direction = entity.DirectionHomeToForeign
	}

	dbConn, err := db.ConnectToDBAndMigrate(cfg.DBConfig)
	if err != nil {
		logger.WithError(err).Fatal("can't connect to database and apply migrations")
	}
	defer dbConn.Close()

	ctx := context.Background()
	repo := repository.NewRepo(dbConn)

	sub, err := repo.Submissions.GetByDepositHash(ctx, bridgeCfg.ID, direction, common.HexToHash(*depositHash))
	if err != nil {
		logger.WithError(err).Fatal("can't find submission for given deposit hash")
	}
	if sub.Status == entity.SubmissionCompleted {
		logger.Fatal("deposit has already been relayed")
	}

	sub.Status = entity.SubmissionPending
	sub.TxHash = nil
	sub.SubmittedAtBlock = 0
	sub.AttemptCount = 0
	sub.LastAttemptAt = nil
	if err = repo.Submissions.Ensure(ctx, sub); err != nil {
		logger.WithError(err).Fatal("can't requeue submission")
	}
	logger.WithField("deposit_hash", sub.DepositHash).Info("submission requeued, the running relay will retry it")
}
