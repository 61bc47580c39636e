package repository

import (
	"github.com/blue32captain/parity-bridge/db"
	"github.com/blue32captain/parity-bridge/entity"
	"github.com/blue32captain/parity-bridge/repository/postgres"
)

type Repo struct {
	ScanCursors entity.ScanCursorsRepo
	Submissions entity.SubmissionsRepo
}

func NewRepo(db *db.DB) *Repo {
	return &Repo{
		ScanCursors: postgres.NewScanCursorsRepo("scan_cursors", db),
		Submissions: postgres.NewSubmissionsRepo("submissions", db),
	}
}
