package entity

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type Direction string

const (
	DirectionHomeToForeign Direction = "home_to_foreign"
	DirectionForeignToHome Direction = "foreign_to_home"
)

// Deposit is a confirmed value transfer decoded from a bridge contract log.
// Hash is derived from the originating transaction and acts as the idempotency
// key: two deposits with equal hashes are the same logical event.
type Deposit struct {
	Recipient common.Address
	Value     *big.Int
	Hash      common.Hash
}
