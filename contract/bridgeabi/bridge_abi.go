package bridgeabi

import (
	_ "embed"

	"github.com/blue32captain/parity-bridge/contract/abi"
)

//go:embed bridge.json
var bridgeJSONABI string

const (
	DepositEvent    = "Deposit"
	DepositFunction = "deposit"
)

// BridgeABI describes the single contract interface shared by both bridge
// sides: a two-field Deposit event and a three-argument deposit call that
// mirrors an observed deposit together with its idempotency hash.
var BridgeABI = abi.MustReadABI(bridgeJSONABI)

var DepositEventSignature = BridgeABI.Events[DepositEvent].ID
