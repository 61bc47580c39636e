package abi_test

import (
	_ "embed"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/blue32captain/parity-bridge/contract/abi"
	"github.com/blue32captain/parity-bridge/entity"
)

//go:embed test_abi.json
var testJSONABI string

var (
	transferTopic  = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	testEventTopic = crypto.Keccak256Hash([]byte("TestEvent(uint256,uint256)"))
	aliceAddr      = common.HexToAddress("0x01")
	alice          = aliceAddr.Hash()
	bobAddr        = common.HexToAddress("0x02")
	bob            = bobAddr.Hash()
)

func TestABI_AllEvents(t *testing.T) {
	t.Parallel()

	testABI := abi.MustReadABI(testJSONABI)

	allEvents := testABI.AllEvents()
	require.Equal(t, map[string]bool{
		"event Transfer(address indexed sender, address indexed receiver, uint256 value)": true,
		"event TestEvent(uint256 a, uint256 b)":                                           true,
	}, allEvents)
}

func TestABI_FindMatchingEventABI(t *testing.T) {
	t.Parallel()

	testABI := abi.MustReadABI(testJSONABI)

	event := testABI.FindMatchingEventABI([]common.Hash{transferTopic, alice, bob})
	require.NotNil(t, event)
	require.Equal(t, "Transfer", event.Name)
	event = testABI.FindMatchingEventABI([]common.Hash{transferTopic, alice})
	require.Nil(t, event)
	event = testABI.FindMatchingEventABI([]common.Hash{testEventTopic})
	require.NotNil(t, event)
	require.Equal(t, "TestEvent", event.Name)
}

func TestABI_ParseLog(t *testing.T) {
	t.Parallel()

	testABI := abi.MustReadABI(testJSONABI)

	value := big.NewInt(1000)
	data, err := testABI.Events["Transfer"].Inputs.NonIndexed().Pack(value)
	require.NoError(t, err)

	log := &entity.Log{
		Topic0: &transferTopic,
		Topic1: &alice,
		Topic2: &bob,
		Data:   data,
	}
	name, values, err := testABI.ParseLog(log)
	require.NoError(t, err)
	require.Equal(t, "event Transfer(address indexed sender, address indexed receiver, uint256 value)", name)
	require.Equal(t, map[string]interface{}{
		"sender":   aliceAddr,
		"receiver": bobAddr,
		"value":    value,
	}, values)
}

func TestABI_ParseLogUnknownEvent(t *testing.T) {
	t.Parallel()

	testABI := abi.MustReadABI(testJSONABI)

	unknownTopic := crypto.Keccak256Hash([]byte("Unknown()"))
	log := &entity.Log{
		Topic0: &unknownTopic,
	}
	name, values, err := testABI.ParseLog(log)
	require.NoError(t, err)
	require.Empty(t, name)
	require.Nil(t, values)
}
