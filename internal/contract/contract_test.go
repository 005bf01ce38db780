package contract_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sender   = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	registry = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	usdc     = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
)

func emitLog(t *testing.T, address common.Address, abiName string, event string, args ...interface{}) *types.Log {
	t.Helper()
	l := ledger.New(ledger.FixedClock(time.Unix(1_700_000_000, 0)))
	parsed := contract.Campaign
	switch abiName {
	case contract.NameArtdrop:
		parsed = contract.ArtdropV2
	case contract.NameERC20:
		parsed = contract.ERC20
	}
	r, err := l.Submit(sender, "emit", func(ctx *ledger.Context) error {
		return ctx.Emit(address, contract.Event(parsed, event), args...)
	})
	require.NoError(t, err)
	require.Len(t, r.Logs, 1)
	return r.Logs[0]
}

func TestParseCampaignCreated(t *testing.T) {
	campaignAddr := common.HexToAddress("0xa16E02E87b7454126E5E10d957A927A7F5B5d2be")
	log := emitLog(t, registry, contract.NameArtdrop, contract.EventCampaignCreated, uint32(1), "Campaign", campaignAddr)

	c := contract.NewContract(contract.NameArtdrop, contract.ArtdropV2, registry, 0)
	data, err := c.ParseEvent(*log)
	require.NoError(t, err)

	assert.Equal(t, contract.EventCampaignCreated, data["eventName"])
	assert.Equal(t, contract.NameArtdrop, data["contract"])
	assert.Equal(t, uint32(1), data["campaignId"])
	assert.Equal(t, "Campaign", data["name"])
	assert.Equal(t, campaignAddr, data["campaignAddress"])
	assert.Equal(t, log.TxHash.Hex(), data["txHash"])
}

func TestParseIndexedTransfer(t *testing.T) {
	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	log := emitLog(t, usdc, contract.NameERC20, contract.EventTransfer, sender, to, big.NewInt(42))

	c := contract.NewContract(contract.NameERC20, contract.ERC20, usdc, 0)
	data, err := c.ParseEvent(*log)
	require.NoError(t, err)

	assert.Equal(t, sender, data["from"])
	assert.Equal(t, to, data["to"])
	assert.Equal(t, big.NewInt(42), data["value"])
}

func TestParseUnknownEvent(t *testing.T) {
	log := emitLog(t, usdc, contract.NameERC20, contract.EventTransfer, sender, sender, big.NewInt(1))

	c := contract.NewContract(contract.NameCampaign, contract.Campaign, usdc, 0)
	data, err := c.ParseEvent(*log)
	require.NoError(t, err)
	assert.Equal(t, contract.EventUnknown, data["eventName"])

	_, err = c.ParseEvent(types.Log{})
	assert.Error(t, err)
}

func TestCallRequiresBackend(t *testing.T) {
	c := contract.NewContract(contract.NameCampaign, contract.Campaign, usdc, 0)
	_, err := c.Call(context.Background(), "getCampaignDetails")
	assert.ErrorIs(t, err, contract.ErrNotBound)
}

func TestTopics(t *testing.T) {
	topics := contract.Topics()
	assert.Len(t, topics, 7)
	assert.Contains(t, topics, contract.ArtdropV2.Events[contract.EventCampaignCreated].ID)
	assert.NotContains(t, topics, contract.ERC20.Events[contract.EventTransfer].ID)
}

func TestContractManager(t *testing.T) {
	m := contract.NewContractManager(nil)
	first := m.Register(contract.NameArtdrop, contract.ArtdropV2, registry, 2)
	again := m.Register(contract.NameArtdrop, contract.ArtdropV2, registry, 5)

	assert.Same(t, first, again)
	assert.Equal(t, 1, m.Len())
	got, ok := m.GetContract(registry)
	require.True(t, ok)
	assert.Equal(t, uint64(2), got.GetBlockNum())
	_, ok = m.GetContract(usdc)
	assert.False(t, ok)
}

func TestDecodeCampaignDetails(t *testing.T) {
	method := contract.Campaign.Methods["getCampaignDetails"]
	details := contract.CampaignDetails{
		Name:          "Campaign",
		Description:   "Description",
		Artist:        sender,
		InitialSupply: big.NewInt(1_000_000),
		Deadline:      big.NewInt(200),
		FundsGoal:     big.NewInt(1_000_000),
		FundsRaised:   big.NewInt(10),
		StartTime:     big.NewInt(1_700_000_001),
		IsCompleted:   true,
	}
	packed, err := method.Outputs.Pack(details)
	require.NoError(t, err)
	out, err := method.Outputs.Unpack(packed)
	require.NoError(t, err)

	decoded, err := contract.DecodeCampaignDetails(out)
	require.NoError(t, err)
	assert.Equal(t, details, decoded)
}

func TestDecodeLogAcrossABIs(t *testing.T) {
	campaignAddr := common.HexToAddress("0xa16E02E87b7454126E5E10d957A927A7F5B5d2be")

	started := emitLog(t, campaignAddr, contract.NameCampaign, contract.EventCampaignStarted, big.NewInt(1_700_000_001))
	data, err := contract.DecodeLog(*started)
	require.NoError(t, err)
	assert.Equal(t, contract.EventCampaignStarted, data["eventName"])
	assert.Equal(t, contract.NameCampaign, data["contract"])
	assert.Equal(t, campaignAddr.Hex(), data["address"])

	transfer := emitLog(t, usdc, contract.NameERC20, contract.EventTransfer, sender, campaignAddr, big.NewInt(5))
	data, err = contract.DecodeLog(*transfer)
	require.NoError(t, err)
	assert.Equal(t, contract.EventTransfer, data["eventName"])
	assert.Equal(t, campaignAddr, data["to"])

	unknown := types.Log{Address: usdc, Topics: []common.Hash{common.HexToHash("0x01")}}
	data, err = contract.DecodeLog(unknown)
	require.NoError(t, err)
	assert.Equal(t, contract.EventUnknown, data["eventName"])
}
