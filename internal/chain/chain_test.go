package chain_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/chain"
	"github.com/blues/artdrop/internal/config"
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var owner = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func TestBlockReadsLedgerLogs(t *testing.T) {
	node, err := artdrop.NewNode(ledger.New(ledger.FixedClock(time.Unix(1_700_000_000, 0))), owner)
	require.NoError(t, err)
	_, id, err := node.CreateCampaign(owner, campaign.Params{
		Name:          "Genesis",
		Description:   "First drop",
		Artist:        common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
		FundsGoal:     big.NewInt(10),
		Deadline:      big.NewInt(60),
		InitialSupply: big.NewInt(10),
	})
	require.NoError(t, err)
	_, err = node.StartCampaign(owner, id)
	require.NoError(t, err)

	block := chain.NewBlock(node.Ledger())
	ctx := context.Background()

	current, err := block.GetCurrentBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), current)

	logs, err := block.GetBatchBlockLogs(ctx, nil, contract.Topics(), 0, current)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = block.GetBatchBlockLogs(ctx, []common.Address{node.RegistryAddress()}, nil, 0, current)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, uint64(3), logs[0].BlockNumber)

	logs, err = block.GetBatchBlockLogs(ctx, nil, contract.Topics(), 4, 4)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, contract.Event(contract.Campaign, contract.EventCampaignStarted).ID, logs[0].Topics[0])
}

func TestNewManagerValidatesConfig(t *testing.T) {
	valid := config.ChainConfig{
		Enabled:   true,
		ChainType: "ethereum",
		ChainId:   31337,
		RpcUrl:    "http://127.0.0.1:8545",
		Registry:  "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
	}

	cfg := valid
	cfg.Registry = "not-an-address"
	_, err := chain.NewManager(cfg)
	assert.ErrorContains(t, err, "invalid registry address")

	cfg = valid
	cfg.ChainType = "solana"
	_, err = chain.NewManager(cfg)
	assert.ErrorContains(t, err, "unsupported chain type")

	cfg = valid
	cfg.RpcUrl = ""
	_, err = chain.NewManager(cfg)
	assert.ErrorContains(t, err, "no RPC URL configured")
}
