package ledger_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	alice    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	genesis  = time.Unix(1_700_000_000, 0)
)

func newLedger() *ledger.Ledger {
	return ledger.New(ledger.FixedClock(genesis))
}

func noop(*ledger.Context) error { return nil }

func TestSubmitMinesOneBlockPerTransaction(t *testing.T) {
	l := newLedger()
	base := uint64(genesis.Unix())

	r1, err := l.Submit(deployer, "first", noop)
	require.NoError(t, err)
	r2, err := l.Submit(alice, "second", noop)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), r1.BlockNumber)
	assert.Equal(t, uint64(2), r2.BlockNumber)
	assert.Equal(t, base+1, r1.Timestamp)
	assert.Equal(t, base+2, r2.Timestamp)
	assert.NotEqual(t, r1.TxHash, r2.TxHash)
	assert.NotEqual(t, r1.BlockHash, r2.BlockHash)

	n, err := l.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
	assert.Equal(t, uint64(1), l.Nonce(deployer))
	assert.Equal(t, uint64(1), l.Nonce(alice))
}

func TestSubmitRollsBackOnError(t *testing.T) {
	l := newLedger()
	transfer := contract.Event(contract.ERC20, contract.EventTransfer)
	boom := ledger.Revert(ledger.KindState, "boom")

	counter := 0
	_, err := l.Submit(deployer, "fail", func(ctx *ledger.Context) error {
		counter++
		ctx.Journal(func() { counter-- })
		ctx.CreateAddress()
		require.NoError(t, ctx.Emit(deployer, transfer, common.Address{}, alice, big.NewInt(1)))
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, counter)
	assert.Empty(t, l.Logs())
	assert.Equal(t, uint64(0), l.Nonce(deployer))
	n, _ := l.BlockNumber(context.Background())
	assert.Equal(t, uint64(0), n)
}

func TestSubmitRollsBackOnPanic(t *testing.T) {
	l := newLedger()
	counter := 0

	assert.Panics(t, func() {
		_, _ = l.Submit(deployer, "panic", func(ctx *ledger.Context) error {
			counter++
			ctx.Journal(func() { counter-- })
			panic("unexpected")
		})
	})
	assert.Equal(t, 0, counter)

	// 锁已释放, 后续交易正常执行
	_, err := l.Submit(deployer, "after", noop)
	require.NoError(t, err)
}

func TestIncreaseTime(t *testing.T) {
	l := newLedger()
	base := uint64(genesis.Unix())

	_, err := l.Submit(deployer, "tx", noop)
	require.NoError(t, err)

	ts := l.IncreaseTime(200)
	assert.Equal(t, base+201, ts)
	assert.Equal(t, base+201, l.Now())

	r, err := l.Submit(deployer, "later", noop)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), r.BlockNumber)
	assert.Equal(t, base+202, r.Timestamp)
}

func TestCreateAddressMatchesHardhatDeployment(t *testing.T) {
	l := newLedger()

	var usdc, registry, child common.Address
	_, err := l.Submit(deployer, "deploy MockUSDC", func(ctx *ledger.Context) error {
		usdc = ctx.CreateAddress()
		return nil
	})
	require.NoError(t, err)
	_, err = l.Submit(deployer, "deploy ArtdropV2", func(ctx *ledger.Context) error {
		registry = ctx.CreateAddress()
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), usdc)
	assert.Equal(t, common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"), registry)
	assert.Equal(t, uint64(2), l.Nonce(deployer))
	assert.Equal(t, uint64(1), l.Nonce(registry))

	_, err = l.Submit(deployer, "createCampaign", func(ctx *ledger.Context) error {
		return ctx.CallFrom(registry, func(inner *ledger.Context) error {
			assert.Equal(t, registry, inner.Sender())
			assert.Equal(t, deployer, inner.Origin())
			child = inner.CreateAddress()
			return nil
		})
	})
	require.NoError(t, err)

	assert.Equal(t, crypto.CreateAddress(registry, 1), child)
	assert.Equal(t, uint64(2), l.Nonce(registry))
	assert.Equal(t, uint64(3), l.Nonce(deployer))
}

func TestFilterLogs(t *testing.T) {
	l := newLedger()
	transfer := contract.Event(contract.ERC20, contract.EventTransfer)
	token := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	for i, to := range []common.Address{alice, deployer, alice} {
		value := big.NewInt(int64(i + 1))
		_, err := l.Submit(deployer, "transfer", func(ctx *ledger.Context) error {
			return ctx.Emit(token, transfer, deployer, to, value)
		})
		require.NoError(t, err)
	}

	logs, err := l.FilterLogs(context.Background(), ethereum.FilterQuery{
		Addresses: []common.Address{token},
		Topics:    [][]common.Hash{{transfer.ID}, nil, {common.BytesToHash(alice.Bytes())}},
	})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, uint64(1), logs[0].BlockNumber)
	assert.Equal(t, uint64(3), logs[1].BlockNumber)
	assert.Equal(t, uint(0), logs[1].Index)

	values, err := contract.ERC20.Unpack(contract.EventTransfer, logs[1].Data)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), values[0])

	logs, err = l.FilterLogs(context.Background(), ethereum.FilterQuery{
		FromBlock: big.NewInt(2),
		ToBlock:   big.NewInt(2),
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, common.BytesToHash(deployer.Bytes()), logs[0].Topics[2])

	logs, err = l.FilterLogs(context.Background(), ethereum.FilterQuery{
		Addresses: []common.Address{alice},
	})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestOnCommitReceivesReceipts(t *testing.T) {
	l := newLedger()
	var got []uint64
	l.OnCommit(func(r *ledger.Receipt) {
		got = append(got, r.BlockNumber)
	})

	_, err := l.Submit(deployer, "a", noop)
	require.NoError(t, err)
	_, err = l.Submit(deployer, "b", func(*ledger.Context) error { return errors.New("nope") })
	require.Error(t, err)
	_, err = l.Submit(deployer, "c", noop)
	require.NoError(t, err)

	assert.Equal(t, []uint64{1, 2}, got)

	l.IncreaseTime(60)
	assert.Equal(t, []uint64{1, 2, 3}, got)
}

func TestOnCommitRunsInBlockOrder(t *testing.T) {
	l := newLedger()
	var (
		got     []uint64
		methods []string
	)
	l.OnCommit(func(r *ledger.Receipt) {
		got = append(got, r.BlockNumber)
		methods = append(methods, r.Method)
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%5 == 0 {
				l.IncreaseTime(1)
				return
			}
			_, err := l.Submit(deployer, "tx", noop)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, got, 20)
	for i, n := range got {
		assert.Equal(t, uint64(i+1), n)
	}
	assert.Contains(t, methods, ledger.IncreaseTimeMethod)
}

func TestOwnable(t *testing.T) {
	l := newLedger()
	o := ledger.NewOwnable(deployer)

	_, err := l.Submit(alice, "restricted", o.OnlyOwner)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	assert.Equal(t, ledger.KindUnauthorized, ledger.KindOf(err))
	assert.Contains(t, err.Error(), "OwnableUnauthorizedAccount("+alice.Hex()+")")

	_, err = l.Submit(deployer, "restricted", o.OnlyOwner)
	require.NoError(t, err)
}

func TestErrorKinds(t *testing.T) {
	notFound := ledger.Revert(ledger.KindNotFound, "Campaign does not exist")
	wrapped := errors.Join(errors.New("context"), notFound)

	assert.True(t, ledger.IsRevert(wrapped))
	assert.Equal(t, ledger.KindNotFound, ledger.KindOf(wrapped))
	assert.Equal(t, "execution reverted: Campaign does not exist", notFound.Error())
	assert.False(t, ledger.IsRevert(errors.New("plain")))
}
