// Package campaign 实现单个众筹活动的状态机.
//
// 生命周期: Created -> Started -> {Completed | Expired-Incomplete}.
// 所有修改操作都在账本交易中执行, 出错时由账本回滚全部状态.
package campaign

import (
	"math"
	"math/big"
	"time"

	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

var (
	startedEvent     = contract.Event(contract.Campaign, contract.EventCampaignStarted)
	contributedEvent = contract.Event(contract.Campaign, contract.EventContributionDone)
	tokenArtEvent    = contract.Event(contract.Campaign, contract.EventTokenArtCreated)
	distributedEvent = contract.Event(contract.Campaign, contract.EventTokensDistributed)
	withdrawnEvent   = contract.Event(contract.Campaign, contract.EventCampaignFinishedAndFundsWithdrawn)
	refundedEvent    = contract.Event(contract.Campaign, contract.EventWithdrawIncompleteCampaign)

	rateScale = big.NewInt(100)

	// MaxDeadline 活动最长持续秒数, 保证以 time.Duration 表示时不溢出
	MaxDeadline = big.NewInt(math.MaxInt64 / int64(time.Second))
)

// Params 创建活动的参数. FundsGoal 以整 USDC 计, Deadline 为秒数
type Params struct {
	Name          string
	Description   string
	Artist        common.Address
	FundsGoal     *big.Int
	Deadline      *big.Int
	InitialSupply *big.Int
}

// Validate 校验创建参数
func (p Params) Validate() error {
	switch {
	case p.Name == "":
		return ErrEmptyName
	case p.Description == "":
		return ErrEmptyDescription
	case p.Artist == (common.Address{}):
		return ErrInvalidArtist
	case p.InitialSupply == nil || p.InitialSupply.Sign() <= 0:
		return ErrZeroInitialSupply
	case p.FundsGoal == nil || p.FundsGoal.Sign() <= 0:
		return ErrZeroFundsGoal
	case p.Deadline == nil || p.Deadline.Sign() <= 0:
		return ErrZeroDeadline
	case p.Deadline.Cmp(MaxDeadline) > 0:
		return ErrDeadlineTooLong
	}
	return nil
}

// Contribution 一次出资记录, 金额以整 USDC 计
type Contribution struct {
	Contributor common.Address `json:"contributor"`
	Amount      *big.Int       `json:"amount"`
}

// Campaign 一轮众筹
type Campaign struct {
	ledger.Ownable

	address common.Address
	usdc    *token.Token
	params  Params
	rate    *big.Int

	startTime     uint64
	fundsRaised   *big.Int
	isCompleted   bool
	contributions []Contribution

	tokenArt    *token.Token
	distributed bool
	withdrawn   bool
	refunded    bool
}

// Deploy 由当前调用者部署活动合约, owner 为活动管理员
func Deploy(ctx *ledger.Context, owner common.Address, usdc *token.Token, p Params) (*Campaign, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	params := Params{
		Name:          p.Name,
		Description:   p.Description,
		Artist:        p.Artist,
		FundsGoal:     new(big.Int).Set(p.FundsGoal),
		Deadline:      new(big.Int).Set(p.Deadline),
		InitialSupply: new(big.Int).Set(p.InitialSupply),
	}
	rate := new(big.Int).Mul(params.FundsGoal, rateScale)
	rate.Div(rate, params.InitialSupply)

	return &Campaign{
		Ownable:     ledger.NewOwnable(owner),
		address:     ctx.CreateAddress(),
		usdc:        usdc,
		params:      params,
		rate:        rate,
		fundsRaised: new(big.Int),
	}, nil
}

// Address 合约地址
func (c *Campaign) Address() common.Address {
	return c.address
}

// Start 开始活动, 截止时间从当前区块时间起算
func (c *Campaign) Start(ctx *ledger.Context) error {
	if err := c.OnlyOwner(ctx); err != nil {
		return err
	}
	if c.started() {
		return ErrAlreadyStarted
	}

	assign(ctx, &c.startTime, ctx.Timestamp())
	return ctx.Emit(c.address, startedEvent, new(big.Int).SetUint64(c.startTime))
}

// Contribute 调用者出资 amount 个 USDC, 需事先 approve 活动合约地址
func (c *Campaign) Contribute(ctx *ledger.Context, amount *big.Int) error {
	if !c.started() {
		return ErrNotStartedYet
	}
	if c.ended(ctx.Timestamp()) {
		return ErrDeadlinePassed
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroContribution
	}

	contributor := ctx.Sender()
	err := ctx.CallFrom(c.address, func(inner *ledger.Context) error {
		return c.usdc.TransferFrom(inner, contributor, c.address, token.Units(amount))
	})
	if err != nil {
		return err
	}

	n := len(c.contributions)
	c.contributions = append(c.contributions, Contribution{Contributor: contributor, Amount: new(big.Int).Set(amount)})
	ctx.Journal(func() { c.contributions = c.contributions[:n] })
	assign(ctx, &c.fundsRaised, new(big.Int).Add(c.fundsRaised, amount))

	return ctx.Emit(c.address, contributedEvent, contributor, new(big.Int).Set(amount))
}

// CreateTokenArt 目标达成且截止后创建奖励代币
func (c *Campaign) CreateTokenArt(ctx *ledger.Context, name, symbol string) error {
	if err := c.OnlyOwner(ctx); err != nil {
		return err
	}
	if !c.goalReached() {
		return ErrNotCompleted
	}
	if !c.ended(ctx.Timestamp()) {
		return ErrStillActive
	}
	if name == "" || symbol == "" {
		return ErrEmptyTokenMetadata
	}
	if c.tokenArt != nil {
		return ErrTokenArtExists
	}

	assign(ctx, &c.isCompleted, true)
	var art *token.Token
	if err := ctx.CallFrom(c.address, func(inner *ledger.Context) error {
		art = token.DeployTokenArt(inner, name, symbol)
		return nil
	}); err != nil {
		return err
	}
	assign(ctx, &c.tokenArt, art)

	return ctx.Emit(c.address, tokenArtEvent, art.Address(), name, symbol)
}

// DistributeTokens 按出资比例向每笔出资 mint 奖励代币
func (c *Campaign) DistributeTokens(ctx *ledger.Context) error {
	if err := c.OnlyOwner(ctx); err != nil {
		return err
	}
	if c.tokenArt == nil {
		return ErrTokenArtNotCreated
	}
	if c.distributed {
		return ErrAlreadyDistributed
	}

	err := ctx.CallFrom(c.address, func(inner *ledger.Context) error {
		for _, contribution := range c.contributions {
			if err := c.tokenArt.Mint(inner, contribution.Contributor, c.tokenShare(contribution.Amount)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	assign(ctx, &c.distributed, true)

	return ctx.Emit(c.address, distributedEvent, c.tokenArt.Address())
}

// WithdrawFunds 目标达成且截止后将募集的 USDC 转给艺术家
func (c *Campaign) WithdrawFunds(ctx *ledger.Context) error {
	if err := c.OnlyOwner(ctx); err != nil {
		return err
	}
	if !c.started() {
		return ErrNotStarted
	}
	if !c.ended(ctx.Timestamp()) {
		return ErrStillOngoing
	}
	if !c.goalReached() {
		return ErrNotCompleted
	}
	if c.withdrawn {
		return ErrAlreadyWithdrawn
	}

	assign(ctx, &c.isCompleted, true)
	assign(ctx, &c.withdrawn, true)
	err := ctx.CallFrom(c.address, func(inner *ledger.Context) error {
		return c.usdc.Transfer(inner, c.params.Artist, token.Units(c.fundsRaised))
	})
	if err != nil {
		return err
	}

	return ctx.Emit(c.address, withdrawnEvent, new(big.Int).Set(c.fundsRaised))
}

// WithdrawIncompleteCampaign 目标未达成且截止后将每笔出资退还给出资人
func (c *Campaign) WithdrawIncompleteCampaign(ctx *ledger.Context) error {
	if err := c.OnlyOwner(ctx); err != nil {
		return err
	}
	if !c.started() {
		return ErrNotStarted
	}
	if !c.ended(ctx.Timestamp()) {
		return ErrStillOngoing
	}
	if c.goalReached() {
		return ErrCampaignSuccessful
	}
	if c.refunded {
		return ErrAlreadyRefunded
	}

	assign(ctx, &c.refunded, true)
	err := ctx.CallFrom(c.address, func(inner *ledger.Context) error {
		for _, contribution := range c.contributions {
			if err := c.usdc.Transfer(inner, contribution.Contributor, token.Units(contribution.Amount)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return ctx.Emit(c.address, refundedEvent, new(big.Int).Set(c.fundsRaised))
}

func (c *Campaign) started() bool {
	return c.startTime != 0
}

// ended 区块时间严格大于 startTime+deadline 时视为截止
func (c *Campaign) ended(now uint64) bool {
	end := new(big.Int).Add(new(big.Int).SetUint64(c.startTime), c.params.Deadline)
	return new(big.Int).SetUint64(now).Cmp(end) > 0
}

func (c *Campaign) goalReached() bool {
	return c.fundsRaised.Cmp(c.params.FundsGoal) >= 0
}

func (c *Campaign) tokenShare(amount *big.Int) *big.Int {
	return token.Share(amount, c.params.InitialSupply, c.params.FundsGoal)
}

func assign[T any](ctx *ledger.Context, field *T, value T) {
	prev := *field
	*field = value
	ctx.Journal(func() { *field = prev })
}
