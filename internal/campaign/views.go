package campaign

import (
	"math/big"

	"github.com/blues/artdrop/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

// Status 按区块时间推导的活动状态
type Status string

const (
	StatusCreated   Status = "created"
	StatusActive    Status = "active"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Details 活动详情, 字段顺序与 getCampaignDetails 返回的 tuple 一致
type Details struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Artist        common.Address `json:"artist"`
	InitialSupply *big.Int       `json:"initialSupply"`
	Deadline      *big.Int       `json:"deadline"`
	FundsGoal     *big.Int       `json:"fundsGoal"`
	FundsRaised   *big.Int       `json:"fundsRaised"`
	StartTime     *big.Int       `json:"startTime"`
	IsCompleted   bool           `json:"isCompleted"`
}

// TokenArt 奖励代币信息, 字段顺序与 getTokenArt 返回的 tuple 一致
type TokenArt struct {
	Name          string         `json:"name"`
	Symbol        string         `json:"symbol"`
	Address       common.Address `json:"Address"`
	InitialSupply *big.Int       `json:"initialSupply"`
	Rate          *big.Int       `json:"rate"`
}

// Details 返回活动详情
func (c *Campaign) Details() Details {
	return Details{
		Name:          c.params.Name,
		Description:   c.params.Description,
		Artist:        c.params.Artist,
		InitialSupply: new(big.Int).Set(c.params.InitialSupply),
		Deadline:      new(big.Int).Set(c.params.Deadline),
		FundsGoal:     new(big.Int).Set(c.params.FundsGoal),
		FundsRaised:   new(big.Int).Set(c.fundsRaised),
		StartTime:     new(big.Int).SetUint64(c.startTime),
		IsCompleted:   c.isCompleted,
	}
}

// TokenArt 返回奖励代币信息, 未创建时名称与地址为空
func (c *Campaign) TokenArt() TokenArt {
	info := TokenArt{
		InitialSupply: new(big.Int).Set(c.params.InitialSupply),
		Rate:          new(big.Int).Set(c.rate),
	}
	if c.tokenArt != nil {
		info.Name = c.tokenArt.Name()
		info.Symbol = c.tokenArt.Symbol()
		info.Address = c.tokenArt.Address()
	}
	return info
}

// TokenArtToken 返回奖励代币合约, 未创建时为 nil
func (c *Campaign) TokenArtToken() *token.Token {
	return c.tokenArt
}

// Contributions 返回全部出资记录的副本
func (c *Campaign) Contributions() []Contribution {
	out := make([]Contribution, len(c.contributions))
	for i, contribution := range c.contributions {
		out[i] = Contribution{Contributor: contribution.Contributor, Amount: new(big.Int).Set(contribution.Amount)}
	}
	return out
}

// RemainingTime 剩余秒数; 未开始时返回完整时长, 截止后为 0
func (c *Campaign) RemainingTime(now uint64) *big.Int {
	if !c.started() {
		return new(big.Int).Set(c.params.Deadline)
	}
	end := new(big.Int).Add(new(big.Int).SetUint64(c.startTime), c.params.Deadline)
	remaining := end.Sub(end, new(big.Int).SetUint64(now))
	if remaining.Sign() < 0 {
		return new(big.Int)
	}
	return remaining
}

// Status 推导当前状态
func (c *Campaign) Status(now uint64) Status {
	switch {
	case !c.started():
		return StatusCreated
	case !c.ended(now):
		return StatusActive
	case c.goalReached():
		return StatusSucceeded
	default:
		return StatusFailed
	}
}

// Status 按详情与区块时间推导状态, 用于只能读取详情的远程活动
func (d Details) Status(now uint64) Status {
	if d.StartTime == nil || d.StartTime.Sign() == 0 {
		return StatusCreated
	}
	end := new(big.Int).Add(d.StartTime, d.Deadline)
	switch {
	case new(big.Int).SetUint64(now).Cmp(end) <= 0:
		return StatusActive
	case d.FundsRaised.Cmp(d.FundsGoal) >= 0:
		return StatusSucceeded
	default:
		return StatusFailed
	}
}

// Distributed 奖励代币是否已分发
func (c *Campaign) Distributed() bool { return c.distributed }

// Withdrawn 募集资金是否已转给艺术家
func (c *Campaign) Withdrawn() bool { return c.withdrawn }

// Refunded 出资是否已退还
func (c *Campaign) Refunded() bool { return c.refunded }

// USDC 出资使用的代币
func (c *Campaign) USDC() *token.Token { return c.usdc }
