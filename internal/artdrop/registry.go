// Package artdrop 实现活动工厂合约 ArtdropV2 以及运行整套合约的节点.
package artdrop

import (
	"math/big"

	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

// ErrCampaignNotFound 活动 id 不存在
var ErrCampaignNotFound = ledger.Revert(ledger.KindNotFound, "Campaign does not exist")

var createdEvent = contract.Event(contract.ArtdropV2, contract.EventCampaignCreated)

// Entry getCampaign 返回的登记信息
type Entry struct {
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	CampaignContract common.Address `json:"campaignContract"`
	CampaignExists   bool           `json:"campaignExists"`
}

// Registry 活动工厂, 按 id 保存活动合约, id 从 1 开始
type Registry struct {
	ledger.Ownable

	address   common.Address
	usdc      *token.Token
	campaigns []*campaign.Campaign
	byAddress map[common.Address]uint32
}

// Deploy 部署工厂合约, 调用者成为 owner
func Deploy(ctx *ledger.Context, usdc *token.Token) *Registry {
	return &Registry{
		Ownable:   ledger.NewOwnable(ctx.Sender()),
		address:   ctx.CreateAddress(),
		usdc:      usdc,
		byAddress: make(map[common.Address]uint32),
	}
}

// Address 合约地址
func (r *Registry) Address() common.Address { return r.address }

// USDC 出资代币
func (r *Registry) USDC() *token.Token { return r.usdc }

// CreateCampaign 部署新的活动合约并登记, 返回活动 id
func (r *Registry) CreateCampaign(ctx *ledger.Context, p campaign.Params) (uint32, error) {
	if err := r.OnlyOwner(ctx); err != nil {
		return 0, err
	}

	var c *campaign.Campaign
	err := ctx.CallFrom(r.address, func(inner *ledger.Context) (err error) {
		c, err = campaign.Deploy(inner, r.Owner(), r.usdc, p)
		return err
	})
	if err != nil {
		return 0, err
	}

	n := len(r.campaigns)
	r.campaigns = append(r.campaigns, c)
	id := uint32(n + 1)
	r.byAddress[c.Address()] = id
	ctx.Journal(func() {
		r.campaigns = r.campaigns[:n]
		delete(r.byAddress, c.Address())
	})

	if err := ctx.Emit(r.address, createdEvent, id, p.Name, c.Address()); err != nil {
		return 0, err
	}
	return id, nil
}

// StartCampaign 开始指定活动
func (r *Registry) StartCampaign(ctx *ledger.Context, id uint32) error {
	c, err := r.ownedCampaign(ctx, id)
	if err != nil {
		return err
	}
	return c.Start(ctx)
}

// Contribute 向指定活动出资, 任何人可调用
func (r *Registry) Contribute(ctx *ledger.Context, id uint32, amount *big.Int) error {
	c, err := r.lookup(id)
	if err != nil {
		return err
	}
	return c.Contribute(ctx, amount)
}

// CreateTokenArt 为指定活动创建奖励代币
func (r *Registry) CreateTokenArt(ctx *ledger.Context, id uint32, name, symbol string) error {
	c, err := r.ownedCampaign(ctx, id)
	if err != nil {
		return err
	}
	return c.CreateTokenArt(ctx, name, symbol)
}

// DistributeTokens 分发指定活动的奖励代币
func (r *Registry) DistributeTokens(ctx *ledger.Context, id uint32) error {
	c, err := r.ownedCampaign(ctx, id)
	if err != nil {
		return err
	}
	return c.DistributeTokens(ctx)
}

// WithdrawFunds 将指定活动的募集资金转给艺术家
func (r *Registry) WithdrawFunds(ctx *ledger.Context, id uint32) error {
	c, err := r.ownedCampaign(ctx, id)
	if err != nil {
		return err
	}
	return c.WithdrawFunds(ctx)
}

// WithdrawIncompleteCampaign 退还指定失败活动的出资
func (r *Registry) WithdrawIncompleteCampaign(ctx *ledger.Context, id uint32) error {
	c, err := r.ownedCampaign(ctx, id)
	if err != nil {
		return err
	}
	return c.WithdrawIncompleteCampaign(ctx)
}

// Campaign 返回登记信息
func (r *Registry) Campaign(id uint32) (Entry, error) {
	c, err := r.lookup(id)
	if err != nil {
		return Entry{}, err
	}
	details := c.Details()
	return Entry{
		Name:             details.Name,
		Description:      details.Description,
		CampaignContract: c.Address(),
		CampaignExists:   true,
	}, nil
}

// CampaignContract 返回活动合约
func (r *Registry) CampaignContract(id uint32) (*campaign.Campaign, error) {
	return r.lookup(id)
}

// TokenArt 返回活动的奖励代币信息
func (r *Registry) TokenArt(id uint32) (campaign.TokenArt, error) {
	c, err := r.lookup(id)
	if err != nil {
		return campaign.TokenArt{}, err
	}
	return c.TokenArt(), nil
}

// RemainingTime 返回活动剩余秒数
func (r *Registry) RemainingTime(id uint32, now uint64) (*big.Int, error) {
	c, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return c.RemainingTime(now), nil
}

// Contributions 返回活动的出资记录
func (r *Registry) Contributions(id uint32) ([]campaign.Contribution, error) {
	c, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return c.Contributions(), nil
}

// CampaignByAddress 按合约地址查找活动
func (r *Registry) CampaignByAddress(addr common.Address) (*campaign.Campaign, uint32, bool) {
	id, ok := r.byAddress[addr]
	if !ok {
		return nil, 0, false
	}
	return r.campaigns[id-1], id, true
}

// CampaignCount 已创建的活动数量
func (r *Registry) CampaignCount() uint32 {
	return uint32(len(r.campaigns))
}

func (r *Registry) lookup(id uint32) (*campaign.Campaign, error) {
	if id == 0 || int(id) > len(r.campaigns) {
		return nil, ErrCampaignNotFound
	}
	return r.campaigns[id-1], nil
}

// ownedCampaign 先校验 owner, 再校验活动存在
func (r *Registry) ownedCampaign(ctx *ledger.Context, id uint32) (*campaign.Campaign, error) {
	if err := r.OnlyOwner(ctx); err != nil {
		return nil, err
	}
	return r.lookup(id)
}
