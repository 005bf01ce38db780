package artdrop

import (
	"context"
	"errors"
	"math/big"

	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/token"
	"github.com/ethereum/go-ethereum/common"
)

// ErrUnknownToken 地址不是本节点部署的代币
var ErrUnknownToken = errors.New("unknown token")

// CampaignView 活动的完整只读视图
type CampaignView struct {
	ID                uint32            `json:"id"`
	Address           common.Address    `json:"address"`
	Details           campaign.Details  `json:"details"`
	TokenArt          campaign.TokenArt `json:"tokenArt"`
	RemainingTime     *big.Int          `json:"remainingTime"`
	Status            campaign.Status   `json:"status"`
	ContributionCount int               `json:"contributionCount"`
	Distributed       bool              `json:"distributed"`
	Withdrawn         bool              `json:"withdrawn"`
	Refunded          bool              `json:"refunded"`
}

// Node 在账本上运行 MockUSDC 与 ArtdropV2, 提供交易与查询入口
type Node struct {
	ledger   *ledger.Ledger
	owner    common.Address
	usdc     *token.Token
	registry *Registry
}

// NewNode 执行创世部署: owner 依次部署 MockUSDC 与 ArtdropV2
func NewNode(l *ledger.Ledger, owner common.Address) (*Node, error) {
	n := &Node{ledger: l, owner: owner}

	if _, err := l.Submit(owner, "deploy MockUSDC", func(ctx *ledger.Context) error {
		n.usdc = token.DeployMockUSDC(ctx)
		return nil
	}); err != nil {
		return nil, err
	}
	if _, err := l.Submit(owner, "deploy ArtdropV2", func(ctx *ledger.Context) error {
		n.registry = Deploy(ctx, n.usdc)
		return nil
	}); err != nil {
		return nil, err
	}

	logger.Info("ArtDrop deployed: owner=%s usdc=%s registry=%s source=%s",
		owner.Hex(), n.usdc.Address().Hex(), n.registry.Address().Hex(), l.ID())
	return n, nil
}

// Ledger 底层账本
func (n *Node) Ledger() *ledger.Ledger { return n.ledger }

// Source 账本实例标识
func (n *Node) Source() string { return n.ledger.ID() }

// Owner 部署者, 同时是工厂与所有活动的 owner
func (n *Node) Owner() common.Address { return n.owner }

// USDCAddress MockUSDC 地址
func (n *Node) USDCAddress() common.Address { return n.usdc.Address() }

// RegistryAddress ArtdropV2 地址
func (n *Node) RegistryAddress() common.Address { return n.registry.Address() }

// CreateCampaign 创建活动, 返回回执与活动 id
func (n *Node) CreateCampaign(from common.Address, p campaign.Params) (*ledger.Receipt, uint32, error) {
	var id uint32
	receipt, err := n.submit(from, "createCampaign", func(ctx *ledger.Context) (err error) {
		id, err = n.registry.CreateCampaign(ctx, p)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return receipt, id, nil
}

// StartCampaign 开始活动
func (n *Node) StartCampaign(from common.Address, id uint32) (*ledger.Receipt, error) {
	return n.submit(from, "startCampaign", func(ctx *ledger.Context) error {
		return n.registry.StartCampaign(ctx, id)
	})
}

// Contribute 出资, amount 以整 USDC 计
func (n *Node) Contribute(from common.Address, id uint32, amount *big.Int) (*ledger.Receipt, error) {
	return n.submit(from, "contribute", func(ctx *ledger.Context) error {
		return n.registry.Contribute(ctx, id, amount)
	})
}

// CreateTokenArt 创建奖励代币
func (n *Node) CreateTokenArt(from common.Address, id uint32, name, symbol string) (*ledger.Receipt, error) {
	return n.submit(from, "createTokenArt", func(ctx *ledger.Context) error {
		return n.registry.CreateTokenArt(ctx, id, name, symbol)
	})
}

// DistributeTokens 分发奖励代币
func (n *Node) DistributeTokens(from common.Address, id uint32) (*ledger.Receipt, error) {
	return n.submit(from, "distributeTokens", func(ctx *ledger.Context) error {
		return n.registry.DistributeTokens(ctx, id)
	})
}

// WithdrawFunds 提取募集资金给艺术家
func (n *Node) WithdrawFunds(from common.Address, id uint32) (*ledger.Receipt, error) {
	return n.submit(from, "withdrawFunds", func(ctx *ledger.Context) error {
		return n.registry.WithdrawFunds(ctx, id)
	})
}

// WithdrawIncompleteCampaign 退还失败活动的出资
func (n *Node) WithdrawIncompleteCampaign(from common.Address, id uint32) (*ledger.Receipt, error) {
	return n.submit(from, "withdrawIncompleteCampaign", func(ctx *ledger.Context) error {
		return n.registry.WithdrawIncompleteCampaign(ctx, id)
	})
}

// MintUSDC 为 to 增发 USDC, amount 为最小单位
func (n *Node) MintUSDC(from, to common.Address, amount *big.Int) (*ledger.Receipt, error) {
	return n.submit(from, "mint", func(ctx *ledger.Context) error {
		return n.usdc.Mint(ctx, to, amount)
	})
}

// ApproveUSDC 授权 spender 划转调用者的 USDC, amount 为最小单位
func (n *Node) ApproveUSDC(from, spender common.Address, amount *big.Int) (*ledger.Receipt, error) {
	return n.submit(from, "approve", func(ctx *ledger.Context) error {
		return n.usdc.Approve(ctx, spender, amount)
	})
}

// TransferToken 转账任意本节点代币, amount 为最小单位
func (n *Node) TransferToken(from, tokenAddr, to common.Address, amount *big.Int) (*ledger.Receipt, error) {
	return n.submit(from, "transfer", func(ctx *ledger.Context) error {
		t, err := n.token(tokenAddr)
		if err != nil {
			return err
		}
		return t.Transfer(ctx, to, amount)
	})
}

// IncreaseTime 推进链上时间, 仅用于开发模式
func (n *Node) IncreaseTime(seconds uint64) uint64 {
	ts := n.ledger.IncreaseTime(seconds)
	logger.Info("Chain time increased by %d seconds, now %d", seconds, ts)
	return ts
}

func (n *Node) submit(from common.Address, method string, fn func(ctx *ledger.Context) error) (*ledger.Receipt, error) {
	receipt, err := n.ledger.Submit(from, method, fn)
	if err != nil {
		logger.Debug("Transaction %s from %s reverted: %v", method, from.Hex(), err)
		return nil, err
	}
	logger.Debug("Transaction committed: %s", receipt)
	return receipt, nil
}

// Campaign 查询单个活动
func (n *Node) Campaign(id uint32) (CampaignView, error) {
	var (
		view CampaignView
		err  error
	)
	n.ledger.View(func(now uint64) {
		var c *campaign.Campaign
		c, err = n.registry.CampaignContract(id)
		if err != nil {
			return
		}
		view = buildView(id, c, now)
	})
	return view, err
}

// Campaigns 按 id 顺序返回全部活动
func (n *Node) Campaigns() []CampaignView {
	var views []CampaignView
	n.ledger.View(func(now uint64) {
		count := n.registry.CampaignCount()
		views = make([]CampaignView, 0, count)
		for id := uint32(1); id <= count; id++ {
			c, _ := n.registry.CampaignContract(id)
			views = append(views, buildView(id, c, now))
		}
	})
	return views
}

// Entry 查询工厂登记信息 (getCampaign)
func (n *Node) Entry(id uint32) (entry Entry, err error) {
	n.ledger.View(func(uint64) {
		entry, err = n.registry.Campaign(id)
	})
	return entry, err
}

// TokenArt 查询奖励代币信息
func (n *Node) TokenArt(id uint32) (info campaign.TokenArt, err error) {
	n.ledger.View(func(uint64) {
		info, err = n.registry.TokenArt(id)
	})
	return info, err
}

// RemainingTime 查询剩余秒数
func (n *Node) RemainingTime(id uint32) (remaining *big.Int, err error) {
	n.ledger.View(func(now uint64) {
		remaining, err = n.registry.RemainingTime(id, now)
	})
	return remaining, err
}

// Contributions 查询出资记录
func (n *Node) Contributions(id uint32) (list []campaign.Contribution, err error) {
	n.ledger.View(func(uint64) {
		list, err = n.registry.Contributions(id)
	})
	return list, err
}

// BalanceOf 查询本节点任意代币的余额
func (n *Node) BalanceOf(tokenAddr, holder common.Address) (balance *big.Int, err error) {
	n.ledger.View(func(uint64) {
		var t *token.Token
		if t, err = n.token(tokenAddr); err == nil {
			balance = t.BalanceOf(holder)
		}
	})
	return balance, err
}

// USDCBalance 查询 USDC 余额
func (n *Node) USDCBalance(holder common.Address) *big.Int {
	balance, _ := n.BalanceOf(n.usdc.Address(), holder)
	return balance
}

// USDCAllowance 查询 USDC 授权额度
func (n *Node) USDCAllowance(owner, spender common.Address) (allowance *big.Int) {
	n.ledger.View(func(uint64) {
		allowance = n.usdc.Allowance(owner, spender)
	})
	return allowance
}

// CampaignStatus 按合约地址查询活动状态
func (n *Node) CampaignStatus(_ context.Context, address common.Address) (status campaign.Status, err error) {
	n.ledger.View(func(now uint64) {
		c, _, ok := n.registry.CampaignByAddress(address)
		if !ok {
			err = ErrCampaignNotFound
			return
		}
		status = c.Status(now)
	})
	return status, err
}

// CampaignDetails 按合约地址查询活动详情
func (n *Node) CampaignDetails(_ context.Context, address common.Address) (details contract.CampaignDetails, err error) {
	n.ledger.View(func(uint64) {
		c, _, ok := n.registry.CampaignByAddress(address)
		if !ok {
			err = ErrCampaignNotFound
			return
		}
		details = contract.CampaignDetails(c.Details())
	})
	return details, err
}

// token 调用方需持有账本锁
func (n *Node) token(addr common.Address) (*token.Token, error) {
	if addr == n.usdc.Address() {
		return n.usdc, nil
	}
	for id := uint32(1); id <= n.registry.CampaignCount(); id++ {
		c, _ := n.registry.CampaignContract(id)
		if art := c.TokenArtToken(); art != nil && art.Address() == addr {
			return art, nil
		}
	}
	return nil, ErrUnknownToken
}

func buildView(id uint32, c *campaign.Campaign, now uint64) CampaignView {
	return CampaignView{
		ID:                id,
		Address:           c.Address(),
		Details:           c.Details(),
		TokenArt:          c.TokenArt(),
		RemainingTime:     c.RemainingTime(now),
		Status:            c.Status(now),
		ContributionCount: len(c.Contributions()),
		Distributed:       c.Distributed(),
		Withdrawn:         c.Withdrawn(),
		Refunded:          c.Refunded(),
	}
}
