// Package contract 定义 ArtDrop 合约的 ABI, 并提供统一的事件解析与只读调用包装.
package contract

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// 事件名称
const (
	EventCampaignCreated                   = "CampaignCreated"
	EventCampaignStarted                   = "CampaignStarted"
	EventContributionDone                  = "ContributionDone"
	EventTokenArtCreated                   = "TokenArtCreated"
	EventTokensDistributed                 = "TokensDistributed"
	EventCampaignFinishedAndFundsWithdrawn = "CampaignFinishedAndFundsWithdrawn"
	EventWithdrawIncompleteCampaign        = "WithdrawIncompleteCampaign"
	EventTransfer                          = "Transfer"
	EventApproval                          = "Approval"
)

// 合约名称, 用于事件记录
const (
	NameArtdrop  = "ArtdropV2"
	NameCampaign = "Campaign"
	NameERC20    = "ERC20"
)

// ArtdropV2ABI 工厂合约 ABI
const ArtdropV2ABI = `[
	{"type":"constructor","inputs":[{"name":"_usdc","type":"address"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"usdc","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"campaignCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"createCampaign","stateMutability":"nonpayable","inputs":[
		{"name":"_name","type":"string"},
		{"name":"_description","type":"string"},
		{"name":"_artist","type":"address"},
		{"name":"_fundsGoal","type":"uint256"},
		{"name":"_deadline","type":"uint256"},
		{"name":"_initialSupply","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getCampaign","stateMutability":"view","inputs":[{"name":"_campaignId","type":"uint32"}],"outputs":[
		{"name":"","type":"tuple","components":[
			{"name":"name","type":"string"},
			{"name":"description","type":"string"},
			{"name":"campaignContract","type":"address"},
			{"name":"campaignExists","type":"bool"}]}]},
	{"type":"function","name":"startCampaign","stateMutability":"nonpayable","inputs":[{"name":"_campaignId","type":"uint32"}],"outputs":[]},
	{"type":"function","name":"contribute","stateMutability":"nonpayable","inputs":[{"name":"_campaignId","type":"uint32"},{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"createTokenArt","stateMutability":"nonpayable","inputs":[{"name":"_campaignId","type":"uint32"},{"name":"_name","type":"string"},{"name":"_symbol","type":"string"}],"outputs":[]},
	{"type":"function","name":"distributeTokens","stateMutability":"nonpayable","inputs":[{"name":"_campaignId","type":"uint32"}],"outputs":[]},
	{"type":"function","name":"withdrawFunds","stateMutability":"nonpayable","inputs":[{"name":"_campaignId","type":"uint32"}],"outputs":[]},
	{"type":"function","name":"withdrawIncompleteCampaign","stateMutability":"nonpayable","inputs":[{"name":"_campaignId","type":"uint32"}],"outputs":[]},
	{"type":"function","name":"getRemainingTime","stateMutability":"view","inputs":[{"name":"_campaignId","type":"uint32"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"CampaignCreated","anonymous":false,"inputs":[
		{"name":"campaignId","type":"uint32","indexed":false},
		{"name":"name","type":"string","indexed":false},
		{"name":"campaignAddress","type":"address","indexed":false}]}
]`

// CampaignABI 单个活动合约 ABI
const CampaignABI = `[
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"startCampaign","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"contribute","stateMutability":"nonpayable","inputs":[{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"createTokenArt","stateMutability":"nonpayable","inputs":[{"name":"_name","type":"string"},{"name":"_symbol","type":"string"}],"outputs":[]},
	{"type":"function","name":"distributeTokens","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"withdrawFunds","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"withdrawIncompleteCampaign","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"getRemainingTime","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getCampaignDetails","stateMutability":"view","inputs":[],"outputs":[
		{"name":"","type":"tuple","components":[
			{"name":"name","type":"string"},
			{"name":"description","type":"string"},
			{"name":"artist","type":"address"},
			{"name":"initialSupply","type":"uint256"},
			{"name":"deadline","type":"uint256"},
			{"name":"fundsGoal","type":"uint256"},
			{"name":"fundsRaised","type":"uint256"},
			{"name":"startTime","type":"uint256"},
			{"name":"isCompleted","type":"bool"}]}]},
	{"type":"function","name":"getTokenArt","stateMutability":"view","inputs":[],"outputs":[
		{"name":"","type":"tuple","components":[
			{"name":"name","type":"string"},
			{"name":"symbol","type":"string"},
			{"name":"Address","type":"address"},
			{"name":"initialSupply","type":"uint256"},
			{"name":"rate","type":"uint256"}]}]},
	{"type":"function","name":"getContributions","stateMutability":"view","inputs":[],"outputs":[
		{"name":"","type":"tuple[]","components":[
			{"name":"contributor","type":"address"},
			{"name":"amount","type":"uint256"}]}]},
	{"type":"event","name":"CampaignStarted","anonymous":false,"inputs":[
		{"name":"startTime","type":"uint256","indexed":false}]},
	{"type":"event","name":"ContributionDone","anonymous":false,"inputs":[
		{"name":"contributor","type":"address","indexed":false},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"TokenArtCreated","anonymous":false,"inputs":[
		{"name":"tokenArtAddress","type":"address","indexed":false},
		{"name":"name","type":"string","indexed":false},
		{"name":"symbol","type":"string","indexed":false}]},
	{"type":"event","name":"TokensDistributed","anonymous":false,"inputs":[
		{"name":"tokenArtAddress","type":"address","indexed":false}]},
	{"type":"event","name":"CampaignFinishedAndFundsWithdrawn","anonymous":false,"inputs":[
		{"name":"fundsRaised","type":"uint256","indexed":false}]},
	{"type":"event","name":"WithdrawIncompleteCampaign","anonymous":false,"inputs":[
		{"name":"fundsRaised","type":"uint256","indexed":false}]}
]`

// ERC20ABI MockUSDC 与 TokenArt 共用的 ABI
const ERC20ABI = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Approval","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"spender","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]}
]`

var (
	// ArtdropV2 解析后的工厂 ABI
	ArtdropV2 = mustParse(NameArtdrop, ArtdropV2ABI)
	// Campaign 解析后的活动 ABI
	Campaign = mustParse(NameCampaign, CampaignABI)
	// ERC20 解析后的代币 ABI
	ERC20 = mustParse(NameERC20, ERC20ABI)
)

func mustParse(name, raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("parse %s ABI: %v", name, err))
	}
	return parsed
}

// Event 按名称查找事件, 名称写错属于编程错误
func Event(a abi.ABI, name string) abi.Event {
	ev, ok := a.Events[name]
	if !ok {
		panic(fmt.Sprintf("event %s not found in ABI", name))
	}
	return ev
}
