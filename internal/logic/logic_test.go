package logic_test

import (
	"testing"

	"github.com/blues/artdrop/internal/logic"
	"github.com/blues/artdrop/internal/model"
	"github.com/blues/artdrop/internal/repository/repositorytest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	source = "ledger-a"
	other  = "chain-31337"
	alice  = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	bob    = "0x90F79bf6EB2c4f870365E785982E1f101E93b906"
)

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	campaigns := []model.CampaignModel{
		{Source: source, CampaignId: 1, ContractAddress: "0x01", Name: "One", FundsGoal: decimal.NewFromInt(1000), FundsRaised: decimal.NewFromInt(750), InitialSupply: decimal.NewFromInt(100), Deadline: 60, Status: model.CampaignStatusActive, ContributionCount: 3},
		{Source: source, CampaignId: 2, ContractAddress: "0x02", Name: "Two", FundsGoal: decimal.NewFromInt(10), FundsRaised: decimal.NewFromInt(10), InitialSupply: decimal.NewFromInt(100), Deadline: 60, Status: model.CampaignStatusSettled},
		{Source: source, CampaignId: 3, ContractAddress: "0x03", Name: "Three", FundsGoal: decimal.NewFromInt(10), InitialSupply: decimal.NewFromInt(100), Deadline: 60, Status: model.CampaignStatusPending},
		{Source: other, CampaignId: 1, ContractAddress: "0x01", Name: "Remote", FundsGoal: decimal.NewFromInt(10), InitialSupply: decimal.NewFromInt(100), Deadline: 60, Status: model.CampaignStatusActive},
	}
	require.NoError(t, db.Create(&campaigns).Error)

	records := []model.ContributeRecordModel{
		{Source: source, CampaignId: 1, Amount: decimal.NewFromInt(500), Address: alice, TxHash: "0xa", LogIndex: 0, BlockNum: 5},
		{Source: source, CampaignId: 1, Amount: decimal.NewFromInt(200), Address: bob, TxHash: "0xb", LogIndex: 0, BlockNum: 6},
		{Source: source, CampaignId: 1, Amount: decimal.NewFromInt(50), Address: alice, TxHash: "0xc", LogIndex: 0, BlockNum: 7},
		{Source: other, CampaignId: 1, Amount: decimal.NewFromInt(5), Address: alice, TxHash: "0xa", LogIndex: 0, BlockNum: 9},
	}
	require.NoError(t, db.Create(&records).Error)

	events := []model.EventModel{
		{Source: source, ContractAddress: "0x01", ContractName: "Campaign", EventType: "ContributionDone", TxHash: "0xa", BlockNum: 5, Processed: true},
		{Source: source, ContractAddress: "0x01", ContractName: "Campaign", EventType: "ContributionDone", TxHash: "0xb", BlockNum: 6, Processed: true},
		{Source: source, ContractAddress: "0x01", ContractName: "Campaign", EventType: "Unknown", TxHash: "0xc", BlockNum: 7},
		{Source: other, ContractAddress: "0x01", ContractName: "Campaign", EventType: "ContributionDone", TxHash: "0xa", BlockNum: 90, Processed: true},
	}
	require.NoError(t, db.Create(&events).Error)
}

func TestNormalizePage(t *testing.T) {
	page, size := logic.NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	_, size = logic.NormalizePage(3, 1000)
	assert.Equal(t, 100, size)
}

func TestCampaignQueries(t *testing.T) {
	db := repositorytest.NewDB(t)
	seed(t, db)
	campaigns := logic.NewCampaignLogic(db)

	list, total, err := campaigns.GetCampaigns(source, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].CampaignId)

	list, total, err = campaigns.GetCampaigns(source, string(model.CampaignStatusSettled), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Two", list[0].Name)

	remote, err := campaigns.GetCampaign(other, 1)
	require.NoError(t, err)
	assert.Equal(t, "Remote", remote.Name)

	_, err = campaigns.GetCampaign(source, 42)
	require.ErrorIs(t, err, logic.ErrNotFound)

	refresh, err := campaigns.GetCampaignsToRefresh(source)
	require.NoError(t, err)
	require.Len(t, refresh, 1)
	assert.Equal(t, "One", refresh[0].Name)
}

func TestCampaignStats(t *testing.T) {
	db := repositorytest.NewDB(t)
	seed(t, db)
	campaigns := logic.NewCampaignLogic(db)

	stats, err := campaigns.GetCampaignStats(source, 1)
	require.NoError(t, err)
	assert.Equal(t, "75", stats["completion_percentage"])
	assert.Equal(t, int64(2), stats["contributor_count"])
	assert.Equal(t, "0", stats["refunded_amount"])

	all, err := campaigns.GetAllCampaignStats(source)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all["totalCampaigns"])
	assert.Equal(t, "760", all["totalRaised"])
	assert.Equal(t, int64(2), all["totalContributors"])
	assert.Equal(t, int64(1), all["campaignsByStatus"].(map[string]int64)["pending"])
}

func TestUpdateStatusIsConditional(t *testing.T) {
	db := repositorytest.NewDB(t)
	seed(t, db)
	campaigns := logic.NewCampaignLogic(db)

	c, err := campaigns.GetCampaign(source, 1)
	require.NoError(t, err)

	updated, err := campaigns.UpdateStatus(c.Id, model.CampaignStatusActive, model.CampaignStatusSuccess)
	require.NoError(t, err)
	assert.True(t, updated)

	// 状态已变化, 不会回退
	updated, err = campaigns.UpdateStatus(c.Id, model.CampaignStatusActive, model.CampaignStatusFailed)
	require.NoError(t, err)
	assert.False(t, updated)

	c, err = campaigns.GetCampaign(source, 1)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusSuccess, c.Status)
}

func TestContributeRecordQueries(t *testing.T) {
	db := repositorytest.NewDB(t)
	seed(t, db)
	records := logic.NewContributeRecordLogic(db)

	list, total, err := records.GetCampaignContributeRecords(source, 1, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 3)

	list, total, err = records.GetContributorRecords(source, alice, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	stats, err := records.GetContributeStats(source, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats["total_contributions"])
	assert.Equal(t, "750", stats["total_amount"])
	assert.Equal(t, int64(2), stats["unique_contributors"])
}

func TestEventQueries(t *testing.T) {
	db := repositorytest.NewDB(t)
	seed(t, db)
	events := logic.NewEventLogic(db)

	list, total, err := events.GetEvents(source, "ContributionDone", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	byTx, err := events.GetEventsByTxHash(source, "0xa")
	require.NoError(t, err)
	assert.Len(t, byTx, 1)

	counts, err := events.GetEventStatistics(source)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["ContributionDone"])

	block, err := events.GetLastProcessedBlock(source)
	require.NoError(t, err)
	assert.Equal(t, int64(7), block)

	unprocessed, err := events.GetUnprocessedEvents(source, 10)
	require.NoError(t, err)
	require.Len(t, unprocessed, 1)
	assert.Equal(t, "Unknown", unprocessed[0].EventType)
}

func TestRefundQueriesNotFound(t *testing.T) {
	db := repositorytest.NewDB(t)
	refunds := logic.NewRefundRecordLogic(db)

	_, err := refunds.GetSettlement(source, 1)
	require.ErrorIs(t, err, logic.ErrNotFound)
	_, err = refunds.GetTokenArt(source, 1)
	require.ErrorIs(t, err, logic.ErrNotFound)

	list, total, err := refunds.GetCampaignRefunds(source, 1, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}
