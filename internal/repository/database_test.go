package repository_test

import (
	"testing"

	"github.com/blues/artdrop/internal/model"
	"github.com/blues/artdrop/internal/repository/repositorytest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesSingularTables(t *testing.T) {
	db := repositorytest.NewDB(t)

	for _, table := range []string{"campaign", "contribute_record", "token_art", "distribution_record",
		"settlement_record", "refund_record", "event", "sync_cursor"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestEventUniquePerSourceLog(t *testing.T) {
	db := repositorytest.NewDB(t)

	ev := model.EventModel{Source: "a", ContractAddress: "0x1", ContractName: "Campaign", EventType: "CampaignStarted", TxHash: "0xabc", BlockNum: 3, LogIndex: 0}
	require.NoError(t, db.Create(&ev).Error)

	dup := ev
	dup.Id = 0
	assert.Error(t, db.Create(&dup).Error)

	other := ev
	other.Id = 0
	other.Source = "b"
	assert.NoError(t, db.Create(&other).Error)
}

func TestNumericAmounts(t *testing.T) {
	db := repositorytest.NewDB(t)

	big, _ := decimal.NewFromString("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	c := model.CampaignModel{Source: "a", CampaignId: 1, ContractAddress: "0x1", Name: "n",
		FundsGoal: big, InitialSupply: decimal.NewFromInt(1_000_000)}
	require.NoError(t, db.Create(&c).Error)

	var got model.CampaignModel
	require.NoError(t, db.First(&got, c.Id).Error)
	assert.True(t, big.Equal(got.FundsGoal))
	assert.Equal(t, model.CampaignStatusPending, got.Status)
	assert.True(t, got.FundsRaised.IsZero())
}
