package processor_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/contract"
	"github.com/blues/artdrop/internal/contract/processor"
	"github.com/blues/artdrop/internal/model"
	"github.com/blues/artdrop/internal/repository/repositorytest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	campaignAddr = common.HexToAddress("0xa16E02E87b7454126E5E10d957A927A7F5B5d2be")
	artist       = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	backer       = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

type fakeReader struct {
	details contract.CampaignDetails
	err     error
}

func (r fakeReader) CampaignDetails(context.Context, common.Address) (contract.CampaignDetails, error) {
	return r.details, r.err
}

func newReader() fakeReader {
	return fakeReader{details: contract.CampaignDetails{
		Name:          "Genesis",
		Description:   "First drop",
		Artist:        artist,
		InitialSupply: big.NewInt(1_000_000),
		Deadline:      big.NewInt(3600),
		FundsGoal:     big.NewInt(1000),
		FundsRaised:   big.NewInt(0),
		StartTime:     big.NewInt(0),
	}}
}

func event(eventType, contractAddr string, block, index int64) *model.EventModel {
	return &model.EventModel{
		Source:          "test",
		ContractAddress: contractAddr,
		EventType:       eventType,
		TxHash:          common.BigToHash(big.NewInt(block)).Hex(),
		BlockNum:        block,
		LogIndex:        index,
		Data:            "{}",
	}
}

func created() map[string]interface{} {
	return map[string]interface{}{
		"campaignId":      uint32(1),
		"name":            "Genesis",
		"campaignAddress": campaignAddr,
	}
}

func TestSupportedEventTypes(t *testing.T) {
	pm := processor.NewProcessorManager(nil, newReader())

	assert.ElementsMatch(t, []string{
		contract.EventCampaignCreated,
		contract.EventCampaignStarted,
		contract.EventContributionDone,
		contract.EventTokenArtCreated,
		contract.EventTokensDistributed,
		contract.EventCampaignFinishedAndFundsWithdrawn,
		contract.EventWithdrawIncompleteCampaign,
	}, pm.GetSupportedEventTypes())

	p, ok := pm.GetProcessor(contract.EventContributionDone)
	require.True(t, ok)
	assert.Equal(t, contract.EventContributionDone, p.GetEventType())
}

func TestProcessEventIsIdempotent(t *testing.T) {
	db := repositorytest.NewDB(t)
	pm := processor.NewProcessorManager(db, newReader())

	fresh, err := pm.ProcessEvent(event(contract.EventCampaignCreated, "registry", 3, 0), created())
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = pm.ProcessEvent(event(contract.EventCampaignCreated, "registry", 3, 0), created())
	require.NoError(t, err)
	assert.False(t, fresh)

	var campaigns []model.CampaignModel
	require.NoError(t, db.Find(&campaigns).Error)
	require.Len(t, campaigns, 1)
	assert.Equal(t, model.CampaignStatusPending, campaigns[0].Status)
	assert.Equal(t, "First drop", campaigns[0].Description)
	assert.Equal(t, int64(3600), campaigns[0].Deadline)

	var processed model.EventModel
	require.NoError(t, db.First(&processed).Error)
	assert.True(t, processed.Processed)
}

func TestContributionUpdatesTotals(t *testing.T) {
	db := repositorytest.NewDB(t)
	pm := processor.NewProcessorManager(db, newReader())

	_, err := pm.ProcessEvent(event(contract.EventCampaignCreated, "registry", 3, 0), created())
	require.NoError(t, err)
	for i, amount := range []int64{300, 200} {
		_, err := pm.ProcessEvent(event(contract.EventContributionDone, campaignAddr.Hex(), int64(5+i), 0), map[string]interface{}{
			"contributor": backer,
			"amount":      big.NewInt(amount),
		})
		require.NoError(t, err)
	}

	var c model.CampaignModel
	require.NoError(t, db.First(&c).Error)
	assert.Equal(t, "500", c.FundsRaised.String())
	assert.Equal(t, int64(2), c.ContributionCount)
}

func TestOversizedDeadlineIsClamped(t *testing.T) {
	db := repositorytest.NewDB(t)
	reader := newReader()
	reader.details.Deadline = new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(200))
	pm := processor.NewProcessorManager(db, reader)

	_, err := pm.ProcessEvent(event(contract.EventCampaignCreated, "registry", 3, 0), created())
	require.NoError(t, err)
	_, err = pm.ProcessEvent(event(contract.EventCampaignStarted, campaignAddr.Hex(), 4, 0), map[string]interface{}{
		"startTime": big.NewInt(1_700_000_000),
	})
	require.NoError(t, err)

	var c model.CampaignModel
	require.NoError(t, db.First(&c).Error)
	assert.Equal(t, campaign.MaxDeadline.Int64(), c.Deadline)
	require.NotNil(t, c.StartTime)
	require.NotNil(t, c.EndTime)
	assert.Equal(t, time.Duration(c.Deadline)*time.Second, c.EndTime.Sub(*c.StartTime))
}

func TestProcessorErrorRollsBack(t *testing.T) {
	db := repositorytest.NewDB(t)
	pm := processor.NewProcessorManager(db, newReader())

	// 活动尚未索引
	_, err := pm.ProcessEvent(event(contract.EventCampaignStarted, campaignAddr.Hex(), 4, 0), map[string]interface{}{
		"startTime": big.NewInt(1_700_000_000),
	})
	require.Error(t, err)

	// 参数类型错误
	_, err = pm.ProcessEvent(event(contract.EventCampaignCreated, "registry", 3, 0), map[string]interface{}{
		"campaignId": "1",
	})
	require.Error(t, err)

	var events int64
	require.NoError(t, db.Model(&model.EventModel{}).Count(&events).Error)
	assert.Zero(t, events)
}

func TestReaderFailureRollsBack(t *testing.T) {
	db := repositorytest.NewDB(t)
	pm := processor.NewProcessorManager(db, fakeReader{err: errors.New("rpc unavailable")})

	_, err := pm.ProcessEvent(event(contract.EventCampaignCreated, "registry", 3, 0), created())
	require.ErrorContains(t, err, "rpc unavailable")

	var campaigns int64
	require.NoError(t, db.Model(&model.CampaignModel{}).Count(&campaigns).Error)
	assert.Zero(t, campaigns)
}

func TestUnknownEventIsRecordedUnprocessed(t *testing.T) {
	db := repositorytest.NewDB(t)
	pm := processor.NewProcessorManager(db, newReader())

	fresh, err := pm.ProcessEvent(event(contract.EventUnknown, campaignAddr.Hex(), 9, 1), map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, fresh)

	var stored model.EventModel
	require.NoError(t, db.First(&stored).Error)
	assert.False(t, stored.Processed)
}
