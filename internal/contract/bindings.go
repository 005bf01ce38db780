package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// CampaignDetails getCampaignDetails 返回的 tuple
type CampaignDetails struct {
	Name          string
	Description   string
	Artist        common.Address
	InitialSupply *big.Int
	Deadline      *big.Int
	FundsGoal     *big.Int
	FundsRaised   *big.Int
	StartTime     *big.Int
	IsCompleted   bool
}

// CampaignEntry ArtdropV2.getCampaign 返回的 tuple
type CampaignEntry struct {
	Name             string
	Description      string
	CampaignContract common.Address
	CampaignExists   bool
}

// DecodeCampaignDetails 解码 getCampaignDetails 的返回值
func DecodeCampaignDetails(out []interface{}) (details CampaignDetails, err error) {
	err = decodeTuple(out, &details)
	return details, err
}

// DecodeCampaignEntry 解码 getCampaign 的返回值
func DecodeCampaignEntry(out []interface{}) (entry CampaignEntry, err error) {
	err = decodeTuple(out, &entry)
	return entry, err
}

// DecodeUint 解码单个 uint256 返回值
func DecodeUint(out []interface{}) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("expected 1 output, got %d", len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", out[0])
	}
	return v, nil
}

func decodeTuple(out []interface{}, dst interface{}) (err error) {
	if len(out) != 1 {
		return fmt.Errorf("expected 1 output, got %d", len(out))
	}
	// ConvertType 在字段不匹配时 panic
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode %T: %v", dst, r)
		}
	}()
	abi.ConvertType(out[0], dst)
	return nil
}
