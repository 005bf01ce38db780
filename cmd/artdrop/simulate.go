package main

import (
	"fmt"
	"math/big"

	"github.com/blues/artdrop/internal/artdrop"
	"github.com/blues/artdrop/internal/campaign"
	"github.com/blues/artdrop/internal/ledger"
	"github.com/blues/artdrop/internal/monitor"
	"github.com/blues/artdrop/internal/repository"
	"github.com/blues/artdrop/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// hardhat 默认账户 1-3
var (
	simArtist   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	simBacker1  = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	simBacker2  = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
	simFail     bool
	simIndex    bool
	simDuration uint64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted campaign on a fresh ledger",
	Long: `Run one campaign from creation to settlement on a fresh in-process ledger.

By default two backers fund the goal and the artist receives the funds and
the TokenArt is distributed. With --fail the goal is missed and the backers
are refunded instead. With --index the resulting events are synced into the
configured database.

Examples:
  artdrop simulate
  artdrop simulate --fail --index`,
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := newNode(nil)
		if err != nil {
			return err
		}
		if err := runScenario(node); err != nil {
			return err
		}
		if !simIndex {
			return nil
		}

		db, err := repository.Init(cfg.Database)
		if err != nil {
			return err
		}
		mon := monitor.NewLedgerMonitor(node, db, nil, uint64(cfg.Task.BatchSize), cfg.Task.Workers)
		defer mon.Close()
		processed, err := mon.Sync(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d events into source %s\n", processed, node.Source())
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simFail, "fail", false, "miss the funding goal and refund backers")
	simulateCmd.Flags().BoolVar(&simIndex, "index", false, "sync the ledger events into the database")
	simulateCmd.Flags().Uint64Var(&simDuration, "duration", 3600, "campaign duration in seconds")
}

func runScenario(node *artdrop.Node) error {
	owner := node.Owner()
	goal := big.NewInt(1000)

	step := func(name string) func(*ledger.Receipt, error) error {
		return func(r *ledger.Receipt, err error) error {
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Printf("%-28s block=%-3d tx=%s logs=%d\n", name, r.BlockNumber, r.TxHash.Hex(), len(r.Logs))
			return nil
		}
	}

	r, id, err := node.CreateCampaign(owner, campaign.Params{
		Name:          "Genesis Drop",
		Description:   "A simulated ArtDrop campaign",
		Artist:        simArtist,
		FundsGoal:     goal,
		Deadline:      new(big.Int).SetUint64(simDuration),
		InitialSupply: big.NewInt(1_000_000),
	})
	if err := step("createCampaign")(r, err); err != nil {
		return err
	}
	entry, err := node.Entry(id)
	if err != nil {
		return err
	}
	if err := step("startCampaign")(node.StartCampaign(owner, id)); err != nil {
		return err
	}

	contributions := map[common.Address]*big.Int{
		simBacker1: big.NewInt(600),
		simBacker2: big.NewInt(400),
	}
	if simFail {
		contributions[simBacker2] = big.NewInt(100)
	}
	for _, backer := range []common.Address{simBacker1, simBacker2} {
		amount := contributions[backer]
		if err := step("mint " + backer.Hex()[:10])(node.MintUSDC(backer, backer, token.Units(amount))); err != nil {
			return err
		}
		if err := step("approve " + backer.Hex()[:10])(node.ApproveUSDC(backer, entry.CampaignContract, token.Units(amount))); err != nil {
			return err
		}
		if err := step("contribute " + backer.Hex()[:10])(node.Contribute(backer, id, amount)); err != nil {
			return err
		}
	}

	node.IncreaseTime(simDuration + 1)

	if simFail {
		if err := step("withdrawIncompleteCampaign")(node.WithdrawIncompleteCampaign(owner, id)); err != nil {
			return err
		}
	} else {
		if err := step("createTokenArt")(node.CreateTokenArt(owner, id, "Genesis Drop", "GDROP")); err != nil {
			return err
		}
		if err := step("distributeTokens")(node.DistributeTokens(owner, id)); err != nil {
			return err
		}
		if err := step("withdrawFunds")(node.WithdrawFunds(owner, id)); err != nil {
			return err
		}
	}

	view, err := node.Campaign(id)
	if err != nil {
		return err
	}
	fmt.Printf("\ncampaign %d %s status=%s raised=%s/%s\n", id, view.Address.Hex(), view.Status, view.Details.FundsRaised, view.Details.FundsGoal)
	for _, holder := range []common.Address{simArtist, simBacker1, simBacker2} {
		fmt.Printf("  %s usdc=%s", holder.Hex(), token.Format(node.USDCBalance(holder), token.Decimals))
		if view.TokenArt.Address != (common.Address{}) {
			balance, err := node.BalanceOf(view.TokenArt.Address, holder)
			if err != nil {
				return err
			}
			fmt.Printf(" %s=%s", view.TokenArt.Symbol, token.Format(balance, token.Decimals))
		}
		fmt.Println()
	}
	return nil
}
