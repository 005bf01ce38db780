package campaign

import "github.com/blues/artdrop/internal/ledger"

// 活动合约的回滚原因
var (
	ErrAlreadyStarted     = ledger.Revert(ledger.KindState, "Campaign has already started")
	ErrNotStartedYet      = ledger.Revert(ledger.KindState, "Campaign has not started yet")
	ErrDeadlinePassed     = ledger.Revert(ledger.KindState, "Campaign deadline has passed")
	ErrNotStarted         = ledger.Revert(ledger.KindState, "Campaign has not started")
	ErrStillOngoing       = ledger.Revert(ledger.KindState, "Campaign is still ongoing")
	ErrStillActive        = ledger.Revert(ledger.KindState, "Campaign is still active")
	ErrNotCompleted       = ledger.Revert(ledger.KindState, "Campaign is not completed")
	ErrCampaignSuccessful = ledger.Revert(ledger.KindState, "Campaign was successful, cannot withdraw")
	ErrTokenArtExists     = ledger.Revert(ledger.KindState, "TokenArt already created")
	ErrTokenArtNotCreated = ledger.Revert(ledger.KindState, "TokenArt not created")
	ErrAlreadyDistributed = ledger.Revert(ledger.KindState, "Tokens already distributed")
	ErrAlreadyWithdrawn   = ledger.Revert(ledger.KindState, "Funds already withdrawn")
	ErrAlreadyRefunded    = ledger.Revert(ledger.KindState, "Contributions already refunded")

	ErrZeroContribution   = ledger.Revert(ledger.KindValidation, "Contribution must be greater than 0")
	ErrEmptyTokenMetadata = ledger.Revert(ledger.KindValidation, "Token name and symbol cannot be empty")
	ErrEmptyName          = ledger.Revert(ledger.KindValidation, "Name cannot be empty")
	ErrEmptyDescription   = ledger.Revert(ledger.KindValidation, "Description cannot be empty")
	ErrInvalidArtist      = ledger.Revert(ledger.KindValidation, "Invalid artist address")
	ErrZeroInitialSupply  = ledger.Revert(ledger.KindValidation, "Initial supply must be greater than 0")
	ErrZeroFundsGoal      = ledger.Revert(ledger.KindValidation, "Funds goal must be greater than 0")
	ErrZeroDeadline       = ledger.Revert(ledger.KindValidation, "Deadline must be greater than 0")
	ErrDeadlineTooLong    = ledger.Revert(ledger.KindValidation, "Deadline is too long")
)
