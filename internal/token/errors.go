package token

import (
	"math/big"

	"github.com/blues/artdrop/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

// ERC20 标准错误, 用于 errors.Is 匹配
var (
	ErrInsufficientBalance   = &ledger.CustomError{Kind: ledger.KindToken, Name: "ERC20InsufficientBalance"}
	ErrInsufficientAllowance = &ledger.CustomError{Kind: ledger.KindToken, Name: "ERC20InsufficientAllowance"}
	ErrInvalidReceiver       = &ledger.CustomError{Kind: ledger.KindValidation, Name: "ERC20InvalidReceiver"}
	ErrInvalidSender         = &ledger.CustomError{Kind: ledger.KindValidation, Name: "ERC20InvalidSender"}
	ErrInvalidSpender        = &ledger.CustomError{Kind: ledger.KindValidation, Name: "ERC20InvalidSpender"}
)

func insufficientBalance(sender common.Address, balance, needed *big.Int) error {
	return &ledger.CustomError{Kind: ledger.KindToken, Name: ErrInsufficientBalance.Name,
		Args: []interface{}{sender, new(big.Int).Set(balance), new(big.Int).Set(needed)}}
}

func insufficientAllowance(spender common.Address, allowance, needed *big.Int) error {
	return &ledger.CustomError{Kind: ledger.KindToken, Name: ErrInsufficientAllowance.Name,
		Args: []interface{}{spender, new(big.Int).Set(allowance), new(big.Int).Set(needed)}}
}

func invalidAddress(sentinel *ledger.CustomError, addr common.Address) error {
	return &ledger.CustomError{Kind: sentinel.Kind, Name: sentinel.Name, Args: []interface{}{addr}}
}
