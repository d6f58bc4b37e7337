package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
)

// ErrInvalidAccount appears when an account argument is not a script hash.
const ErrInvalidAccount = "invalid account"

// CheckAccount panics with ErrInvalidAccount if addr is not a valid
// script hash.
func CheckAccount(addr interop.Hash160) {
	if len(addr) != interop.Hash160Len {
		panic(ErrInvalidAccount)
	}
}

// PostTransfer calls NEP-17 onNEP17Payment method of the receiver if it
// is a deployed contract. Null from means token minting.
func PostTransfer(from, to interop.Hash160, amount int, data any) {
	if management.GetContract(to) == nil {
		return
	}

	contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
}
