package common

import "github.com/nspcc-dev/neo-go/pkg/interop/runtime"

var (
	// ErrOwnerWitnessFailed appears when the method must be called
	// by the contract owner but was not.
	ErrOwnerWitnessFailed = "caller is not the owner"
	// ErrAccountWitnessFailed appears when the method must be called
	// by an owner of some assets but was not.
	ErrAccountWitnessFailed = "account witness check failed"
)

// CheckOwnerWitness checks witness of the contract owner.
// It panics with ErrOwnerWitnessFailed message on fail.
func CheckOwnerWitness(owner []byte) {
	checkWitnessWithPanic(owner, ErrOwnerWitnessFailed)
}

// CheckAccountWitness checks witness of the passed account.
// It panics with ErrAccountWitnessFailed message on fail.
func CheckAccountWitness(account []byte) {
	checkWitnessWithPanic(account, ErrAccountWitnessFailed)
}

// IsWitnessedOrCaller returns true if addr either witnessed the transaction
// or is the contract calling the current one.
func IsWitnessedOrCaller(addr []byte) bool {
	if runtime.CheckWitness(addr) {
		return true
	}

	return runtime.GetCallingScriptHash().Equals(addr)
}

func checkWitnessWithPanic(caller []byte, panicMsg string) {
	if !runtime.CheckWitness(caller) {
		panic(panicMsg)
	}
}
