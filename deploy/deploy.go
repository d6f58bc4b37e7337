/*
Package deploy provides DegenToken contract deployment procedure.
*/
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// ErrContractMismatch is returned when the contract address is already
// occupied by some other version of the contract.
var ErrContractMismatch = errors.New("deployed contract differs from the local one")

// Blockchain groups services provided by particular Neo blockchain network
// that are required for contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions.
	actor.RPCActor

	// RPCPollingWaiter groups functions needed to await transaction results.
	actor.RPCPollingWaiter

	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Prm groups all parameters of the deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance the contract is deployed to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	LocalAccount *wallet.Account

	NEF      nef.File
	Manifest manifest.Manifest

	// Contract owner. LocalAccount becomes the owner if not set.
	Owner *util.Uint160

	// Added to network fee of the deployment transaction.
	ExtraNetworkFee int64
}

// Deploy deploys DegenToken contract represented by Prm.NEF and Prm.Manifest
// to the Neo network and returns its address.
//
// Contract address is determined by the local account, NEF checksum and
// contract name, so Deploy is idempotent: if the same contract is already
// deployed by the local account, its address is returned immediately. Any
// other contract at the address results in ErrContractMismatch.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	// wrap the parent context into the context of the current function so that
	// transaction wait routines do not leak
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sender := prm.LocalAccount.ScriptHash()
	addr := state.CreateContractHash(sender, prm.NEF.Checksum, prm.Manifest.Name)
	l := prm.Logger.With(zap.String("contract", prm.Manifest.Name), zap.Stringer("address", addr))

	l.Info("checking contract presence on the chain...")

	onChain, err := prm.Blockchain.GetContractStateByHash(addr)
	if err == nil && onChain != nil {
		if onChain.NEF.Checksum != prm.NEF.Checksum {
			return util.Uint160{}, fmt.Errorf("%w: NEF checksum %d on chain, %d local",
				ErrContractMismatch, onChain.NEF.Checksum, prm.NEF.Checksum)
		}

		l.Info("contract is already deployed, skip")

		return addr, nil
	}
	if err != nil && !isErrContractNotFound(err) {
		return util.Uint160{}, fmt.Errorf("get contract state by address: %w", err)
	}

	act, err := NewActor(prm.Blockchain, prm.LocalAccount, prm.ExtraNetworkFee)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	var data any
	if prm.Owner != nil {
		data = []any{*prm.Owner}
	}

	l.Info("sending deployment transaction...", zap.Stringer("sender", sender))

	txHash, vub, err := management.New(act).Deploy(&prm.NEF, &prm.Manifest, data)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send deployment transaction: %w", err)
	}

	l.Info("deployment transaction sent, waiting for it to be accepted...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	res, err := act.WaitAny(ctx, vub, txHash)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for deployment transaction %s: %w", txHash.StringLE(), err)
	}

	err = CheckHalt(res)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("deployment transaction %s: %w", txHash.StringLE(), err)
	}

	l.Info("contract successfully deployed", zap.Stringer("tx", txHash))

	return addr, nil
}

// NewActor creates transaction sender signing with the given account with
// CalledByEntry scope. Every transaction sent by it gets extraNetworkFee
// added to its network fee.
func NewActor(b actor.RPCActor, acc *wallet.Account, extraNetworkFee int64) (*actor.Actor, error) {
	return actor.NewTuned(b, []actor.SignerAccount{{
		Signer: transaction.Signer{
			Account: acc.ScriptHash(),
			Scopes:  transaction.CalledByEntry,
		},
		Account: acc,
	}}, actor.Options{
		CheckerModifier: extraFeeTransactionModifier(extraNetworkFee),
	})
}

// CheckHalt returns an error if transaction execution finished not in
// HALT state, the error carries the fault exception.
func CheckHalt(res *state.AppExecResult) error {
	if res.VMState != vmstate.Halt {
		return fmt.Errorf("execution finished with %s state: %s", res.VMState, res.FaultException)
	}
	return nil
}

// returns actor.TransactionCheckerModifier which checks that invocation
// finished with 'HALT' state and, if so, increases transaction network fee
// by the given value.
func extraFeeTransactionModifier(extraNetworkFee int64) actor.TransactionCheckerModifier {
	return func(r *result.Invoke, tx *transaction.Transaction) error {
		err := actor.DefaultCheckerModifier(r, tx)
		if err != nil {
			return err
		}

		tx.NetworkFee += extraNetworkFee

		return nil
	}
}

func isErrContractNotFound(err error) bool {
	return errors.Is(err, neorpc.ErrUnknownContract) || strings.Contains(err.Error(), "Unknown contract")
}
