package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/degen-labs/degentoken/config"
	"github.com/degen-labs/degentoken/deploy"
	"github.com/degen-labs/degentoken/rpc/degen"
	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// wrapper over rpcclient.Client providing services of the configured network
// needed for current command.
type remoteBlockchain struct {
	rpc *rpcclient.Client
	net config.Network
	log *zap.Logger
}

// newRemoteBlockchain dials Neo RPC server of the network and checks its magic.
// Connection and all requests are done within 15s timeout.
func newRemoteBlockchain(ctx context.Context, net config.Network, l *zap.Logger) (*remoteBlockchain, error) {
	c, err := rpcclient.New(ctx, net.RPC, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	v, err := c.GetVersion()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("get node version: %w", err)
	}

	if net.Magic != 0 && v.Protocol.Network != netmode.Magic(net.Magic) {
		c.Close()
		return nil, fmt.Errorf("network magic mismatch: node %d, configured %d", v.Protocol.Network, net.Magic)
	}

	l.Debug("connected to Neo RPC server",
		zap.String("endpoint", net.RPC), zap.String("user agent", v.UserAgent))

	return &remoteBlockchain{
		rpc: c,
		net: net,
		log: l,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// reader returns DegenToken reader performing test invocations without
// signers.
func (x *remoteBlockchain) reader(contract util.Uint160) *degen.ContractReader {
	return degen.NewReader(invoker.New(x.rpc, nil), contract)
}

// contract returns DegenToken client sending transactions signed by acc.
func (x *remoteBlockchain) contract(contract util.Uint160, acc *wallet.Account) (*degen.Contract, *actor.Actor, error) {
	act, err := deploy.NewActor(x.rpc, acc, x.net.ExtraNetworkFee)
	if err != nil {
		return nil, nil, fmt.Errorf("init actor: %w", err)
	}

	return degen.New(act, contract), act, nil
}

// await waits for the transaction sent by act to be accepted and checks it
// has been executed successfully.
func (x *remoteBlockchain) await(ctx context.Context, act *actor.Actor, txHash util.Uint256, vub uint32, err error) error {
	if err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}

	l := x.log.With(zap.Stringer("tx", txHash))
	l.Info("transaction sent, waiting for it to be accepted...", zap.Uint32("vub", vub))

	res, err := act.WaitAny(ctx, vub, txHash)
	if err != nil {
		return fmt.Errorf("wait for transaction %s: %w", txHash.StringLE(), err)
	}

	err = deploy.CheckHalt(res)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", txHash.StringLE(), err)
	}

	l.Info("transaction successfully executed")

	return nil
}

// iterateContractStorage iterates over storage items of the Neo smart
// contract referenced by given address with the given key prefix and passes
// them into f. iterateContractStorage breaks on any f's error and returns it.
func (x *remoteBlockchain) iterateContractStorage(contract util.Uint160, prefix []byte, f func(key, value []byte) error) error {
	nLatestBlock, err := x.rpc.GetBlockCount()
	if err != nil {
		return fmt.Errorf("get number of the latest block: %w", err)
	}

	if nLatestBlock == 0 {
		return errors.New("empty blockchain")
	}

	stateRoot, err := x.rpc.GetStateRootByHeight(nLatestBlock - 1)
	if err != nil {
		return fmt.Errorf("get state root at block #%d: %w", nLatestBlock-1, err)
	}

	var start []byte

	for {
		res, err := x.rpc.FindStates(stateRoot.Root, contract, prefix, start, nil)
		if err != nil {
			return fmt.Errorf("get historical storage items of the requested contract at state root '%s': %w", stateRoot.Root, err)
		}

		for i := range res.Results {
			err = f(res.Results[i].Key, res.Results[i].Value)
			if err != nil {
				return err
			}
		}

		if !res.Truncated || len(res.Results) == 0 {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}
