package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/degen-labs/degentoken/config"
	"github.com/degen-labs/degentoken/contracts"
	"github.com/degen-labs/degentoken/deploy"
	"github.com/degen-labs/degentoken/rpc/degen"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// Items of the redemption catalog printed by 'prices' command by default.
var defaultCatalog = []int64{1, 2, 3}

// Storage key prefix of account balances in DegenToken contract.
const balancePrefix = 'b'

// env groups command execution environment built from global flags.
type env struct {
	ctx    context.Context
	cancel context.CancelFunc

	log *zap.Logger
	net config.Network

	contractOverride string

	// opened wallet, its accounts can sign until the command ends
	wallet *wallet.Wallet
}

func newEnv(c *cli.Context) (*env, error) {
	log, err := newLogger(c.GlobalBool(debugFlagName))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := config.Load(c.GlobalString(configFlagName))
	if err != nil {
		return nil, err
	}

	netName := c.GlobalString(networkFlagName)

	net, err := cfg.Network(netName)
	if err != nil {
		return nil, err
	}

	if netName == "" {
		netName = cfg.DefaultNetwork
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.GlobalDuration(timeoutFlagName))

	return &env{
		ctx:              ctx,
		cancel:           cancel,
		log:              log.With(zap.String("network", netName)),
		net:              net,
		contractOverride: c.GlobalString(contractFlagName),
	}, nil
}

func (e *env) close() {
	if e.wallet != nil {
		e.wallet.Close()
	}
	e.cancel()
	_ = e.log.Sync()
}

// newLogger returns production JSON logger or development one if debug is
// set. Every record carries unique session ID of the current run.
func newLogger(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return l.With(zap.Stringer("session", uuid.New())), nil
}

func (e *env) contractHash() (util.Uint160, error) {
	if e.contractOverride != "" {
		return config.ParseAccount(e.contractOverride)
	}

	h, ok, err := e.net.ContractHash()
	if err != nil {
		return util.Uint160{}, err
	}
	if !ok {
		return util.Uint160{}, errors.New("DegenToken contract address is neither configured nor provided")
	}

	return h, nil
}

// account opens configured wallet and returns decrypted signing account. The
// account stays able to sign until env is closed.
func (e *env) account() (*wallet.Account, error) {
	w, acc, err := openAccount(e.net.Wallet)
	if err != nil {
		return nil, err
	}

	if e.wallet != nil {
		e.wallet.Close()
	}
	e.wallet = w

	return acc, nil
}

// openAccount opens the wallet and decrypts its account selected by cfg.
// Caller must close the returned wallet when the account is no longer needed.
func openAccount(cfg config.Wallet) (*wallet.Wallet, *wallet.Account, error) {
	if cfg.Path == "" {
		return nil, nil, errors.New("wallet is not configured")
	}

	w, err := wallet.NewWalletFromFile(cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open wallet: %w", err)
	}

	acc, err := decryptAccount(w, cfg)
	if err != nil {
		w.Close()
		return nil, nil, err
	}

	return w, acc, nil
}

func decryptAccount(w *wallet.Wallet, cfg config.Wallet) (*wallet.Account, error) {
	var h util.Uint160
	if cfg.Address != "" {
		var err error
		h, err = config.ParseAccount(cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("wallet account: %w", err)
		}
	} else {
		h = w.GetChangeAddress()
	}

	acc := w.GetAccount(h)
	if acc == nil {
		return nil, fmt.Errorf("account %s not found in wallet %s", address.Uint160ToString(h), cfg.Path)
	}

	err := acc.Decrypt(cfg.Password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc, nil
}

// parseAmount parses decimal token amount with the given precision.
func parseAmount(s string, decimals int) (*big.Int, error) {
	v, err := fixedn.FromString(s, decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q: negative", s)
	}
	return v, nil
}

func parseItemID(s string) (*big.Int, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid item ID %q: %w", s, err)
	}
	return big.NewInt(id), nil
}

func checkArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("expected %d argument(s), got %d; usage: %s %s", n, c.NArg(), c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}

// txCommand prepares everything to send DegenToken transaction signed by the
// configured account and passes it to f. f returns result of one of
// contract client sending methods.
func txCommand(c *cli.Context, nArgs int, f func(e *env, ctr *contractClient) (util.Uint256, uint32, error)) error {
	err := checkArgs(c, nArgs)
	if err != nil {
		return err
	}

	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	contract, err := e.contractHash()
	if err != nil {
		return err
	}

	acc, err := e.account()
	if err != nil {
		return err
	}

	b, err := newRemoteBlockchain(e.ctx, e.net, e.log)
	if err != nil {
		return err
	}
	defer b.close()

	ctr, act, err := b.contract(contract, acc)
	if err != nil {
		return err
	}

	decimals, err := ctr.Decimals()
	if err != nil {
		return fmt.Errorf("get token decimals: %w", err)
	}

	txHash, vub, err := f(e, &contractClient{Contract: ctr, account: acc.ScriptHash(), decimals: decimals})
	err = b.await(e.ctx, act, txHash, vub, err)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Transaction: %s\n", txHash.StringLE())
	if link := e.net.TxLink(txHash); link != "" {
		fmt.Fprintf(c.App.Writer, "Explorer: %s\n", link)
	}

	return nil
}

func mintAction(c *cli.Context) error {
	return txCommand(c, 2, func(e *env, ctr *contractClient) (util.Uint256, uint32, error) {
		to, amount, err := ctr.parseAccountAmount(c.Args().Get(0), c.Args().Get(1))
		if err != nil {
			return util.Uint256{}, 0, err
		}
		e.log.Info("minting tokens", zap.String("to", address.Uint160ToString(to)), zap.Stringer("amount", amount))
		return ctr.Mint(to, amount)
	})
}

func transferAction(c *cli.Context) error {
	return txCommand(c, 2, func(e *env, ctr *contractClient) (util.Uint256, uint32, error) {
		to, amount, err := ctr.parseAccountAmount(c.Args().Get(0), c.Args().Get(1))
		if err != nil {
			return util.Uint256{}, 0, err
		}
		e.log.Info("transferring tokens", zap.String("to", address.Uint160ToString(to)), zap.Stringer("amount", amount))
		return ctr.Transfer(ctr.account, to, amount, nil)
	})
}

func burnAction(c *cli.Context) error {
	return txCommand(c, 1, func(e *env, ctr *contractClient) (util.Uint256, uint32, error) {
		amount, err := parseAmount(c.Args().Get(0), ctr.decimals)
		if err != nil {
			return util.Uint256{}, 0, err
		}
		e.log.Info("burning tokens", zap.Stringer("amount", amount))
		return ctr.Burn(ctr.account, amount)
	})
}

func allowRedeemAction(c *cli.Context) error {
	return txCommand(c, 1, func(e *env, ctr *contractClient) (util.Uint256, uint32, error) {
		acc, err := config.ParseAccount(c.Args().Get(0))
		if err != nil {
			return util.Uint256{}, 0, err
		}
		e.log.Info("allowing account to redeem tokens", zap.String("account", address.Uint160ToString(acc)))
		return ctr.AllowRedeem(acc)
	})
}

func redeemAction(c *cli.Context) error {
	return txCommand(c, 1, func(e *env, ctr *contractClient) (util.Uint256, uint32, error) {
		id, err := parseItemID(c.Args().Get(0))
		if err != nil {
			return util.Uint256{}, 0, err
		}
		e.log.Info("redeeming tokens", zap.Stringer("item", id))
		return ctr.Redeem(ctr.account, id)
	})
}

// readCommand connects to the network and passes DegenToken reader to f.
func readCommand(c *cli.Context, f func(e *env, b *remoteBlockchain, contract util.Uint160) error) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	contract, err := e.contractHash()
	if err != nil {
		return err
	}

	b, err := newRemoteBlockchain(e.ctx, e.net, e.log)
	if err != nil {
		return err
	}
	defer b.close()

	return f(e, b, contract)
}

func balanceAction(c *cli.Context) error {
	if c.NArg() > 1 {
		return checkArgs(c, 1)
	}

	return readCommand(c, func(e *env, b *remoteBlockchain, contract util.Uint160) error {
		var (
			acc  util.Uint160
			wAcc *wallet.Account
			err  error
		)
		if c.NArg() == 1 {
			acc, err = config.ParseAccount(c.Args().First())
			if err != nil {
				return err
			}
		} else {
			wAcc, err = e.account()
			if err != nil {
				return err
			}
			acc = wAcc.ScriptHash()
		}

		r := b.reader(contract)

		decimals, err := r.Decimals()
		if err != nil {
			return fmt.Errorf("get token decimals: %w", err)
		}

		bal, err := r.BalanceOf(acc)
		if err != nil {
			return fmt.Errorf("get balance: %w", err)
		}

		fmt.Fprintf(c.App.Writer, "%s: %s\n", address.Uint160ToString(acc), fixedn.ToString(bal, decimals))

		return nil
	})
}

func pricesAction(c *cli.Context) error {
	ids := make([]*big.Int, 0, len(defaultCatalog))
	if c.NArg() == 0 {
		for _, id := range defaultCatalog {
			ids = append(ids, big.NewInt(id))
		}
	}
	for _, arg := range c.Args() {
		id, err := parseItemID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	return readCommand(c, func(_ *env, b *remoteBlockchain, contract util.Uint160) error {
		r := b.reader(contract)
		for _, id := range ids {
			price, err := r.RedeemPrices(id)
			if err != nil {
				return fmt.Errorf("get price of item %s: %w", id, err)
			}
			if price.Sign() == 0 {
				fmt.Fprintf(c.App.Writer, "item %s: not in catalog\n", id)
				continue
			}
			fmt.Fprintf(c.App.Writer, "item %s: %s\n", id, price)
		}
		return nil
	})
}

func infoAction(c *cli.Context) error {
	return readCommand(c, func(_ *env, b *remoteBlockchain, contract util.Uint160) error {
		r := b.reader(contract)

		name, err := r.Name()
		if err != nil {
			return fmt.Errorf("get name: %w", err)
		}
		symbol, err := r.Symbol()
		if err != nil {
			return fmt.Errorf("get symbol: %w", err)
		}
		decimals, err := r.Decimals()
		if err != nil {
			return fmt.Errorf("get decimals: %w", err)
		}
		supply, err := r.TotalSupply()
		if err != nil {
			return fmt.Errorf("get total supply: %w", err)
		}
		owner, err := r.Owner()
		if err != nil {
			return fmt.Errorf("get owner: %w", err)
		}
		version, err := r.Version()
		if err != nil {
			return fmt.Errorf("get version: %w", err)
		}

		w := c.App.Writer
		fmt.Fprintf(w, "Contract:     %s (%s)\n", contract.StringLE(), address.Uint160ToString(contract))
		fmt.Fprintf(w, "Name:         %s\n", name)
		fmt.Fprintf(w, "Symbol:       %s\n", symbol)
		fmt.Fprintf(w, "Decimals:     %d\n", decimals)
		fmt.Fprintf(w, "Total supply: %s\n", fixedn.ToString(supply, decimals))
		fmt.Fprintf(w, "Owner:        %s\n", address.Uint160ToString(owner))
		fmt.Fprintf(w, "Version:      %s\n", version)

		return nil
	})
}

func holdersAction(c *cli.Context) error {
	return readCommand(c, func(_ *env, b *remoteBlockchain, contract util.Uint160) error {
		total := new(big.Int)

		err := b.iterateContractStorage(contract, []byte{balancePrefix}, func(key, value []byte) error {
			acc, bal, err := decodeBalance(key, value)
			if err != nil {
				return err
			}
			total.Add(total, bal)
			fmt.Fprintf(c.App.Writer, "%s: %s\n", address.Uint160ToString(acc), bal)
			return nil
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "total: %s\n", total)

		return nil
	})
}

func deployAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	ctr, err := contracts.ReadDegen(os.DirFS(c.String(artifactsFlagName)))
	if err != nil {
		return err
	}

	var owner *util.Uint160
	if s := c.String(ownerFlagName); s != "" {
		h, err := config.ParseAccount(s)
		if err != nil {
			return fmt.Errorf("owner: %w", err)
		}
		owner = &h
	}

	acc, err := e.account()
	if err != nil {
		return err
	}

	b, err := newRemoteBlockchain(e.ctx, e.net, e.log)
	if err != nil {
		return err
	}
	defer b.close()

	addr, err := deploy.Deploy(e.ctx, deploy.Prm{
		Logger:          e.log,
		Blockchain:      b.rpc,
		LocalAccount:    acc,
		NEF:             ctr.NEF,
		Manifest:        ctr.Manifest,
		Owner:           owner,
		ExtraNetworkFee: e.net.ExtraNetworkFee,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Contract: %s (%s)\n", addr.StringLE(), address.Uint160ToString(addr))

	return nil
}

// contractClient is DegenToken client bound to the signing account.
type contractClient struct {
	*degen.Contract
	account  util.Uint160
	decimals int
}

func (x *contractClient) parseAccountAmount(accArg, amountArg string) (util.Uint160, *big.Int, error) {
	acc, err := config.ParseAccount(accArg)
	if err != nil {
		return util.Uint160{}, nil, err
	}

	amount, err := parseAmount(amountArg, x.decimals)
	if err != nil {
		return util.Uint160{}, nil, err
	}

	return acc, amount, nil
}

// decodeBalance decodes DegenToken balance storage item.
func decodeBalance(key, value []byte) (util.Uint160, *big.Int, error) {
	if len(key) != 1+util.Uint160Size || key[0] != balancePrefix {
		return util.Uint160{}, nil, fmt.Errorf("invalid balance key %x", key)
	}

	acc, err := util.Uint160DecodeBytesBE(key[1:])
	if err != nil {
		return util.Uint160{}, nil, err
	}

	return acc, bigint.FromBytes(value), nil
}
