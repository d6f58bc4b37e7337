package degen

import (
	"github.com/degen-labs/degentoken/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	name     = "DegenToken"
	symbol   = "DGN"
	decimals = 0

	ownerKey  = "o"
	supplyKey = "s"

	balancePrefix = 'b'
	redeemPrefix  = 'r'
	pricePrefix   = "p"
)

// Exceptions thrown by the contract.
const (
	ErrNotAllowedToRedeem   = "Address not allowed to redeem tokens"
	ErrInvalidItem          = "Invalid item ID"
	ErrInsufficientToRedeem = "Insufficient balance to redeem"
	ErrInsufficientToBurn   = "burn amount exceeds balance"
	ErrNegativeAmount       = "negative amount"
)

// Redemption catalog, item IDs[i] costs prices[i] tokens.
var (
	catalogItems  = []int{1, 2, 3}
	catalogPrices = []int{20, 50, 100}
)

// nolint:unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}

	ctx := storage.GetContext()

	owner := runtime.GetScriptContainer().Sender
	if data != nil {
		args := data.([]any)
		if len(args) > 0 && args[0] != nil {
			owner = args[0].(interop.Hash160)
		}
	}

	common.CheckAccount(owner)
	storage.Put(ctx, ownerKey, owner)

	for i := range catalogItems {
		storage.Put(ctx, priceKey(catalogItems[i]), catalogPrices[i])
	}

	runtime.Log("DegenToken contract initialized")
}

// Name returns token name.
func Name() string {
	return name
}

// Symbol is a NEP-17 standard method that returns DGN token symbol.
func Symbol() string {
	return symbol
}

// Decimals is a NEP-17 standard method. DGN is not divisible.
func Decimals() int {
	return decimals
}

// TotalSupply is a NEP-17 standard method that returns amount of tokens
// minted and not yet burnt or redeemed.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, supplyKey)
}

// BalanceOf is a NEP-17 standard method that returns DGN balance of the
// specified account, zero for unknown ones.
func BalanceOf(account interop.Hash160) int {
	common.CheckAccount(account)

	ctx := storage.GetReadOnlyContext()
	return getBalance(ctx, account)
}

// Owner returns the address of the contract owner allowed to mint tokens and
// to manage redemption rights.
func Owner() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getOwner(ctx)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// Transfer is a NEP-17 standard method that transfers tokens from one account
// to another. It returns false without any changes if from account has not
// witnessed the transaction or has not enough tokens. Such a transaction still
// ends in HALT state, so callers must check the returned value (e.g. with
// ASSERT as neo-go NEP-17 writer does).
//
// It produces Transfer notification.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	common.CheckAccount(from)
	common.CheckAccount(to)
	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	if !common.IsWitnessedOrCaller(from) {
		runtime.Log("from witness check failed")
		return false
	}

	ctx := storage.GetContext()

	fromBalance := getBalance(ctx, from)
	if fromBalance < amount {
		runtime.Log("insufficient balance")
		return false
	}

	if amount != 0 && !from.Equals(to) {
		setBalance(ctx, from, fromBalance-amount)
		setBalance(ctx, to, getBalance(ctx, to)+amount)
	}

	runtime.Notify("Transfer", from, to, amount)
	common.PostTransfer(from, to, amount, data)

	return true
}

// Mint creates new tokens on the specified account. It can be invoked only
// by the contract owner.
//
// It produces Transfer notification with null sender.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()

	common.CheckOwnerWitness(getOwner(ctx))
	common.CheckAccount(to)
	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	setBalance(ctx, to, getBalance(ctx, to)+amount)
	storage.Put(ctx, supplyKey, common.GetInt(ctx, supplyKey)+amount)

	var from interop.Hash160

	runtime.Notify("Transfer", from, to, amount)
	common.PostTransfer(from, to, amount, nil)
}

// Burn destroys tokens of the specified account decreasing total supply.
// It can be invoked only by the account owner.
//
// It produces Transfer notification with null receiver.
func Burn(from interop.Hash160, amount int) {
	common.CheckAccount(from)
	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	common.CheckAccountWitness(from)

	ctx := storage.GetContext()

	balance := getBalance(ctx, from)
	if balance < amount {
		panic(ErrInsufficientToBurn)
	}

	destroy(ctx, from, balance, amount)
}

// AllowRedeem grants the account the right to redeem its tokens for
// catalog items. It can be invoked only by the contract owner. Repeated
// calls for the same account change nothing.
//
// It produces RedeemAllowed notification on the first call for the account.
func AllowRedeem(account interop.Hash160) {
	ctx := storage.GetContext()

	common.CheckOwnerWitness(getOwner(ctx))
	common.CheckAccount(account)

	key := redeemKey(account)
	if storage.Get(ctx, key) != nil {
		return
	}

	storage.Put(ctx, key, 1)
	runtime.Notify("RedeemAllowed", account)
}

// IsRedeemAllowed checks whether the account may redeem tokens.
func IsRedeemAllowed(account interop.Hash160) bool {
	common.CheckAccount(account)

	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, redeemKey(account)) != nil
}

// Redeem exchanges tokens of the account for the catalog item, the item
// price is burnt. The account must witness the transaction and be allowed
// to redeem (see AllowRedeem).
//
// It produces Transfer notification with null receiver and Redeem
// notification.
func Redeem(account interop.Hash160, itemID int) {
	common.CheckAccount(account)
	common.CheckAccountWitness(account)

	ctx := storage.GetContext()

	if storage.Get(ctx, redeemKey(account)) == nil {
		panic(ErrNotAllowedToRedeem)
	}

	price := storage.Get(ctx, priceKey(itemID))
	if price == nil {
		panic(ErrInvalidItem)
	}

	cost := price.(int)

	balance := getBalance(ctx, account)
	if balance < cost {
		panic(ErrInsufficientToRedeem)
	}

	destroy(ctx, account, balance, cost)
	runtime.Notify("Redeem", account, itemID, cost)
}

// RedeemPrices returns price of the catalog item or zero if there is no such
// item.
func RedeemPrices(itemID int) int {
	ctx := storage.GetReadOnlyContext()
	return common.GetInt(ctx, priceKey(itemID))
}

// destroy burns amount of tokens from the account with the given balance.
func destroy(ctx storage.Context, account interop.Hash160, balance, amount int) {
	setBalance(ctx, account, balance-amount)

	supply := common.GetInt(ctx, supplyKey)
	if supply < amount {
		panic("negative supply after burn")
	}

	storage.Put(ctx, supplyKey, supply-amount)

	var to interop.Hash160

	runtime.Notify("Transfer", account, to, amount)
}

func getOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}

func getBalance(ctx storage.Context, account interop.Hash160) int {
	return common.GetInt(ctx, balanceKey(account))
}

func setBalance(ctx storage.Context, account interop.Hash160, amount int) {
	common.PutOrDelete(ctx, balanceKey(account), amount)
}

func balanceKey(account interop.Hash160) []byte {
	return append([]byte{balancePrefix}, account...)
}

func redeemKey(account interop.Hash160) []byte {
	return append([]byte{redeemPrefix}, account...)
}

func priceKey(itemID int) string {
	return pricePrefix + std.Itoa(itemID, 10)
}
