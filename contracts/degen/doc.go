/*
Package degen implements DegenToken contract, a NEP-17 token with a fixed
price redemption catalog.

Tokens are created by the contract owner with mint and destroyed with burn
or redeem. Owner also decides which accounts may redeem their tokens for
catalog items. The catalog is filled once on deployment and never changes:

	item 1: 20 DGN
	item 2: 50 DGN
	item 3: 100 DGN

DGN has zero decimals, balances and prices are whole tokens.

# Deployment

Optional deployment data is an array with the owner address. Sender of the
deploying transaction becomes the owner otherwise.

# Contract notifications

Transfer notification. This is a NEP-17 standard notification, from is null
for minted tokens, to is null for burnt and redeemed ones.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

RedeemAllowed notification. Produced when the owner grants redemption
right to the account for the first time.

	RedeemAllowed:
	  - name: account
	    type: Hash160

Redeem notification. Produced when an account exchanges tokens for the
catalog item.

	Redeem:
	  - name: account
	    type: Hash160
	  - name: itemID
	    type: Integer
	  - name: price
	    type: Integer
*/
package degen

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'o' -> interop.Hash160
    contract owner
  - 's' -> int
    amount of tokens in circulation
  - 'b'<interop.Hash160> -> int
    positive account balances, zero balances are not stored
  - 'r'<interop.Hash160> -> int
    accounts allowed to redeem tokens
  - 'p'<item ID in decimal> -> int
    redemption catalog, item prices
*/
