package nep17recv

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	senderKey = "sender"
	amountKey = "amount"
	tokenKey  = "token"

	rejectData = "reject"
)

func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	if data != nil && data.(string) == rejectData {
		panic("payment rejected")
	}

	ctx := storage.GetContext()
	if len(from) == interop.Hash160Len {
		storage.Put(ctx, senderKey, from)
	} else {
		storage.Delete(ctx, senderKey)
	}
	storage.Put(ctx, amountKey, amount)
	storage.Put(ctx, tokenKey, runtime.GetCallingScriptHash())
}

func LastSender() interop.Hash160 {
	val := storage.Get(storage.GetReadOnlyContext(), senderKey)
	if val == nil {
		return nil
	}
	return val.(interop.Hash160)
}

func LastAmount() int {
	val := storage.Get(storage.GetReadOnlyContext(), amountKey)
	if val == nil {
		return 0
	}
	return val.(int)
}

func LastToken() interop.Hash160 {
	val := storage.Get(storage.GetReadOnlyContext(), tokenKey)
	if val == nil {
		return nil
	}
	return val.(interop.Hash160)
}
