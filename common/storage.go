package common

import "github.com/nspcc-dev/neo-go/pkg/interop/storage"

// GetInt returns integer stored by the key or 0 if there is nothing.
func GetInt(ctx storage.Context, key any) int {
	data := storage.Get(ctx, key)
	if data != nil {
		return data.(int)
	}

	return 0
}

// PutOrDelete stores positive value by the key and drops the key otherwise,
// so zero values do not occupy contract storage.
func PutOrDelete(ctx storage.Context, key any, value int) {
	if value > 0 {
		storage.Put(ctx, key, value)
		return
	}

	storage.Delete(ctx, key)
}
