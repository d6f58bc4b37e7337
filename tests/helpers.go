package tests

import (
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// callInt performs test invocation of the contract method returning integer.
func callInt(t testing.TB, c *neotest.ContractInvoker, method string, args ...any) int64 {
	s, err := c.TestInvoke(t, method, args...)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	return s.Pop().BigInt().Int64()
}

// transferEvent builds expected NEP-17 Transfer notification, nil from or
// to are encoded as null.
func transferEvent(contract util.Uint160, from, to *util.Uint160, amount int64) state.NotificationEvent {
	return state.NotificationEvent{
		ScriptHash: contract,
		Name:       "Transfer",
		Item: stackitem.NewArray([]stackitem.Item{
			hashItem(from),
			hashItem(to),
			stackitem.NewBigInteger(big.NewInt(amount)),
		}),
	}
}

func hashItem(h *util.Uint160) stackitem.Item {
	if h == nil {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray(h.BytesBE())
}

func checkNoEvents(t testing.TB, e *neotest.Executor, h util.Uint256) {
	aer := e.GetTxExecResult(t, h)
	require.Empty(t, aer.Events)
}
