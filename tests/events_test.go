package tests

import (
	"testing"

	"github.com/degen-labs/degentoken/rpc/degen"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func applicationLog(t *testing.T, e *neotest.Executor, h util.Uint256) *result.ApplicationLog {
	res := e.GetTxExecResult(t, h)
	return &result.ApplicationLog{
		Container:  h,
		Executions: []state.Execution{res.Execution},
	}
}

func TestDegen_EventsFromApplicationLog(t *testing.T) {
	c := newDegenInvoker(t)
	acc := c.NewAccount(t)
	h := acc.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", h, 70)

	txHash := c.Invoke(t, stackitem.Null{}, "allowRedeem", h)

	allowed, err := degen.RedeemAllowedEventsFromApplicationLog(applicationLog(t, c.Executor, txHash))
	require.NoError(t, err)
	require.Len(t, allowed, 1)
	require.Equal(t, h, allowed[0].Account)

	txHash = c.WithSigners(acc).Invoke(t, stackitem.Null{}, "redeem", h, 2)

	redeemed, err := degen.RedeemEventsFromApplicationLog(applicationLog(t, c.Executor, txHash))
	require.NoError(t, err)
	require.Len(t, redeemed, 1)
	require.Equal(t, h, redeemed[0].Account)
	require.EqualValues(t, 2, redeemed[0].ItemID.Int64())
	require.EqualValues(t, 50, redeemed[0].Price.Int64())

	// second authorization emits nothing
	txHash = c.Invoke(t, stackitem.Null{}, "allowRedeem", h)

	allowed, err = degen.RedeemAllowedEventsFromApplicationLog(applicationLog(t, c.Executor, txHash))
	require.NoError(t, err)
	require.Empty(t, allowed)
}
