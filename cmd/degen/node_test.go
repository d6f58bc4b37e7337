package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/config/netmode"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/neorpc"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/trigger"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
)

const (
	testNodeMagic      = netmode.UnitTestNet
	testNodeBlockCount = 10
	testNodeNetworkFee = 1000
	testNodeSystemFee  = 1_0000_0000
	// max number of storage items returned by single findstates request
	testNodeStatesPage = 2
)

// testCall is a test invocation received by testNode.
type testCall struct {
	contract util.Uint160 // zero for raw scripts
	method   string       // empty for raw scripts
	args     []any
	script   []byte
}

// testNode is Neo JSON-RPC server serving DegenToken contract state from
// memory. Every sent transaction is accepted at once.
type testNode struct {
	srv *httptest.Server

	mtx sync.Mutex

	contract util.Uint160
	owner    util.Uint160
	balances map[util.Uint160]int64
	prices   map[int64]int64

	// non-empty value makes invocations of state-changing methods fail
	faultException string
	// VM state of sent transactions
	execState vmstate.State

	calls []testCall
	sent  []*transaction.Transaction
}

func newTestNode(t testing.TB) *testNode {
	n := &testNode{
		contract:  util.Uint160{0xde, 0x9e, 0x70, 0x4e},
		owner:     util.Uint160{0x0f, 0x0e},
		balances:  make(map[util.Uint160]int64),
		prices:    map[int64]int64{1: 20, 2: 50, 3: 100},
		execState: vmstate.Halt,
	}

	n.srv = httptest.NewServer(n)
	t.Cleanup(n.srv.Close)

	return n
}

func (n *testNode) url() string {
	return n.srv.URL
}

func (n *testNode) setBalance(acc util.Uint160, v int64) {
	n.mtx.Lock()
	n.balances[acc] = v
	n.mtx.Unlock()
}

func (n *testNode) setFault(exception string) {
	n.mtx.Lock()
	n.faultException = exception
	n.mtx.Unlock()
}

func (n *testNode) setExecState(st vmstate.State) {
	n.mtx.Lock()
	n.execState = st
	n.mtx.Unlock()
}

// lastTx returns the last sent transaction along with the test invocation
// producing its script.
func (n *testNode) lastTx() (*transaction.Transaction, testCall, bool) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if len(n.sent) == 0 {
		return nil, testCall{}, false
	}

	tx := n.sent[len(n.sent)-1]
	for i := len(n.calls) - 1; i >= 0; i-- {
		if bytes.Equal(n.calls[i].script, tx.Script) {
			return tx, n.calls[i], true
		}
	}

	return tx, testCall{}, true
}

func (n *testNode) sentCount() int {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return len(n.sent)
}

type testRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      json.RawMessage   `json:"id"`
}

func (n *testNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req testRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := neorpc.Response{
		HeaderAndError: neorpc.HeaderAndError{
			Header: neorpc.Header{ID: req.ID, JSONRPC: neorpc.JSONRPCVersion},
		},
	}

	n.mtx.Lock()
	res, rpcErr := n.handle(req.Method, req.Params)
	n.mtx.Unlock()

	if rpcErr == nil {
		resp.Result, err = json.Marshal(res)
		if err != nil {
			rpcErr = neorpc.NewInternalServerError(err.Error())
		}
	}
	resp.Error = rpcErr

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *testNode) handle(method string, ps []json.RawMessage) (any, *neorpc.Error) {
	switch method {
	case "getversion":
		return &result.Version{
			UserAgent: "/NEO-GO:test/",
			Protocol: result.Protocol{
				Network:                     testNodeMagic,
				MillisecondsPerBlock:        100,
				MaxValidUntilBlockIncrement: 5760,
				ValidatorsCount:             1,
			},
		}, nil
	case "getblockcount":
		return uint32(testNodeBlockCount), nil
	case "getcontractstate":
		return nil, neorpc.ErrUnknownContract
	case "calculatenetworkfee":
		return &result.NetworkFee{Value: testNodeNetworkFee}, nil
	case "invokefunction":
		return n.invokeFunction(ps)
	case "invokescript":
		var script []byte
		if err := param(ps, 0, &script); err != nil {
			return nil, neorpc.NewInvalidParamsError(err.Error())
		}
		n.calls = append(n.calls, testCall{script: script})
		return n.invokeResult(script, false, nil), nil
	case "sendrawtransaction":
		var b []byte
		if err := param(ps, 0, &b); err != nil {
			return nil, neorpc.NewInvalidParamsError(err.Error())
		}
		tx, err := transaction.NewTransactionFromBytes(b)
		if err != nil {
			return nil, neorpc.NewInvalidParamsError(err.Error())
		}
		n.sent = append(n.sent, tx)
		return &result.RelayResult{Hash: tx.Hash()}, nil
	case "getapplicationlog":
		var s string
		if err := param(ps, 0, &s); err != nil {
			return nil, neorpc.NewInvalidParamsError(err.Error())
		}
		h, err := util.Uint256DecodeStringLE(s)
		if err != nil {
			return nil, neorpc.NewInvalidParamsError(err.Error())
		}
		for _, tx := range n.sent {
			if tx.Hash().Equals(h) {
				ex := state.Execution{
					Trigger:     trigger.Application,
					VMState:     n.execState,
					GasConsumed: testNodeSystemFee,
				}
				if n.execState != vmstate.Halt {
					ex.FaultException = "at instruction 42 (ASSERT): ASSERT is executed with false result."
				}
				return &result.ApplicationLog{
					Container:     h,
					IsTransaction: true,
					Executions:    []state.Execution{ex},
				}, nil
			}
		}
		return nil, neorpc.ErrUnknownTransaction
	case "getstateroot":
		return &state.MPTRoot{Index: testNodeBlockCount - 1, Root: util.Uint256{1, 2, 3}}, nil
	case "findstates":
		return n.findStates(ps)
	default:
		return nil, neorpc.NewMethodNotFoundError(method)
	}
}

func param(ps []json.RawMessage, i int, v any) error {
	if i >= len(ps) {
		return errors.New("missing parameter")
	}
	return json.Unmarshal(ps[i], v)
}

func (n *testNode) invokeFunction(ps []json.RawMessage) (any, *neorpc.Error) {
	var (
		s      string
		method string
		params []smartcontract.Parameter
	)

	err := param(ps, 0, &s)
	if err == nil {
		err = param(ps, 1, &method)
	}
	if err == nil && len(ps) > 2 {
		err = param(ps, 2, &params)
	}
	if err != nil {
		return nil, neorpc.NewInvalidParamsError(err.Error())
	}

	contract, err := util.Uint160DecodeStringLE(s)
	if err != nil {
		return nil, neorpc.NewInvalidParamsError(err.Error())
	}

	args := make([]any, len(params))
	for i := range params {
		args[i], err = smartcontract.ExpandParameterToEmitable(params[i])
		if err != nil {
			return nil, neorpc.NewInvalidParamsError(err.Error())
		}
	}

	script, err := smartcontract.CreateCallScript(contract, method, args...)
	if err != nil {
		return nil, neorpc.NewInvalidParamsError(err.Error())
	}

	n.calls = append(n.calls, testCall{
		contract: contract,
		method:   method,
		args:     args,
		script:   script,
	})

	if !contract.Equals(n.contract) {
		return n.invokeResult(script, true, errors.New("called contract does not exist")), nil
	}

	var item stackitem.Item

	switch method {
	case "name":
		item = stackitem.Make("DegenToken")
	case "symbol":
		item = stackitem.Make("DGN")
	case "decimals":
		item = stackitem.Make(0)
	case "totalSupply":
		var total int64
		for _, v := range n.balances {
			total += v
		}
		item = stackitem.Make(total)
	case "owner":
		item = stackitem.NewBuffer(n.owner.BytesBE())
	case "version":
		item = stackitem.Make(1_000)
	case "balanceOf":
		acc, ok := argAt[util.Uint160](args, 0)
		if !ok {
			return nil, neorpc.NewInvalidParamsError("account expected")
		}
		item = stackitem.Make(n.balances[acc])
	case "redeemPrices":
		id, ok := argAt[*big.Int](args, 0)
		if !ok {
			return nil, neorpc.NewInvalidParamsError("item ID expected")
		}
		item = stackitem.Make(n.prices[id.Int64()])
	case "isRedeemAllowed":
		item = stackitem.Make(false)
	default:
		if n.faultException != "" {
			return n.invokeResult(script, true, errors.New(n.faultException)), nil
		}
		return n.invokeResult(script, false, stackitem.Null{}), nil
	}

	return n.invokeResult(script, false, item), nil
}

func argAt[T any](args []any, i int) (T, bool) {
	var v T
	if i >= len(args) {
		return v, false
	}
	v, ok := args[i].(T)
	return v, ok
}

// invokeResult builds test invocation result. res is a single stack item for
// HALT state and fault exception otherwise.
func (n *testNode) invokeResult(script []byte, fault bool, res any) *result.Invoke {
	r := &result.Invoke{
		State:       vmstate.Halt.String(),
		GasConsumed: testNodeSystemFee,
		Script:      script,
	}

	if fault {
		r.State = vmstate.Fault.String()
		r.FaultException = res.(error).Error()
		return r
	}

	if item, ok := res.(stackitem.Item); ok {
		r.Stack = []stackitem.Item{item}
	}

	return r
}

func (n *testNode) findStates(ps []json.RawMessage) (any, *neorpc.Error) {
	var (
		s      string
		prefix []byte
		start  []byte
	)

	err := param(ps, 1, &s)
	if err == nil {
		err = param(ps, 2, &prefix)
	}
	if err == nil && len(ps) > 3 {
		err = param(ps, 3, &start)
	}
	if err != nil {
		return nil, neorpc.NewInvalidParamsError(err.Error())
	}

	contract, err := util.Uint160DecodeStringLE(s)
	if err != nil {
		return nil, neorpc.NewInvalidParamsError(err.Error())
	}
	if !contract.Equals(n.contract) {
		return nil, neorpc.ErrUnknownContract
	}

	var kvs []result.KeyValue
	for acc, v := range n.balances {
		if v == 0 {
			continue
		}
		key := append([]byte{balancePrefix}, acc.BytesBE()...)
		if !bytes.HasPrefix(key, prefix) || (start != nil && bytes.Compare(key, start) <= 0) {
			continue
		}
		kvs = append(kvs, result.KeyValue{Key: key, Value: bigint.ToBytes(big.NewInt(v))})
	}

	sort.Slice(kvs, func(i, j int) bool {
		return bytes.Compare(kvs[i].Key, kvs[j].Key) < 0
	})

	var res result.FindStates
	if len(kvs) > testNodeStatesPage {
		kvs = kvs[:testNodeStatesPage]
		res.Truncated = true
	}
	res.Results = kvs

	return &res, nil
}
