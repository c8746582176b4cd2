package app

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/audit"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/deposit"
	"github.com/iov-one/custody/x/dispatch"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/nonce"
	"github.com/iov-one/custody/x/request"
	"github.com/iov-one/custody/x/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	t        *testing.T
	db       store.CacheableKVStore
	engine   *app.Engine
	rec      *audit.Recorder
	a, b, c  custodytest.Key
	receiver custodytest.Key
	admin    custodytest.Key
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		t:        t,
		db:       store.MemStore(),
		rec:      &audit.Recorder{},
		a:        custodytest.NewKey(),
		b:        custodytest.NewKey(),
		c:        custodytest.NewKey(),
		receiver: custodytest.NewKey(),
		admin:    custodytest.NewKey(),
	}
	e, err := NewEngine(ta.db, Config{
		Registerer: prometheus.NewRegistry(),
		Sink:       ta.rec,
	})
	require.NoError(t, err)
	ta.engine = e

	genesis := fmt.Sprintf(`{
		"cash": [{"address": %q, "balance": 1000}],
		"token": [
			{"owner": %q, "asset": "GOLD", "balance": 100},
			{"owner": %q, "asset": "SILV", "balance": 100}
		],
		"conf": {"request": {"owner": %q}}
	}`, ta.addr(ta.a), ta.addr(ta.a), ta.addr(ta.a), ta.addr(ta.admin))
	var opts custody.Options
	require.NoError(t, json.Unmarshal([]byte(genesis), &opts))
	require.NoError(t, e.InitChain(context.Background(), &app.Genesis{ChainID: "custody-test", AppOptions: opts}))
	return ta
}

func (ta *testApp) addr(k custodytest.Key) custody.Address {
	return k.Condition().Address()
}

// deliver sends the message through the JSON envelope, the same way the
// command line does.
func (ta *testApp) deliver(at time.Time, msg custody.Msg, signer custodytest.Key) ([]byte, error) {
	ta.t.Helper()
	tx := ta.encode(msg, signer)
	if _, err := ta.engine.Check(context.Background(), tx, at); err != nil {
		return nil, err
	}
	res, err := ta.engine.Deliver(context.Background(), tx, at)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (ta *testApp) encode(msg custody.Msg, signer custodytest.Key) *Tx {
	ta.t.Helper()
	tx, err := NewTx(msg, signer.Public)
	require.NoError(ta.t, err)
	raw, err := json.Marshal(tx)
	require.NoError(ta.t, err)
	decoded, err := DecodeTx(raw)
	require.NoError(ta.t, err)
	return decoded
}

func (ta *testApp) mustDeliver(msg custody.Msg, signer custodytest.Key) []byte {
	ta.t.Helper()
	data, err := ta.deliver(custodytest.Now, msg, signer)
	require.NoError(ta.t, err)
	return data
}

func (ta *testApp) query(path, arg string) interface{} {
	ta.t.Helper()
	var res interface{}
	err := ta.engine.View(func(db custody.ReadOnlyKVStore) error {
		var err error
		res, err = Query(db, path, arg)
		return err
	})
	require.NoError(ta.t, err)
	return res
}

func (ta *testApp) request(key []byte) *request.Request {
	ta.t.Helper()
	return ta.query("request", fmt.Sprintf("%x", key)).(*request.Request)
}

func (ta *testApp) balance(a custody.Address) uint64 {
	ta.t.Helper()
	res := ta.query("wallet", a.String()).(map[string]interface{})
	return res["balance"].(uint64)
}

func (ta *testApp) account(id []byte) *token.Account {
	ta.t.Helper()
	return ta.query("account", fmt.Sprintf("%x", id)).(*token.Account)
}

// fundedGroup creates the [a,b,c] threshold 2 group and deposits amount of
// the native currency into its custody.
func (ta *testApp) fundedGroup(amount uint64) []byte {
	ta.t.Helper()
	key := ta.mustDeliver(&group.CreateMsg{
		Creator:   ta.addr(ta.a),
		Owners:    []custody.Address{ta.addr(ta.a), ta.addr(ta.b), ta.addr(ta.c)},
		Threshold: 2,
	}, ta.a)
	if amount > 0 {
		ta.mustDeliver(&deposit.NativeMsg{Payer: ta.addr(ta.a), Group: key, Amount: amount}, ta.a)
	}
	return key
}

func (ta *testApp) nativeRequest(groupKey []byte, amount uint64, expireAt custody.UnixTime) []byte {
	ta.t.Helper()
	return ta.mustDeliver(&request.CreateMsg{
		Creator:  ta.addr(ta.a),
		Group:    groupKey,
		Receiver: ta.addr(ta.receiver),
		Asset:    token.NativeTicker,
		Amount:   amount,
		ExpireAt: expireAt,
	}, ta.a)
}

func (ta *testApp) eventKinds() []custody.EventKind {
	var kinds []custody.EventKind
	for _, e := range ta.rec.Events() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestNativeRequestLifecycle(t *testing.T) {
	ta := newTestApp(t)
	groupKey := ta.fundedGroup(500)
	groupAddr := group.Condition(groupKey).Address()
	assert.Equal(t, uint64(500), ta.balance(groupAddr))
	assert.Equal(t, uint64(500), ta.balance(ta.addr(ta.a)))

	reqKey := ta.nativeRequest(groupKey, 200, 0)
	req := ta.request(reqKey)
	assert.Equal(t, request.StatusActive, req.Status)
	assert.Equal(t, []bool{true, false, false}, req.Approvals)

	ta.mustDeliver(&request.ApproveMsg{Signer: ta.addr(ta.b), Request: reqKey}, ta.b)
	assert.Equal(t, request.StatusApproved, ta.request(reqKey).Status)

	ta.mustDeliver(&dispatch.ExecuteMsg{
		Executor: ta.addr(ta.a),
		Request:  reqKey,
		Receiver: ta.addr(ta.receiver),
	}, ta.a)

	req = ta.request(reqKey)
	assert.Equal(t, request.StatusCompleted, req.Status)
	assert.True(t, req.Executed)
	assert.Equal(t, uint64(300), ta.balance(groupAddr))
	assert.Equal(t, uint64(200), ta.balance(ta.addr(ta.receiver)))

	// A completed request is paid out only once.
	_, err := ta.deliver(custodytest.Now, &dispatch.ExecuteMsg{
		Executor: ta.addr(ta.b),
		Request:  reqKey,
		Receiver: ta.addr(ta.receiver),
	}, ta.b)
	assert.True(t, request.ErrNotApproved.Is(err))
	assert.Equal(t, uint64(200), ta.balance(ta.addr(ta.receiver)))

	assert.Equal(t, []custody.EventKind{
		custody.EventGroupCreated,
		custody.EventDepositRecorded,
		custody.EventRequestCreated,
		custody.EventApprovalRecorded,
		custody.EventRequestExecuted,
	}, ta.eventKinds())
}

func TestDuplicateApproval(t *testing.T) {
	ta := newTestApp(t)
	groupKey := ta.fundedGroup(0)
	reqKey := ta.nativeRequest(groupKey, 10, 0)

	_, err := ta.deliver(custodytest.Now, &request.ApproveMsg{Signer: ta.addr(ta.a), Request: reqKey}, ta.a)
	assert.True(t, request.ErrDuplicateSignature.Is(err))
	assert.Equal(t, []bool{true, false, false}, ta.request(reqKey).Approvals)
}

func TestApprovalAfterExpiry(t *testing.T) {
	ta := newTestApp(t)
	groupKey := ta.fundedGroup(0)
	expireAt := custody.AsUnixTime(custodytest.Now.Add(time.Hour))
	reqKey := ta.nativeRequest(groupKey, 10, expireAt)

	// Nothing observed the expiry yet.
	assert.Equal(t, request.StatusActive, ta.request(reqKey).Status)

	_, err := ta.deliver(custodytest.Now.Add(time.Hour), &request.ApproveMsg{Signer: ta.addr(ta.b), Request: reqKey}, ta.b)
	require.NoError(t, err)

	req := ta.request(reqKey)
	assert.Equal(t, request.StatusTimeout, req.Status)
	assert.Equal(t, []bool{true, false, false}, req.Approvals)
}

func TestCancelApprovedRequest(t *testing.T) {
	ta := newTestApp(t)
	groupKey := ta.fundedGroup(0)
	reqKey := ta.nativeRequest(groupKey, 10, 0)
	ta.mustDeliver(&request.ApproveMsg{Signer: ta.addr(ta.c), Request: reqKey}, ta.c)

	_, err := ta.deliver(custodytest.Now, &request.CancelMsg{Requester: ta.addr(ta.a), Request: reqKey}, ta.a)
	assert.True(t, request.ErrCannotCancel.Is(err))
	assert.Equal(t, request.StatusApproved, ta.request(reqKey).Status)
}

func TestRejectedGroupKeepsNonce(t *testing.T) {
	ta := newTestApp(t)
	creator := ta.addr(ta.b)

	_, err := ta.deliver(custodytest.Now, &group.CreateMsg{
		Creator:   creator,
		Owners:    []custody.Address{ta.addr(ta.a), ta.addr(ta.a)},
		Threshold: 1,
	}, ta.b)
	assert.True(t, group.ErrDuplicateOwner.Is(err))

	groups := ta.query("groups", creator.String()).([]group.Group)
	assert.Empty(t, groups)
	err = ta.engine.View(func(db custody.ReadOnlyKVStore) error {
		n, err := nonce.NewAllocator().Current(db, creator)
		assert.Equal(t, uint64(0), n)
		return err
	})
	require.NoError(t, err)
}

func TestTokenDepositAssetMismatch(t *testing.T) {
	ta := newTestApp(t)
	groupKey := ta.fundedGroup(0)
	groupAddr := group.Condition(groupKey).Address()
	vault := ta.mustDeliver(&token.OpenAccountMsg{Owner: groupAddr, Asset: "GOLD"}, ta.a)
	published := len(ta.rec.Events())

	gold, silver := orm.EncodeSequence(1), orm.EncodeSequence(2)
	_, err := ta.deliver(custodytest.Now, &deposit.TokenMsg{
		Payer:  ta.addr(ta.a),
		Group:  groupKey,
		Asset:  "GOLD",
		Amount: 10,
		Source: silver,
		Vault:  vault,
	}, ta.a)
	assert.True(t, token.ErrInvalidAsset.Is(err))

	assert.Equal(t, uint64(100), ta.account(gold).Balance)
	assert.Equal(t, uint64(100), ta.account(silver).Balance)
	assert.Equal(t, uint64(0), ta.account(vault).Balance)
	assert.Len(t, ta.rec.Events(), published)
}

func TestTokenRequestLifecycle(t *testing.T) {
	ta := newTestApp(t)
	groupKey := ta.fundedGroup(0)
	groupAddr := group.Condition(groupKey).Address()
	vault := ta.mustDeliver(&token.OpenAccountMsg{Owner: groupAddr, Asset: "GOLD"}, ta.a)
	dest := ta.mustDeliver(&token.OpenAccountMsg{Owner: ta.addr(ta.receiver), Asset: "GOLD"}, ta.receiver)

	gold := orm.EncodeSequence(1)
	ta.mustDeliver(&deposit.TokenMsg{
		Payer:  ta.addr(ta.a),
		Group:  groupKey,
		Asset:  "GOLD",
		Amount: 60,
		Source: gold,
		Vault:  vault,
	}, ta.a)

	reqKey := ta.mustDeliver(&request.CreateMsg{
		Creator:  ta.addr(ta.a),
		Group:    groupKey,
		Receiver: ta.addr(ta.receiver),
		Asset:    "GOLD",
		Amount:   70,
	}, ta.a)
	ta.mustDeliver(&request.ApproveMsg{Signer: ta.addr(ta.b), Request: reqKey}, ta.b)

	exec := &dispatch.ExecuteMsg{Executor: ta.addr(ta.b), Request: reqKey, Vault: vault, Destination: dest}
	_, err := ta.deliver(custodytest.Now, exec, ta.b)
	assert.True(t, dispatch.ErrInsufficientCustodyBalance.Is(err))
	assert.Equal(t, request.StatusApproved, ta.request(reqKey).Status)

	ta.mustDeliver(&deposit.TokenMsg{
		Payer:  ta.addr(ta.a),
		Group:  groupKey,
		Asset:  "GOLD",
		Amount: 10,
		Source: gold,
		Vault:  vault,
	}, ta.a)
	ta.mustDeliver(exec, ta.b)

	assert.Equal(t, uint64(30), ta.account(gold).Balance)
	assert.Equal(t, uint64(0), ta.account(vault).Balance)
	assert.Equal(t, uint64(70), ta.account(dest).Balance)
	assert.Equal(t, request.StatusCompleted, ta.request(reqKey).Status)
}

func TestFinalizedCancelConfiguration(t *testing.T) {
	ta := newTestApp(t)
	deny := &request.UpdateConfigurationMsg{
		Patch: &request.Configuration{FinalizedCancel: request.CancelDeny},
	}

	_, err := ta.deliver(custodytest.Now, deny, ta.a)
	assert.True(t, errors.ErrUnauthorized.Is(err))
	conf := ta.query("config", "request").(*request.Configuration)
	assert.True(t, conf.AllowFinalizedCancel())

	groupKey := ta.fundedGroup(0)
	reqKey := ta.nativeRequest(groupKey, 10, 0)
	cancel := &request.CancelMsg{Requester: ta.addr(ta.a), Request: reqKey}
	ta.mustDeliver(cancel, ta.a)
	assert.Equal(t, request.StatusCanceled, ta.request(reqKey).Status)

	// Canceling again is allowed by default.
	ta.mustDeliver(cancel, ta.a)

	ta.mustDeliver(deny, ta.admin)
	conf = ta.query("config", "request").(*request.Configuration)
	assert.False(t, conf.AllowFinalizedCancel())
	assert.Equal(t, ta.addr(ta.admin), conf.Owner)

	_, err = ta.deliver(custodytest.Now, cancel, ta.a)
	assert.True(t, request.ErrCannotCancel.Is(err))
}

func TestConcurrentApprovals(t *testing.T) {
	ta := newTestApp(t)
	groupKey := ta.fundedGroup(900)

	var keys [][]byte
	for i := 0; i < 30; i++ {
		keys = append(keys, ta.nativeRequest(groupKey, 30, 0))
	}

	var txs []custody.Tx
	for _, k := range keys {
		txs = append(txs,
			ta.encode(&request.ApproveMsg{Signer: ta.addr(ta.b), Request: k}, ta.b),
			ta.encode(&request.ApproveMsg{Signer: ta.addr(ta.c), Request: k}, ta.c),
		)
	}
	for i, r := range ta.engine.DeliverBatch(context.Background(), txs, custodytest.Now) {
		require.NoError(t, r.Err, "tx %d", i)
	}

	txs = txs[:0]
	for _, k := range keys {
		req := ta.request(k)
		// Whichever approval came second is skipped, the request was
		// already approved.
		assert.Equal(t, request.StatusApproved, req.Status)
		assert.Equal(t, uint32(2), req.ApprovalCount())
		txs = append(txs, ta.encode(&dispatch.ExecuteMsg{
			Executor: ta.addr(ta.c),
			Request:  k,
			Receiver: ta.addr(ta.receiver),
		}, ta.c))
	}
	for i, r := range ta.engine.DeliverBatch(context.Background(), txs, custodytest.Now) {
		require.NoError(t, r.Err, "tx %d", i)
	}
	assert.Equal(t, uint64(0), ta.balance(group.Condition(groupKey).Address()))
	assert.Equal(t, uint64(900), ta.balance(ta.addr(ta.receiver)))

	reqs := ta.query("requests", fmt.Sprintf("%x", groupKey)).([]request.Request)
	assert.Len(t, reqs, len(keys))
}

func TestConcurrentDeposits(t *testing.T) {
	ta := newTestApp(t)
	groupKey := ta.fundedGroup(0)
	payer := ta.addr(ta.a)

	var txs []custody.Tx
	for i := 0; i < 100; i++ {
		txs = append(txs, ta.encode(&deposit.NativeMsg{Payer: payer, Group: groupKey, Amount: 15}, ta.a))
	}
	var failed int
	for _, r := range ta.engine.DeliverBatch(context.Background(), txs, custodytest.Now) {
		if r.Err != nil {
			assert.True(t, cash.ErrInsufficientBalance.Is(r.Err), "%+v", r.Err)
			failed++
		}
	}
	// 1000 covers 66 deposits of 15.
	assert.Equal(t, 34, failed)
	assert.Equal(t, uint64(990), ta.balance(group.Condition(groupKey).Address()))
	assert.Equal(t, uint64(10), ta.balance(payer))
}

func TestDecodeTx(t *testing.T) {
	key := custodytest.NewKey()
	cases := map[string]struct {
		raw     string
		wantErr *errors.Error
	}{
		"unknown path": {
			raw:     `{"path": "bank/send", "msg": {}}`,
			wantErr: errors.ErrMsg,
		},
		"malformed envelope": {
			raw:     `{"path": `,
			wantErr: errors.ErrInput,
		},
		"malformed message": {
			raw:     `{"path": "request/approve", "msg": {"signer": 1}}`,
			wantErr: errors.ErrMsg,
		},
		"short public key": {
			raw:     `{"path": "request/approve", "msg": {}, "signers": ["ABCD"]}`,
			wantErr: errors.ErrInput,
		},
		"valid": {
			raw: fmt.Sprintf(`{"path": "nonce/init", "msg": {"creator": %q}, "signers": [%q]}`,
				key.Condition().Address(), fmt.Sprintf("%X", []byte(key.Public))),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			tx, err := DecodeTx([]byte(tc.raw))
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			msg, err := tx.GetMsg()
			require.NoError(t, err)
			assert.Equal(t, &nonce.InitUserMsg{Creator: key.Condition().Address()}, msg)
			assert.Equal(t, []custody.Condition{key.Condition()}, tx.GetSigners())
		})
	}
}

func TestRouterCoversMessages(t *testing.T) {
	r := Router(Authenticator(), nonce.NewAllocator())
	assert.ElementsMatch(t, r.Paths(), func() []string {
		var paths []string
		for p := range messages {
			paths = append(paths, p)
		}
		return paths
	}())
}
