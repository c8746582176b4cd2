package token

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/cash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAsset(t *testing.T) {
	cases := map[string]struct {
		asset   string
		wantErr *errors.Error
	}{
		"ticker":         {asset: "USDC"},
		"digits":         {asset: "X2"},
		"native":         {asset: NativeTicker, wantErr: ErrInvalidAsset},
		"lowercase":      {asset: "usdc", wantErr: ErrInvalidAsset},
		"too short":      {asset: "U", wantErr: ErrInvalidAsset},
		"too long":       {asset: "ABCDEFGHIJKLM", wantErr: ErrInvalidAsset},
		"empty":          {asset: "", wantErr: ErrInvalidAsset},
		"with separator": {asset: "US-DC", wantErr: ErrInvalidAsset},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := ValidateAsset(tc.asset); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	alice := custodytest.NewCondition()
	bob := custodytest.NewCondition()

	cases := map[string]struct {
		signer    custody.Condition
		toAsset   string
		amount    uint64
		wantErr   *errors.Error
		wantFrom  uint64
		wantTo    uint64
		sameToken bool
	}{
		"owner moves tokens": {
			signer: alice, toAsset: "USDC", amount: 40,
			wantFrom: 60, wantTo: 40,
		},
		"owner moves everything": {
			signer: alice, toAsset: "USDC", amount: 100,
			wantFrom: 0, wantTo: 100,
		},
		"not the owner": {
			signer: bob, toAsset: "USDC", amount: 40,
			wantErr: errors.ErrUnauthorized, wantFrom: 100,
		},
		"different assets": {
			signer: alice, toAsset: "EURC", amount: 40,
			wantErr: ErrAssetMismatch, wantFrom: 100,
		},
		"insufficient balance": {
			signer: alice, toAsset: "USDC", amount: 101,
			wantErr: cash.ErrInsufficientBalance, wantFrom: 100,
		},
		"zero amount": {
			signer: alice, toAsset: "USDC", amount: 0,
			wantErr: errors.ErrAmount, wantFrom: 100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			bucket := NewBucket()
			fromID, err := bucket.Create(db, &Account{Owner: alice.Address(), Asset: "USDC", Balance: 100})
			require.NoError(t, err)
			toID, err := bucket.Create(db, &Account{Owner: bob.Address(), Asset: tc.toAsset})
			require.NoError(t, err)

			auth := &custodytest.Auth{Signer: tc.signer}
			err = NewController(bucket).Transfer(custodytest.Ctx(), db, auth, fromID, toID, tc.amount)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}

			from, err := bucket.GetAccount(db, fromID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFrom, from.Balance)
			to, err := bucket.GetAccount(db, toID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantTo, to.Balance)
		})
	}
}

func TestTransferMissingAccount(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket()
	alice := custodytest.NewCondition()
	id, err := bucket.Create(db, &Account{Owner: alice.Address(), Asset: "USDC", Balance: 1})
	require.NoError(t, err)

	auth := &custodytest.Auth{Signer: alice}
	err = NewController(bucket).Transfer(custodytest.Ctx(), db, auth, id, []byte("missing"), 1)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestOpenAccountHandler(t *testing.T) {
	owner := custodytest.RandomAddr()
	cases := map[string]struct {
		msg     *OpenAccountMsg
		wantErr *errors.Error
	}{
		"open": {msg: &OpenAccountMsg{Owner: owner, Asset: "USDC"}},
		"native asset": {
			msg:     &OpenAccountMsg{Owner: owner, Asset: NativeTicker},
			wantErr: ErrInvalidAsset,
		},
		"missing owner": {
			msg:     &OpenAccountMsg{Asset: "USDC"},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			h := OpenAccountHandler{bucket: NewBucket()}
			tx := &custodytest.Tx{Msg: tc.msg}

			if _, err := h.Check(custodytest.Ctx(), db, tx); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			res, err := h.Deliver(custodytest.Ctx(), db, tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			acc, err := NewBucket().GetAccount(db, res.Data)
			require.NoError(t, err)
			assert.Equal(t, owner, acc.Owner)
			assert.Equal(t, uint64(0), acc.Balance)
			require.Len(t, res.Events, 1)
			assert.Equal(t, custody.EventAccountOpened, res.Events[0].Kind)
			assert.Equal(t, "USDC", res.Events[0].Asset)
		})
	}
}

func TestGenesis(t *testing.T) {
	owner := custodytest.RandomAddr()
	raw, err := json.Marshal([]interface{}{
		map[string]interface{}{"owner": owner, "asset": "USDC", "balance": 10},
		map[string]interface{}{"owner": owner, "asset": "EURC", "balance": 20},
	})
	require.NoError(t, err)

	db := store.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(custody.Options{"token": raw}, db))

	second, err := NewBucket().GetAccount(db, []byte{0, 0, 0, 0, 0, 0, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, "EURC", second.Asset)
	assert.Equal(t, uint64(20), second.Balance)
}
