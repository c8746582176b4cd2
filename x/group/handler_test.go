package group

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/nonce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHandler(t *testing.T) {
	creator := custodytest.NewCondition()
	a, b, c := custodytest.RandomAddr(), custodytest.RandomAddr(), custodytest.RandomAddr()

	cases := map[string]struct {
		signer  custody.Condition
		msg     *CreateMsg
		wantErr *errors.Error
	}{
		"2 of 3": {
			signer: creator,
			msg:    &CreateMsg{Creator: creator.Address(), Owners: []custody.Address{a, b, c}, Threshold: 2},
		},
		"duplicated owners": {
			signer:  creator,
			msg:     &CreateMsg{Creator: creator.Address(), Owners: []custody.Address{a, a}, Threshold: 1},
			wantErr: ErrDuplicateOwner,
		},
		"no owners": {
			signer:  creator,
			msg:     &CreateMsg{Creator: creator.Address(), Threshold: 1},
			wantErr: ErrInvalidOwnerCount,
		},
		"threshold too high": {
			signer:  creator,
			msg:     &CreateMsg{Creator: creator.Address(), Owners: []custody.Address{a}, Threshold: 2},
			wantErr: ErrInvalidThreshold,
		},
		"creator must sign": {
			signer:  custodytest.NewCondition(),
			msg:     &CreateMsg{Creator: creator.Address(), Owners: []custody.Address{a}, Threshold: 1},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			alloc := nonce.NewAllocator()
			bucket := NewBucket()
			h := CreateHandler{auth: &custodytest.Auth{Signer: tc.signer}, bucket: bucket, alloc: alloc}
			tx := &custodytest.Tx{Msg: tc.msg}

			_, err := h.Check(custodytest.Ctx(), db.CacheWrap(), tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}

			res, err := h.Deliver(custodytest.Ctx(), db, tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}

			if tc.wantErr != nil {
				// nothing persisted and the nonce is untouched
				cur, err := alloc.Current(db, creator.Address())
				require.NoError(t, err)
				assert.Equal(t, uint64(0), cur)
				groups, err := bucket.ByCreator(db, creator.Address())
				require.NoError(t, err)
				assert.Empty(t, groups)
				return
			}

			assert.Equal(t, Key(creator.Address(), 0), res.Data)
			g, err := bucket.GetGroup(db, res.Data)
			require.NoError(t, err)
			assert.Equal(t, tc.msg.Owners, g.Owners)
			assert.Equal(t, tc.msg.Threshold, g.Threshold)
			assert.Equal(t, uint64(0), g.TxCount)

			require.Len(t, res.Events, 1)
			ev := res.Events[0]
			assert.Equal(t, custody.EventGroupCreated, ev.Kind)
			assert.Equal(t, creator.Address(), ev.Actor)
			assert.Equal(t, custody.HexBytes(res.Data), ev.Group)
			assert.Equal(t, custody.AsUnixTime(custodytest.Now), ev.Time)

			// a second group of the same creator takes the next id
			res, err = h.Deliver(custodytest.Ctx(), db, tx)
			require.NoError(t, err)
			assert.Equal(t, Key(creator.Address(), 1), res.Data)
		})
	}
}

func TestGenesisInitializer(t *testing.T) {
	creator := custodytest.RandomAddr()
	a, b := custodytest.RandomAddr(), custodytest.RandomAddr()

	raw, err := json.Marshal([]interface{}{
		map[string]interface{}{"creator": creator, "owners": []custody.Address{a, b}, "threshold": 2},
		map[string]interface{}{"creator": creator, "owners": []custody.Address{b}, "threshold": 1},
	})
	require.NoError(t, err)

	db := store.MemStore()
	init := &Initializer{Alloc: nonce.NewStrictAllocator()}
	require.NoError(t, init.FromGenesis(custody.Options{"group": raw}, db))

	groups, err := NewBucket().ByCreator(db, creator)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, uint64(0), groups[0].ID)
	assert.Equal(t, uint32(2), groups[0].Threshold)
	assert.Equal(t, uint64(1), groups[1].ID)

	raw, err = json.Marshal([]interface{}{
		map[string]interface{}{"creator": creator, "owners": []custody.Address{a, a}, "threshold": 1},
	})
	require.NoError(t, err)
	err = init.FromGenesis(custody.Options{"group": raw}, store.MemStore())
	assert.True(t, ErrDuplicateOwner.Is(err))
}
