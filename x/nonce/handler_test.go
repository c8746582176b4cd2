package nonce

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
)

func TestInitUserHandler(t *testing.T) {
	alice := custodytest.NewCondition()
	bob := custodytest.NewCondition()

	cases := map[string]struct {
		init           bool
		signer         custody.Condition
		msg            *InitUserMsg
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
	}{
		"creator initializes the counter": {
			signer: alice,
			msg:    &InitUserMsg{Creator: alice.Address()},
		},
		"counter can be initialized only once": {
			init:           true,
			signer:         alice,
			msg:            &InitUserMsg{Creator: alice.Address()},
			wantCheckErr:   errors.ErrDuplicate,
			wantDeliverErr: errors.ErrDuplicate,
		},
		"creator must sign": {
			signer:         bob,
			msg:            &InitUserMsg{Creator: alice.Address()},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"invalid creator": {
			signer:         alice,
			msg:            &InitUserMsg{},
			wantCheckErr:   errors.ErrInput,
			wantDeliverErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			auth := &custodytest.Auth{Signer: tc.signer}
			alloc := NewStrictAllocator()
			h := InitUserHandler{auth: auth, alloc: alloc}
			db := store.MemStore()
			if tc.init {
				assert.Nil(t, alloc.Init(db, alice.Address()))
			}
			tx := &custodytest.Tx{Msg: tc.msg}

			_, err := h.Check(custodytest.Ctx(), db.CacheWrap(), tx)
			assert.IsErr(t, tc.wantCheckErr, err)
			_, err = h.Deliver(custodytest.Ctx(), db, tx)
			assert.IsErr(t, tc.wantDeliverErr, err)

			if tc.wantDeliverErr == nil {
				id, err := alloc.NextID(db, alice.Address())
				assert.Nil(t, err)
				assert.Equal(t, uint64(0), id)
			}
		})
	}
}

func TestRegisterRoutes(t *testing.T) {
	r := routes{}
	RegisterRoutes(r, &custodytest.Auth{}, NewAllocator())
	if _, ok := r[pathInitUserMsg]; !ok {
		t.Fatal("init handler not registered")
	}
}

type routes map[string]custody.Handler

func (r routes) Handle(m custody.Msg, h custody.Handler) {
	r[m.Path()] = h
}
