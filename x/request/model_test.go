package request

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t testing.TB, threshold uint32, owners ...custody.Address) *Request {
	t.Helper()
	g := &group.Group{Creator: custodytest.RandomAddr(), Owners: owners, Threshold: threshold}
	req, err := New(g, &CreateMsg{
		Creator:  owners[0],
		Group:    g.Key(),
		Receiver: custodytest.RandomAddr(),
		Asset:    "NATIVE",
		Amount:   10,
	})
	require.NoError(t, err)
	require.NoError(t, req.Validate())
	return req
}

func TestThresholdReached(t *testing.T) {
	a, b, c, d := custodytest.RandomAddr(), custodytest.RandomAddr(), custodytest.RandomAddr(), custodytest.RandomAddr()
	owners := []custody.Address{a, b, c, d}

	for threshold := uint32(1); threshold <= 4; threshold++ {
		req := newRequest(t, threshold, owners...)
		for i, o := range owners {
			count := uint32(i + 1)
			if i > 0 {
				recorded, err := req.Approve(o, 0)
				require.NoError(t, err)
				assert.Equal(t, count <= threshold, recorded)
			}
			assert.Len(t, req.Approvals, len(owners))
			if count >= threshold {
				assert.Equal(t, StatusApproved, req.Status, "threshold %d, approvals %d", threshold, count)
			} else {
				assert.Equal(t, StatusActive, req.Status, "threshold %d, approvals %d", threshold, count)
			}
		}
		// approvals past the threshold are not recorded
		assert.Equal(t, threshold, req.ApprovalCount())
	}
}

func TestApprove(t *testing.T) {
	a, b, c := custodytest.RandomAddr(), custodytest.RandomAddr(), custodytest.RandomAddr()
	const now custody.UnixTime = 1000

	cases := map[string]struct {
		expireAt      custody.UnixTime
		status        Status
		signer        custody.Address
		wantErr       *errors.Error
		wantRecorded  bool
		wantStatus    Status
		wantApprovals []bool
	}{
		"second owner reaches the threshold": {
			signer:        b,
			wantRecorded:  true,
			wantStatus:    StatusApproved,
			wantApprovals: []bool{true, true, false},
		},
		"creator approves again": {
			signer:        a,
			wantErr:       ErrDuplicateSignature,
			wantStatus:    StatusActive,
			wantApprovals: []bool{true, false, false},
		},
		"not an owner": {
			signer:        custodytest.RandomAddr(),
			wantErr:       ErrInvalidSigner,
			wantStatus:    StatusActive,
			wantApprovals: []bool{true, false, false},
		},
		"expired": {
			expireAt:      now,
			signer:        b,
			wantStatus:    StatusTimeout,
			wantApprovals: []bool{true, false, false},
		},
		"not yet expired": {
			expireAt:      now + 1,
			signer:        c,
			wantRecorded:  true,
			wantStatus:    StatusApproved,
			wantApprovals: []bool{true, false, true},
		},
		"expired request ignores strangers": {
			expireAt:      1,
			signer:        custodytest.RandomAddr(),
			wantStatus:    StatusTimeout,
			wantApprovals: []bool{true, false, false},
		},
		"canceled": {
			status:        StatusCanceled,
			signer:        b,
			wantStatus:    StatusCanceled,
			wantApprovals: []bool{true, false, false},
		},
		"expiry does not override cancel": {
			status:        StatusCanceled,
			expireAt:      1,
			signer:        b,
			wantStatus:    StatusCanceled,
			wantApprovals: []bool{true, false, false},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			req := newRequest(t, 2, a, b, c)
			req.ExpireAt = tc.expireAt
			if tc.status != 0 {
				req.Status = tc.status
			}
			recorded, err := req.Approve(tc.signer, now)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, tc.wantRecorded, recorded)
			assert.Equal(t, tc.wantStatus, req.Status)
			assert.Equal(t, tc.wantApprovals, req.Approvals)
		})
	}
}

func TestCancel(t *testing.T) {
	a, b := custodytest.RandomAddr(), custodytest.RandomAddr()

	cases := map[string]struct {
		status         Status
		requester      custody.Address
		allowFinalized bool
		wantErr        *errors.Error
		wantStatus     Status
	}{
		"active":    {status: StatusActive, requester: a, wantStatus: StatusCanceled},
		"timeout":   {status: StatusTimeout, requester: a, wantStatus: StatusCanceled},
		"approved":  {status: StatusApproved, requester: a, allowFinalized: true, wantErr: ErrCannotCancel, wantStatus: StatusApproved},
		"completed": {status: StatusCompleted, requester: a, allowFinalized: true, wantStatus: StatusCanceled},
		"canceled":  {status: StatusCanceled, requester: a, allowFinalized: true, wantStatus: StatusCanceled},
		"completed, denied": {
			status: StatusCompleted, requester: a,
			wantErr: ErrCannotCancel, wantStatus: StatusCompleted,
		},
		"canceled, denied": {
			status: StatusCanceled, requester: a,
			wantErr: ErrCannotCancel, wantStatus: StatusCanceled,
		},
		"not the creator": {
			status: StatusActive, requester: b, allowFinalized: true,
			wantErr: errors.ErrUnauthorized, wantStatus: StatusActive,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			req := newRequest(t, 2, a, b)
			req.Status = tc.status
			err := req.Cancel(tc.requester, tc.allowFinalized)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			assert.Equal(t, tc.wantStatus, req.Status)
		})
	}
}

func TestMarkExecuted(t *testing.T) {
	a, b := custodytest.RandomAddr(), custodytest.RandomAddr()
	req := newRequest(t, 2, a, b)

	assert.True(t, ErrNotApproved.Is(req.MarkExecuted(a)))

	_, err := req.Approve(b, 0)
	require.NoError(t, err)
	assert.True(t, ErrInvalidSigner.Is(req.MarkExecuted(custodytest.RandomAddr())))
	assert.False(t, req.Executed)

	require.NoError(t, req.MarkExecuted(b))
	assert.True(t, req.Executed)
	assert.Equal(t, StatusCompleted, req.Status)
	require.NoError(t, req.Validate())

	// a completed request is never executed twice
	assert.True(t, ErrNotApproved.Is(req.MarkExecuted(a)))
}

func TestNewRequest(t *testing.T) {
	a, b := custodytest.RandomAddr(), custodytest.RandomAddr()
	g := &group.Group{Creator: a, Owners: []custody.Address{a, b}, Threshold: 2, TxCount: 5}
	msg := &CreateMsg{Creator: b, Group: g.Key(), Receiver: a, Asset: "USDC", Amount: 3}

	req, err := New(g, msg)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), req.Nonce)
	assert.Equal(t, uint64(6), g.TxCount)
	assert.Equal(t, []bool{false, true}, req.Approvals)
	assert.Equal(t, "token", req.Class.String())
	assert.Equal(t, Key(g.Key(), 5), req.Key())

	// the snapshot does not share memory with the group
	g.Owners[0] = custodytest.RandomAddr()
	assert.Equal(t, a, req.Owners[0])

	msg.Creator = custodytest.RandomAddr()
	_, err = New(g, msg)
	assert.True(t, ErrInvalidSigner.Is(err))
	assert.Equal(t, uint64(6), g.TxCount)
}

func TestNewRequestSingleApproval(t *testing.T) {
	a := custodytest.RandomAddr()
	g := &group.Group{Creator: a, Owners: []custody.Address{a}, Threshold: 1}
	msg := &CreateMsg{Creator: a, Group: g.Key(), Receiver: custodytest.RandomAddr(), Asset: token.NativeTicker, Amount: 1}

	req, err := New(g, msg)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, req.Status)
	assert.Equal(t, []bool{true}, req.Approvals)
}

func TestStatus(t *testing.T) {
	for _, s := range []Status{StatusActive, StatusTimeout, StatusApproved, StatusCompleted, StatusCanceled} {
		assert.NoError(t, s.Validate())
		assert.NotEqual(t, "unknown", s.String())
	}
	assert.Error(t, Status(0).Validate())
	assert.Equal(t, "unknown", Status(9).String())
	assert.Panics(t, func() { Status(9).Final() })

	assert.Equal(t, errors.KindValidation, errors.Category(ErrInvalidExpiry))
	assert.Equal(t, errors.KindAuthorization, errors.Category(ErrDuplicateSignature))
	assert.Equal(t, errors.KindState, errors.Category(ErrCannotCancel))
}
