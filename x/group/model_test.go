package group

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addrs(n int) []custody.Address {
	res := make([]custody.Address, n)
	for i := range res {
		res[i] = custodytest.RandomAddr()
	}
	return res
}

func TestValidateOwners(t *testing.T) {
	a := custodytest.RandomAddr()
	three := addrs(3)

	cases := map[string]struct {
		owners    []custody.Address
		threshold uint32
		wantErr   *errors.Error
	}{
		"valid 2 of 3":           {owners: three, threshold: 2},
		"valid 1 of 1":           {owners: addrs(1), threshold: 1},
		"valid 20 of 20":         {owners: addrs(20), threshold: 20},
		"duplicate owner":        {owners: []custody.Address{a, a}, threshold: 1, wantErr: ErrDuplicateOwner},
		"duplicate before count": {owners: append(addrs(20), a, a), threshold: 1, wantErr: ErrDuplicateOwner},
		"no owners":              {owners: nil, threshold: 1, wantErr: ErrInvalidOwnerCount},
		"too many owners":        {owners: addrs(21), threshold: 1, wantErr: ErrInvalidOwnerCount},
		"zero threshold":         {owners: three, threshold: 0, wantErr: ErrInvalidThreshold},
		"threshold above owners": {owners: three, threshold: 4, wantErr: ErrInvalidThreshold},
		"malformed owner":        {owners: []custody.Address{custody.Address("short")}, threshold: 1, wantErr: errors.ErrInput},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := ValidateOwners(tc.owners, tc.threshold)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v error, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestNextTxNonce(t *testing.T) {
	g := &Group{TxCount: 3}
	for want := uint64(3); want < 6; want++ {
		n, err := g.NextTxNonce()
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.Equal(t, uint64(6), g.TxCount)

	g.TxCount = ^uint64(0)
	_, err := g.NextTxNonce()
	assert.True(t, errors.ErrOverflow.Is(err))
}

func TestKeyAndCondition(t *testing.T) {
	creator := custodytest.RandomAddr()
	k0 := Key(creator, 0)
	k1 := Key(creator, 1)
	assert.Len(t, k0, len(creator)+8)
	assert.NotEqual(t, k0, k1)

	// the custody address is derived from the key only
	g := &Group{Creator: creator, ID: 1}
	assert.Equal(t, Condition(k1).Address(), g.Address())
	assert.NotEqual(t, Condition(k0).Address(), g.Address())
	require.NoError(t, Condition(k1).Validate())
}

func TestErrorCategories(t *testing.T) {
	for _, e := range []*errors.Error{ErrDuplicateOwner, ErrInvalidOwnerCount, ErrInvalidThreshold} {
		assert.Equal(t, errors.KindValidation, errors.Category(errors.Wrap(e, "test")))
	}
}
