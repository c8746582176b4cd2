package iavl

import (
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/store"
	dbm "github.com/tendermint/tendermint/libs/db"
)

func makeBase() (store.CacheableKVStore, func()) {
	s, err := NewCommitStore(dbm.NewMemDB(), 100)
	if err != nil {
		panic(err)
	}
	return s, func() {}
}

func TestCommitStore(t *testing.T) {
	suite := store.NewTestSuite(makeBase)
	t.Run("get set", suite.GetSet)
	t.Run("cache conflicts", suite.CacheConflicts)
	t.Run("iterator", suite.Iterator)
	t.Run("concurrent writes", suite.ConcurrentWrites)
}

func TestCommitAndReload(t *testing.T) {
	db := dbm.NewMemDB()
	s, err := NewCommitStore(db, 100)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), s.LatestVersion().Version)

	cache := s.CacheWrap()
	assert.Nil(t, cache.Set([]byte("group"), []byte("one")))
	assert.Nil(t, cache.Write())

	id, err := s.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("want a root hash")
	}

	// uncommitted writes are lost on reload
	assert.Nil(t, s.Set([]byte("pending"), []byte("two")))

	reloaded, err := NewCommitStore(db, 100)
	assert.Nil(t, err)
	assert.Equal(t, id, reloaded.LatestVersion())

	val, err := reloaded.Get([]byte("group"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("one"), val)
	ok, err := reloaded.Has([]byte("pending"))
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}
