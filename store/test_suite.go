package store

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/iov-one/custody/custodytest/assert"
	"github.com/sourcegraph/conc"
)

// TestSuite runs the same checks against any CacheableKVStore
// implementation. btree_test.go, dbstore_test.go and iavl/commit_test.go
// each pass their own constructor.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns an empty store and a function releasing it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// GetSet checks that cache writes stay invisible to the parent until Write
// and vanish on Discard.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	group, wallet, request := []byte("grp:01"), []byte("cash:01"), []byte("req:01")
	s.AssertGetHas(t, base, group, nil, false)
	assert.Nil(t, base.Set(group, []byte("owners")))
	s.AssertGetHas(t, base, group, []byte("owners"), true)

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, group, []byte("owners"), true)
	assert.Nil(t, cache.Set(wallet, []byte("100")))
	s.AssertGetHas(t, cache, wallet, []byte("100"), true)
	s.AssertGetHas(t, base, wallet, nil, false)
	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, wallet, []byte("100"), true)

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set(request, []byte("active")))
	discarded.Discard()
	s.AssertGetHas(t, base, request, nil, false)

	deleting := base.CacheWrap()
	assert.Nil(t, deleting.Delete(group))
	s.AssertGetHas(t, deleting, group, nil, false)
	s.AssertGetHas(t, base, group, []byte("owners"), true)
	assert.Nil(t, deleting.Write())
	s.AssertGetHas(t, base, group, nil, false)
	s.AssertGetHas(t, base, wallet, []byte("100"), true)
}

// CacheConflicts checks that child writes and deletes shadow the parent.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	k := func(i int) []byte { return []byte(fmt.Sprintf("req:%02d", i)) }
	v := func(s string) []byte { return []byte(s) }

	cases := map[string]struct {
		parentOps []Op
		childOps  []Op
		// Value nil means the key must be absent.
		parentWant []Model
		childWant  []Model
	}{
		"overwrite one, delete another, add a third": {
			parentOps:  []Op{SetOp(k(1), v("active")), SetOp(k(2), v("active"))},
			childOps:   []Op{SetOp(k(1), v("approved")), SetOp(k(3), v("active")), DelOp(k(2))},
			parentWant: []Model{Pair(k(1), v("active")), Pair(k(2), v("active")), Pair(k(3), nil)},
			childWant:  []Model{Pair(k(1), v("approved")), Pair(k(2), nil), Pair(k(3), v("active"))},
		},
		"delete and set again": {
			parentOps:  []Op{SetOp(k(4), v("active"))},
			childOps:   []Op{DelOp(k(4)), SetOp(k(4), v("completed"))},
			parentWant: []Model{Pair(k(4), v("active"))},
			childWant:  []Model{Pair(k(4), v("completed"))},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}

			for _, m := range tc.parentWant {
				s.AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
			}
			for _, m := range tc.childWant {
				s.AssertGetHas(t, child, m.Key, m.Value, m.Value != nil)
			}
			assert.Nil(t, child.Write())
			for _, m := range tc.childWant {
				s.AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
			}
		})
	}
}

// Iterator checks that iterating a cache merges parent and child in key
// order and skips deleted keys.
func (s *TestSuite) Iterator(t *testing.T) {
	var (
		g1  = Pair([]byte("grp:1"), []byte("g1"))
		g1b = Pair([]byte("grp:1"), []byte("g1 updated"))
		g2  = Pair([]byte("grp:2"), []byte("g2"))
		g2b = Pair([]byte("grp:2"), []byte("g2 updated"))
		r1  = Pair([]byte("req:1"), []byte("r1"))
		r2  = Pair([]byte("req:2"), []byte("r2"))
	)

	type query struct {
		start, end []byte
		want       []Model
	}
	cases := map[string]struct {
		parent  []Op
		child   []Op
		queries []query
	}{
		"child only": {
			child: setOps(g1, g2, r1),
			queries: []query{
				{nil, nil, []Model{g1, g2, r1}},
				{g2.Key, r1.Key, []Model{g2}},
				{g2.Key, nil, []Model{g2, r1}},
				{nil, g2.Key, []Model{g1}},
			},
		},
		"parent only": {
			parent: setOps(g1, g2, r1),
			queries: []query{
				{nil, nil, []Model{g1, g2, r1}},
				{g2.Key, r1.Key, []Model{g2}},
			},
		},
		"parent and child": {
			parent: setOps(g1, g2),
			child:  setOps(r1),
			queries: []query{
				{nil, nil, []Model{g1, g2, r1}},
				{g2.Key, r1.Key, []Model{g2}},
			},
		},
		"child overwrites parent": {
			parent: setOps(g1, g2, r1),
			child:  setOps(g1b, g2b, r2),
			queries: []query{
				{nil, nil, []Model{g1b, g2b, r1, r2}},
				{g2.Key, r2.Key, []Model{g2b, r1}},
			},
		},
		"deleted keys are skipped": {
			parent: setOps(g1, r1, r2),
			child:  []Op{DelOp(g1.Key), DelOp(g2.Key), DelOp(r2.Key)},
			queries: []query{
				{nil, nil, []Model{r1}},
				{nil, r1.Key, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parent {
				assert.Nil(t, op.Apply(base))
			}
			child := base.CacheWrap()
			for _, op := range tc.child {
				assert.Nil(t, op.Apply(child))
			}
			for _, q := range tc.queries {
				it, err := child.Iterator(q.start, q.end)
				assert.Nil(t, err)
				got := Collect(it)
				if len(got) != len(q.want) {
					t.Fatalf("[%s, %s): want %d models, got %d", q.start, q.end, len(q.want), len(got))
				}
				for i := range got {
					if !bytes.Equal(q.want[i].Key, got[i].Key) {
						t.Fatalf("model %d: want key %q, got %q", i, q.want[i].Key, got[i].Key)
					}
					assert.Equal(t, q.want[i].Value, got[i].Value)
				}
			}
		})
	}
}

// ConcurrentWrites writes through many cache wraps at once, the way
// transactions touching disjoint records are delivered.
func (s *TestSuite) ConcurrentWrites(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	const n = 64
	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		key, value := []byte(fmt.Sprintf("cash:%03d", i)), []byte(fmt.Sprint(i))
		wg.Go(func() {
			c := base.CacheWrap()
			if err := c.Set(key, value); err != nil {
				t.Error(err)
				return
			}
			if err := c.Write(); err != nil {
				t.Error(err)
			}
		})
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		s.AssertGetHas(t, base, []byte(fmt.Sprintf("cash:%03d", i)), []byte(fmt.Sprint(i)), true)
	}
}

// AssertGetHas checks both Get and Has for key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func SetOp(key, value []byte) Op {
	return Op{Key: key, Value: value}
}

func DelOp(key []byte) Op {
	return Op{Key: key, Delete: true}
}

func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

func setOps(ms ...Model) []Op {
	ops := make([]Op, len(ms))
	for i, m := range ms {
		ops[i] = SetOp(m.Key, m.Value)
	}
	return ops
}
