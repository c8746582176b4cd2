package app

import (
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v2"
)

// lockTable serializes operations touching the same records.
//
// Operations naming their records hold the global lock for reading and an
// exclusive lock for each record. Operations that cannot name their
// records hold the global lock for writing, which excludes everything
// else.
type lockTable struct {
	global  sync.RWMutex
	records *xsync.MapOf[string, *sync.Mutex]
}

func newLockTable() *lockTable {
	return &lockTable{records: xsync.NewMapOf[*sync.Mutex]()}
}

// acquire locks given records, or everything if no record is given. The
// returned function releases all acquired locks.
func (t *lockTable) acquire(keys []string) func() {
	if len(keys) == 0 {
		t.global.Lock()
		return t.global.Unlock
	}

	// A fixed acquisition order prevents deadlocks between operations
	// sharing more than one record.
	keys = append([]string(nil), keys...)
	sort.Strings(keys)
	uniq := keys[:0]
	for _, k := range keys {
		if len(uniq) == 0 || k != uniq[len(uniq)-1] {
			uniq = append(uniq, k)
		}
	}

	t.global.RLock()
	held := make([]*sync.Mutex, 0, len(uniq))
	for _, k := range uniq {
		mu, _ := t.records.LoadOrCompute(k, func() *sync.Mutex { return &sync.Mutex{} })
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
		t.global.RUnlock()
	}
}

// exclusive runs fn while holding the global lock for writing. Record locks
// are dropped afterwards, none of them can be held at this point.
func (t *lockTable) exclusive(fn func() error) error {
	t.global.Lock()
	defer t.global.Unlock()
	err := fn()
	t.records.Range(func(k string, _ *sync.Mutex) bool {
		t.records.Delete(k)
		return true
	})
	return err
}
