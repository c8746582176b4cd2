package app

import (
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/sourcegraph/conc/iter"
	"github.com/tendermint/tendermint/libs/log"
)

// Engine processes transactions against a store.
//
// Check never modifies the store. Deliver runs the handler directly on the
// store, so the handler chain must end with a savepoint to make every
// operation all or nothing. Events of a successful Deliver are published
// to the sink before the record locks are released. A sink failure is
// logged and otherwise ignored.
type Engine struct {
	logger      log.Logger
	store       custody.CacheableKVStore
	handler     custody.Handler
	initializer custody.Initializer
	sink        custody.EventSink
	locks       *lockTable

	// chainID is set once by InitChain
	chainID string

	maxGoroutines int
}

// NewEngine returns an engine operating on given store. The chain id is
// loaded from the store if it was initialized before.
func NewEngine(store custody.CacheableKVStore, handler custody.Handler, init custody.Initializer) (*Engine, error) {
	chainID, err := loadChainID(store)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load chain id")
	}
	return &Engine{
		logger:        log.NewNopLogger(),
		store:         store,
		handler:       handler,
		initializer:   init,
		locks:         newLockTable(),
		chainID:       chainID,
		maxGoroutines: 8,
	}, nil
}

// WithLogger sets the logger of the engine.
func (e *Engine) WithLogger(logger log.Logger) *Engine {
	e.logger = logger
	return e
}

// WithSink sets the destination of the produced events.
func (e *Engine) WithSink(sink custody.EventSink) *Engine {
	e.sink = sink
	return e
}

// WithConcurrency limits the number of transactions DeliverBatch processes
// at the same time.
func (e *Engine) WithConcurrency(n int) *Engine {
	if n > 0 {
		e.maxGoroutines = n
	}
	return e
}

// ChainID returns the chain id set by InitChain.
func (e *Engine) ChainID() string {
	release := e.locks.acquire(nil)
	defer release()
	return e.chainID
}

// InitChain loads the genesis state. It can be called only once for a
// store.
func (e *Engine) InitChain(ctx custody.Context, gen *Genesis) error {
	if gen.ChainID == "" {
		return errors.Wrap(errors.ErrEmpty, "chain id")
	}
	return e.locks.exclusive(func() error {
		if e.chainID != "" {
			return errors.Wrapf(errors.ErrImmutable, "chain %q already initialized", e.chainID)
		}
		cache := e.store.CacheWrap()
		if err := saveChainID(cache, gen.ChainID); err != nil {
			cache.Discard()
			return err
		}
		if e.initializer != nil {
			if err := e.initializer.FromGenesis(gen.AppOptions, cache); err != nil {
				cache.Discard()
				return errors.Wrap(err, "genesis")
			}
		}
		if err := cache.Write(); err != nil {
			return err
		}
		e.chainID = gen.ChainID
		e.logger.Info("chain initialized", "chain_id", gen.ChainID)
		return nil
	})
}

// Check validates the transaction against the current state without
// modifying it.
func (e *Engine) Check(ctx custody.Context, tx custody.Tx, now time.Time) (*custody.CheckResult, error) {
	keys, err := lockKeys(tx)
	if err != nil {
		return nil, err
	}
	release := e.locks.acquire(keys)
	defer release()

	cache := e.store.CacheWrap()
	defer cache.Discard()
	return e.handler.Check(e.context(ctx, "check", now), cache, tx)
}

// Deliver applies the transaction.
func (e *Engine) Deliver(ctx custody.Context, tx custody.Tx, now time.Time) (*custody.DeliverResult, error) {
	keys, err := lockKeys(tx)
	if err != nil {
		return nil, err
	}
	release := e.locks.acquire(keys)
	defer release()

	ctx = e.context(ctx, "deliver", now)
	res, err := e.handler.Deliver(ctx, e.store, tx)
	if err != nil {
		return nil, err
	}
	if e.sink != nil && len(res.Events) > 0 {
		if err := e.sink.Publish(ctx, res.Events); err != nil {
			custody.GetLogger(ctx).Error("cannot publish events", "err", err, "count", len(res.Events))
		}
	}
	return res, nil
}

// Result is the outcome of a single transaction of a batch.
type Result struct {
	Res *custody.DeliverResult
	Err error
}

// DeliverBatch applies all transactions concurrently. Transactions are
// independent of each other, there is no ordering guarantee between them
// beyond what their record locks impose. Results are returned in the order
// of the input.
func (e *Engine) DeliverBatch(ctx custody.Context, txs []custody.Tx, now time.Time) []Result {
	mapper := iter.Mapper[custody.Tx, Result]{MaxGoroutines: e.maxGoroutines}
	return mapper.Map(txs, func(tx *custody.Tx) Result {
		res, err := e.Deliver(ctx, *tx, now)
		return Result{Res: res, Err: err}
	})
}

// View runs fn with read access to the current state.
func (e *Engine) View(fn func(db custody.ReadOnlyKVStore) error) error {
	return fn(e.store)
}

// Commit persists the state if the store is versioned. Nothing else runs
// while the state is committed.
func (e *Engine) Commit() (custody.CommitID, error) {
	cs, ok := e.store.(custody.CommitKVStore)
	if !ok {
		return custody.CommitID{}, errors.Wrap(errors.ErrHuman, "store cannot be committed")
	}
	var id custody.CommitID
	err := e.locks.exclusive(func() error {
		var err error
		id, err = cs.Commit()
		return err
	})
	if err != nil {
		return custody.CommitID{}, errors.Wrap(err, "commit")
	}
	e.logger.Info("state committed", "version", id.Version, "hash", custody.HexBytes(id.Hash))
	return id, nil
}

func (e *Engine) context(ctx custody.Context, call string, now time.Time) custody.Context {
	ctx = custody.WithBlockTime(ctx, now)
	if e.chainID != "" {
		ctx = custody.WithChainID(ctx, e.chainID)
	}
	return custody.WithLogger(ctx, e.logger.With("call", call))
}

// lockKeys validates the message and returns the records it mutates. Nil
// means the message must run alone.
func lockKeys(tx custody.Tx) ([]string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "missing message")
	}
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	if ex, ok := msg.(custody.Exclusive); ok {
		return ex.LockKeys(), nil
	}
	return nil, nil
}
