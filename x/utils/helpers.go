package utils

import "github.com/iov-one/custody"

//--------------- expose helpers -----

// TestHelpers returns helper objects for tests,
// encapsulated in one object to be easily imported in other packages
type TestHelpers struct{}

// CountingHandler returns success and counts times called
func (TestHelpers) CountingHandler() CountingHandler {
	return &countingHandler{}
}

// ErrorHandler always returns the given error when called
func (TestHelpers) ErrorHandler(err error) custody.Handler {
	return errorHandler{err}
}

// PanicHandler always panics with the given error when called
func (TestHelpers) PanicHandler(err error) custody.Handler {
	return panicHandler{err}
}

// WriteHandler will write the given key/value pair to the KVStore,
// and return the error (use nil for success)
func (TestHelpers) WriteHandler(key, value []byte, err error) custody.Handler {
	return writeHandler{key: key, value: value, err: err}
}

// CountingHandler keeps track of number of times called.
// 1x per call
type CountingHandler interface {
	GetCount() int
	custody.Handler
}

//-------------- counting -------------------------

type countingHandler struct {
	called int
}

var _ custody.Handler = (*countingHandler)(nil)

func (c *countingHandler) Check(custody.Context, custody.KVStore, custody.Tx) (*custody.CheckResult, error) {
	c.called++
	return &custody.CheckResult{}, nil
}

func (c *countingHandler) Deliver(custody.Context, custody.KVStore, custody.Tx) (*custody.DeliverResult, error) {
	c.called++
	return &custody.DeliverResult{}, nil
}

func (c *countingHandler) GetCount() int {
	return c.called
}

//----------- errors ------------

type errorHandler struct {
	err error
}

var _ custody.Handler = errorHandler{}

func (e errorHandler) Check(custody.Context, custody.KVStore, custody.Tx) (*custody.CheckResult, error) {
	return nil, e.err
}

func (e errorHandler) Deliver(custody.Context, custody.KVStore, custody.Tx) (*custody.DeliverResult, error) {
	return nil, e.err
}

type panicHandler struct {
	err error
}

var _ custody.Handler = panicHandler{}

func (p panicHandler) Check(custody.Context, custody.KVStore, custody.Tx) (*custody.CheckResult, error) {
	panic(p.err)
}

func (p panicHandler) Deliver(custody.Context, custody.KVStore, custody.Tx) (*custody.DeliverResult, error) {
	panic(p.err)
}

//----------------- writers --------

// writeHandler writes the key, value pair and returns the error (may be nil)
type writeHandler struct {
	key   []byte
	value []byte
	err   error
}

var _ custody.Handler = writeHandler{}

func (h writeHandler) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if err := store.Set(h.key, h.value); err != nil {
		return nil, err
	}
	if h.err != nil {
		return nil, h.err
	}
	return &custody.CheckResult{}, nil
}

func (h writeHandler) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	if err := store.Set(h.key, h.value); err != nil {
		return nil, err
	}
	if h.err != nil {
		return nil, h.err
	}
	return &custody.DeliverResult{}, nil
}
