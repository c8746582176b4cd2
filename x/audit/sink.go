package audit

import (
	"sync"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// LogSink writes every event to a logger.
type LogSink struct {
	logger log.Logger
}

var _ custody.EventSink = LogSink{}

// NewLogSink returns a sink logging to given logger.
func NewLogSink(logger log.Logger) LogSink {
	return LogSink{logger: logger.With("module", "audit")}
}

func (s LogSink) Publish(ctx custody.Context, events []custody.Event) error {
	for _, e := range events {
		keyvals := []interface{}{"kind", e.Kind, "time", e.Time}
		if e.Actor != nil {
			keyvals = append(keyvals, "actor", e.Actor)
		}
		if e.Group != nil {
			keyvals = append(keyvals, "group", e.Group)
		}
		if e.Request != nil {
			keyvals = append(keyvals, "request", e.Request)
		}
		if e.Amount != 0 {
			keyvals = append(keyvals, "asset", e.Asset, "amount", e.Amount)
		}
		if e.Status != "" {
			keyvals = append(keyvals, "status", e.Status)
		}
		s.logger.Info("event", keyvals...)
	}
	return nil
}

// Recorder keeps all published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []custody.Event
}

var _ custody.EventSink = (*Recorder)(nil)

func (r *Recorder) Publish(ctx custody.Context, events []custody.Event) error {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []custody.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]custody.Event(nil), r.events...)
}

// Multi publishes to all sinks. Every sink is called even if an earlier one
// failed, the first failure is returned.
type Multi []custody.EventSink

var _ custody.EventSink = Multi(nil)

func (m Multi) Publish(ctx custody.Context, events []custody.Event) error {
	var first error
	for i, s := range m {
		if err := s.Publish(ctx, events); err != nil && first == nil {
			first = errors.Wrapf(err, "sink %d", i)
		}
	}
	return first
}
