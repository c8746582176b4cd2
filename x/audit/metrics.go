package audit

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink counts events by kind and sums moved amounts by kind and
// asset.
type MetricsSink struct {
	events  *prometheus.CounterVec
	amounts *prometheus.CounterVec
}

var _ custody.EventSink = MetricsSink{}

// NewMetricsSink returns a sink with its collectors registered with reg.
func NewMetricsSink(reg prometheus.Registerer) (MetricsSink, error) {
	s := MetricsSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "custody",
			Name:      "events_total",
			Help:      "Number of published audit events.",
		}, []string{"kind"}),
		amounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "custody",
			Name:      "amount_total",
			Help:      "Sum of amounts deposited into or paid out of custody.",
		}, []string{"kind", "asset"}),
	}
	for _, c := range []prometheus.Collector{s.events, s.amounts} {
		if err := reg.Register(c); err != nil {
			return s, errors.Wrap(errors.ErrHuman, err.Error())
		}
	}
	return s, nil
}

func (s MetricsSink) Publish(ctx custody.Context, events []custody.Event) error {
	for _, e := range events {
		s.events.WithLabelValues(string(e.Kind)).Inc()
		switch e.Kind {
		case custody.EventDepositRecorded, custody.EventRequestExecuted:
			s.amounts.WithLabelValues(string(e.Kind), e.Asset).Add(float64(e.Amount))
		}
	}
	return nil
}
