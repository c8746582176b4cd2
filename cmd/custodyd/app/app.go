/*
Package app links together all the custody extensions into a single
engine.
*/
package app

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/deposit"
	"github.com/iov-one/custody/x/dispatch"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/nonce"
	"github.com/iov-one/custody/x/request"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/token"
	"github.com/iov-one/custody/x/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication, logging,
// metrics and recovery. Collectors are registered with reg, nil disables
// metrics.
func Chain(reg prometheus.Registerer) (app.Decorators, error) {
	var metrics *utils.Metrics
	if reg != nil {
		m, err := utils.NewMetrics(reg)
		if err != nil {
			return app.Decorators{}, err
		}
		metrics = &m
	}
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		sigs.NewDecorator(),
		// bad tx never leave partial writes behind
		utils.NewSavepoint().OnDeliver(),
	), nil
}

// Router returns a router with all custody operations registered.
func Router(authFn x.Authenticator, alloc nonce.Allocator) *app.Router {
	r := app.NewRouter()
	cashCtrl := cash.NewController(cash.NewBucket())
	tokenCtrl := token.NewController(token.NewBucket())

	nonce.RegisterRoutes(r, authFn, alloc)
	group.RegisterRoutes(r, authFn, alloc)
	token.RegisterRoutes(r)
	deposit.RegisterRoutes(r, authFn, cashCtrl, tokenCtrl)
	request.RegisterRoutes(r, authFn)
	dispatch.RegisterRoutes(r, authFn, cashCtrl, tokenCtrl)
	return r
}

// Initializers returns the genesis loaders of all extensions.
func Initializers(alloc nonce.Allocator) custody.Initializer {
	return custody.ChainInitializers(
		cash.Initializer{},
		token.Initializer{},
		&group.Initializer{Alloc: alloc},
		request.Initializer{},
	)
}

// Stack wires up a standard router with a standard decorator chain.
func Stack(reg prometheus.Registerer, alloc nonce.Allocator) (custody.Handler, error) {
	chain, err := Chain(reg)
	if err != nil {
		return nil, err
	}
	return chain.WithHandler(Router(Authenticator(), alloc)), nil
}

// Config configures an engine.
type Config struct {
	// Strict requires every creator to register before the first group.
	Strict bool
	// Registerer receives the metrics, nil disables them.
	Registerer  prometheus.Registerer
	Sink        custody.EventSink
	Logger      log.Logger
	Concurrency int
}

// NewEngine returns an engine with all custody extensions operating on
// given store.
func NewEngine(kv custody.CacheableKVStore, conf Config) (*app.Engine, error) {
	alloc := nonce.NewAllocator()
	if conf.Strict {
		alloc = nonce.NewStrictAllocator()
	}
	h, err := Stack(conf.Registerer, alloc)
	if err != nil {
		return nil, err
	}
	e, err := app.NewEngine(kv, h, Initializers(alloc))
	if err != nil {
		return nil, err
	}
	if conf.Logger != nil {
		e = e.WithLogger(conf.Logger)
	}
	if conf.Sink != nil {
		e = e.WithSink(conf.Sink)
	}
	return e.WithConcurrency(conf.Concurrency), nil
}
