/*
Package app contains the engine that processes custody transactions.

The engine routes every transaction through a chain of decorators to the
handler registered for its message path. Handlers are not aware of each
other and never block on one another: a message names the records it
mutates and the engine holds an exclusive lock on each of them for the
duration of the call. Operations on different records run in parallel.

	app.ChainDecorators(
	  utils.NewRecovery(),
	  utils.NewLogging(),
	  sigs.NewDecorator(),
	  utils.NewSavepoint().OnDeliver(),
	).WithHandler(router)
*/
package app
