/*
Package errors implements custom error interfaces for the custody engine.

Every error returned by the engine wraps one of the root errors registered
with Register. A root error carries a numeric code that is stable across
releases, so clients can match on it. Root errors shared by all extensions
are declared in this package; extensions register their own domain errors
in their errors.go file, each within its own code range.

Use Wrap or Wrapf to add context to an error while keeping its root cause,
and the Is method of a root error to test for it:

	if err := bucket.One(db, key, &g); err != nil {
		return errors.Wrap(err, "cannot load group")
	}
	...
	if errors.ErrNotFound.Is(err) {
		...
	}
*/
package errors
