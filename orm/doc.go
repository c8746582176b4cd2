/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
Each bucket holds a set of models of one type, addressed by key.
Models are serialized with amino, so any plain struct that knows how
to validate itself can be stored.

Sequences provide monotonic, big endian encoded counters that can be
used as primary keys.
*/
package orm
