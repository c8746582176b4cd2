/*
Package group implements custody groups.

A group is a set of owners and the number of their approvals required to
authorize a transfer of the pooled funds. Membership never changes after
creation; a new group must be created instead.

Each group is identified by the key creator || id, where id comes from
the creator nonce. The group acts as its own signer through the
condition derived from that key, without any private key involved.
*/
package group
