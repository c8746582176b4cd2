/*
Package token keeps balances of fungible tokens.

Tokens are held in accounts. Each account is bound to a single asset and
a single owner and is identified by a sequence number. A group keeps its
tokens in vault accounts owned by its derived address.
*/
package token
