/*
Package cash keeps the native currency balances.

Every address owns at most one wallet. Groups hold their custody balance
in the wallet of their derived address, so depositing and paying out
native funds are plain moves between wallets.
*/
package cash
