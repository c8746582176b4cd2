/*
Package deposit funds the custody balance of a group.

Native currency is moved from the payer wallet to the wallet of the group
address. Tokens are moved from a payer owned account to a vault account
owned by the group. Deposits are not gated by approvals, anyone can fund
a group.
*/
package deposit
