/*
Package dispatch executes approved transfer requests.

Native requests are paid from the wallet of the group address. Token
requests are paid from a vault account owned by the group. The group
never holds a private key, its authority over the vault is granted by this
package for the duration of a single execution.
*/
package dispatch
