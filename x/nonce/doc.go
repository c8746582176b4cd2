/*
Package nonce issues per creator sequence numbers.

Every creator owns a counter stored under "_nonce:<address>". Each group
created by that creator takes the current value as its id and bumps the
counter, so (creator, id) pairs are unique. A counter starts at zero. It
is created on first use, or explicitly with InitUserMsg when the
allocator runs in strict mode.
*/
package nonce
