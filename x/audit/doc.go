/*
Package audit provides sinks for the events produced by custody handlers.

Events are published after the state change that produced them was
written. A sink failure is reported to the caller but never undoes the
state change.
*/
package audit
