/*
Package x contains the custody extensions

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together by the app package into a single
engine. This package holds the authentication plumbing shared by all
of them; every sub-package is one extension.

Follow standard go naming conventions and avoid stutter. Use
`request.CreateMsg` in place of `request.CreateRequestMsg`.
*/
package x
