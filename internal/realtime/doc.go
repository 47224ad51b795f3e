// Package realtime implements the WebSocket fan-out subsystem.
//
// A Registry tracks live sessions behind a narrowly scoped mutex, the Engine
// fans notifications out to a point-in-time snapshot of those sessions
// (delivery happens outside the lock, concurrently per session), and the
// Handler drives each connection through authenticate, register, serve.
// Per-connection write goroutines keep slow clients from blocking anyone else.
// The Bridge turns committed event mutations into broadcasts.
package realtime
