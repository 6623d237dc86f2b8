// Package persist runs the background writes that copy store state into
// durable storage.
//
// A Writer is fire-and-forget: Schedule returns immediately and the write
// happens on its own goroutine. Writes are not ordered. When two writes to
// the same key overlap, whichever finishes last is what storage keeps, even
// if it was scheduled first. Callers only ever schedule full snapshots, so
// every completed write leaves storage internally consistent.
//
// Failures are logged and counted, never returned. Wait blocks until every
// scheduled write has finished and is meant for shutdown and tests.
package persist
