// Package client implements the coldvault client: an HTTP client over the
// push/pull/list/create/login endpoints, a bounded-concurrency batch
// pusher, and the interactive REPL that cmd/coldvault-client drives.
//
// The batch pusher bounds concurrent file pushes with
// golang.org/x/sync/errgroup, since sealing is CPU-bound and
// embarrassingly parallel across files even though slot assignment at
// the server stays serial.
package client
