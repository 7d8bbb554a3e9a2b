// Package server implements the HTTP boundary: gin handlers for
// create/login/push/pull/list that translate pkg/store and pkg/account
// outcomes into HTTP status codes, plus an optional session-auth
// middleware layered on top of an unauthenticated default.
//
// A Server struct holds its dependencies and is constructed with explicit
// arguments rather than package-level globals.
package server
