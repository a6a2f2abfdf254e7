// Package provider defines how documents are fed from outside: a provider
// signals once the document holds its source's state and streams its
// connection status (disconnected, connecting, connected).
//
// Providers live outside the document core. The store package implements
// one backed by a local SQLite cache.
package provider
