// Package reactive binds document paths to a host reactivity system.
//
// A Handle observes the node its path resolves to and reports changes to a
// Tracker. Bursts of changes are coalesced by a trailing-edge Debouncer, so
// a consumer re-reads once per burst rather than once per edit; reads may
// be slightly stale while a burst is in flight.
//
//	sig := reactive.NewSignal()
//	h := reactive.Bind(doc, "settings/items", sig)
//	defer h.Dispose()
//	<-sig.Changed()
//	items := h.Get()
package reactive
