// Package harness runs scripted document sessions and checks what they did.
//
// A scenario is a YAML file:
//
//	name: edit-config
//	description: "Port changes are persisted"
//	setup:
//	  config: {port: 8080}
//	flow:
//	  - op: set
//	    path: config/port
//	    value: 9090
//	  - op: get
//	    path: config/port
//	    expect: {result: 9090}
//	assertions:
//	  - type: final_value
//	    path: config/port
//	    value: 9090
//	  - type: commit_count
//	    count: 1
//
// Setup roots are saved to a fresh in-memory cache and loaded the way the
// command line loads a cached document, so loading is neither traced nor
// logged. Each flow step runs one path-addressed operation; the trace
// records the operation's outcome (ok or an error code) followed by the
// commits it produced. Every commit goes through the store, so
// commit_count checks the persisted log.
//
// The trace and final content serialize to canonical JSON for golden file
// comparison.
package harness
