// Package docpath resolves slash-separated paths to nodes of a replicated
// document.
//
// The first segment names a root map. Later segments step into maps by key
// and into sequences by decimal index. The segment "@" switches to the box
// resolver: the map reached so far is treated as a flat table of entries
// keyed by id, with the root directory under "root:", and the remaining
// segments are names walked through directory children down to a text
// entry.
//
// Every failure is a *PathError carrying an ErrorCode:
//
//	_, err := docpath.Resolve(doc, "settings/items/3")
//	if docpath.HasCode(err, docpath.ErrCodeOutOfRange) { ... }
package docpath
