// Package notes is the typed API of the notes server on top of the rpc client.
//
// Key Components:
//
//   - API: One blocking method per server command (getNotes, starNote, searchUserNotes, ...)
//     plus OnUserNotes for the broadcastUserNotes push.
//
//   - Note / DecodeCompactNote: The server sends notes as compact arrays
//     [idVer, title, size, flags, createdAtMs, updatedAtMs, format, tags, snippet, content?].
//     Note implements json.Unmarshaler for that form, flags are exposed as IsStarred and friends.
//
//   - Searcher: Search as you type. Results for a term that is no longer current are dropped.
package notes
